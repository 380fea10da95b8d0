// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wordpress

import (
	"net/url"
	"time"

	"github.com/pdiddy/site-import/internal/markdown"
	"github.com/pdiddy/site-import/pkg/types"
)

// PostSource is the render context of one post: its section, the post with
// its body already rewritten to local asset paths, and the resolved featured
// image if any.
type PostSource struct {
	SectionName   string
	Post          types.Post
	FeaturedImage string
}

func (s PostSource) Section() string { return s.SectionName }
func (s PostSource) Slug() string    { return s.Post.Slug }
func (s PostSource) HTML() string    { return s.Post.Body }

// PostFrontMatter is the front matter written for a post.
type PostFrontMatter struct {
	Title         string    `yaml:"title"`
	Date          time.Time `yaml:"date"`
	Slug          string    `yaml:"slug"`
	Description   string    `yaml:"description,omitempty"`
	Tags          []string  `yaml:"tags,omitempty"`
	Categories    []string  `yaml:"categories,omitempty"`
	Authors       []string  `yaml:"authors,omitempty"`
	FeaturedImage string    `yaml:"featuredImage,omitempty"`
	WordPressID   int       `yaml:"wordpressID,omitempty"`
	Aliases       []string  `yaml:"aliases,omitempty"`
}

// PostTranslator builds PostFrontMatter values.
type PostTranslator struct {
	// RequireFeaturedImage fails posts without a featured image.
	RequireFeaturedImage bool
}

// Translate implements markdown.Translator.
func (t PostTranslator) Translate(src PostSource, body string) (any, error) {
	p := src.Post
	if t.RequireFeaturedImage && src.FeaturedImage == "" {
		return nil, &types.MissingFieldError{Entity: p.Slug, Field: "featuredImage"}
	}

	fm := PostFrontMatter{
		Title:         p.Title,
		Date:          p.PublishedAt.UTC(),
		Slug:          p.Slug,
		Description:   description(p, body),
		Tags:          p.Tags,
		Categories:    p.Categories,
		Authors:       p.Authors,
		FeaturedImage: src.FeaturedImage,
		WordPressID:   p.ID,
	}
	if alias := oldPath(p.Link); alias != "" && alias != withSlashes(src.SectionName+"/"+p.Slug) {
		fm.Aliases = []string{alias}
	}
	return fm, nil
}

var _ markdown.Translator[PostSource] = PostTranslator{}

func description(p types.Post, body string) string {
	if p.Excerpt != "" {
		if d := markdown.PlainText(p.Excerpt); d != "" {
			return d
		}
	}
	return markdown.FirstParagraph(body)
}

func oldPath(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if path := withSlashes(u.Path); path != "/" {
		return path
	}
	return ""
}
