// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wordpress turns WordPress export files into site content: it
// decodes posts, writes redirects, extracts and downloads referenced media,
// and writes one Markdown file per post.
package wordpress

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/mmcdole/gofeed/rss"

	"github.com/pdiddy/site-import/internal/slug"
	"github.com/pdiddy/site-import/pkg/types"
)

const (
	exportExt = ".xml"

	wpPrefix      = "wp"
	excerptPrefix = "excerpt"

	categoryDomain = "category"
	tagDomain      = "post_tag"

	thumbnailMetaKey = "_thumbnail_id"

	// wpDateLayout is the layout of wp:post_date and wp:post_date_gmt.
	wpDateLayout = "2006-01-02 15:04:05"
)

// ExportDecoder reads WordPress exports from a directory.
type ExportDecoder interface {
	Posts(exportsDir string) (types.SectionedPosts, error)
}

// Decoder decodes WXR files with gofeed's RSS parser. Each file becomes one
// section named after the file without its extension.
type Decoder struct{}

// NewDecoder returns a Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Posts decodes every export file in exportsDir. Files are processed in
// name order; posts keep the order they have in their file.
func (d *Decoder) Posts(exportsDir string) (types.SectionedPosts, error) {
	var out types.SectionedPosts

	entries, err := os.ReadDir(exportsDir)
	if err != nil {
		return out, &types.DecodeError{Source: exportsDir, Err: err}
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !strings.EqualFold(filepath.Ext(e.Name()), exportExt) {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	for _, name := range files {
		path := filepath.Join(exportsDir, name)
		posts, err := d.decodeFile(path)
		if err != nil {
			return types.SectionedPosts{}, err
		}
		section := strings.TrimSuffix(name, filepath.Ext(name))
		out.Add(section, posts...)
	}
	return out, nil
}

func (d *Decoder) decodeFile(path string) ([]types.Post, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &types.DecodeError{Source: path, Err: err}
	}
	defer f.Close()

	parser := &rss.Parser{}
	feed, err := parser.Parse(f)
	if err != nil {
		return nil, &types.DecodeError{Source: path, Err: err}
	}

	posts := make([]types.Post, 0, len(feed.Items))
	for i, item := range feed.Items {
		post, err := decodeItem(item)
		if err != nil {
			label := item.Title
			if label == "" {
				label = "#" + strconv.Itoa(i+1)
			}
			return nil, &types.DecodeError{Source: path, Item: label, Err: err}
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// decodeItem converts a single parsed RSS item into a Post.
func decodeItem(item *rss.Item) (types.Post, error) {
	wp := item.Extensions[wpPrefix]

	post := types.Post{
		Title:         strings.TrimSpace(item.Title),
		Link:          strings.TrimSpace(item.Link),
		Body:          item.Content,
		Type:          extText(wp, "post_type"),
		Slug:          extText(wp, "post_name"),
		Status:        extText(wp, "status"),
		AttachmentURL: extText(wp, "attachment_url"),
		Excerpt:       extText(item.Extensions[excerptPrefix], "encoded"),
	}
	if item.GUID != nil {
		post.GUID = strings.TrimSpace(item.GUID.Value)
	}

	switch {
	case post.Title == "":
		return post, errors.New("missing title")
	case post.Link == "":
		return post, errors.New("missing link")
	case post.GUID == "":
		return post, errors.New("missing guid")
	}

	published, ok := publishDate(item, wp)
	if !ok {
		return post, errors.New("missing publish date")
	}
	post.PublishedAt = published

	post.ID = extInt(wp, "post_id")
	post.ParentID = extInt(wp, "post_parent")
	if post.Slug == "" {
		post.Slug = slug.Make(post.Title)
	}

	for _, c := range item.Categories {
		value := strings.TrimSpace(c.Value)
		if value == "" {
			continue
		}
		switch c.Domain {
		case tagDomain:
			post.Tags = append(post.Tags, value)
		case categoryDomain, "":
			post.Categories = append(post.Categories, value)
		}
	}

	if item.DublinCoreExt != nil {
		post.Authors = append(post.Authors, item.DublinCoreExt.Creator...)
	}

	for _, meta := range wp["postmeta"] {
		if extText(meta.Children, "meta_key") == thumbnailMetaKey {
			post.ThumbnailID, _ = strconv.Atoi(extText(meta.Children, "meta_value"))
		}
	}

	return post, nil
}

// publishDate prefers pubDate and falls back to wp:post_date_gmt, then
// wp:post_date. Unpublished drafts carry a zero date that fails all three.
func publishDate(item *rss.Item, wp map[string][]ext.Extension) (time.Time, bool) {
	if item.PubDateParsed != nil && item.PubDateParsed.Year() > 1 {
		return *item.PubDateParsed, true
	}
	for _, field := range []string{"post_date_gmt", "post_date"} {
		raw := extText(wp, field)
		if raw == "" {
			continue
		}
		if t, err := time.ParseInLocation(wpDateLayout, raw, time.UTC); err == nil && t.Year() > 1 {
			return t, true
		}
	}
	return time.Time{}, false
}

func extText(fields map[string][]ext.Extension, name string) string {
	values, ok := fields[name]
	if !ok || len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0].Value)
}

func extInt(fields map[string][]ext.Extension, name string) int {
	n, err := strconv.Atoi(extText(fields, name))
	if err != nil {
		return 0
	}
	return n
}

// describe renders the post for log lines.
func describe(p types.Post) string {
	return fmt.Sprintf("%s (id %d)", p.Slug, p.ID)
}
