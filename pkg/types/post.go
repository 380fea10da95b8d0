// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the site-import pipeline:
// decoded WordPress posts, asset imports, podcast episodes, settings, and the
// error taxonomy every stage reports through.
package types

import (
	"sort"
	"time"
)

// Post types and statuses used by the default filter chain.
const (
	PostTypePost       = "post"
	PostTypeAttachment = "attachment"
	PostTypePage       = "page"

	PostStatusPublish = "publish"
	PostStatusDraft   = "draft"
)

// Post is a single item decoded from a WordPress export. It is never
// modified after decoding.
type Post struct {
	// ID is the WordPress post ID (wp:post_id).
	ID int `json:"id" yaml:"id"`

	// Type is the WordPress post type: post, attachment, page, ...
	Type string `json:"type" yaml:"type"`

	Title string `json:"title" yaml:"title"`

	// Slug is wp:post_name, or a slug generated from the title when empty.
	Slug string `json:"slug" yaml:"slug"`

	// Link is the published permalink.
	Link string `json:"link" yaml:"link"`

	GUID string `json:"guid" yaml:"guid"`

	// Body is the raw HTML from content:encoded.
	Body string `json:"body" yaml:"body"`

	// Excerpt is excerpt:encoded, often empty.
	Excerpt string `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`

	PublishedAt time.Time `json:"published_at" yaml:"published_at"`

	// ParentID is wp:post_parent; attachments point at the post they belong to.
	ParentID int `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`

	// AttachmentURL is wp:attachment_url for attachment posts.
	AttachmentURL string `json:"attachment_url,omitempty" yaml:"attachment_url,omitempty"`

	// ThumbnailID is the attachment ID stored in the _thumbnail_id post meta.
	ThumbnailID int `json:"thumbnail_id,omitempty" yaml:"thumbnail_id,omitempty"`

	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	Tags       []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Authors    []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Status is wp:status: publish, draft, private, inherit, ...
	Status string `json:"status" yaml:"status"`
}

// Section groups the posts decoded from one export file.
type Section struct {
	Name  string
	Posts []Post
}

// SectionedPosts maps section names to their posts. Sections are kept sorted
// by name and posts keep export order, so iteration is deterministic.
type SectionedPosts struct {
	sections []Section
}

// Add appends posts to the named section, creating it if needed.
func (s *SectionedPosts) Add(name string, posts ...Post) {
	for i := range s.sections {
		if s.sections[i].Name == name {
			s.sections[i].Posts = append(s.sections[i].Posts, posts...)
			return
		}
	}
	s.sections = append(s.sections, Section{Name: name, Posts: posts})
	sort.SliceStable(s.sections, func(i, j int) bool {
		return s.sections[i].Name < s.sections[j].Name
	})
}

// Sections returns the sections in name order.
func (s SectionedPosts) Sections() []Section {
	return s.sections
}

// Names returns the section names in order.
func (s SectionedPosts) Names() []string {
	names := make([]string, len(s.sections))
	for i, sec := range s.sections {
		names[i] = sec.Name
	}
	return names
}

// Lookup returns the posts of the named section.
func (s SectionedPosts) Lookup(name string) ([]Post, bool) {
	for _, sec := range s.sections {
		if sec.Name == name {
			return sec.Posts, true
		}
	}
	return nil, false
}

// All flattens every section into one slice, sections in name order.
func (s SectionedPosts) All() []Post {
	var all []Post
	for _, sec := range s.sections {
		all = append(all, sec.Posts...)
	}
	return all
}

// Len returns the total number of posts across sections.
func (s SectionedPosts) Len() int {
	n := 0
	for _, sec := range s.sections {
		n += len(sec.Posts)
	}
	return n
}

// Redirect maps an old published path to its new location.
type Redirect struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}
