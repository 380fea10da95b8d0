// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Video is a YouTube playlist entry matched to a podcast episode.
type Video struct {
	ID          string        `json:"id" yaml:"id"`
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description" yaml:"description"`
	PublishedAt time.Time     `json:"published_at" yaml:"published_at"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
}

// Episode is a podcast episode built from an RSS item joined with its video
// by trimmed title.
type Episode struct {
	// PodcastID is the hosting provider's share ID for the episode.
	PodcastID string `json:"podcast_id" yaml:"podcast_id"`

	EpisodeNo int    `json:"episode" yaml:"episode"`
	Slug      string `json:"slug" yaml:"slug"`
	Title     string `json:"title" yaml:"title"`

	Date time.Time `json:"date" yaml:"date"`

	// Summary is a single plain-text paragraph.
	Summary string `json:"summary" yaml:"summary"`

	// Content is the episode show notes in HTML.
	Content string `json:"content" yaml:"content"`

	AudioURL string        `json:"audio_url" yaml:"audio_url"`
	ImageURL string        `json:"image_url" yaml:"image_url"`
	Duration time.Duration `json:"duration" yaml:"duration"`

	Video Video `json:"video" yaml:"video"`
}
