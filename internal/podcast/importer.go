// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package podcast

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pdiddy/site-import/pkg/types"
)

// VideoSource lists the videos of a playlist; *YouTubeClient implements it.
type VideoSource interface {
	Videos(ctx context.Context, playlistID string) ([]types.Video, error)
}

// Report summarizes an import.
type Report struct {
	Items    int
	Videos   int
	Episodes int
	WriteResult
}

// Importer runs the podcast import: fetch the feed, list the playlist,
// join them and write the episodes.
type Importer struct {
	client *http.Client
	videos VideoSource
	writer *Writer
	id     IDFunc
	logger *slog.Logger
}

// NewImporter wires an importer. A nil id uses TransistorID.
func NewImporter(client *http.Client, videos VideoSource, writer *Writer, id IDFunc, logger *slog.Logger) *Importer {
	if id == nil {
		id = TransistorID
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{client: client, videos: videos, writer: writer, id: id, logger: logger}
}

// Run imports the podcast described by cfg.
func (im *Importer) Run(ctx context.Context, cfg types.PodcastConfig) (Report, error) {
	var report Report

	videos, err := im.videos.Videos(ctx, cfg.PlaylistID)
	if err != nil {
		return report, err
	}
	report.Videos = len(videos)
	index, err := IndexVideos(videos)
	if err != nil {
		return report, err
	}

	items, err := FetchFeed(ctx, im.client, cfg.FeedURL, cfg.UserAgent)
	if err != nil {
		return report, err
	}
	report.Items = len(items)
	im.logger.Info("loaded podcast sources", "items", report.Items, "videos", report.Videos)

	episodes, err := BuildEpisodes(items, index, im.id, BuildOptions{AllowUnmatchedVideos: cfg.AllowUnmatchedVideos})
	if err != nil {
		return report, fmt.Errorf("building episodes: %w", err)
	}
	report.Episodes = len(episodes)

	report.WriteResult, err = im.writer.Write(episodes, cfg.OverwriteExisting, cfg.IncludeMissingPrevious)
	if err != nil {
		return report, err
	}
	return report, nil
}
