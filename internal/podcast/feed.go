// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package podcast imports podcast episodes: items from the show's RSS feed
// joined by title with the videos of a YouTube playlist, written as
// Markdown under the content directory.
package podcast

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/site-import/internal/httputil"
	"github.com/pdiddy/site-import/pkg/types"
)

// FetchFeed downloads and parses the podcast feed at url.
func FetchFeed(ctx context.Context, client *http.Client, url, userAgent string) ([]*gofeed.Item, error) {
	body, err := httputil.Get(ctx, client, url, userAgent)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, &types.DecodeError{Source: url, Err: err}
	}
	return feed.Items, nil
}
