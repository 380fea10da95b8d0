// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package podcast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/site-import/internal/httputil"
	"github.com/pdiddy/site-import/pkg/types"
)

const (
	youtubeBaseURL = "https://www.googleapis.com/youtube/v3"

	// youtubeMaxResults is the page size limit of playlistItems and the id
	// batch limit of videos.
	youtubeMaxResults = 50
)

// YouTubeClient reads playlist videos from the YouTube Data API v3.
type YouTubeClient struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Client    *http.Client
}

// NewYouTubeClient returns a client for the public API endpoint.
func NewYouTubeClient(apiKey string, cfg types.HTTPConfig) *YouTubeClient {
	return &YouTubeClient{
		BaseURL:   youtubeBaseURL,
		APIKey:    apiKey,
		UserAgent: cfg.UserAgent,
		Client:    &http.Client{Timeout: cfg.Timeout},
	}
}

type playlistItemsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			PublishedAt string `json:"publishedAt"`
			ResourceID  struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Snippet struct {
			PublishedAt string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

// Videos returns every video of a playlist in playlist order, with
// durations filled in from the videos endpoint.
func (c *YouTubeClient) Videos(ctx context.Context, playlistID string) ([]types.Video, error) {
	var videos []types.Video
	pageToken := ""
	for {
		params := url.Values{
			"part":       {"snippet"},
			"playlistId": {playlistID},
			"maxResults": {strconv.Itoa(youtubeMaxResults)},
		}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var page playlistItemsResponse
		if err := c.get(ctx, "playlistItems", params, &page); err != nil {
			return nil, fmt.Errorf("listing playlist %s: %w", playlistID, err)
		}
		for _, item := range page.Items {
			published, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
			videos = append(videos, types.Video{
				ID:          item.Snippet.ResourceID.VideoID,
				Title:       item.Snippet.Title,
				Description: item.Snippet.Description,
				PublishedAt: published,
			})
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	if err := c.fillDetails(ctx, videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// fillDetails sets durations, and the video's own publish time, in batches.
func (c *YouTubeClient) fillDetails(ctx context.Context, videos []types.Video) error {
	index := make(map[string][]int, len(videos))
	for i, v := range videos {
		index[v.ID] = append(index[v.ID], i)
	}

	for start := 0; start < len(videos); start += youtubeMaxResults {
		end := min(start+youtubeMaxResults, len(videos))
		ids := make([]string, 0, end-start)
		for _, v := range videos[start:end] {
			ids = append(ids, v.ID)
		}

		var resp videosResponse
		params := url.Values{"part": {"contentDetails,snippet"}, "id": {strings.Join(ids, ",")}}
		if err := c.get(ctx, "videos", params, &resp); err != nil {
			return fmt.Errorf("fetching video details: %w", err)
		}
		for _, item := range resp.Items {
			d, err := ParseISODuration(item.ContentDetails.Duration)
			if err != nil {
				return &types.DecodeError{Source: "youtube videos", Item: item.ID, Err: err}
			}
			published, perr := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
			for _, i := range index[item.ID] {
				videos[i].Duration = d
				if perr == nil {
					videos[i].PublishedAt = published
				}
			}
		}
	}
	return nil
}

func (c *YouTubeClient) get(ctx context.Context, endpoint string, params url.Values, v any) error {
	params.Set("key", c.APIKey)
	u := strings.TrimSuffix(c.BaseURL, "/") + "/" + endpoint + "?" + params.Encode()

	body, err := httputil.Get(ctx, c.Client, u, c.UserAgent)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return &types.DecodeError{Source: "youtube " + endpoint, Err: err}
	}
	return nil
}

var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseISODuration parses the ISO 8601 durations YouTube reports, such as
// "PT1H2M3S" or "P1DT5M". Years, months and weeks are not supported.
func ParseISODuration(s string) (time.Duration, error) {
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" {
		return 0, fmt.Errorf("invalid ISO 8601 duration %q", s)
	}
	var d time.Duration
	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute}
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, fmt.Errorf("invalid ISO 8601 duration %q: %w", s, err)
		}
		d += time.Duration(n) * unit
	}
	if m[4] != "" {
		secs, err := strconv.ParseFloat(m[4], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid ISO 8601 duration %q: %w", s, err)
		}
		d += time.Duration(secs * float64(time.Second))
	}
	return d, nil
}
