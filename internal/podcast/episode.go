// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package podcast

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/site-import/internal/markdown"
	"github.com/pdiddy/site-import/internal/slug"
	"github.com/pdiddy/site-import/pkg/types"
)

const transistorShareHost = "share.transistor.fm"

// IDFunc derives the hosting provider's episode ID from a feed item and its
// video. It returns "" when no ID can be derived.
type IDFunc func(item *gofeed.Item, video types.Video) string

// TransistorID returns the last path component of a share.transistor.fm
// link.
func TransistorID(item *gofeed.Item, _ types.Video) string {
	u, err := url.Parse(item.Link)
	if err != nil || u.Host != transistorShareHost {
		return ""
	}
	id := path.Base(u.Path)
	if id == "/" || id == "." {
		return ""
	}
	return id
}

// IndexVideos keys videos by their trimmed title. Two videos with the same
// title make the join ambiguous and are rejected.
func IndexVideos(videos []types.Video) (map[string]types.Video, error) {
	index := make(map[string]types.Video, len(videos))
	for _, v := range videos {
		title := strings.TrimSpace(v.Title)
		if prev, dup := index[title]; dup {
			return nil, &types.DecodeError{
				Source: "youtube playlist",
				Item:   title,
				Err:    fmt.Errorf("duplicate title for videos %s and %s", prev.ID, v.ID),
			}
		}
		index[title] = v
	}
	return index, nil
}

// BuildOptions controls BuildEpisodes.
type BuildOptions struct {
	// AllowUnmatchedVideos tolerates playlist videos that match no feed
	// item, such as trailers.
	AllowUnmatchedVideos bool
}

// BuildEpisodes joins feed items with videos by trimmed title and returns
// the episodes sorted by episode number. Every item must have a video;
// unless opts allow it, every video must have an item too. On any error no
// episodes are returned.
func BuildEpisodes(items []*gofeed.Item, videos map[string]types.Video, id IDFunc, opts BuildOptions) ([]types.Episode, error) {
	matched := make(map[string]bool, len(items))
	episodes := make([]types.Episode, 0, len(items))

	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		video, ok := videos[title]
		if !ok {
			return nil, &types.NoMatchError{Title: title, Missing: "video"}
		}
		matched[title] = true

		podcastID := id(item, video)
		if podcastID == "" {
			return nil, &types.MissingFieldError{Entity: title, Field: "podcastID"}
		}

		ep, err := newEpisode(podcastID, item, video)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, ep)
	}

	if !opts.AllowUnmatchedVideos {
		var unmatched []string
		for title := range videos {
			if !matched[title] {
				unmatched = append(unmatched, title)
			}
		}
		if len(unmatched) > 0 {
			sort.Strings(unmatched)
			return nil, &types.NoMatchError{Title: unmatched[0], Missing: "episode"}
		}
	}

	sort.SliceStable(episodes, func(i, j int) bool {
		return episodes[i].EpisodeNo < episodes[j].EpisodeNo
	})
	return episodes, nil
}

func newEpisode(podcastID string, item *gofeed.Item, video types.Video) (types.Episode, error) {
	title := strings.TrimSpace(item.Title)
	missing := func(field string) error {
		return &types.MissingFieldError{Entity: title, Field: field}
	}

	content := item.Content
	if strings.TrimSpace(content) == "" {
		content = item.Description
	}
	if strings.TrimSpace(content) == "" {
		return types.Episode{}, missing("content")
	}
	if item.PublishedParsed == nil {
		return types.Episode{}, missing("date")
	}
	it := item.ITunesExt
	if it == nil {
		return types.Episode{}, missing("itunes")
	}
	if title == "" {
		return types.Episode{}, missing("title")
	}

	duration, err := ParseITunesDuration(it.Duration)
	if err != nil {
		return types.Episode{}, missing("duration")
	}
	episodeNo, err := strconv.Atoi(strings.TrimSpace(it.Episode))
	if err != nil {
		return types.Episode{}, missing("episode")
	}

	summary := markdown.FirstHTMLParagraph(it.Summary)
	if summary == "" {
		summary = strings.TrimSpace(it.Subtitle)
	}
	if summary == "" {
		summary = markdown.FirstHTMLParagraph(video.Description)
	}
	if summary == "" {
		return types.Episode{}, missing("summary")
	}

	image := strings.TrimSpace(it.Image)
	if image == "" && item.Image != nil {
		image = item.Image.URL
	}
	if image == "" {
		return types.Episode{}, missing("image")
	}

	audio := audioURL(item)
	if audio == "" {
		return types.Episode{}, missing("audioURL")
	}

	return types.Episode{
		PodcastID: podcastID,
		EpisodeNo: episodeNo,
		Slug:      slug.Make(title),
		Title:     title,
		Date:      *item.PublishedParsed,
		Summary:   summary,
		Content:   content,
		AudioURL:  audio,
		ImageURL:  image,
		Duration:  duration,
		Video:     video,
	}, nil
}

// audioURL returns the first audio enclosure, or the first enclosure when
// none declares an audio type.
func audioURL(item *gofeed.Item) string {
	var first string
	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if strings.HasPrefix(enc.Type, "audio/") {
			return enc.URL
		}
		if first == "" {
			first = enc.URL
		}
	}
	return first
}

// ParseITunesDuration parses itunes:duration values: plain seconds,
// "MM:SS" or "HH:MM:SS".
func ParseITunesDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty duration")
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	var total int
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, nil
}
