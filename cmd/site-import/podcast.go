// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/site-import/internal/ledger"
	"github.com/pdiddy/site-import/internal/podcast"
	"github.com/pdiddy/site-import/internal/secrets"
	"github.com/pdiddy/site-import/pkg/types"
)

var podcastCmd = &cobra.Command{
	Use:   "podcast",
	Short: "Import podcast episodes from RSS and YouTube",
	Long: `Podcast fetches the podcast RSS feed and the YouTube playlist holding the
episode videos, matches each feed item to its video by title and writes
<content-dir>/episodes/<slug>.md.

Only episodes newer than the latest one on disk are written unless
--include-missing-previous or --overwrite-existing is set. The YouTube API key
is read from --youtube-api-key, SITE_IMPORT_PODCAST_YOUTUBE_API_KEY or the
youtube-api-key file in the secrets directory.`,
	RunE: runPodcast,
}

func init() {
	f := podcastCmd.Flags()
	f.String("feed-url", "", "podcast RSS feed URL")
	f.String("playlist-id", "", "YouTube playlist ID")
	f.String("youtube-api-key", "", "YouTube Data API key")
	f.String("content-dir", "content", "directory Markdown is written to")
	f.Bool("overwrite-existing", false, "replace episode files that already exist")
	f.Bool("include-missing-previous", false, "write older episodes missing on disk")
	f.Bool("allow-unmatched-videos", false, "tolerate playlist videos without an episode")
	f.Duration("timeout", 60*time.Second, "HTTP request timeout")
	f.String("user-agent", defaultUserAgent, "User-Agent header for HTTP requests")

	for key, flag := range map[string]string{
		"podcast.feed_url":                 "feed-url",
		"podcast.playlist_id":              "playlist-id",
		"podcast.youtube_api_key":          "youtube-api-key",
		"podcast.content_dir":              "content-dir",
		"podcast.overwrite_existing":       "overwrite-existing",
		"podcast.include_missing_previous": "include-missing-previous",
		"podcast.allow_unmatched_videos":   "allow-unmatched-videos",
		"podcast.timeout":                  "timeout",
		"podcast.user_agent":               "user-agent",
	} {
		mustBind(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(podcastCmd)
}

// podcastConfig assembles PodcastConfig from flags, environment, config and
// the secrets directory.
func podcastConfig() (types.PodcastConfig, error) {
	apiKey, err := secrets.Resolve(viper.GetString("secrets_dir"), secrets.YouTubeAPIKey, viper.GetString("podcast.youtube_api_key"))
	if err != nil {
		return types.PodcastConfig{}, err
	}
	return types.PodcastConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("podcast.timeout"),
			UserAgent: viper.GetString("podcast.user_agent"),
		},
		FeedURL:                viper.GetString("podcast.feed_url"),
		PlaylistID:             viper.GetString("podcast.playlist_id"),
		YouTubeAPIKey:          apiKey,
		ContentDir:             viper.GetString("podcast.content_dir"),
		OverwriteExisting:      viper.GetBool("podcast.overwrite_existing"),
		IncludeMissingPrevious: viper.GetBool("podcast.include_missing_previous"),
		AllowUnmatchedVideos:   viper.GetBool("podcast.allow_unmatched_videos"),
	}, nil
}

func runPodcast(cmd *cobra.Command, args []string) error {
	cfg, err := podcastConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid podcast settings: %w", err)
	}

	ctx := cmd.Context()
	return withRun(ctx, ledger.KindPodcast, func(run *ledger.Run) error {
		opts := podcast.WriterOptions{Output: os.Stdout, Logger: logger}
		if run != nil {
			opts.Recorder = run
		}

		client := &http.Client{Timeout: cfg.Timeout}
		im := podcast.NewImporter(
			client,
			podcast.NewYouTubeClient(cfg.YouTubeAPIKey, cfg.HTTPConfig),
			podcast.NewWriter(cfg.ContentDir, opts),
			podcast.TransistorID,
			logger,
		)
		report, err := im.Run(ctx, cfg)
		if err != nil {
			return err
		}
		logger.Info("podcast import complete",
			"items", report.Items,
			"videos", report.Videos,
			"episodes", report.Episodes,
			"written", report.Written)
		return nil
	})
}
