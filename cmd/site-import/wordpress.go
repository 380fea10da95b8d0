// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/site-import/internal/ledger"
	"github.com/pdiddy/site-import/internal/wordpress"
	"github.com/pdiddy/site-import/pkg/types"
)

var wordpressCmd = &cobra.Command{
	Use:   "wordpress",
	Short: "Import WordPress exports as Markdown",
	Long: `Wordpress reads every export file in the exports directory (one section per
file), writes redirects from the old WordPress links, downloads the uploads
referenced by post bodies and writes one Markdown file per published post to
<content-dir>/<section>/<slug>.md.

Existing Markdown files and assets are kept unless the overwrite flags are set.`,
	RunE: runWordpress,
}

func init() {
	f := wordpressCmd.Flags()
	f.String("exports-dir", "exports", "directory of WordPress export files")
	f.String("resources-dir", "static", "site resources directory (receives redirects)")
	f.String("resource-asset-dir", "static/imports", "directory the site serves imported assets from")
	f.String("import-asset-dir", "static/imports", "directory downloaded assets are written to")
	f.String("content-dir", "content", "directory Markdown is written to")
	f.String("asset-site-url", "", "WordPress site whose uploads are imported (e.g. https://example.com)")
	f.Bool("skip-download", false, "plan asset downloads without fetching")
	f.Bool("overwrite-assets", false, "replace assets that already exist")
	f.Bool("overwrite-existing", false, "replace Markdown files that already exist")
	f.Bool("require-featured-image", false, "fail posts without a featured image")
	f.String("redirect-format", types.RedirectNetlify, "redirect file format: netlify or yaml")
	f.Int("workers", 4, "concurrent asset downloads")
	f.Duration("asset-timeout", 30*time.Second, "timeout for each asset download")
	f.Duration("deadline", 0, "deadline for the whole run (0 = none)")
	f.Duration("timeout", 60*time.Second, "HTTP request timeout")
	f.String("user-agent", defaultUserAgent, "User-Agent header for HTTP requests")
	f.StringSlice("exclude-category", nil, "skip posts in these categories or tags")

	for key, flag := range map[string]string{
		"wordpress.exports_dir":            "exports-dir",
		"wordpress.resources_dir":          "resources-dir",
		"wordpress.resource_asset_dir":     "resource-asset-dir",
		"wordpress.import_asset_dir":       "import-asset-dir",
		"wordpress.content_dir":            "content-dir",
		"wordpress.asset_site_url":         "asset-site-url",
		"wordpress.skip_download":          "skip-download",
		"wordpress.overwrite_assets":       "overwrite-assets",
		"wordpress.overwrite_existing":     "overwrite-existing",
		"wordpress.require_featured_image": "require-featured-image",
		"wordpress.redirect_format":        "redirect-format",
		"wordpress.download_workers":       "workers",
		"wordpress.asset_timeout":          "asset-timeout",
		"wordpress.run_deadline":           "deadline",
		"wordpress.timeout":                "timeout",
		"wordpress.user_agent":             "user-agent",
		"wordpress.exclude_categories":     "exclude-category",
	} {
		mustBind(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(wordpressCmd)
}

// wordpressSettings assembles Settings from flags, environment and config.
func wordpressSettings() types.Settings {
	return types.Settings{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("wordpress.timeout"),
			UserAgent: viper.GetString("wordpress.user_agent"),
		},
		ExportsDir:           viper.GetString("wordpress.exports_dir"),
		ResourcesDir:         viper.GetString("wordpress.resources_dir"),
		ResourceAssetDir:     viper.GetString("wordpress.resource_asset_dir"),
		ImportAssetDir:       viper.GetString("wordpress.import_asset_dir"),
		ContentDir:           viper.GetString("wordpress.content_dir"),
		AssetSiteURL:         viper.GetString("wordpress.asset_site_url"),
		SkipDownload:         viper.GetBool("wordpress.skip_download"),
		OverwriteAssets:      viper.GetBool("wordpress.overwrite_assets"),
		OverwriteExisting:    viper.GetBool("wordpress.overwrite_existing"),
		RequireFeaturedImage: viper.GetBool("wordpress.require_featured_image"),
		RedirectFormat:       viper.GetString("wordpress.redirect_format"),
		DownloadWorkers:      viper.GetInt("wordpress.download_workers"),
		AssetTimeout:         viper.GetDuration("wordpress.asset_timeout"),
		RunDeadline:          viper.GetDuration("wordpress.run_deadline"),
	}
}

func runWordpress(cmd *cobra.Command, args []string) error {
	settings := wordpressSettings()
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	filters := wordpress.DefaultFilters()
	if excluded := viper.GetStringSlice("wordpress.exclude_categories"); len(excluded) > 0 {
		filters["exclude"] = wordpress.ExcludeCategory(excluded...)
	}

	ctx := cmd.Context()
	return withRun(ctx, ledger.KindWordPress, func(run *ledger.Run) error {
		opts := wordpress.Options{
			Filters: filters,
			Logger:  logger,
			Output:  os.Stdout,
		}
		if run != nil {
			opts.Recorder = run
		}

		proc, err := wordpress.NewDefaultProcessor(settings, opts)
		if err != nil {
			return err
		}
		report, err := proc.Run(ctx, settings)
		if err != nil {
			return err
		}

		if report.Download.HasFailures() {
			logger.Warn("some assets failed to download", "failed", report.Download.Failed)
		}
		logger.Info("wordpress import complete",
			"sections", len(report.Sections),
			"posts", report.Posts,
			"redirects", report.Redirects,
			"written", report.Written,
			"skipped", report.Skipped)
		return nil
	})
}
