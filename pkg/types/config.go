package types

import (
	"errors"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "site-import/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// Redirect file formats.
const (
	RedirectNetlify = "netlify"
	RedirectYAML    = "yaml"
)

// Settings is the configuration bundle for one WordPress import run. It is
// built once, validated, and shared read-only by every stage.
type Settings struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// ExportsDir holds the WordPress export files; each file is one section.
	ExportsDir string `json:"exports_dir" yaml:"exports_dir" mapstructure:"exports_dir"`

	// ResourcesDir is the site's static resources root. Redirects are
	// written here.
	ResourcesDir string `json:"resources_dir" yaml:"resources_dir" mapstructure:"resources_dir"`

	// ResourceAssetDir is where the site serves imported assets from. Its
	// path relative to ResourcesDir forms the asset root used in bodies.
	ResourceAssetDir string `json:"resource_asset_dir" yaml:"resource_asset_dir" mapstructure:"resource_asset_dir"`

	// ImportAssetDir receives downloaded assets.
	ImportAssetDir string `json:"import_asset_dir" yaml:"import_asset_dir" mapstructure:"import_asset_dir"`

	// ContentDir receives the generated Markdown, one subdirectory per section.
	ContentDir string `json:"content_dir" yaml:"content_dir" mapstructure:"content_dir"`

	// AssetSiteURL is the WordPress site whose wp-content/uploads URLs are
	// imported (e.g. "https://leogdion.name").
	AssetSiteURL string `json:"asset_site_url" yaml:"asset_site_url" mapstructure:"asset_site_url"`

	// SkipDownload runs the downloader in dry-run mode.
	SkipDownload bool `json:"skip_download" yaml:"skip_download" mapstructure:"skip_download"`

	// OverwriteAssets replaces assets that already exist on disk.
	OverwriteAssets bool `json:"overwrite_assets" yaml:"overwrite_assets" mapstructure:"overwrite_assets"`

	// OverwriteExisting replaces Markdown files that already exist.
	OverwriteExisting bool `json:"overwrite_existing" yaml:"overwrite_existing" mapstructure:"overwrite_existing"`

	// IncludeMissingPrevious writes older podcast episodes missing on disk,
	// not only episodes newer than the latest one present.
	IncludeMissingPrevious bool `json:"include_missing_previous" yaml:"include_missing_previous" mapstructure:"include_missing_previous"`

	// RequireFeaturedImage fails a post that has no featured image.
	RequireFeaturedImage bool `json:"require_featured_image" yaml:"require_featured_image" mapstructure:"require_featured_image"`

	// RedirectFormat selects the redirect file format: netlify or yaml.
	RedirectFormat string `json:"redirect_format" yaml:"redirect_format" mapstructure:"redirect_format"`

	// DownloadWorkers bounds concurrent asset downloads (default 4).
	DownloadWorkers int `json:"download_workers" yaml:"download_workers" mapstructure:"download_workers"`

	// AssetTimeout bounds each asset download (default 30s).
	AssetTimeout time.Duration `json:"asset_timeout" yaml:"asset_timeout" mapstructure:"asset_timeout"`

	// RunDeadline bounds the whole run; zero means no deadline.
	RunDeadline time.Duration `json:"run_deadline" yaml:"run_deadline" mapstructure:"run_deadline"`
}

// Validate checks that the directories and asset site are usable.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ExportsDir, validation.Required),
		validation.Field(&s.ResourcesDir, validation.Required),
		validation.Field(&s.ResourceAssetDir, validation.Required),
		validation.Field(&s.ImportAssetDir, validation.Required),
		validation.Field(&s.ContentDir, validation.Required),
		validation.Field(&s.AssetSiteURL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&s.RedirectFormat, validation.In(RedirectNetlify, RedirectYAML)),
		validation.Field(&s.DownloadWorkers, validation.Min(0)),
	)
}

// AssetSite returns the parsed asset site URL. Validate guarantees it parses.
func (s Settings) AssetSite() *url.URL {
	u, err := url.Parse(s.AssetSiteURL)
	if err != nil {
		return &url.URL{}
	}
	return u
}

func absoluteURL(value interface{}) error {
	raw, _ := value.(string)
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return errors.New("must be an absolute URL")
	}
	return nil
}

// PodcastConfig holds settings for the podcast import.
type PodcastConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// FeedURL is the podcast RSS feed.
	FeedURL string `json:"feed_url" yaml:"feed_url" mapstructure:"feed_url"`

	// PlaylistID is the YouTube playlist holding the episode videos.
	PlaylistID string `json:"playlist_id" yaml:"playlist_id" mapstructure:"playlist_id"`

	// YouTubeAPIKey authenticates YouTube Data API requests.
	YouTubeAPIKey string `json:"youtube_api_key,omitempty" yaml:"youtube_api_key,omitempty" mapstructure:"youtube_api_key"`

	// ContentDir receives episodes/<slug>.md.
	ContentDir string `json:"content_dir" yaml:"content_dir" mapstructure:"content_dir"`

	OverwriteExisting      bool `json:"overwrite_existing" yaml:"overwrite_existing" mapstructure:"overwrite_existing"`
	IncludeMissingPrevious bool `json:"include_missing_previous" yaml:"include_missing_previous" mapstructure:"include_missing_previous"`

	// AllowUnmatchedVideos tolerates playlist videos without an episode.
	AllowUnmatchedVideos bool `json:"allow_unmatched_videos" yaml:"allow_unmatched_videos" mapstructure:"allow_unmatched_videos"`
}

// Validate checks the podcast settings.
func (c PodcastConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.FeedURL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&c.PlaylistID, validation.Required),
		validation.Field(&c.YouTubeAPIKey, validation.Required),
		validation.Field(&c.ContentDir, validation.Required),
	)
}

// LedgerConfig locates the import ledger database.
type LedgerConfig struct {
	// Dir holds ledger.db and its exports.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}
