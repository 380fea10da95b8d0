// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AssetImport links a media URL found in a post body to where it is
// downloaded and how the site refers to it afterwards.
type AssetImport struct {
	// PostID is the WordPress ID of the post whose body referenced the asset.
	PostID int `json:"post_id" yaml:"post_id"`

	// SourceURL is the exact substring matched in the body.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// Destination is the local file path under the import directory.
	Destination string `json:"destination" yaml:"destination"`

	// FeaturedPath is the root-relative path substituted back into bodies
	// (e.g. "/media/wp-assets/leogdion/2018/12/photo.png").
	FeaturedPath string `json:"featured_path" yaml:"featured_path"`
}

// AssetStatus is the outcome of downloading one asset.
type AssetStatus string

const (
	AssetDownloaded AssetStatus = "downloaded"
	AssetSkipped    AssetStatus = "skipped"
	AssetPlanned    AssetStatus = "planned"
	AssetFailed     AssetStatus = "failed"
)
