// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wordpress

import (
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdiddy/site-import/pkg/types"
)

// uploadsPath is where WordPress stores media under the site root.
const uploadsPath = "/wp-content/uploads"

// AssetRoot describes where imported assets live on disk and on the site.
type AssetRoot struct {
	// SitePath is the root-relative prefix used in rewritten bodies,
	// e.g. "/media/wp-assets/leogdion".
	SitePath string

	// ImportDir is the directory downloads are written under; the captured
	// upload path is appended to it.
	ImportDir string
}

// NewAssetRoot computes the asset root for a run. The site path is the
// resource asset directory relative to the resources directory, followed by
// the first DNS label of the asset site host ("default" without a host).
// The import directory gets the same host label so both trees line up.
func NewAssetRoot(settings types.Settings) AssetRoot {
	rel, err := filepath.Rel(settings.ResourcesDir, settings.ResourceAssetDir)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = settings.ResourcesDir
	}
	rel = strings.Trim(filepath.ToSlash(rel), "/")

	prefix := hostPrefix(settings.AssetSite())

	return AssetRoot{
		SitePath:  strings.Join([]string{"", rel, prefix}, "/"),
		ImportDir: filepath.Join(settings.ImportAssetDir, prefix),
	}
}

func hostPrefix(u *url.URL) string {
	host := u.Hostname()
	if host == "" {
		return "default"
	}
	return strings.Split(host, ".")[0]
}

// UploadsPattern returns the pattern matching upload URLs of the asset
// site. The capture group is the path below wp-content/uploads. Matching
// stops at quotes, whitespace, parentheses and angle brackets.
func UploadsPattern(assetSiteURL string) *regexp.Regexp {
	base := strings.TrimSuffix(assetSiteURL, "/")
	return regexp.MustCompile(regexp.QuoteMeta(base+uploadsPath) + `([^"'\s()<>]+)`)
}

// UploadsPrefix is the literal URL prefix replaced by the asset root when
// bodies are rewritten.
func UploadsPrefix(assetSiteURL string) string {
	return strings.TrimSuffix(assetSiteURL, "/") + uploadsPath
}

// ExtractAssetImports scans post bodies for pattern matches and returns one
// AssetImport per distinct (post, URL) pair, in body order.
//
// Matches that do not parse as URLs, or whose captured path escapes the
// uploads tree once cleaned, are skipped without error: exports routinely
// contain half-encoded or truncated links and one bad reference must not
// stop an import.
func ExtractAssetImports(posts []types.Post, pattern *regexp.Regexp, root AssetRoot) []types.AssetImport {
	var imports []types.AssetImport
	for _, post := range posts {
		seen := make(map[string]bool)
		for _, m := range pattern.FindAllStringSubmatch(post.Body, -1) {
			sourceURL, captured := m[0], m[1]
			if i := quoteEntity(captured); i >= 0 {
				sourceURL = sourceURL[:len(sourceURL)-len(captured)+i]
				captured = captured[:i]
			}
			if seen[sourceURL] {
				continue
			}
			imp, ok := newAssetImport(post.ID, sourceURL, captured, root)
			if !ok {
				continue
			}
			seen[sourceURL] = true
			imports = append(imports, imp)
		}
	}
	return imports
}

// quoteEntity returns the index of the first escaped quote in s, or -1.
// Inline styles in exports often carry url(&quot;...&quot;).
func quoteEntity(s string) int {
	first := -1
	for _, entity := range []string{"&quot;", "&#34;", "&#39;", "&#039;"} {
		if i := strings.Index(s, entity); i >= 0 && (first < 0 || i < first) {
			first = i
		}
	}
	return first
}

func newAssetImport(postID int, sourceURL, captured string, root AssetRoot) (types.AssetImport, bool) {
	u, err := url.Parse(sourceURL)
	if err != nil || u.Host == "" {
		return types.AssetImport{}, false
	}

	// Query strings and fragments (resize hints, cache busters) are not
	// part of the stored file name.
	if i := strings.IndexAny(captured, "?#"); i >= 0 {
		captured = captured[:i]
	}
	decoded, err := url.PathUnescape(captured)
	if err != nil {
		return types.AssetImport{}, false
	}
	cleaned := path.Clean("/" + decoded)
	if cleaned == "/" || cleaned != "/"+strings.TrimPrefix(decoded, "/") {
		return types.AssetImport{}, false
	}

	return types.AssetImport{
		PostID:       postID,
		SourceURL:    sourceURL,
		Destination:  filepath.Join(root.ImportDir, filepath.FromSlash(cleaned)),
		FeaturedPath: root.SitePath + cleaned,
	}, true
}

// RewriteBody replaces the asset site's upload prefix with the asset root.
func RewriteBody(body, uploadsPrefix, sitePath string) string {
	return strings.ReplaceAll(body, uploadsPrefix, sitePath)
}

// FeaturedImage picks the featured image for a post: the import whose URL is
// the post's thumbnail attachment, otherwise the first import found in the
// post's body. It returns "" when the post has no imports.
func FeaturedImage(post types.Post, imports []types.AssetImport, attachments map[int]string) string {
	var first string
	thumbURL := attachments[post.ThumbnailID]
	for _, imp := range imports {
		if imp.PostID != post.ID {
			continue
		}
		if thumbURL != "" && imp.SourceURL == thumbURL {
			return imp.FeaturedPath
		}
		if first == "" {
			first = imp.FeaturedPath
		}
	}
	return first
}

// AttachmentURLs indexes attachment posts by ID.
func AttachmentURLs(posts []types.Post) map[int]string {
	out := make(map[int]string)
	for _, p := range posts {
		if p.Type == types.PostTypeAttachment && p.AttachmentURL != "" {
			out[p.ID] = p.AttachmentURL
		}
	}
	return out
}
