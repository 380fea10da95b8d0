// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wordpress

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/site-import/pkg/types"
)

// RedirectFormatter serializes redirects into a file format understood by a
// host or site generator.
type RedirectFormatter interface {
	// FileName is the name of the file written into the redirect directory.
	FileName() string
	Format(redirects []types.Redirect) ([]byte, error)
}

// NetlifyFormatter writes a Netlify _redirects file with permanent
// redirects, one per line.
type NetlifyFormatter struct{}

func (NetlifyFormatter) FileName() string { return "_redirects" }

func (NetlifyFormatter) Format(redirects []types.Redirect) ([]byte, error) {
	var buf bytes.Buffer
	for _, r := range redirects {
		fmt.Fprintf(&buf, "%s %s 301\n", r.From, r.To)
	}
	return buf.Bytes(), nil
}

// YAMLFormatter writes the redirects as a YAML list of from/to pairs.
type YAMLFormatter struct{}

func (YAMLFormatter) FileName() string { return "redirects.yaml" }

func (YAMLFormatter) Format(redirects []types.Redirect) ([]byte, error) {
	if redirects == nil {
		redirects = []types.Redirect{}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(redirects); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatterFor returns the formatter registered under name. Unknown names
// fall back to Netlify.
func FormatterFor(name string) RedirectFormatter {
	if name == types.RedirectYAML {
		return YAMLFormatter{}
	}
	return NetlifyFormatter{}
}

// RedirectWriter persists old-link to new-path mappings for decoded posts.
type RedirectWriter struct {
	formatter RedirectFormatter
}

// NewRedirectWriter returns a writer using f.
func NewRedirectWriter(f RedirectFormatter) *RedirectWriter {
	return &RedirectWriter{formatter: f}
}

// Redirects computes the mapping for every eligible post. A post is eligible
// when it is of type "post" and its link parses to a path below the site
// root. Mappings that would point a path at itself are dropped.
func Redirects(posts types.SectionedPosts) []types.Redirect {
	var out []types.Redirect
	seen := make(map[string]bool)
	for _, section := range posts.Sections() {
		for _, p := range section.Posts {
			if p.Type != types.PostTypePost {
				continue
			}
			from := oldPath(p.Link)
			to := withSlashes(section.Name + "/" + p.Slug)
			if from == "" || from == to || seen[from] {
				continue
			}
			seen[from] = true
			out = append(out, types.Redirect{From: from, To: to})
		}
	}
	return out
}

// WriteRedirects writes the redirect file into dir, creating it when
// needed, and returns the file path.
func (w *RedirectWriter) WriteRedirects(posts types.SectionedPosts, dir string) (string, error) {
	data, err := w.formatter.Format(Redirects(posts))
	if err != nil {
		return "", fmt.Errorf("formatting redirects: %w", err)
	}

	path := filepath.Join(dir, w.formatter.FileName())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &types.WriteError{Path: dir, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &types.WriteError{Path: path, Err: err}
	}
	return path, nil
}

func withSlashes(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return "/"
	}
	return "/" + p + "/"
}
