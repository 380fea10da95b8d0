// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markdown

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/site-import/pkg/types"
)

type testSource struct {
	section, slug, html string
	image               string
}

func (s testSource) Section() string { return s.section }
func (s testSource) Slug() string    { return s.slug }
func (s testSource) HTML() string    { return s.html }

type testFrontMatter struct {
	Title         string `yaml:"title"`
	FeaturedImage string `yaml:"featuredImage,omitempty"`
}

func requireImage(src testSource, _ string) (any, error) {
	if src.image == "" {
		return nil, &types.MissingFieldError{Entity: src.slug, Field: "featuredImage"}
	}
	return testFrontMatter{Title: src.slug, FeaturedImage: src.image}, nil
}

func newTestBuilder(root string, t TranslatorFunc[testSource]) *Builder[testSource] {
	return NewBuilder[testSource](NewHTMLConverter(""), t, YAMLFormatter{}, SectionPathGenerator{Root: root})
}

func TestBuilder_Write(t *testing.T) {
	root := t.TempDir()
	b := newTestBuilder(root, requireImage)

	src := testSource{section: "articles", slug: "hello", html: "<p>Hello <strong>world</strong></p>", image: "/media/a.png"}
	path, outcome, err := b.Write(src, false)
	require.NoError(t, err)
	assert.Equal(t, Written, outcome)
	assert.Equal(t, filepath.Join(root, "articles", "hello.md"), path)
	assert.Equal(t, path, b.Path(src))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: hello\nfeaturedImage: /media/a.png\n---\n\nHello **world**\n", string(data))
}

func TestBuilder_DoesNotOverwrite(t *testing.T) {
	root := t.TempDir()
	b := newTestBuilder(root, requireImage)
	path := filepath.Join(root, "articles", "hello.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("hand edited"), 0o644))

	src := testSource{section: "articles", slug: "hello", html: "<p>new</p>", image: "/a.png"}

	_, outcome, err := b.Write(src, false)
	require.NoError(t, err)
	assert.Equal(t, Skipped, outcome)
	data, _ := os.ReadFile(path)
	assert.Equal(t, "hand edited", string(data))

	_, outcome, err = b.Write(src, true)
	require.NoError(t, err)
	assert.Equal(t, Written, outcome)
	data, _ = os.ReadFile(path)
	assert.Contains(t, string(data), "new")
}

func TestBuilder_MissingFeaturedImage(t *testing.T) {
	root := t.TempDir()
	b := newTestBuilder(root, requireImage)

	_, _, err := b.Write(testSource{section: "articles", slug: "no-image", html: "<p>x</p>"}, false)
	require.Error(t, err)

	var extErr *types.ExtractionError
	require.ErrorAs(t, err, &extErr)
	var missing *types.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "featuredImage", missing.Field)

	_, statErr := os.Stat(filepath.Join(root, "articles"))
	assert.True(t, os.IsNotExist(statErr), "nothing may be written on failure")
}

func TestBuilder_ConverterFailure(t *testing.T) {
	root := t.TempDir()
	boom := errors.New("boom")
	b := NewBuilder[testSource](
		ConverterFunc(func(string) (string, error) { return "", boom }),
		TranslatorFunc[testSource](requireImage),
		YAMLFormatter{},
		SectionPathGenerator{Root: root},
	)

	_, _, err := b.Write(testSource{section: "s", slug: "x", image: "/a.png"}, false)
	var extErr *types.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.ErrorIs(t, err, boom)
}

func TestBuilder_UnwritableDestination(t *testing.T) {
	root := t.TempDir()
	// A file where the section directory should be.
	require.NoError(t, os.WriteFile(filepath.Join(root, "articles"), nil, 0o644))

	b := newTestBuilder(root, requireImage)
	_, _, err := b.Write(testSource{section: "articles", slug: "x", html: "<p>x</p>", image: "/a.png"}, false)

	var writeErr *types.WriteError
	require.ErrorAs(t, err, &writeErr)
}

func TestDocument(t *testing.T) {
	assert.Equal(t, "---\na: 1\n---\n\nbody\n", Document("a: 1", "body"))
	assert.Equal(t, "---\na: 1\n---\n\nbody\n", Document("a: 1\n", "body"))
}
