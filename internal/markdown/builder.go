// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markdown writes content files: Markdown converted from HTML,
// preceded by a YAML front matter block.
package markdown

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/site-import/pkg/types"
)

// Source is anything that can be rendered to a content file.
type Source interface {
	Section() string
	Slug() string
	HTML() string
}

// Translator derives the front matter value for a source. body is the
// converted Markdown, available for fields such as a description.
type Translator[S Source] interface {
	Translate(src S, body string) (any, error)
}

// TranslatorFunc adapts a function to the Translator interface.
type TranslatorFunc[S Source] func(src S, body string) (any, error)

func (f TranslatorFunc[S]) Translate(src S, body string) (any, error) { return f(src, body) }

// PathGenerator maps a section and slug to a destination file.
type PathGenerator interface {
	Path(section, slug string) string
}

// SectionPathGenerator writes <Root>/<section>/<slug>.md.
type SectionPathGenerator struct {
	Root string
}

func (g SectionPathGenerator) Path(section, slug string) string {
	return filepath.Join(g.Root, section, slug+".md")
}

// Outcome reports what Write did.
type Outcome string

const (
	Written Outcome = "written"
	Skipped Outcome = "skipped"
)

// Entry kinds recorded with each outcome.
const (
	EntryPost    = "post"
	EntryEpisode = "episode"
)

// Builder writes sources of type S as Markdown files.
type Builder[S Source] struct {
	converter  Converter
	translator Translator[S]
	formatter  Formatter
	paths      PathGenerator
}

// NewBuilder wires a builder from its collaborators.
func NewBuilder[S Source](c Converter, t Translator[S], f Formatter, p PathGenerator) *Builder[S] {
	return &Builder[S]{converter: c, translator: t, formatter: f, paths: p}
}

// Path returns the file src is written to.
func (b *Builder[S]) Path(src S) string {
	return b.paths.Path(src.Section(), src.Slug())
}

// Write renders src to its destination and returns the path. An existing
// file is left untouched unless overwrite is set. Conversion, translation
// and formatting all happen before anything is written, so a failure never
// leaves a partial file behind.
func (b *Builder[S]) Write(src S, overwrite bool) (string, Outcome, error) {
	path := b.Path(src)

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return path, Skipped, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return path, "", &types.WriteError{Path: path, Err: err}
		}
	}

	body, err := b.converter.Convert(src.HTML())
	if err != nil {
		return path, "", &types.ExtractionError{Item: src.Slug(), Err: fmt.Errorf("converting body: %w", err)}
	}

	fm, err := b.translator.Translate(src, body)
	if err != nil {
		return path, "", &types.ExtractionError{Item: src.Slug(), Err: err}
	}

	header, err := b.formatter.Format(fm)
	if err != nil {
		return path, "", &types.ExtractionError{Item: src.Slug(), Err: err}
	}

	if err := writeFile(path, []byte(Document(header, body))); err != nil {
		return path, "", err
	}
	return path, Written, nil
}

// writeFile writes data through a temp file in the destination directory
// and renames it into place.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &types.WriteError{Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".content-*.tmp")
	if err != nil {
		return &types.WriteError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &types.WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &types.WriteError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return &types.WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &types.WriteError{Path: path, Err: err}
	}
	return nil
}
