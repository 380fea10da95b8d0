// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// DecodeError reports a malformed export or feed, or an item missing one of
// the fields every post needs (title, link, publish date, GUID).
type DecodeError struct {
	Source string
	Item   string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Item != "" {
		return fmt.Sprintf("decoding %s (item %q): %v", e.Source, e.Item, e.Err)
	}
	return fmt.Sprintf("decoding %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// MissingFieldError reports required metadata absent on a post or episode.
type MissingFieldError struct {
	// Entity names the post or episode, e.g. a title or slug.
	Entity string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", e.Entity, e.Field)
}

// WriteError reports a filesystem failure while writing output.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ExtractionError reports a failure building front matter or converting a
// body. It often wraps a MissingFieldError.
type ExtractionError struct {
	Item string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.Item, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// DownloadError reports one asset that could not be fetched. These are
// collected and never abort a batch.
type DownloadError struct {
	URL         string
	Destination string
	Err         error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("downloading %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// NoMatchError reports a podcast episode without a video, or a video without
// an episode. It aborts the import.
type NoMatchError struct {
	Title string
	// Missing is "video" or "episode".
	Missing string
}

func (e *NoMatchError) Error() string {
	if e.Missing == "episode" {
		return fmt.Sprintf("missing episode for video %q", e.Title)
	}
	return fmt.Sprintf("missing video for episode %q", e.Title)
}
