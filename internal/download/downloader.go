// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download fetches extracted media assets to local paths.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/site-import/internal/httputil"
	"github.com/pdiddy/site-import/pkg/types"
)

const (
	defaultWorkers = 4
	defaultTimeout = 30 * time.Second
)

// Fetcher retrieves the body stored at a URL. The caller closes it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPFetcher fetches over HTTP, retrying rate limits and gateway errors.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher builds a fetcher from the shared HTTP settings.
func NewHTTPFetcher(cfg types.HTTPConfig) *HTTPFetcher {
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: cfg.Timeout},
		UserAgent: cfg.UserAgent,
	}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	return httputil.Get(ctx, f.Client, url, f.UserAgent)
}

// Options tunes a Downloader.
type Options struct {
	// Workers bounds concurrent downloads; zero means 4.
	Workers int
	// Timeout bounds each asset; zero means 30s.
	Timeout time.Duration
	// Output receives one status line per asset and a batch summary.
	// Nil discards them.
	Output io.Writer
	Logger *slog.Logger
}

// Outcome is the result for one asset import.
type Outcome struct {
	Import types.AssetImport
	Status types.AssetStatus
	Err    error
}

// Result holds the outcome of a batch. Outcomes are in input order.
type Result struct {
	Downloaded int
	Skipped    int
	Planned    int
	Failed     int
	Outcomes   []Outcome
	Failures   []*types.DownloadError
}

// Total returns the number of distinct destinations processed.
func (r Result) Total() int {
	return r.Downloaded + r.Skipped + r.Planned + r.Failed
}

// HasFailures reports whether any asset failed.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// Downloader fetches asset imports with a bounded worker pool.
type Downloader struct {
	fetcher Fetcher
	opts    Options
}

// NewDownloader returns a downloader using f.
func NewDownloader(f Fetcher, opts Options) *Downloader {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Downloader{fetcher: f, opts: opts}
}

// job is one distinct destination. Imports sharing a destination are
// fetched once, from the first URL without a query string when there is one,
// otherwise from the first URL.
type job struct {
	imp     types.AssetImport
	members []int
	status  types.AssetStatus
	err     error
}

// Download fetches every import to its destination.
//
// With dryRun set no request is made and nothing is written; destinations
// are still validated and reported as planned, or skipped when they exist
// and allowOverwrites is false. Failures of individual assets are collected
// in the result and never stop the batch. The returned error is non-nil
// only when ctx ends before the batch completes.
func (d *Downloader) Download(ctx context.Context, imports []types.AssetImport, dryRun, allowOverwrites bool) (Result, error) {
	jobs := group(imports)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Workers)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			j.status, j.err = d.process(gctx, j.imp, dryRun, allowOverwrites)
			return nil
		})
	}
	_ = g.Wait()

	result := d.collect(imports, jobs)
	d.report(result, jobs)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("downloading assets: %w", err)
	}
	return result, nil
}

func group(imports []types.AssetImport) []*job {
	var jobs []*job
	byDest := make(map[string]*job)
	for i, imp := range imports {
		if j, ok := byDest[imp.Destination]; ok && imp.Destination != "" {
			j.members = append(j.members, i)
			if hasQuery(j.imp.SourceURL) && !hasQuery(imp.SourceURL) {
				j.imp = imp
			}
			continue
		}
		j := &job{imp: imp, members: []int{i}}
		byDest[imp.Destination] = j
		jobs = append(jobs, j)
	}
	return jobs
}

// hasQuery reports whether rawURL carries a query string, such as the
// resize hints WordPress appends to image URLs.
func hasQuery(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && (u.RawQuery != "" || u.ForceQuery)
}

func (d *Downloader) process(ctx context.Context, imp types.AssetImport, dryRun, allowOverwrites bool) (types.AssetStatus, error) {
	if err := ctx.Err(); err != nil {
		return types.AssetFailed, err
	}

	exists, err := validateDestination(imp.Destination)
	if err != nil {
		return types.AssetFailed, err
	}
	if exists && !allowOverwrites {
		return types.AssetSkipped, nil
	}
	if dryRun {
		return types.AssetPlanned, nil
	}

	ctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	d.opts.Logger.Debug("downloading asset", "url", imp.SourceURL, "destination", imp.Destination)
	if err := d.fetchTo(ctx, imp.SourceURL, imp.Destination); err != nil {
		return types.AssetFailed, err
	}
	return types.AssetDownloaded, nil
}

// validateDestination checks that dest names a file and reports whether it
// already exists.
func validateDestination(dest string) (bool, error) {
	if dest == "" {
		return false, errors.New("empty destination")
	}
	base := filepath.Base(dest)
	if base == "." || base == string(filepath.Separator) {
		return false, fmt.Errorf("destination %q has no file name", dest)
	}
	info, err := os.Stat(dest)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, err
	case info.IsDir():
		return true, fmt.Errorf("destination %s is a directory", dest)
	}
	return true, nil
}

// fetchTo downloads url into dest through a temporary file renamed on
// success.
func (d *Downloader) fetchTo(ctx context.Context, url, dest string) error {
	body, err := d.fetcher.Fetch(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".download-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func (d *Downloader) collect(imports []types.AssetImport, jobs []*job) Result {
	result := Result{Outcomes: make([]Outcome, len(imports))}
	for _, j := range jobs {
		switch j.status {
		case types.AssetDownloaded:
			result.Downloaded++
		case types.AssetSkipped:
			result.Skipped++
		case types.AssetPlanned:
			result.Planned++
		default:
			j.status = types.AssetFailed
			result.Failed++
			result.Failures = append(result.Failures, &types.DownloadError{
				URL:         j.imp.SourceURL,
				Destination: j.imp.Destination,
				Err:         j.err,
			})
		}
		for _, i := range j.members {
			result.Outcomes[i] = Outcome{Import: imports[i], Status: j.status, Err: j.err}
		}
	}
	return result
}

func (d *Downloader) report(result Result, jobs []*job) {
	w := d.opts.Output
	for _, j := range jobs {
		switch j.status {
		case types.AssetDownloaded:
			fmt.Fprintf(w, "downloaded: %s\n", j.imp.Destination)
		case types.AssetSkipped:
			fmt.Fprintf(w, "skipped: %s (already exists)\n", j.imp.Destination)
		case types.AssetPlanned:
			fmt.Fprintf(w, "planned: %s\n", j.imp.Destination)
		case types.AssetFailed:
			fmt.Fprintf(w, "failed:  %s (%v)\n", j.imp.SourceURL, j.err)
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d planned, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Planned, result.Failed, result.Total())
}
