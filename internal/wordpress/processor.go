// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wordpress

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pdiddy/site-import/internal/download"
	"github.com/pdiddy/site-import/internal/markdown"
	"github.com/pdiddy/site-import/pkg/types"
)

// Recorder receives what a run did. The import ledger implements it.
type Recorder interface {
	RecordEntry(kind, section, slug, path string, outcome markdown.Outcome) error
	RecordAsset(imp types.AssetImport, status types.AssetStatus, cause error) error
}

// AssetDownloader fetches asset imports; *download.Downloader implements it.
type AssetDownloader interface {
	Download(ctx context.Context, imports []types.AssetImport, dryRun, allowOverwrites bool) (download.Result, error)
}

// Report summarizes a processor run.
type Report struct {
	Sections     []string
	Posts        int
	RedirectPath string
	Redirects    int
	Imports      []types.AssetImport
	Download     download.Result
	Written      int
	Skipped      int
	Filtered     int
}

// Options carries the optional collaborators of a Processor.
type Options struct {
	// Filters selects the posts written as Markdown. Nil means
	// DefaultFilters.
	Filters Filters
	// Recorder receives entries and asset outcomes. Nil records nothing.
	Recorder Recorder
	Logger   *slog.Logger
	// Output receives per-item status lines. Nil discards them.
	Output io.Writer
}

// Processor runs the WordPress import: decode, write redirects, compute the
// asset root, extract asset imports, download them, rewrite bodies and write
// Markdown. Any step failing aborts the run.
type Processor struct {
	decoder    ExportDecoder
	redirects  *RedirectWriter
	downloader AssetDownloader
	builder    *markdown.Builder[PostSource]
	filters    Filters
	recorder   Recorder
	logger     *slog.Logger
	out        io.Writer
}

// NewProcessor assembles a processor from explicit collaborators.
func NewProcessor(dec ExportDecoder, rw *RedirectWriter, dl AssetDownloader, b *markdown.Builder[PostSource], opts Options) *Processor {
	if opts.Filters == nil {
		opts.Filters = DefaultFilters()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	return &Processor{
		decoder:    dec,
		redirects:  rw,
		downloader: dl,
		builder:    b,
		filters:    opts.Filters,
		recorder:   opts.Recorder,
		logger:     opts.Logger,
		out:        opts.Output,
	}
}

// NewDefaultProcessor wires the concrete collaborators for settings: the
// gofeed-based decoder, the configured redirect format, an HTTP downloader
// and a Markdown builder writing <ContentDir>/<section>/<slug>.md.
func NewDefaultProcessor(settings types.Settings, opts Options) (*Processor, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	dl := download.NewDownloader(download.NewHTTPFetcher(settings.HTTPConfig), download.Options{
		Workers: settings.DownloadWorkers,
		Timeout: settings.AssetTimeout,
		Output:  opts.Output,
		Logger:  opts.Logger,
	})
	builder := markdown.NewBuilder[PostSource](
		markdown.NewHTMLConverter(""),
		PostTranslator{RequireFeaturedImage: settings.RequireFeaturedImage},
		markdown.YAMLFormatter{},
		markdown.SectionPathGenerator{Root: settings.ContentDir},
	)
	return NewProcessor(NewDecoder(), NewRedirectWriter(FormatterFor(settings.RedirectFormat)), dl, builder, opts), nil
}

// Run executes the import for settings.
func (p *Processor) Run(ctx context.Context, settings types.Settings) (Report, error) {
	var report Report

	if settings.RunDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.RunDeadline)
		defer cancel()
	}

	// 1. Decode.
	posts, err := p.decoder.Posts(settings.ExportsDir)
	if err != nil {
		return report, fmt.Errorf("decoding exports: %w", err)
	}
	report.Sections = posts.Names()
	report.Posts = posts.Len()
	p.logger.Info("decoded exports", "sections", len(report.Sections), "posts", report.Posts)
	if err := p.checkDestinations(posts); err != nil {
		return report, err
	}

	// 2. Redirects.
	report.Redirects = len(Redirects(posts))
	report.RedirectPath, err = p.redirects.WriteRedirects(posts, settings.ResourcesDir)
	if err != nil {
		return report, fmt.Errorf("writing redirects: %w", err)
	}
	p.logger.Info("wrote redirects", "path", report.RedirectPath, "count", report.Redirects)

	// 3. Asset root.
	root := NewAssetRoot(settings)

	// 4. Asset imports.
	all := posts.All()
	report.Imports = ExtractAssetImports(Filters{"type": TypeIs(types.PostTypePost)}.Apply(all), UploadsPattern(settings.AssetSiteURL), root)
	p.logger.Info("extracted asset imports", "count", len(report.Imports), "root", root.SitePath)

	// 5. Download.
	report.Download, err = p.downloader.Download(ctx, report.Imports, settings.SkipDownload, settings.OverwriteAssets)
	if err != nil {
		return report, err
	}
	for _, f := range report.Download.Failures {
		p.logger.Warn("asset download failed", "url", f.URL, "destination", f.Destination, "error", f.Err)
	}
	for _, o := range report.Download.Outcomes {
		if err := p.record(func(r Recorder) error { return r.RecordAsset(o.Import, o.Status, o.Err) }); err != nil {
			return report, err
		}
	}

	// 6 and 7. Rewrite bodies and write Markdown.
	attachments := AttachmentURLs(all)
	prefix := UploadsPrefix(settings.AssetSiteURL)
	for _, section := range posts.Sections() {
		for _, post := range section.Posts {
			if !p.filters.SatisfiesAll(post) {
				report.Filtered++
				continue
			}
			if err := ctx.Err(); err != nil {
				return report, fmt.Errorf("writing content: %w", err)
			}

			src := PostSource{
				SectionName:   section.Name,
				Post:          post,
				FeaturedImage: FeaturedImage(post, report.Imports, attachments),
			}
			src.Post.Body = RewriteBody(post.Body, prefix, root.SitePath)

			path, outcome, err := p.builder.Write(src, settings.OverwriteExisting)
			if err != nil {
				return report, fmt.Errorf("writing %s: %w", describe(post), err)
			}
			switch outcome {
			case markdown.Written:
				report.Written++
				fmt.Fprintf(p.out, "written: %s\n", path)
			case markdown.Skipped:
				report.Skipped++
				fmt.Fprintf(p.out, "skipped: %s (already exists)\n", path)
			}
			if err := p.record(func(r Recorder) error {
				return r.RecordEntry(markdown.EntryPost, section.Name, post.Slug, path, outcome)
			}); err != nil {
				return report, err
			}
		}
	}

	fmt.Fprintf(p.out, "\nContent summary: %d written, %d skipped, %d filtered (posts: %d)\n",
		report.Written, report.Skipped, report.Filtered, report.Posts)
	return report, nil
}

// checkDestinations fails when two posts that pass the filters would be
// written to the same file.
func (p *Processor) checkDestinations(posts types.SectionedPosts) error {
	owners := make(map[string]types.Post)
	for _, section := range posts.Sections() {
		for _, post := range p.filters.Apply(section.Posts) {
			path := p.builder.Path(PostSource{SectionName: section.Name, Post: post})
			if prev, ok := owners[path]; ok {
				return &types.WriteError{
					Path: path,
					Err:  fmt.Errorf("posts %s and %s share a destination", describe(prev), describe(post)),
				}
			}
			owners[path] = post
		}
	}
	return nil
}

func (p *Processor) record(fn func(Recorder) error) error {
	if p.recorder == nil {
		return nil
	}
	if err := fn(p.recorder); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}
