// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package podcast

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/pdiddy/site-import/internal/markdown"
	"github.com/pdiddy/site-import/pkg/types"
)

// EpisodesSection is the content subdirectory episodes are written to.
const EpisodesSection = "episodes"

// EpisodeSource adapts an episode to markdown.Source.
type EpisodeSource struct {
	Episode types.Episode
}

func (s EpisodeSource) Section() string { return EpisodesSection }
func (s EpisodeSource) Slug() string    { return s.Episode.Slug }
func (s EpisodeSource) HTML() string    { return s.Episode.Content }

// EpisodeFrontMatter is the front matter written for an episode.
type EpisodeFrontMatter struct {
	Title       string    `yaml:"title"`
	Date        time.Time `yaml:"date"`
	Slug        string    `yaml:"slug"`
	Episode     int       `yaml:"episode"`
	Summary     string    `yaml:"summary"`
	Duration    string    `yaml:"duration"`
	AudioURL    string    `yaml:"audioURL"`
	Image       string    `yaml:"image"`
	PodcastID   string    `yaml:"podcastID"`
	YouTubeID   string    `yaml:"youtubeID,omitempty"`
	VideoLength string    `yaml:"videoDuration,omitempty"`
}

// TranslateEpisode builds the front matter of an episode.
func TranslateEpisode(src EpisodeSource, _ string) (any, error) {
	ep := src.Episode
	fm := EpisodeFrontMatter{
		Title:     ep.Title,
		Date:      ep.Date.UTC(),
		Slug:      ep.Slug,
		Episode:   ep.EpisodeNo,
		Summary:   ep.Summary,
		Duration:  clock(ep.Duration),
		AudioURL:  ep.AudioURL,
		Image:     ep.ImageURL,
		PodcastID: ep.PodcastID,
		YouTubeID: ep.Video.ID,
	}
	if ep.Video.Duration > 0 {
		fm.VideoLength = clock(ep.Video.Duration)
	}
	return fm, nil
}

// clock renders d as H:MM:SS, or M:SS under an hour.
func clock(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	h, m, s := secs/3600, secs/60%60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// EntryRecorder receives the outcome of each written episode. The import
// ledger implements it.
type EntryRecorder interface {
	RecordEntry(kind, section, slug, path string, outcome markdown.Outcome) error
}

// WriterOptions carries the optional collaborators of a Writer.
type WriterOptions struct {
	Converter markdown.Converter
	Recorder  EntryRecorder
	Output    io.Writer
	Logger    *slog.Logger
}

// WriteResult summarizes a Writer run.
type WriteResult struct {
	Latest  int
	Written int
	Skipped int
	// Older counts episodes left out because they predate the latest
	// episode on disk.
	Older int
}

// Writer writes episodes to <contentDir>/episodes/<slug>.md.
type Writer struct {
	contentDir string
	builder    *markdown.Builder[EpisodeSource]
	recorder   EntryRecorder
	out        io.Writer
	logger     *slog.Logger
}

// NewWriter returns a writer rooted at contentDir.
func NewWriter(contentDir string, opts WriterOptions) *Writer {
	if opts.Converter == nil {
		opts.Converter = markdown.NewHTMLConverter("")
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Writer{
		contentDir: contentDir,
		builder: markdown.NewBuilder[EpisodeSource](
			opts.Converter,
			markdown.TranslatorFunc[EpisodeSource](TranslateEpisode),
			markdown.YAMLFormatter{},
			markdown.SectionPathGenerator{Root: contentDir},
		),
		recorder: opts.Recorder,
		out:      opts.Output,
		logger:   opts.Logger,
	}
}

// Write writes episodes. Unless includeMissingPrevious or overwrite is set,
// only episodes numbered above the latest episode already on disk are
// considered, so older episodes deleted on purpose do not come back.
func (w *Writer) Write(episodes []types.Episode, overwrite, includeMissingPrevious bool) (WriteResult, error) {
	var result WriteResult

	latest, err := LatestEpisode(filepath.Join(w.contentDir, EpisodesSection))
	if err != nil {
		return result, err
	}
	result.Latest = latest
	w.logger.Debug("latest episode on disk", "episode", latest)

	for _, ep := range episodes {
		if !includeMissingPrevious && !overwrite && ep.EpisodeNo <= latest {
			result.Older++
			continue
		}

		path, outcome, err := w.builder.Write(EpisodeSource{Episode: ep}, overwrite)
		if err != nil {
			return result, fmt.Errorf("writing episode %d: %w", ep.EpisodeNo, err)
		}
		switch outcome {
		case markdown.Written:
			result.Written++
			fmt.Fprintf(w.out, "written: %s\n", path)
		case markdown.Skipped:
			result.Skipped++
			fmt.Fprintf(w.out, "skipped: %s (already exists)\n", path)
		}
		if w.recorder != nil {
			if err := w.recorder.RecordEntry(markdown.EntryEpisode, EpisodesSection, ep.Slug, path, outcome); err != nil {
				return result, fmt.Errorf("recording run: %w", err)
			}
		}
	}

	fmt.Fprintf(w.out, "\nEpisode summary: %d written, %d skipped, %d older than episode %d\n",
		result.Written, result.Skipped, result.Older, result.Latest)
	return result, nil
}

// LatestEpisode returns the highest episode number in the front matter of
// the Markdown files in dir. A missing directory yields 0.
func LatestEpisode(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", dir, err)
	}

	latest := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		n, err := episodeNumber(filepath.Join(dir, e.Name()))
		if err != nil {
			return 0, err
		}
		latest = max(latest, n)
	}
	return latest, nil
}

func episodeNumber(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var fm struct {
		Episode int `yaml:"episode"`
	}
	if _, err := frontmatter.Parse(f, &fm); err != nil {
		return 0, &types.DecodeError{Source: path, Err: err}
	}
	return fm.Episode, nil
}
