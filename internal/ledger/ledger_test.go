package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/site-import/internal/markdown"
	"github.com/pdiddy/site-import/internal/podcast"
	"github.com/pdiddy/site-import/internal/wordpress"
	"github.com/pdiddy/site-import/pkg/types"
)

var (
	_ wordpress.Recorder    = (*Run)(nil)
	_ podcast.EntryRecorder = (*Run)(nil)
)

// --- test helpers ---

func testSetup(t *testing.T) (*Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), ".site-import")

	store, err := NewStore(types.LedgerConfig{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return store, dir
}

func recordSampleRun(t *testing.T, store *Store) *Run {
	t.Helper()
	ctx := context.Background()
	run, err := store.BeginRun(ctx, KindWordPress)
	if err != nil {
		t.Fatal(err)
	}

	entries := []struct {
		slug    string
		outcome markdown.Outcome
	}{
		{"productivity-apps-for-developers", markdown.Written},
		{"swift-packages", markdown.Skipped},
	}
	for _, e := range entries {
		path := filepath.Join("content", "articles", e.slug+".md")
		if err := run.RecordEntry(markdown.EntryPost, "articles", e.slug, path, e.outcome); err != nil {
			t.Fatal(err)
		}
	}

	imp := types.AssetImport{
		PostID:      1042,
		SourceURL:   "https://leogdion.name/wp-content/uploads/2019/01/toolbox.png",
		Destination: "static/imports/leogdion/2019/01/toolbox.png",
	}
	if err := run.RecordAsset(imp, types.AssetDownloaded, nil); err != nil {
		t.Fatal(err)
	}
	imp.SourceURL = "https://leogdion.name/wp-content/uploads/2019/01/missing.png"
	if err := run.RecordAsset(imp, types.AssetFailed, errors.New("HTTP 404")); err != nil {
		t.Fatal(err)
	}
	return run
}

// --- store tests ---

func TestNewStore_CreatesDatabase(t *testing.T) {
	_, dir := testSetup(t)
	if _, err := os.Stat(filepath.Join(dir, dbFile)); err != nil {
		t.Fatalf("ledger database not created: %v", err)
	}
}

func TestNewStore_Reopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ledger")
	store, err := NewStore(types.LedgerConfig{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	run, err := store.BeginRun(context.Background(), KindPodcast)
	if err != nil {
		t.Fatal(err)
	}
	if err := run.Finish(nil); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = NewStore(types.LedgerConfig{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	runs, err := store.Runs(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Kind != "podcast" {
		t.Fatalf("runs after reopen = %+v, want one podcast run", runs)
	}
}

func TestRun_RecordsCounts(t *testing.T) {
	store, _ := testSetup(t)
	run := recordSampleRun(t, store)
	if err := run.Finish(nil); err != nil {
		t.Fatal(err)
	}

	runs, err := store.Runs(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	got := runs[0]
	if got.Status != StatusSucceeded {
		t.Errorf("status = %q, want %q", got.Status, StatusSucceeded)
	}
	if got.Written != 1 || got.Skipped != 1 {
		t.Errorf("written/skipped = %d/%d, want 1/1", got.Written, got.Skipped)
	}
	if got.Assets != 2 || got.Failed != 1 {
		t.Errorf("assets/failed = %d/%d, want 2/1", got.Assets, got.Failed)
	}
	if got.StartedAt.IsZero() || got.FinishedAt.IsZero() {
		t.Errorf("timestamps not recorded: %+v", got)
	}
}

func TestRun_FinishFailed(t *testing.T) {
	store, _ := testSetup(t)
	run, err := store.BeginRun(context.Background(), KindWordPress)
	if err != nil {
		t.Fatal(err)
	}
	if err := run.Finish(errors.New("decoding articles.xml: unexpected EOF")); err != nil {
		t.Fatal(err)
	}

	runs, err := store.Runs(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if runs[0].Status != StatusFailed {
		t.Errorf("status = %q, want %q", runs[0].Status, StatusFailed)
	}
	if !strings.Contains(runs[0].Error, "unexpected EOF") {
		t.Errorf("error = %q, want run error recorded", runs[0].Error)
	}
}

func TestRuns_NewestFirstWithLimit(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()
	for _, kind := range []string{"wordpress", "podcast", "wordpress"} {
		if _, err := store.BeginRun(ctx, kind); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.Runs(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID <= runs[1].ID {
		t.Errorf("runs not newest first: %d then %d", runs[0].ID, runs[1].ID)
	}
	if runs[0].Status != StatusRunning {
		t.Errorf("unfinished run status = %q, want %q", runs[0].Status, StatusRunning)
	}
}

func TestEntriesAndAssets(t *testing.T) {
	store, _ := testSetup(t)
	run := recordSampleRun(t, store)
	ctx := context.Background()

	entries, err := store.Entries(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Slug != "productivity-apps-for-developers" {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[1].Outcome != string(markdown.Skipped) {
		t.Errorf("second outcome = %q, want skipped", entries[1].Outcome)
	}

	assets, err := store.Assets(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(assets) != 2 {
		t.Fatalf("got %d assets, want 2", len(assets))
	}
	if assets[0].Error != "" {
		t.Errorf("downloaded asset has error %q", assets[0].Error)
	}
	if assets[1].Error != "HTTP 404" || assets[1].PostID != 1042 {
		t.Errorf("failed asset = %+v", assets[1])
	}
}

// --- export tests ---

func TestExport_YAML(t *testing.T) {
	store, dir := testSetup(t)
	run := recordSampleRun(t, store)
	if err := run.Finish(nil); err != nil {
		t.Fatal(err)
	}

	path, err := store.Export(context.Background(), FormatYAML, 0)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "export.yaml") {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var runs []ExportRun
	if err := yaml.Unmarshal(data, &runs); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Kind != "wordpress" {
		t.Fatalf("exported runs = %+v", runs)
	}
	if len(runs[0].Entries) != 2 || len(runs[0].Assets) != 2 {
		t.Errorf("exported %d entries and %d assets, want 2 and 2", len(runs[0].Entries), len(runs[0].Assets))
	}
	if runs[0].RunSummary.Assets != 2 || runs[0].Failed != 1 {
		t.Errorf("exported asset counts = %d/%d, want 2/1", runs[0].RunSummary.Assets, runs[0].Failed)
	}
}

func TestExport_JSON(t *testing.T) {
	store, _ := testSetup(t)
	recordSampleRun(t, store)

	path, err := store.Export(context.Background(), FormatJSON, 0)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var runs []map[string]any
	if err := json.Unmarshal(data, &runs); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0]["status"] != StatusRunning {
		t.Errorf("status = %v, want %q", runs[0]["status"], StatusRunning)
	}
	if runs[0]["asset_count"] != float64(2) {
		t.Errorf("asset_count = %v, want 2", runs[0]["asset_count"])
	}
	if assets, ok := runs[0]["assets"].([]any); !ok || len(assets) != 2 {
		t.Errorf("assets = %v, want 2 records", runs[0]["assets"])
	}
}

func TestExport_UnknownFormat(t *testing.T) {
	store, _ := testSetup(t)
	if _, err := store.Export(context.Background(), "csv", 0); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
