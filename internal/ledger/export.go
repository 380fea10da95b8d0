// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ExportRun holds a run with everything it recorded.
type ExportRun struct {
	RunSummary `yaml:",inline"`
	Entries    []EntryRecord `json:"entries" yaml:"entries"`
	Assets     []AssetRecord `json:"assets" yaml:"assets"`
}

// Export writes the most recent runs (all when limit <= 0) to
// <dir>/export.yaml or <dir>/export.json and returns the path.
func (s *Store) Export(ctx context.Context, format string, limit int) (string, error) {
	runs, err := s.exportRuns(ctx, limit)
	if err != nil {
		return "", err
	}

	var data []byte
	switch format {
	case FormatYAML, "":
		format = FormatYAML
		data, err = yaml.Marshal(runs)
		if err != nil {
			return "", fmt.Errorf("marshaling YAML: %w", err)
		}
	case FormatJSON:
		data, err = json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshaling JSON: %w", err)
		}
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}

	path := filepath.Join(s.dir, "export."+format)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

func (s *Store) exportRuns(ctx context.Context, limit int) ([]ExportRun, error) {
	runs, err := s.Runs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	out := make([]ExportRun, len(runs))
	for i, r := range runs {
		out[i].RunSummary = r
		if out[i].Entries, err = s.Entries(ctx, r.ID); err != nil {
			return nil, err
		}
		if out[i].Assets, err = s.Assets(ctx, r.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}
