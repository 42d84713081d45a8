// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/internscout/internal/stream"
	"github.com/pdiddy/internscout/pkg/types"
)

// QueryFile is the on-disk representation of a search and the companies it
// returned, written by `internscout search --save`.
type QueryFile struct {
	Query   QueryParams         `yaml:"query"`
	Request types.SearchRequest `yaml:"request"`
	Results []SavedResult       `yaml:"results"`
	Summary QuerySummary        `yaml:"summary"`
}

// SavedResult is one company: the display fields for reading the file,
// and the record exactly as the backend sent it.
type SavedResult struct {
	types.CompanyResult `yaml:",inline"`
	Raw                 string `yaml:"raw,omitempty"`
}

// Companies returns the saved records with their raw JSON restored.
func (qf *QueryFile) Companies() []types.CompanyResult {
	out := make([]types.CompanyResult, len(qf.Results))
	for i, r := range qf.Results {
		rec := r.CompanyResult
		if r.Raw != "" {
			rec.Raw = json.RawMessage(r.Raw)
		}
		out[i] = rec
	}
	return out
}

// QueryParams stores the user's input in a serializable form.
type QueryParams struct {
	City     string `yaml:"city"`
	Industry string `yaml:"industry,omitempty"`
}

// QuerySummary stores stream statistics and a timestamp.
type QuerySummary struct {
	Total           int       `yaml:"total"`
	Malformed       int       `yaml:"malformed"`
	TrailingDropped bool      `yaml:"trailing_dropped,omitempty"`
	Timestamp       time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves the query, the request sent for it, and its results
// to a YAML file.
func WriteQueryFile(path string, q types.SearchQuery, cfg types.SearchConfig, results []types.CompanyResult, stats stream.Stats) error {
	saved := make([]SavedResult, len(results))
	for i, r := range results {
		saved[i] = SavedResult{CompanyResult: r, Raw: string(r.Raw)}
	}
	qf := QueryFile{
		Query:   QueryParams{City: q.City, Industry: q.Industry},
		Request: NewRequestBody(q, cfg),
		Results: saved,
		Summary: QuerySummary{
			Total:           len(results),
			Malformed:       stats.Malformed,
			TrailingDropped: stats.TrailingDropped,
			Timestamp:       time.Now(),
		},
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating query file directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}
