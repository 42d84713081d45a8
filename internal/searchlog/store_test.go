// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package searchlog

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	id1, err := s.Record(ctx, Entry{
		City: "Troy, NY", Domains: []string{"software"}, StartedAt: base,
		Duration: 1500 * time.Millisecond, Results: 4, Malformed: 1, Outcome: OutcomeOK,
		RequesterIP: "10.0.0.1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id1)

	_, err = s.Record(ctx, Entry{
		ID: "fixed-id", City: "Austin", StartedAt: base.Add(time.Minute),
		Outcome: OutcomeFailed, Error: "search backend returned HTTP 500",
	})
	require.NoError(t, err)

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "fixed-id", entries[0].ID)
	assert.Equal(t, OutcomeFailed, entries[0].Outcome)
	assert.Equal(t, "search backend returned HTTP 500", entries[0].Error)

	e := entries[1]
	assert.Equal(t, id1, e.ID)
	assert.Equal(t, "Troy, NY", e.City)
	assert.Equal(t, []string{"software"}, e.Domains)
	assert.Equal(t, 4, e.Results)
	assert.Equal(t, 1, e.Malformed)
	assert.Equal(t, 1500*time.Millisecond, e.Duration)
	assert.Equal(t, "10.0.0.1", e.RequesterIP)
	assert.True(t, base.Equal(e.StartedAt))
}

func TestRecentLimit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := s.Record(ctx, Entry{City: "c", Outcome: OutcomeOK, StartedAt: time.Unix(int64(1000+i), 0)})
		require.NoError(t, err)
	}
	entries, err := s.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, int64(1004), entries[0].StartedAt.Unix())
}

func TestDuplicateIDRejected(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	_, err := s.Record(ctx, Entry{ID: "dup", City: "a", Outcome: OutcomeOK})
	require.NoError(t, err)
	_, err = s.Record(ctx, Entry{ID: "dup", City: "b", Outcome: OutcomeOK})
	assert.Error(t, err)
}

func TestReopenKeepsEntries(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), Entry{City: "Boston", Outcome: OutcomeOK})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(dir)
	require.NoError(t, err)
	defer s2.Close()
	entries, err := s2.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Boston", entries[0].City)
}

func TestExport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	_, err := s.Record(ctx, Entry{City: "Seattle", Domains: []string{"design"}, Outcome: OutcomeOK, Results: 2})
	require.NoError(t, err)

	yamlPath, err := s.ExportYAML(ctx, 0)
	require.NoError(t, err)
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML []Entry
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	require.Len(t, fromYAML, 1)
	assert.Equal(t, "Seattle", fromYAML[0].City)

	jsonPath, err := s.ExportJSON(ctx, 0)
	require.NoError(t, err)
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	var fromJSON []Entry
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	require.Len(t, fromJSON, 1)
	assert.Equal(t, []string{"design"}, fromJSON[0].Domains)
	assert.Equal(t, 2, fromJSON[0].Results)
}
