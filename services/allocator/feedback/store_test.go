// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package feedback

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}

func TestAppend_AssignsEntryID(t *testing.T) {
	store := openTestStore(t)

	id, err := store.Append(Entry{
		RunID:           "run-1",
		RecipientID:     "CASE-001",
		MaxBudget:       5000,
		MinAllocation:   100,
		MaxAllocation:   1000,
		AISuggested:     420,
		AmountAllocated: 500,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	entries, err := store.ListRun("run-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].EntryID)
	assert.Equal(t, "CASE-001", entries[0].RecipientID)
	assert.Equal(t, 500.0, entries[0].AmountAllocated)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestAppend_RejectsMissingIdentity(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Append(Entry{RecipientID: "CASE-001"})
	require.Error(t, err)

	_, err = store.Append(Entry{RunID: "run-1"})
	require.Error(t, err)
}

func TestAppend_RepeatedEditsAllRetained(t *testing.T) {
	store := openTestStore(t)

	// Same recipient edited twice in the same run; the journal is
	// append-only, so both lessons survive.
	for _, human := range []float64{300, 450} {
		_, err := store.Append(Entry{
			RunID:           "run-2",
			RecipientID:     "CASE-007",
			AmountAllocated: human,
		})
		require.NoError(t, err)
	}

	entries, err := store.ListRun("run-2")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestCount_SpansRuns(t *testing.T) {
	store := openTestStore(t)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Zero(t, count, "fresh journal must report empty so training can be refused")

	for _, run := range []string{"run-a", "run-a", "run-b"} {
		_, err := store.Append(Entry{RunID: run, RecipientID: "CASE-001"})
		require.NoError(t, err)
	}

	count, err = store.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestListRun_PreservesFeatures(t *testing.T) {
	store := openTestStore(t)

	features := json.RawMessage(`{"Case_Status":1,"Family_Size":4}`)
	_, err := store.Append(Entry{
		RunID:       "run-3",
		RecipientID: "CASE-002",
		Features:    features,
	})
	require.NoError(t, err)

	entries, err := store.ListRun("run-3")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.JSONEq(t, string(features), string(entries[0].Features))

	other, err := store.ListRun("run-4")
	require.NoError(t, err)
	assert.Empty(t, other)
}
