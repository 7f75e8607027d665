// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package feedback persists human allocation edits in an embedded
// BadgerDB journal.
//
// Every edit a case worker makes to an engine allocation is a lesson for
// the policy model. The journal is append-only: entries are keyed
// feedback/<run_id>/<recipient_id>/<entry_id> so repeated edits for the
// same recipient are all retained, and a training run consumes the full
// set.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
// This package follows Apache 2.0 guidelines for attribution and usage.
package feedback

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const keyPrefix = "feedback/"

// Config holds configuration for the journal's BadgerDB instance.
type Config struct {
	// Path is the directory for BadgerDB files.
	// Required for persistent databases. Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability. Feedback is
	// training data; losing entries on crash loses lessons, so the
	// production default is true.
	SyncWrites bool

	// Logger is the logger for BadgerDB operations.
	// If nil, BadgerDB's internal logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns the production configuration for a journal at the
// given path.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns configuration optimized for testing.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Entry is one journaled human edit, flattened the way a training run
// consumes it: the case features, the group constraints the allocation ran
// under, and the human's final value as the training target.
type Entry struct {
	EntryID     string    `json:"entry_id"`
	Timestamp   time.Time `json:"timestamp"`
	RunID       string    `json:"run_id"`
	RecipientID string    `json:"recipient_id"`

	GroupID       int     `json:"group_id"`
	MaxBudget     float64 `json:"max_budget"`
	MinAllocation float64 `json:"min_allocation"`
	MaxAllocation float64 `json:"max_allocation"`
	MinCases      int     `json:"min_cases"`

	AISuggested     float64 `json:"ai_suggested"`
	AmountAllocated float64 `json:"amount_allocated"`

	// Features holds the flattened feature columns exactly as submitted.
	Features json.RawMessage `json:"features,omitempty"`
}

// Store is the badger-backed feedback journal. Safe for concurrent use;
// badger provides the transaction isolation.
type Store struct {
	db *badger.DB
}

// Open creates and opens a journal with the given configuration.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent journal")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create journal directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open feedback journal: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append journals one edit and returns its assigned entry ID. The caller
// supplies everything except EntryID and Timestamp, which are set here.
func (s *Store) Append(entry Entry) (string, error) {
	if entry.RunID == "" || entry.RecipientID == "" {
		return "", errors.New("run_id and recipient_id are required")
	}

	entry.EntryID = uuid.NewString()
	entry.Timestamp = time.Now().UTC()

	value, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("marshal feedback entry: %w", err)
	}

	key := fmt.Sprintf("%s%s/%s/%s", keyPrefix, entry.RunID, entry.RecipientID, entry.EntryID)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return "", fmt.Errorf("write feedback entry: %w", err)
	}
	return entry.EntryID, nil
}

// Count returns the number of journaled edits across all runs.
func (s *Store) Count() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count feedback entries: %w", err)
	}
	return count, nil
}

// ListRun returns every journaled edit for one allocation run, in key
// order.
func (s *Store) ListRun(runID string) ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(keyPrefix + runID + "/")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var entry Entry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list feedback entries for run %s: %w", runID, err)
	}
	return entries, nil
}
