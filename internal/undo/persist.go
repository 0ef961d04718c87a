package undo

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Save writes the batch stack to path so an undo survives a restart. Unlike
// loads, write failures are returned: silently losing the undo log would
// strand remote events.
func (l *Log) Save(path string) error {
	l.mu.Lock()
	batches := make([]Batch, len(l.batches))
	copy(batches, l.batches)
	l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("undo: creating dir: %w", err)
	}
	data, err := json.MarshalIndent(batches, "", "  ")
	if err != nil {
		return fmt.Errorf("undo: encoding log: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("undo: writing %s: %w", path, err)
	}
	return nil
}

// LoadLog reads a saved batch stack. A missing, empty or corrupt file is an
// empty log, never an error.
func LoadLog(path string, output io.Writer) *Log {
	l := NewLog(output)
	data, err := os.ReadFile(path)
	if err != nil {
		return l
	}
	var batches []Batch
	if err := json.Unmarshal(data, &batches); err != nil {
		return l
	}
	l.batches = batches
	return l
}

// RecentKeys persists the ordered (identity key, remote id) pairs of every
// event created by this application, as a JSON array of 2-element arrays.
type RecentKeys struct {
	Path string
}

// Load reads the pairs, degrading to an empty list on any read problem.
func (r RecentKeys) Load() [][2]string {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil
	}
	var pairs [][2]string
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil
	}
	return pairs
}

// Save overwrites the file with the given pairs.
func (r RecentKeys) Save(pairs [][2]string) error {
	if err := os.MkdirAll(filepath.Dir(r.Path), 0o700); err != nil {
		return fmt.Errorf("undo: creating dir: %w", err)
	}
	if pairs == nil {
		pairs = [][2]string{}
	}
	data, err := json.Marshal(pairs)
	if err != nil {
		return fmt.Errorf("undo: encoding recent keys: %w", err)
	}
	if err := os.WriteFile(r.Path, data, 0o600); err != nil {
		return fmt.Errorf("undo: writing %s: %w", r.Path, err)
	}
	return nil
}

// Append loads, appends and saves in one step.
func (r RecentKeys) Append(pairs ...[2]string) error {
	return r.Save(append(r.Load(), pairs...))
}
