// Package cache persists the minimal per-owner event records used as an
// offline view and a secondary existence check. The cache is advisory, not
// authoritative: any problem reading it degrades to "no data", while write
// failures are surfaced because losing the log of created events matters.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"calassist/internal"
)

type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(owner string) string {
	return filepath.Join(s.dir, owner+"_events.json")
}

// Load returns the cached records for owner. Missing, empty or corrupt files
// all yield an empty list, never an error.
func (s *Store) Load(owner string) []internal.EventRecord {
	data, err := os.ReadFile(s.path(owner))
	if err != nil {
		return nil
	}

	var records []internal.EventRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil
	}
	return records
}

// Save overwrites the owner's cache with exactly the given records. No
// merging happens here; callers supply the complete desired list.
func (s *Store) Save(owner string, records []internal.EventRecord) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("cache: creating data dir: %w", err)
	}
	if records == nil {
		records = []internal.EventRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: encoding records: %w", err)
	}
	if err := os.WriteFile(s.path(owner), data, 0o600); err != nil {
		return fmt.Errorf("cache: writing %s: %w", s.path(owner), err)
	}
	return nil
}

// Upsert replaces any record sharing the new record's unique key, then
// appends. The cache never holds two rows for the same key.
func (s *Store) Upsert(owner string, rec internal.EventRecord) error {
	records := s.Load(owner)
	kept := records[:0]
	for _, r := range records {
		if r.UniqueKey != rec.UniqueKey {
			kept = append(kept, r)
		}
	}
	kept = append(kept, rec)
	return s.Save(owner, kept)
}

// Remove drops the record with the given key, if present.
func (s *Store) Remove(owner, uniqueKey string) error {
	records := s.Load(owner)
	kept := records[:0]
	for _, r := range records {
		if r.UniqueKey != uniqueKey {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	return s.Save(owner, kept)
}
