// ABOUTME: Flat-file JSON record store for notes and password-vault entries
// ABOUTME: One file per record type, collections keyed by identity

package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Record is a single note or vault entry: a flat JSON object with reserved
// id, created_at, and updated_at keys. All other fields are free-form; the
// only invariant is that id is unique within an identity's collection.
type Record map[string]any

// ID returns the record's id, or "" if unset.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// clone copies the record. Every record handed out by the store is a clone,
// so callers can read it (JSON encoding included) without holding the store
// lock while a concurrent mutation rewrites the stored copy.
func (r Record) clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Store is a flat-file JSON store: one file on disk holding every identity's
// collection for a single record type (notes or vault entries). The file is
// loaded on first use and rewritten atomically on every mutation.
type Store struct {
	mu     sync.Mutex
	path   string
	loaded bool
	data   map[string][]Record // identity -> records
}

// NewStore creates a store persisted at path, creating parent directories
// if needed.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Store{
		path: path,
		data: make(map[string][]Record),
	}, nil
}

// load reads the backing file if it exists. Caller must hold mu.
func (s *Store) load() error {
	if s.loaded {
		return nil
	}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.path, err)
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		return fmt.Errorf("parsing %s: %w", s.path, err)
	}
	s.loaded = true
	return nil
}

// persist rewrites the backing file atomically. Caller must hold mu.
func (s *Store) persist() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.path, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming %s into place: %w", s.path, err)
	}
	return nil
}

// List returns the identity's records, newest first.
func (s *Store) List(identity string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}

	recs := s.data[identity]
	out := make([]Record, len(recs))
	for i, r := range recs {
		// Reverse so the most recently created comes first.
		out[len(recs)-1-i] = r.clone()
	}
	return out, nil
}

// Create appends a record with a fresh id and timestamps to the identity's
// collection and returns it.
func (s *Store) Create(identity string, fields map[string]any) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	rec := make(Record, len(fields)+3)
	for k, v := range fields {
		rec[k] = v
	}
	rec["id"] = uuid.NewString()
	rec["created_at"] = now
	rec["updated_at"] = now

	s.data[identity] = append(s.data[identity], rec)
	if err := s.persist(); err != nil {
		s.data[identity] = s.data[identity][:len(s.data[identity])-1]
		return nil, err
	}
	return rec.clone(), nil
}

// Update merges fields into the identity's record with the given id,
// preserving id and created_at and bumping updated_at.
// Returns ErrNotFound if no such record exists.
func (s *Store) Update(identity, id string, fields map[string]any) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}

	recs := s.data[identity]
	for i, rec := range recs {
		if rec.ID() != id {
			continue
		}
		// Merge into a copy and swap it in only once persisted, so a failed
		// persist leaves the stored record untouched.
		updated := rec.clone()
		for k, v := range fields {
			if k == "id" || k == "created_at" || k == "updated_at" {
				continue
			}
			updated[k] = v
		}
		updated["updated_at"] = time.Now().UTC().Format(time.RFC3339)

		recs[i] = updated
		if err := s.persist(); err != nil {
			recs[i] = rec
			return nil, err
		}
		return updated.clone(), nil
	}
	return nil, ErrNotFound
}

// Delete removes the identity's record with the given id.
// Returns ErrNotFound if no such record exists.
func (s *Store) Delete(identity, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}

	recs := s.data[identity]
	for i, rec := range recs {
		if rec.ID() != id {
			continue
		}
		remaining := make([]Record, 0, len(recs)-1)
		remaining = append(remaining, recs[:i]...)
		remaining = append(remaining, recs[i+1:]...)

		s.data[identity] = remaining
		if err := s.persist(); err != nil {
			s.data[identity] = recs
			return err
		}
		return nil
	}
	return ErrNotFound
}
