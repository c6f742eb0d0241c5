// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/c2FmZQ/storage"
)

// Kind names a collection.
type Kind string

const (
	KindTeams       Kind = "teams"
	KindMatches     Kind = "matches"
	KindTournaments Kind = "tournaments"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Record is one opaque JSON document addressed by id. Pos keeps the order
// in which the collection was last written.
type Record struct {
	ID   string          `json:"id"`
	Pos  int             `json:"pos"`
	Data json.RawMessage `json:"data"`
}

// RecordStore persists the three collections.
type RecordStore interface {
	// List returns all records of a kind ordered by Pos.
	List(ctx context.Context, kind Kind) ([]Record, error)
	Get(ctx context.Context, kind Kind, id string) (Record, error)
	// Put inserts or overwrites one record.
	Put(ctx context.Context, kind Kind, rec Record) error
	// ReplaceAll makes recs the whole collection.
	ReplaceAll(ctx context.Context, kind Kind, recs []Record) error
	Close() error
}

func sortRecords(recs []Record) {
	slices.SortFunc(recs, func(a, b Record) int {
		if c := cmp.Compare(a.Pos, b.Pos); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// FileStore keeps one file per record under <dataDir>/<kind>/.
type FileStore struct {
	DataDir string
	storage *storage.Storage
	mu      sync.Map // Kind -> *sync.RWMutex
}

// NewFileStore creates a FileStore. The kind directories are created if
// needed.
func NewFileStore(dataDir string, s *storage.Storage) (*FileStore, error) {
	for _, k := range []Kind{KindTeams, KindMatches, KindTournaments} {
		if err := os.MkdirAll(filepath.Join(dataDir, string(k)), 0700); err != nil {
			return nil, err
		}
	}
	return &FileStore{DataDir: dataDir, storage: s}, nil
}

func (fs *FileStore) lock(kind Kind) *sync.RWMutex {
	m, _ := fs.mu.LoadOrStore(kind, &sync.RWMutex{})
	return m.(*sync.RWMutex)
}

func recordFile(kind Kind, id string) string {
	return filepath.Join(string(kind), url.PathEscape(id)+".json")
}

// ids returns the record ids found on disk for kind.
func (fs *FileStore) ids(kind Kind) ([]string, error) {
	files, err := os.ReadDir(filepath.Join(fs.DataDir, string(kind)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not read %s directory: %w", kind, err)
	}
	var ids []string
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		id, err := url.PathUnescape(strings.TrimSuffix(f.Name(), ".json"))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (fs *FileStore) List(ctx context.Context, kind Kind) ([]Record, error) {
	mu := fs.lock(kind)
	mu.RLock()
	defer mu.RUnlock()

	ids, err := fs.ids(kind)
	if err != nil {
		return nil, err
	}
	recs := make([]Record, 0, len(ids))
	for _, id := range ids {
		var rec Record
		if err := fs.storage.ReadDataFile(recordFile(kind, id), &rec); err != nil {
			log.Printf("[STORE] Warning: could not load %s/%s: %v", kind, id, err)
			continue
		}
		recs = append(recs, rec)
	}
	sortRecords(recs)
	return recs, nil
}

func (fs *FileStore) Get(ctx context.Context, kind Kind, id string) (Record, error) {
	mu := fs.lock(kind)
	mu.RLock()
	defer mu.RUnlock()

	var rec Record
	if err := fs.storage.ReadDataFile(recordFile(kind, id), &rec); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("ReadDataFile: %w", err)
	}
	return rec, nil
}

func (fs *FileStore) Put(ctx context.Context, kind Kind, rec Record) error {
	mu := fs.lock(kind)
	mu.Lock()
	defer mu.Unlock()

	if err := fs.storage.SaveDataFile(recordFile(kind, rec.ID), &rec); err != nil {
		return fmt.Errorf("storage.SaveDataFile: %w", err)
	}
	return nil
}

func (fs *FileStore) ReplaceAll(ctx context.Context, kind Kind, recs []Record) error {
	mu := fs.lock(kind)
	mu.Lock()
	defer mu.Unlock()

	existing, err := fs.ids(kind)
	if err != nil {
		return err
	}
	keep := make(map[string]bool, len(recs))
	for i := range recs {
		rec := recs[i]
		rec.Pos = i
		if err := fs.storage.SaveDataFile(recordFile(kind, rec.ID), &rec); err != nil {
			return fmt.Errorf("storage.SaveDataFile: %w", err)
		}
		keep[rec.ID] = true
	}
	for _, id := range existing {
		if keep[id] {
			continue
		}
		if err := os.Remove(filepath.Join(fs.DataDir, recordFile(kind, id))); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("could not remove %s/%s: %w", kind, id, err)
		}
	}
	return nil
}

func (fs *FileStore) Close() error {
	return nil
}
