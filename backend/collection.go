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
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/ttbt-io/cricketkeeper/backend/cricket"
)

// Collection is the in-memory authoritative copy of one kind of record,
// written through to a RecordStore. Put with forceSync=false only marks the
// record dirty; Flush and FlushAll write dirty records.
type Collection[T any] struct {
	kind  Kind
	store RecordStore
	idOf  func(T) string

	mu    sync.RWMutex
	order []string
	items map[string]T
	dirty map[string]bool
}

// NewCollection returns an empty collection. Call Load to fill it.
func NewCollection[T any](kind Kind, store RecordStore, idOf func(T) string) *Collection[T] {
	return &Collection[T]{
		kind:  kind,
		store: store,
		idOf:  idOf,
		items: make(map[string]T),
		dirty: make(map[string]bool),
	}
}

func NewTeams(store RecordStore) *Collection[cricket.Team] {
	return NewCollection(KindTeams, store, func(t cricket.Team) string { return t.ID })
}

func NewMatches(store RecordStore) *Collection[cricket.Match] {
	return NewCollection(KindMatches, store, func(m cricket.Match) string { return m.ID })
}

func NewTournaments(store RecordStore) *Collection[cricket.Tournament] {
	return NewCollection(KindTournaments, store, func(t cricket.Tournament) string { return t.ID })
}

// Load replaces the in-memory copy with the stored records. Records that
// cannot be decoded are skipped.
func (c *Collection[T]) Load(ctx context.Context) error {
	recs, err := c.store.List(ctx, c.kind)
	if err != nil {
		return err
	}
	order := make([]string, 0, len(recs))
	items := make(map[string]T, len(recs))
	for _, rec := range recs {
		var v T
		if err := json.Unmarshal(rec.Data, &v); err != nil {
			log.Printf("[STORE] Warning: skipping %s/%s: %v", c.kind, rec.ID, err)
			continue
		}
		if _, dup := items[rec.ID]; !dup {
			order = append(order, rec.ID)
		}
		items[rec.ID] = v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = order
	c.items = items
	c.dirty = make(map[string]bool)
	return nil
}

// All returns every item in collection order.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[id]
	return v, ok
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

func (c *Collection[T]) record(id string, pos int, v T) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Record{}, fmt.Errorf("encoding %s/%s: %w", c.kind, id, err)
	}
	return Record{ID: id, Pos: pos, Data: data}, nil
}

// ReplaceAll makes items the whole collection, in the given order.
func (c *Collection[T]) ReplaceAll(ctx context.Context, items []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	recs := make([]Record, 0, len(items))
	order := make([]string, 0, len(items))
	next := make(map[string]T, len(items))
	for i, v := range items {
		id := c.idOf(v)
		rec, err := c.record(id, i, v)
		if err != nil {
			return err
		}
		recs = append(recs, rec)
		order = append(order, id)
		next[id] = v
	}
	if err := c.store.ReplaceAll(ctx, c.kind, recs); err != nil {
		return err
	}
	c.order = order
	c.items = next
	c.dirty = make(map[string]bool)
	return nil
}

// Put inserts or updates one item. New items go to the end.
func (c *Collection[T]) Put(ctx context.Context, v T, forceSync bool) error {
	id := c.idOf(v)
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[id]; !ok {
		c.order = append(c.order, id)
	}
	c.items[id] = v
	c.dirty[id] = true
	if !forceSync {
		return nil
	}
	return c.writeLocked(ctx, id)
}

func (c *Collection[T]) writeLocked(ctx context.Context, id string) error {
	pos := 0
	for i, o := range c.order {
		if o == id {
			pos = i
			break
		}
	}
	rec, err := c.record(id, pos, c.items[id])
	if err != nil {
		return err
	}
	if err := c.store.Put(ctx, c.kind, rec); err != nil {
		return err
	}
	delete(c.dirty, id)
	return nil
}

// Flush writes one record if it is dirty.
func (c *Collection[T]) Flush(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty[id] {
		return nil
	}
	if _, ok := c.items[id]; !ok {
		delete(c.dirty, id)
		return fmt.Errorf("%s %s marked dirty but not found", c.kind, id)
	}
	return c.writeLocked(ctx, id)
}

// FlushAll writes every dirty record.
func (c *Collection[T]) FlushAll(ctx context.Context) error {
	c.mu.RLock()
	ids := make([]string, 0, len(c.dirty))
	for id := range c.dirty {
		ids = append(ids, id)
	}
	c.mu.RUnlock()

	for _, id := range ids {
		if err := c.Flush(ctx, id); err != nil {
			return fmt.Errorf("failed to flush %s %s: %w", c.kind, id, err)
		}
	}
	return nil
}

// Dirty returns the number of records not yet written.
func (c *Collection[T]) Dirty() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.dirty)
}
