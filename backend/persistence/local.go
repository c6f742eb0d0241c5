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

package persistence

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/c2FmZQ/storage"

	"github.com/ttbt-io/cricketkeeper/backend/cricket"
)

const (
	teamsFile       = "teams.json"
	matchesFile     = "matches.json"
	tournamentsFile = "tournaments.json"
	modeFile        = "storage_mode.json"
)

// Source loads and saves the three collections.
type Source interface {
	Load(ctx context.Context) (Dataset, error)
	SaveTeams(ctx context.Context, teams []cricket.Team) error
	SaveMatches(ctx context.Context, matches []cricket.Match) error
	SaveTournaments(ctx context.Context, tournaments []cricket.Tournament) error
}

// Local keeps each collection in one file in a local directory. A missing
// collection loads the seed data.
type Local struct {
	storage *storage.Storage
	now     func() time.Time
	mu      sync.Mutex
}

// NewLocal returns a Local store backed by s.
func NewLocal(s *storage.Storage) *Local {
	return &Local{storage: s, now: time.Now}
}

func (l *Local) read(name string, obj any) (bool, error) {
	if err := l.storage.ReadDataFile(name, obj); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("ReadDataFile(%s): %w", name, err)
	}
	return true, nil
}

func (l *Local) Load(ctx context.Context) (Dataset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	seed := Seed(l.now())
	var d Dataset
	ok, err := l.read(teamsFile, &d.Teams)
	if err != nil {
		return Dataset{}, err
	}
	if !ok {
		d.Teams = seed.Teams
	}
	if ok, err = l.read(matchesFile, &d.Matches); err != nil {
		return Dataset{}, err
	}
	if !ok {
		d.Matches = seed.Matches
	}
	if ok, err = l.read(tournamentsFile, &d.Tournaments); err != nil {
		return Dataset{}, err
	}
	if !ok {
		d.Tournaments = seed.Tournaments
	}
	d.Normalize()
	return d, nil
}

func (l *Local) save(name string, obj any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.storage.SaveDataFile(name, obj); err != nil {
		return fmt.Errorf("storage.SaveDataFile(%s): %w", name, err)
	}
	return nil
}

func (l *Local) SaveTeams(ctx context.Context, teams []cricket.Team) error {
	return l.save(teamsFile, teams)
}

func (l *Local) SaveMatches(ctx context.Context, matches []cricket.Match) error {
	return l.save(matchesFile, matches)
}

func (l *Local) SaveTournaments(ctx context.Context, tournaments []cricket.Tournament) error {
	return l.save(tournamentsFile, tournaments)
}

type modeRecord struct {
	Mode Mode `json:"mode"`
}

// ReadMode returns the persisted storage mode, or the empty mode when none
// was saved.
func (l *Local) ReadMode() (Mode, error) {
	var rec modeRecord
	ok, err := l.read(modeFile, &rec)
	if err != nil || !ok {
		return "", err
	}
	if !rec.Mode.Valid() {
		log.Printf("[PERSISTENCE] Ignoring unknown storage mode %q", rec.Mode)
		return "", nil
	}
	return rec.Mode, nil
}

// WriteMode persists the storage mode flag.
func (l *Local) WriteMode(m Mode) error {
	return l.save(modeFile, modeRecord{Mode: m})
}
