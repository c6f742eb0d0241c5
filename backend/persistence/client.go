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

// Package persistence loads and saves the application data either from a
// local directory or from the server, selected by an explicit mode.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/ttbt-io/cricketkeeper/backend/cricket"
)

// Mode selects where the data lives.
type Mode string

const (
	ModeLocal   Mode = "LOCAL"
	ModeBackend Mode = "BACKEND"
)

func (m Mode) Valid() bool {
	return m == ModeLocal || m == ModeBackend
}

// ParseMode accepts "local" or "backend" in any case.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToUpper(strings.TrimSpace(s))); m {
	case ModeLocal, ModeBackend:
		return m, nil
	}
	return "", fmt.Errorf("unknown storage mode %q", s)
}

// Config is the explicit client configuration. An empty Mode means the
// persisted flag decides, defaulting to LOCAL.
type Config struct {
	Mode Mode
}

var ErrNoRemote = errors.New("no backend configured")

// Client routes loads and saves to the active source. When a backend load
// fails the client logs an alert and stays on LOCAL for the rest of the
// session. Nothing is retried.
type Client struct {
	local  *Local
	remote Source

	mu   sync.Mutex
	mode Mode
}

// NewClient returns a Client. remote may be nil, in which case BACKEND mode
// is unavailable.
func NewClient(cfg Config, local *Local, remote Source) (*Client, error) {
	mode := cfg.Mode
	if mode == "" {
		saved, err := local.ReadMode()
		if err != nil {
			return nil, err
		}
		mode = saved
	}
	if mode == "" {
		mode = ModeLocal
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown storage mode %q", mode)
	}
	return &Client{local: local, remote: remote, mode: mode}, nil
}

// Mode returns the active mode.
func (c *Client) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Client) source() Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeBackend && c.remote != nil {
		return c.remote
	}
	return c.local
}

// Load returns all three collections from the active source.
func (c *Client) Load(ctx context.Context) (Dataset, error) {
	if c.Mode() != ModeBackend {
		return c.local.Load(ctx)
	}
	if c.remote == nil {
		log.Printf("[PERSISTENCE] ALERT: %v. Switching to local storage.", ErrNoRemote)
		c.fallBack()
		return c.local.Load(ctx)
	}
	d, err := c.remote.Load(ctx)
	if err != nil {
		log.Printf("[PERSISTENCE] ALERT: Failed to connect to backend: %v. Switching to local storage.", err)
		c.fallBack()
		return c.local.Load(ctx)
	}
	return d, nil
}

func (c *Client) fallBack() {
	c.mu.Lock()
	c.mode = ModeLocal
	c.mu.Unlock()
	if err := c.local.WriteMode(ModeLocal); err != nil {
		log.Printf("[PERSISTENCE] Failed to save storage mode: %v", err)
	}
}

// SetMode persists the new mode and reloads every collection from it.
func (c *Client) SetMode(ctx context.Context, m Mode) (Dataset, error) {
	if !m.Valid() {
		return Dataset{}, fmt.Errorf("unknown storage mode %q", m)
	}
	if m == ModeBackend && c.remote == nil {
		return Dataset{}, ErrNoRemote
	}
	if err := c.local.WriteMode(m); err != nil {
		return Dataset{}, err
	}
	c.mu.Lock()
	c.mode = m
	c.mu.Unlock()
	return c.Load(ctx)
}

func (c *Client) SaveTeams(ctx context.Context, teams []cricket.Team) error {
	return c.source().SaveTeams(ctx, teams)
}

func (c *Client) SaveMatches(ctx context.Context, matches []cricket.Match) error {
	return c.source().SaveMatches(ctx, matches)
}

func (c *Client) SaveTournaments(ctx context.Context, tournaments []cricket.Tournament) error {
	return c.source().SaveTournaments(ctx, tournaments)
}
