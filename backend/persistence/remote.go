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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/ttbt-io/cricketkeeper/backend/cricket"
)

// Remote talks to the server's collection endpoints.
type Remote struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// NewRemote returns a Remote for the server at baseURL, e.g.
// "http://localhost:8080". A nil client uses a pooled cleanhttp client.
func NewRemote(baseURL string, client *http.Client) *Remote {
	if client == nil {
		client = cleanhttp.DefaultPooledClient()
		client.Timeout = 30 * time.Second
	}
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		now:     time.Now,
	}
}

// Load fetches all collections. A server with no teams and no matches
// yields the seed data.
func (r *Remote) Load(ctx context.Context) (Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/api/init", nil)
	if err != nil {
		return Dataset{}, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return Dataset{}, fmt.Errorf("GET /api/init: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Dataset{}, fmt.Errorf("GET /api/init: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var d Dataset
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return Dataset{}, fmt.Errorf("decoding /api/init: %w", err)
	}
	if d.Empty() {
		return Seed(r.now()), nil
	}
	d.Normalize()
	return d, nil
}

func (r *Remote) post(ctx context.Context, path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func (r *Remote) SaveTeams(ctx context.Context, teams []cricket.Team) error {
	return r.post(ctx, "/api/teams", teams)
}

func (r *Remote) SaveMatches(ctx context.Context, matches []cricket.Match) error {
	return r.post(ctx, "/api/matches", matches)
}

func (r *Remote) SaveTournaments(ctx context.Context, tournaments []cricket.Tournament) error {
	return r.post(ctx, "/api/tournaments", tournaments)
}
