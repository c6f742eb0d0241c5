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
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/ttbt-io/cricketkeeper/backend/commentary"
	"github.com/ttbt-io/cricketkeeper/backend/cricket"
	"github.com/ttbt-io/cricketkeeper/backend/persistence"
	"github.com/ttbt-io/cricketkeeper/backend/stats"
)

func (a *App) handleInit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	d := persistence.Dataset{
		Teams:       a.teams.All(),
		Matches:     a.matches.All(),
		Tournaments: a.tournaments.All(),
	}
	if d.Empty() {
		a.debugf("Store is empty, serving seed data")
		d = persistence.Seed(a.now())
	}
	d.Normalize()
	writeJSON(w, http.StatusOK, d)
}

// replaceAll decodes, validates and stores a whole collection.
func replaceAll[T any](w http.ResponseWriter, r *http.Request, c *Collection[T], validate func([]T) error, prepare func([]T)) bool {
	var items []T
	if !decodeBody(w, r, maxCollectionBody, &items) {
		return false
	}
	if items == nil {
		items = []T{}
	}
	if err := validate(items); err != nil {
		http.Error(w, "Bad Request: "+err.Error(), http.StatusBadRequest)
		return false
	}
	if prepare != nil {
		prepare(items)
	}
	if err := c.ReplaceAll(r.Context(), items); err != nil {
		storeError(w, err)
		return false
	}
	log.Printf("[STORE] %s replaced %d records by %s", c.kind, len(items), maskEmail(getUserID(r)))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	return true
}

func (a *App) handleTeams(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, a.teams.All())
	case http.MethodPost:
		a.access.requireWriter(func(w http.ResponseWriter, r *http.Request) {
			if replaceAll(w, r, a.teams, ValidateTeams, nil) {
				a.registry.Invalidate()
				a.cards.Purge()
				a.hubs.ReloadAll()
			}
		})(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (a *App) handleTournaments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, a.tournaments.All())
	case http.MethodPost:
		a.access.requireWriter(func(w http.ResponseWriter, r *http.Request) {
			if replaceAll(w, r, a.tournaments, ValidateTournaments, nil) {
				a.registry.Invalidate()
			}
		})(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// sameContent compares two versions of a match, ignoring the bookkeeping
// fields.
func sameContent(x, y cricket.Match) bool {
	x.Revision, y.Revision = "", ""
	x.RecentActions, y.RecentActions = nil, nil
	jx, err := json.Marshal(x)
	if err != nil {
		return false
	}
	jy, err := json.Marshal(y)
	if err != nil {
		return false
	}
	return bytes.Equal(jx, jy)
}

// reviseMatches gives a new revision to every match that differs from the
// stored copy, so that scorers working on the old one get a conflict.
func (a *App) reviseMatches(matches []cricket.Match) {
	for i := range matches {
		m := &matches[i]
		old, ok := a.matches.Get(m.ID)
		if ok && len(m.RecentActions) == 0 {
			m.RecentActions = old.RecentActions
		}
		if ok && sameContent(old, *m) {
			m.Revision = old.Revision
			continue
		}
		m.Revision = uuid.NewString()
	}
}

func (a *App) handleMatches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listMatches(w, r)
	case http.MethodPost:
		a.access.requireWriter(func(w http.ResponseWriter, r *http.Request) {
			if replaceAll(w, r, a.matches, ValidateMatches, a.reviseMatches) {
				a.cards.Purge()
				a.hubs.ReloadAll()
			}
		})(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (a *App) listMatches(w http.ResponseWriter, r *http.Request) {
	limit, offset, query := parsePagination(r)
	all := a.registry.ListMatches(query)
	total := len(all)

	page := make([]MatchMeta, 0)
	if offset < total {
		page = all[offset:min(offset+limit, total)]
	}

	respData := struct {
		Data []MatchMeta `json:"data"`
		Meta struct {
			Total  int `json:"total"`
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
		} `json:"meta"`
	}{
		Data: page,
	}
	respData.Meta.Total = total
	respData.Meta.Offset = offset
	respData.Meta.Limit = limit

	response, err := json.Marshal(respData)
	if err != nil {
		log.Printf("Internal Server Error during JSON Marshal: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	etag := generateETag(response)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.Write(response)
}

// withMatch resolves the {id} of a GET route to a stored match.
func (a *App) withMatch(next func(http.ResponseWriter, *http.Request, cricket.Match)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		m, ok := a.matches.Get(r.PathValue("id"))
		if !ok {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		next(w, r, m)
	}
}

func (a *App) withTournament(next func(http.ResponseWriter, *http.Request, cricket.Tournament)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		t, ok := a.tournaments.Get(r.PathValue("id"))
		if !ok {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		next(w, r, t)
	}
}

func (a *App) handleMatch(w http.ResponseWriter, r *http.Request, m cricket.Match) {
	writeJSON(w, http.StatusOK, m)
}

func (a *App) handleActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	matchID := r.PathValue("id")
	userID := getUserID(r)

	var batch ActionBatch
	if !decodeBody(w, r, maxActionBody, &batch) {
		return
	}
	actions, err := ValidateActions(batch.Actions)
	if err != nil {
		log.Printf("Invalid actions payload from user %s: %v", maskEmail(userID), err)
		http.Error(w, "Bad Request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if _, ok := a.matches.Get(matchID); !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	// Serialize through Hub
	reply := make(chan HubResponse, 1)
	ok := a.hubs.Submit(matchID, HubRequest{
		Type:    ReqTypeAction,
		UserID:  userID,
		Batch:   batch,
		Actions: actions,
		Reply:   reply,
	})
	if !ok {
		hubBusyResponse(w, retryAfterAction)
		return
	}
	select {
	case resp := <-reply:
		if resp.Err != nil {
			actionError(w, resp)
			return
		}
		writeJSON(w, http.StatusOK, resp.Result)
	case <-r.Context().Done():
	}
}

func actionError(w http.ResponseWriter, resp HubResponse) {
	err := resp.Err
	switch {
	case errors.Is(err, ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":    "Conflict: " + err.Error(),
			"revision": resp.Revision,
		})
	case errors.Is(err, cricket.ErrWrongPhase), errors.Is(err, cricket.ErrInvalidAction), errors.Is(err, cricket.ErrMatchOver):
		http.Error(w, "Bad Request: "+err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
	case errors.Is(err, errHubClosed):
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
	default:
		storeError(w, err)
	}
}

func (a *App) handleState(w http.ResponseWriter, r *http.Request, m cricket.Match) {
	writeJSON(w, http.StatusOK, Summarize(m, a.registry.Rosters(m)))
}

func (a *App) handleScorecard(w http.ResponseWriter, r *http.Request, m cricket.Match) {
	sc := a.cards.Scorecard(m, a.registry.Rosters(m))
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := sc.WriteText(w); err != nil {
			log.Printf("Error writing scorecard %s: %v", m.ID, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (a *App) handleAwards(w http.ResponseWriter, r *http.Request, m cricket.Match) {
	writeJSON(w, http.StatusOK, a.cards.Awards(m, a.registry.Rosters(m)))
}

func (a *App) handleAdvice(w http.ResponseWriter, r *http.Request, m cricket.Match) {
	text := a.commentary.Advice(r.Context(), m, a.registry.Rosters(m))
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (a *App) handleReport(w http.ResponseWriter, r *http.Request, m cricket.Match) {
	if m.Status != cricket.StatusCompleted {
		http.Error(w, "Bad Request: match is not completed", http.StatusBadRequest)
		return
	}
	winner := commentary.NoWinner
	if m.WinnerTeamID != "" {
		winner = a.registry.Rosters(m).TeamName(m.WinnerTeamID)
	}
	text := a.commentary.Report(r.Context(), m, winner)
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (a *App) handleTable(w http.ResponseWriter, r *http.Request, t cricket.Tournament) {
	writeJSON(w, http.StatusOK, stats.PointsTable(t, a.matches.All(), a.registry.AllRosters()))
}

func (a *App) handleLeaders(w http.ResponseWriter, r *http.Request, t cricket.Tournament) {
	limit := stats.DefaultLeaders
	if l := r.URL.Query().Get("limit"); l != "" {
		val, err := strconv.Atoi(l)
		if err != nil || val < 1 || val > 100 {
			http.Error(w, "Bad Request: invalid limit", http.StatusBadRequest)
			return
		}
		limit = val
	}
	writeJSON(w, http.StatusOK, stats.TournamentLeaders(t, a.matches.All(), a.registry.AllRosters(), limit))
}

func (a *App) handleCareer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.PathValue("id")
	known := false
	for _, t := range a.teams.All() {
		if _, ok := t.Player(id); ok {
			known = true
			break
		}
	}
	if !known {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, stats.PlayerCareer(id, a.matches.All(), a.registry.AllRosters()))
}

func (a *App) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	rep := a.metrics.Report()
	rep.Teams = a.teams.Len()
	rep.Matches = a.matches.Len()
	rep.Tournaments = a.tournaments.Len()
	rep.LiveHubs = a.hubs.Len()
	writeJSON(w, http.StatusOK, rep)
}

func (a *App) handleMe(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	allowed, msg := a.access.IsAllowed(userID)
	writeJSON(w, http.StatusOK, map[string]any{
		"id":      userID,
		"allowed": allowed,
		"message": msg,
		"admin":   a.access.IsAdmin(userID),
	})
}
