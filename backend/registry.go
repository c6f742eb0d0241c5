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
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ttbt-io/cricketkeeper/backend/cricket"
	"github.com/ttbt-io/cricketkeeper/backend/search"
)

// MatchMeta is the indexed summary of a match used by the match list.
type MatchMeta struct {
	ID             string              `json:"id"`
	TournamentID   string              `json:"tournamentId,omitempty"`
	TournamentName string              `json:"tournamentName,omitempty"`
	HomeTeamID     string              `json:"homeTeamId"`
	AwayTeamID     string              `json:"awayTeamId"`
	Home           string              `json:"home"`
	Away           string              `json:"away"`
	Venue          string              `json:"venue"`
	Date           string              `json:"date"`
	Format         cricket.Format      `json:"format"`
	Status         cricket.MatchStatus `json:"status"`
	Result         string              `json:"result,omitempty"`
	Revision       string              `json:"revision,omitempty"`
}

// Registry answers match list queries. Summaries are cached by match id and
// revision; Invalidate drops them after a team or tournament rename.
type Registry struct {
	matches     *Collection[cricket.Match]
	teams       *Collection[cricket.Team]
	tournaments *Collection[cricket.Tournament]
	meta        *lru.Cache[string, MatchMeta]
}

func NewRegistry(matches *Collection[cricket.Match], teams *Collection[cricket.Team], tournaments *Collection[cricket.Tournament]) *Registry {
	cache, _ := lru.New[string, MatchMeta](5000)
	return &Registry{matches: matches, teams: teams, tournaments: tournaments, meta: cache}
}

// Invalidate drops every cached summary.
func (r *Registry) Invalidate() {
	r.meta.Purge()
}

// Rosters returns the squads of both sides of m.
func (r *Registry) Rosters(m cricket.Match) cricket.Rosters {
	var teams []cricket.Team
	for _, id := range []string{m.HomeTeamID, m.AwayTeamID} {
		if t, ok := r.teams.Get(id); ok {
			teams = append(teams, t)
		}
	}
	return cricket.NewRosters(teams...)
}

// AllRosters returns every known squad.
func (r *Registry) AllRosters() cricket.Rosters {
	return cricket.NewRosters(r.teams.All()...)
}

func (r *Registry) summarize(m cricket.Match) MatchMeta {
	key := m.ID + "@" + m.Revision
	if meta, ok := r.meta.Get(key); ok {
		return meta
	}
	rosters := r.Rosters(m)
	meta := MatchMeta{
		ID:           m.ID,
		TournamentID: m.TournamentID,
		HomeTeamID:   m.HomeTeamID,
		AwayTeamID:   m.AwayTeamID,
		Home:         rosters.TeamName(m.HomeTeamID),
		Away:         rosters.TeamName(m.AwayTeamID),
		Venue:        m.Venue,
		Date:         m.Date,
		Format:       m.Format,
		Status:       m.Status,
		Revision:     m.Revision,
	}
	if t, ok := r.tournaments.Get(m.TournamentID); ok {
		meta.TournamentName = t.Name
	}
	if m.Result != nil {
		meta.Result = m.Result.Describe(rosters.TeamName)
	}
	r.meta.Add(key, meta)
	return meta
}

// ListMatches returns the summaries matching query, newest first.
func (r *Registry) ListMatches(query string) []MatchMeta {
	q := search.Parse(query)
	for i, t := range q.Terms {
		q.Terms[i] = strings.ToLower(t)
	}
	for i, f := range q.Filters {
		if f.Key != "date" {
			q.Filters[i].Value = strings.ToLower(f.Value)
		}
	}

	out := make([]MatchMeta, 0)
	for _, m := range r.matches.All() {
		meta := r.summarize(m)
		if matchesQuery(meta, q) {
			out = append(out, meta)
		}
	}
	slices.SortStableFunc(out, func(a, b MatchMeta) int {
		return cmp.Compare(b.Date, a.Date)
	})
	return out
}

func containsLower(s, substrLower string) bool {
	return strings.Contains(strings.ToLower(s), substrLower)
}

func matchesQuery(m MatchMeta, q search.Query) bool {
	for _, term := range q.Terms {
		if !containsLower(m.Home, term) && !containsLower(m.Away, term) &&
			!containsLower(m.Venue, term) && !containsLower(m.TournamentName, term) {
			return false
		}
	}
	for _, f := range q.Filters {
		ok := true
		switch f.Key {
		case "team":
			ok = containsLower(m.Home, f.Value) || containsLower(m.Away, f.Value) ||
				strings.EqualFold(m.HomeTeamID, f.Value) || strings.EqualFold(m.AwayTeamID, f.Value)
		case "home":
			ok = containsLower(m.Home, f.Value)
		case "away":
			ok = containsLower(m.Away, f.Value)
		case "venue":
			ok = containsLower(m.Venue, f.Value)
		case "status":
			ok = strings.EqualFold(string(m.Status), f.Value)
		case "format":
			ok = strings.EqualFold(string(m.Format), f.Value)
		case "tournament":
			ok = strings.EqualFold(m.TournamentID, f.Value) || containsLower(m.TournamentName, f.Value)
		case "date":
			ok = search.MatchDate(m.Date, f)
		}
		if !ok {
			return false
		}
	}
	return true
}
