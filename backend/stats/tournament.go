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

package stats

import (
	"cmp"
	"slices"

	"github.com/ttbt-io/cricketkeeper/backend/cricket"
)

const (
	PointsForWin = 2
	PointsForTie = 1

	// DefaultLeaders is the length of the tournament leader boards.
	DefaultLeaders = 5
)

// Standing is one row of a points table.
type Standing struct {
	TeamID string `json:"teamId"`
	Name   string `json:"name"`
	Played int    `json:"played"`
	Won    int    `json:"won"`
	Lost   int    `json:"lost"`
	Tied   int    `json:"tied"`
	Points int    `json:"points"`
}

// TournamentMatches returns the completed matches that belong to t, either by
// their tournament id or by being listed in t.MatchIDs.
func TournamentMatches(t cricket.Tournament, matches []cricket.Match) []cricket.Match {
	var out []cricket.Match
	for _, m := range matches {
		if m.Status != cricket.StatusCompleted {
			continue
		}
		if m.TournamentID == t.ID || slices.Contains(t.MatchIDs, m.ID) {
			out = append(out, m)
		}
	}
	return out
}

// PointsTable ranks the tournament's teams by points, then wins. A win is
// worth two points; a match without a winner gives each side one. Teams
// level on both keep their tournament order.
func PointsTable(t cricket.Tournament, matches []cricket.Match, r cricket.Rosters) []Standing {
	table := make([]Standing, len(t.TeamIDs))
	idx := make(map[string]int, len(t.TeamIDs))
	for i, id := range t.TeamIDs {
		table[i] = Standing{TeamID: id, Name: r.TeamName(id)}
		idx[id] = i
	}
	row := func(id string) *Standing {
		if i, ok := idx[id]; ok {
			return &table[i]
		}
		return nil
	}

	for _, m := range TournamentMatches(t, matches) {
		home, away := row(m.HomeTeamID), row(m.AwayTeamID)
		for _, s := range []*Standing{home, away} {
			if s != nil {
				s.Played++
			}
		}
		if m.WinnerTeamID == "" {
			for _, s := range []*Standing{home, away} {
				if s != nil {
					s.Tied++
					s.Points += PointsForTie
				}
			}
			continue
		}
		if w := row(m.WinnerTeamID); w != nil {
			w.Won++
			w.Points += PointsForWin
		}
		if l := row(m.Opponent(m.WinnerTeamID)); l != nil {
			l.Lost++
		}
	}

	slices.SortStableFunc(table, func(a, b Standing) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(b.Won, a.Won)
	})
	return table
}

// Leader is one entry of a leader board.
type Leader struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Value    int    `json:"value"`
}

// Leaders holds the top run scorers and wicket takers of a tournament.
type Leaders struct {
	Runs    []Leader `json:"runs"`
	Wickets []Leader `json:"wickets"`
}

// TournamentLeaders sums runs and bowler wickets over the tournament's
// completed matches and returns the top limit of each. Players on equal
// totals keep the order in which they first appeared.
func TournamentLeaders(t cricket.Tournament, matches []cricket.Match, r cricket.Rosters, limit int) Leaders {
	if limit <= 0 {
		limit = DefaultLeaders
	}
	runs := newBoard(r)
	wickets := newBoard(r)
	for _, m := range TournamentMatches(t, matches) {
		for _, in := range m.Innings {
			a := ReplayInnings(in, r)
			for _, b := range a.Batting() {
				runs.add(b.PlayerID, b.Runs)
			}
			for _, b := range a.Bowling() {
				wickets.add(b.PlayerID, b.Wickets)
			}
		}
	}
	return Leaders{Runs: runs.top(limit), Wickets: wickets.top(limit)}
}

type board struct {
	rosters cricket.Rosters
	rows    []Leader
	idx     map[string]int
}

func newBoard(r cricket.Rosters) *board {
	return &board{rosters: r, idx: make(map[string]int)}
}

func (b *board) add(id string, v int) {
	i, ok := b.idx[id]
	if !ok {
		i = len(b.rows)
		b.idx[id] = i
		b.rows = append(b.rows, Leader{PlayerID: id, Name: b.rosters.PlayerName(id)})
	}
	b.rows[i].Value += v
}

func (b *board) top(n int) []Leader {
	rows := slices.Clone(b.rows)
	slices.SortStableFunc(rows, func(x, y Leader) int {
		return cmp.Compare(y.Value, x.Value)
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}
