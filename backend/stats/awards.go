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
	"github.com/ttbt-io/cricketkeeper/backend/cricket"
)

// Points used to rank the player of the match.
const (
	PointsPerRun    = 1
	PointsPerWicket = 25
	PointsPerCatch  = 10
)

type BatterAward struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	TeamID   string `json:"teamId"`
	Runs     int    `json:"runs"`
	Balls    int    `json:"balls"`
}

type BowlerAward struct {
	PlayerID string  `json:"playerId"`
	Name     string  `json:"name"`
	TeamID   string  `json:"teamId"`
	Wickets  int     `json:"wickets"`
	Runs     int     `json:"runs"`
	Economy  float64 `json:"economy"`
}

type MVPAward struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	TeamID   string `json:"teamId"`
	Points   int    `json:"points"`
}

// Awards are the post-match honours. Any of them may be nil.
type Awards struct {
	BestBatter *BatterAward `json:"bestBatter,omitempty"`
	BestBowler *BowlerAward `json:"bestBowler,omitempty"`
	MVP        *MVPAward    `json:"mvp,omitempty"`
}

// ComputeAwards picks the best batter (most runs), the best bowler (most
// wickets, then the lower economy) and, when the match has a winner, the
// most valuable player of the winning side. Ties go to whoever appears first.
func ComputeAwards(m cricket.Match, r cricket.Rosters) Awards {
	t := NewTracker(r)
	t.Sync(m)
	return t.Awards(m)
}

// Awards computes the awards from the accumulated figures. Call Sync with m
// first.
func (t *Tracker) Awards(m cricket.Match) Awards {
	var aw Awards
	for i, in := range m.Innings {
		a := t.Innings(i)
		if a == nil {
			break
		}
		for _, b := range a.Batting() {
			if aw.BestBatter == nil || b.Runs > aw.BestBatter.Runs {
				aw.BestBatter = &BatterAward{
					PlayerID: b.PlayerID,
					Name:     b.Name,
					TeamID:   in.BattingTeamID,
					Runs:     b.Runs,
					Balls:    b.Balls,
				}
			}
		}
		for _, b := range a.Bowling() {
			best := aw.BestBowler
			if best == nil || b.Wickets > best.Wickets || (b.Wickets == best.Wickets && b.Economy < best.Economy) {
				aw.BestBowler = &BowlerAward{
					PlayerID: b.PlayerID,
					Name:     b.Name,
					TeamID:   in.BowlingTeamID,
					Wickets:  b.Wickets,
					Runs:     b.Runs,
					Economy:  b.Economy,
				}
			}
		}
	}
	aw.MVP = t.mvp(m)
	return aw
}

func (t *Tracker) mvp(m cricket.Match) *MVPAward {
	if m.WinnerTeamID == "" {
		return nil
	}
	points := make(map[string]int)
	for i := range m.Innings {
		a := t.Innings(i)
		if a == nil {
			break
		}
		for _, b := range a.Batting() {
			points[b.PlayerID] += b.Runs * PointsPerRun
		}
		for _, b := range a.Bowling() {
			points[b.PlayerID] += b.Wickets * PointsPerWicket
		}
	}
	for _, in := range m.Innings {
		for _, b := range in.Balls {
			if b.IsWicket && (b.WicketType == cricket.WicketCaught || b.WicketType == cricket.WicketStumped) && b.FielderID != "" {
				points[b.FielderID] += PointsPerCatch
			}
		}
	}

	var best *MVPAward
	for _, p := range t.rosters[m.WinnerTeamID].Players {
		if best == nil || points[p.ID] > best.Points {
			best = &MVPAward{PlayerID: p.ID, Name: p.Name, TeamID: m.WinnerTeamID, Points: points[p.ID]}
		}
	}
	return best
}
