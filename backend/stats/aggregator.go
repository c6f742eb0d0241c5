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

// Package stats derives batting, bowling and tournament figures from the
// ball log.
//
// Figures are accumulated per delivery: each innings keeps running totals
// in slices indexed by player id, so feeding new deliveries never rescans
// the log. Replaying a full innings and feeding it ball by ball give the
// same result.
package stats

import (
	"github.com/ttbt-io/cricketkeeper/backend/cricket"
)

// Batting is one batter's line in an innings.
type Batting struct {
	PlayerID   string  `json:"playerId"`
	Name       string  `json:"name"`
	Runs       int     `json:"runs"`
	Balls      int     `json:"balls"`
	Fours      int     `json:"fours"`
	Sixes      int     `json:"sixes"`
	Out        bool    `json:"out"`
	Dismissal  string  `json:"dismissal"`
	StrikeRate float64 `json:"strikeRate"`
}

// Bowling is one bowler's line in an innings.
type Bowling struct {
	PlayerID string  `json:"playerId"`
	Name     string  `json:"name"`
	Balls    int     `json:"balls"`
	Overs    string  `json:"overs"`
	Maidens  int     `json:"maidens"`
	Runs     int     `json:"runs"`
	Wickets  int     `json:"wickets"`
	Wides    int     `json:"wides"`
	NoBalls  int     `json:"noBalls"`
	Economy  float64 `json:"economy"`
}

// Extras are the runs not credited to a batter.
type Extras struct {
	Wides   int `json:"wides"`
	NoBalls int `json:"noBalls"`
	LegByes int `json:"legByes"`
	Byes    int `json:"byes"`
	Total   int `json:"total"`
}

type bowlingAcc struct {
	Bowling
	over      int
	overRuns  int
	overLegal int
}

// Innings accumulates the figures of one innings.
type Innings struct {
	rosters cricket.Rosters

	batting []Batting
	batIdx  map[string]int
	bowling []bowlingAcc
	bowlIdx map[string]int
	extras  Extras

	applied int
	total   int
	wickets int
	legal   int
}

// NewInnings returns an empty accumulator. Rosters are only used for display
// names and may be nil.
func NewInnings(r cricket.Rosters) *Innings {
	return &Innings{
		rosters: r,
		batIdx:  make(map[string]int),
		bowlIdx: make(map[string]int),
	}
}

// ReplayInnings accumulates every delivery of in.
func ReplayInnings(in cricket.Innings, r cricket.Rosters) *Innings {
	a := NewInnings(r)
	a.Sync(in)
	return a
}

// Sync feeds the deliveries of in that have not been seen yet. It reports
// false, and feeds nothing, when in holds fewer deliveries than were already
// applied, which means the log was replaced.
func (a *Innings) Sync(in cricket.Innings) bool {
	if len(in.Balls) < a.applied {
		return false
	}
	for _, b := range in.Balls[a.applied:] {
		a.Add(b)
	}
	return true
}

// Applied returns the number of deliveries accumulated so far.
func (a *Innings) Applied() int {
	return a.applied
}

func (a *Innings) name(id string) string {
	if a.rosters == nil {
		return id
	}
	return a.rosters.PlayerName(id)
}

func (a *Innings) batter(id string) *Batting {
	if i, ok := a.batIdx[id]; ok {
		return &a.batting[i]
	}
	a.batIdx[id] = len(a.batting)
	a.batting = append(a.batting, Batting{PlayerID: id, Name: a.name(id), Dismissal: "not out"})
	return &a.batting[len(a.batting)-1]
}

func (a *Innings) bowler(id string) *bowlingAcc {
	if i, ok := a.bowlIdx[id]; ok {
		return &a.bowling[i]
	}
	a.bowlIdx[id] = len(a.bowling)
	a.bowling = append(a.bowling, bowlingAcc{
		Bowling: Bowling{PlayerID: id, Name: a.name(id)},
		over:    -1,
	})
	return &a.bowling[len(a.bowling)-1]
}

// Add accumulates one delivery.
func (a *Innings) Add(b cricket.BallEvent) {
	a.applied++
	a.total += b.TeamRuns()
	if b.Legal() {
		a.legal++
	}

	striker := a.batter(b.StrikerID)
	if b.NonStrikerID != "" {
		a.batter(b.NonStrikerID)
		// The slice may have grown.
		striker = &a.batting[a.batIdx[b.StrikerID]]
	}
	striker.Runs += b.BatterRuns()
	if b.Extra() != cricket.ExtraWide {
		striker.Balls++
	}
	if !b.IsExtra {
		switch b.Runs {
		case 4:
			striker.Fours++
		case 6:
			striker.Sixes++
		}
	}

	bw := a.bowler(b.BowlerID)
	if b.OverNumber != bw.over {
		bw.over = b.OverNumber
		bw.overRuns = 0
		bw.overLegal = 0
	}
	runs := b.BowlerRuns()
	bw.Runs += runs
	bw.overRuns += runs
	if b.Legal() {
		bw.Balls++
		bw.overLegal++
		if bw.overLegal == 6 && bw.overRuns == 0 {
			bw.Maidens++
		}
	}

	switch b.Extra() {
	case cricket.ExtraWide:
		bw.Wides++
		a.extras.Wides += 1 + b.Runs
	case cricket.ExtraNoBall:
		bw.NoBalls++
		a.extras.NoBalls++
	case cricket.ExtraLegBye:
		a.extras.LegByes += b.Runs
	case cricket.ExtraBye:
		a.extras.Byes += b.Runs
	}

	if b.IsWicket {
		a.wickets++
		if b.WicketType.CreditsBowler() {
			bw.Wickets++
		}
		out := a.batter(b.DismissedPlayerID)
		out.Out = true
		out.Dismissal = Dismissal(b, a.name)
	}
}

// Batting returns the batting lines in order of appearance.
func (a *Innings) Batting() []Batting {
	out := make([]Batting, len(a.batting))
	for i, b := range a.batting {
		if b.Balls > 0 {
			b.StrikeRate = float64(b.Runs) / float64(b.Balls) * 100
		}
		out[i] = b
	}
	return out
}

// Bowling returns the bowling lines in order of first delivery.
func (a *Innings) Bowling() []Bowling {
	out := make([]Bowling, len(a.bowling))
	for i, acc := range a.bowling {
		b := acc.Bowling
		b.Overs = cricket.Overs(b.Balls)
		b.Economy = Economy(b.Runs, b.Balls)
		out[i] = b
	}
	return out
}

// Extras returns the extras breakdown.
func (a *Innings) Extras() Extras {
	e := a.extras
	e.Total = e.Wides + e.NoBalls + e.LegByes + e.Byes
	return e
}

// Total returns runs, wickets and legal deliveries accumulated so far.
func (a *Innings) Total() (runs, wickets, legalBalls int) {
	return a.total, a.wickets, a.legal
}

// Economy is runs conceded per six legal deliveries.
func Economy(runs, balls int) float64 {
	if balls == 0 {
		return 0
	}
	return float64(runs) * 6 / float64(balls)
}

// Dismissal describes how a batter got out, e.g. "c Smith b Jones".
func Dismissal(b cricket.BallEvent, name func(string) string) string {
	bowler := name(b.BowlerID)
	switch b.WicketType {
	case cricket.WicketBowled:
		return "b " + bowler
	case cricket.WicketCaught:
		if b.FielderID == b.BowlerID {
			return "c & b " + bowler
		}
		return "c " + name(b.FielderID) + " b " + bowler
	case cricket.WicketLBW:
		return "lbw b " + bowler
	case cricket.WicketRunOut:
		if b.FielderID == "" {
			return "run out"
		}
		return "run out (" + name(b.FielderID) + ")"
	case cricket.WicketStumped:
		return "st " + name(b.FielderID) + " b " + bowler
	case cricket.WicketHitWicket:
		return "hit wicket b " + bowler
	}
	return "out"
}
