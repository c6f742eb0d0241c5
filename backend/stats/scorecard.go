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
	"fmt"
	"io"
	"strings"

	"github.com/ttbt-io/cricketkeeper/backend/cricket"
)

// InningsCard is the scorecard of one innings.
type InningsCard struct {
	BattingTeamID string    `json:"battingTeamId"`
	BattingTeam   string    `json:"battingTeam"`
	BowlingTeamID string    `json:"bowlingTeamId"`
	Runs          int       `json:"runs"`
	Wickets       int       `json:"wickets"`
	Overs         string    `json:"overs"`
	Completed     bool      `json:"completed"`
	Batting       []Batting `json:"batting"`
	Bowling       []Bowling `json:"bowling"`
	Extras        Extras    `json:"extras"`
}

// Scorecard is the full scorecard of a match.
type Scorecard struct {
	MatchID string        `json:"matchId"`
	Title   string        `json:"title"`
	Venue   string        `json:"venue"`
	Result  string        `json:"result,omitempty"`
	Innings []InningsCard `json:"innings"`
}

// Tracker keeps one accumulator per innings of a match and feeds it only the
// deliveries it has not seen. It is not safe for concurrent use.
type Tracker struct {
	rosters cricket.Rosters
	innings []*Innings
}

func NewTracker(r cricket.Rosters) *Tracker {
	return &Tracker{rosters: r}
}

// Sync brings the accumulators up to date with m. An innings whose log
// shrank is replayed from scratch.
func (t *Tracker) Sync(m cricket.Match) {
	if len(m.Innings) < len(t.innings) {
		t.innings = t.innings[:len(m.Innings)]
	}
	for i, in := range m.Innings {
		if i == len(t.innings) {
			t.innings = append(t.innings, NewInnings(t.rosters))
		}
		if !t.innings[i].Sync(in) {
			t.innings[i] = ReplayInnings(in, t.rosters)
		}
	}
}

// Innings returns the accumulator of innings i, or nil.
func (t *Tracker) Innings(i int) *Innings {
	if i < 0 || i >= len(t.innings) {
		return nil
	}
	return t.innings[i]
}

// Scorecard renders the accumulated figures. Call Sync with m first.
func (t *Tracker) Scorecard(m cricket.Match) Scorecard {
	sc := Scorecard{
		MatchID: m.ID,
		Title:   t.rosters.TeamName(m.HomeTeamID) + " vs " + t.rosters.TeamName(m.AwayTeamID),
		Venue:   m.Venue,
	}
	if m.Result != nil {
		sc.Result = m.Result.Describe(t.rosters.TeamName)
	}
	for i, in := range m.Innings {
		a := t.Innings(i)
		if a == nil {
			break
		}
		runs, wickets, legal := a.Total()
		sc.Innings = append(sc.Innings, InningsCard{
			BattingTeamID: in.BattingTeamID,
			BattingTeam:   t.rosters.TeamName(in.BattingTeamID),
			BowlingTeamID: in.BowlingTeamID,
			Runs:          runs,
			Wickets:       wickets,
			Overs:         cricket.Overs(legal),
			Completed:     in.IsClosed,
			Batting:       a.Batting(),
			Bowling:       a.Bowling(),
			Extras:        a.Extras(),
		})
	}
	return sc
}

// BuildScorecard replays every innings of m.
func BuildScorecard(m cricket.Match, r cricket.Rosters) Scorecard {
	t := NewTracker(r)
	t.Sync(m)
	return t.Scorecard(m)
}

// WriteText writes a plain-text rendering of the scorecard.
func (sc Scorecard) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", sc.Title)
	if sc.Venue != "" {
		fmt.Fprintf(&b, "at %s\n", sc.Venue)
	}
	for _, in := range sc.Innings {
		fmt.Fprintf(&b, "\n%s %d/%d (%s ov)\n", in.BattingTeam, in.Runs, in.Wickets, in.Overs)
		fmt.Fprintf(&b, "%-20s %-24s %4s %4s %3s %3s %7s\n", "Batter", "", "R", "B", "4s", "6s", "SR")
		for _, bat := range in.Batting {
			fmt.Fprintf(&b, "%-20s %-24s %4d %4d %3d %3d %7.2f\n",
				bat.Name, bat.Dismissal, bat.Runs, bat.Balls, bat.Fours, bat.Sixes, bat.StrikeRate)
		}
		e := in.Extras
		fmt.Fprintf(&b, "Extras %d (w %d, nb %d, lb %d, b %d)\n", e.Total, e.Wides, e.NoBalls, e.LegByes, e.Byes)
		fmt.Fprintf(&b, "%-20s %5s %3s %4s %3s %6s\n", "Bowler", "O", "M", "R", "W", "Econ")
		for _, bowl := range in.Bowling {
			fmt.Fprintf(&b, "%-20s %5s %3d %4d %3d %6.2f\n",
				bowl.Name, bowl.Overs, bowl.Maidens, bowl.Runs, bowl.Wickets, bowl.Economy)
		}
	}
	if sc.Result != "" {
		fmt.Fprintf(&b, "\n%s\n", sc.Result)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
