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

// Career aggregates a player's figures over every match with a ball log.
type Career struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Matches  int    `json:"matches"`

	Innings    int     `json:"innings"`
	NotOuts    int     `json:"notOuts"`
	Runs       int     `json:"runs"`
	Balls      int     `json:"balls"`
	Fours      int     `json:"fours"`
	Sixes      int     `json:"sixes"`
	Highest    int     `json:"highest"`
	Fifties    int     `json:"fifties"`
	Hundreds   int     `json:"hundreds"`
	Average    float64 `json:"average"`
	StrikeRate float64 `json:"strikeRate"`

	BowlingInnings int     `json:"bowlingInnings"`
	BallsBowled    int     `json:"ballsBowled"`
	RunsConceded   int     `json:"runsConceded"`
	Wickets        int     `json:"wickets"`
	Maidens        int     `json:"maidens"`
	BowlingAverage float64 `json:"bowlingAverage"`
	Economy        float64 `json:"economy"`
}

// PlayerCareer computes the career figures of playerID.
//
// The batting average divides by dismissals; a player never out has the
// runs total as average.
func PlayerCareer(playerID string, matches []cricket.Match, r cricket.Rosters) Career {
	c := Career{PlayerID: playerID, Name: r.PlayerName(playerID)}
	for _, m := range matches {
		played := false
		for _, in := range m.Innings {
			a := ReplayInnings(in, r)
			for _, b := range a.Batting() {
				if b.PlayerID != playerID {
					continue
				}
				played = true
				c.Innings++
				if !b.Out {
					c.NotOuts++
				}
				c.Runs += b.Runs
				c.Balls += b.Balls
				c.Fours += b.Fours
				c.Sixes += b.Sixes
				c.Highest = max(c.Highest, b.Runs)
				switch {
				case b.Runs >= 100:
					c.Hundreds++
				case b.Runs >= 50:
					c.Fifties++
				}
			}
			for _, b := range a.Bowling() {
				if b.PlayerID != playerID {
					continue
				}
				played = true
				c.BowlingInnings++
				c.BallsBowled += b.Balls
				c.RunsConceded += b.Runs
				c.Wickets += b.Wickets
				c.Maidens += b.Maidens
			}
		}
		if played {
			c.Matches++
		}
	}

	if outs := c.Innings - c.NotOuts; outs > 0 {
		c.Average = float64(c.Runs) / float64(outs)
	} else {
		c.Average = float64(c.Runs)
	}
	if c.Balls > 0 {
		c.StrikeRate = float64(c.Runs) / float64(c.Balls) * 100
	}
	if c.Wickets > 0 {
		c.BowlingAverage = float64(c.RunsConceded) / float64(c.Wickets)
	}
	c.Economy = Economy(c.RunsConceded, c.BallsBowled)
	return c
}
