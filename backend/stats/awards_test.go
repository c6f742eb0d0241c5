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
	"testing"

	"github.com/ttbt-io/cricketkeeper/backend/cricket"
)

func ball(bowler, bat, ns string, runs int) cricket.BallEvent {
	return cricket.BallEvent{BowlerID: bowler, StrikerID: bat, NonStrikerID: ns, Runs: runs}
}

func out(bowler, bat, ns string, wt cricket.WicketType, fielder string) cricket.BallEvent {
	return cricket.BallEvent{
		BowlerID: bowler, StrikerID: bat, NonStrikerID: ns,
		IsWicket: true, WicketType: wt, DismissedPlayerID: bat, FielderID: fielder,
	}
}

func awardsMatch() cricket.Match {
	return cricket.Match{
		ID:           "m1",
		HomeTeamID:   "h",
		AwayTeamID:   "a",
		Status:       cricket.StatusCompleted,
		WinnerTeamID: "h",
		Innings: []cricket.Innings{
			{BattingTeamID: "h", BowlingTeamID: "a", Balls: []cricket.BallEvent{
				ball("a1", "h1", "h2", 6),
				ball("a1", "h1", "h2", 4),
				ball("a1", "h1", "h2", 1),
				ball("a2", "h2", "h1", 4),
				out("a2", "h2", "h1", cricket.WicketBowled, ""),
			}},
			{BattingTeamID: "a", BowlingTeamID: "h", Balls: []cricket.BallEvent{
				ball("h3", "a1", "a2", 6),
				ball("h3", "a1", "a2", 4),
				ball("h3", "a1", "a2", 1),
				out("h4", "a2", "a1", cricket.WicketCaught, "h2"),
				out("h4", "a3", "a1", cricket.WicketStumped, "h2"),
				out("h5", "a4", "a1", cricket.WicketLBW, ""),
			}},
		},
	}
}

func TestComputeAwards(t *testing.T) {
	r := testRosters()
	aw := ComputeAwards(awardsMatch(), r)

	// h1 and a1 both made 11; the earlier appearance wins.
	if aw.BestBatter == nil || aw.BestBatter.PlayerID != "h1" || aw.BestBatter.Runs != 11 {
		t.Errorf("BestBatter = %+v, want h1 with 11", aw.BestBatter)
	}
	if aw.BestBowler == nil || aw.BestBowler.PlayerID != "h4" || aw.BestBowler.Wickets != 2 {
		t.Errorf("BestBowler = %+v, want h4 with 2 wickets", aw.BestBowler)
	}
	// h2: 4 runs + catch + stumping = 24; h4: 2 wickets = 50.
	if aw.MVP == nil || aw.MVP.PlayerID != "h4" || aw.MVP.Points != 50 {
		t.Errorf("MVP = %+v, want h4 with 50", aw.MVP)
	}
}

func TestBestBowlerEconomyTiebreak(t *testing.T) {
	m := cricket.Match{Innings: []cricket.Innings{{BattingTeamID: "h", BowlingTeamID: "a", Balls: []cricket.BallEvent{
		ball("a1", "h1", "h2", 6),
		out("a1", "h1", "h2", cricket.WicketBowled, ""),
		ball("a2", "h3", "h2", 1),
		out("a2", "h3", "h2", cricket.WicketBowled, ""),
	}}}}
	aw := ComputeAwards(m, testRosters())
	if aw.BestBowler == nil || aw.BestBowler.PlayerID != "a2" {
		t.Errorf("BestBowler = %+v, want a2 on economy", aw.BestBowler)
	}
	if aw.MVP != nil {
		t.Errorf("MVP = %+v without a winner", aw.MVP)
	}
}

func TestMVPFromWinningSideOnly(t *testing.T) {
	m := awardsMatch()
	m.WinnerTeamID = "a"
	aw := ComputeAwards(m, testRosters())
	// a1 made 11; a2 took a wicket for 25.
	if aw.MVP == nil || aw.MVP.TeamID != "a" || aw.MVP.PlayerID != "a2" || aw.MVP.Points != 25 {
		t.Errorf("MVP = %+v, want a2 with 25", aw.MVP)
	}
}
