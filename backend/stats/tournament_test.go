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
	"math"
	"testing"

	"github.com/ttbt-io/cricketkeeper/backend/cricket"
)

func result(id, home, away, winner string) cricket.Match {
	return cricket.Match{
		ID:           id,
		TournamentID: "t1",
		HomeTeamID:   home,
		AwayTeamID:   away,
		Status:       cricket.StatusCompleted,
		WinnerTeamID: winner,
	}
}

func TestPointsTable(t *testing.T) {
	r := cricket.NewRosters(squad("x", "X", 2), squad("y", "Y", 2), squad("z", "Z", 2))
	tour := cricket.Tournament{ID: "t1", TeamIDs: []string{"x", "y", "z"}, MatchIDs: []string{"listed"}}

	live := result("live", "x", "y", "")
	live.Status = cricket.StatusLive
	other := result("other", "x", "z", "x")
	other.TournamentID = "t2"
	listed := result("listed", "z", "y", "z")
	listed.TournamentID = ""

	matches := []cricket.Match{
		result("m1", "x", "y", "y"),
		result("m2", "y", "z", ""),
		listed,
		live,
		other,
	}
	table := PointsTable(tour, matches, r)

	// y and z are level on points and wins, so y stays ahead as listed first.
	want := []Standing{
		{TeamID: "y", Name: "Y", Played: 3, Won: 1, Lost: 1, Tied: 1, Points: 3},
		{TeamID: "z", Name: "Z", Played: 2, Won: 1, Tied: 1, Points: 3},
		{TeamID: "x", Name: "X", Played: 1, Lost: 1},
	}
	if len(table) != len(want) {
		t.Fatalf("PointsTable() = %+v", table)
	}
	for i := range want {
		if table[i] != want[i] {
			t.Errorf("table[%d] = %+v, want %+v", i, table[i], want[i])
		}
	}
}

func TestPointsTableOrdersByWins(t *testing.T) {
	r := cricket.NewRosters(squad("x", "X", 2), squad("y", "Y", 2), squad("z", "Z", 2))
	tour := cricket.Tournament{ID: "t1", TeamIDs: []string{"x", "y", "z"}}
	matches := []cricket.Match{
		result("m1", "x", "y", ""),
		result("m2", "x", "z", ""),
		result("m3", "y", "z", "z"),
	}
	table := PointsTable(tour, matches, r)
	// x: two ties = 2 points, 0 wins. z: tie + win = 3. y: tie + loss = 1.
	got := []string{table[0].TeamID, table[1].TeamID, table[2].TeamID}
	if fmt.Sprint(got) != "[z x y]" {
		t.Errorf("order = %v, want [z x y]", got)
	}
}

func TestTournamentLeaders(t *testing.T) {
	r := testRosters()
	var balls []cricket.BallEvent
	// h1..h7 score 1..7 runs each; a1 takes three wickets, a2 one.
	for i := 1; i <= 7; i++ {
		bat := fmt.Sprintf("h%d", i)
		balls = append(balls, ball("a3", bat, "h11", i))
	}
	balls = append(balls,
		out("a1", "h1", "h11", cricket.WicketBowled, ""),
		out("a1", "h2", "h11", cricket.WicketBowled, ""),
		out("a2", "h3", "h11", cricket.WicketBowled, ""),
		out("a1", "h4", "h11", cricket.WicketBowled, ""),
		out("a5", "h5", "h11", cricket.WicketRunOut, "a6"),
	)
	m := result("m1", "h", "a", "h")
	m.Innings = []cricket.Innings{{BattingTeamID: "h", BowlingTeamID: "a", Balls: balls}}

	lb := TournamentLeaders(cricket.Tournament{ID: "t1"}, []cricket.Match{m}, r, 0)
	if len(lb.Runs) != DefaultLeaders {
		t.Fatalf("Runs = %+v", lb.Runs)
	}
	if lb.Runs[0].PlayerID != "h7" || lb.Runs[0].Value != 7 || lb.Runs[4].PlayerID != "h3" {
		t.Errorf("Runs = %+v", lb.Runs)
	}
	if lb.Wickets[0].PlayerID != "a1" || lb.Wickets[0].Value != 3 || lb.Wickets[1].PlayerID != "a2" {
		t.Errorf("Wickets = %+v", lb.Wickets)
	}
}

func TestPlayerCareer(t *testing.T) {
	r := testRosters()
	fifty := make([]cricket.BallEvent, 0, 10)
	for range 9 {
		fifty = append(fifty, ball("a1", "h1", "h2", 6))
	}
	fifty = append(fifty, out("a1", "h1", "h2", cricket.WicketBowled, ""))

	m1 := result("m1", "h", "a", "h")
	m1.Innings = []cricket.Innings{
		{BattingTeamID: "h", BowlingTeamID: "a", Balls: fifty},
		{BattingTeamID: "a", BowlingTeamID: "h", Balls: []cricket.BallEvent{
			ball("h1", "a1", "a2", 4),
			out("h1", "a1", "a2", cricket.WicketCaught, "h3"),
		}},
	}
	m2 := result("m2", "h", "a", "a")
	m2.Innings = []cricket.Innings{
		{BattingTeamID: "h", BowlingTeamID: "a", Balls: []cricket.BallEvent{ball("a1", "h1", "h2", 2)}},
	}
	m3 := result("m3", "h", "a", "a")

	c := PlayerCareer("h1", []cricket.Match{m1, m2, m3}, r)
	if c.Matches != 2 || c.Innings != 2 || c.NotOuts != 1 || c.Runs != 56 || c.Balls != 11 {
		t.Errorf("batting = %+v", c)
	}
	if c.Highest != 54 || c.Fifties != 1 || c.Hundreds != 0 || c.Sixes != 9 {
		t.Errorf("milestones = %+v", c)
	}
	if c.Average != 56 {
		t.Errorf("Average = %v, want 56", c.Average)
	}
	if math.Abs(c.StrikeRate-509.09) > 0.01 {
		t.Errorf("StrikeRate = %v", c.StrikeRate)
	}
	if c.Wickets != 1 || c.BallsBowled != 2 || c.RunsConceded != 4 || c.BowlingAverage != 4 || c.Economy != 12 {
		t.Errorf("bowling = %+v", c)
	}

	never := PlayerCareer("h9", []cricket.Match{m1}, r)
	if never.Matches != 0 || never.Average != 0 {
		t.Errorf("unused player = %+v", never)
	}
}
