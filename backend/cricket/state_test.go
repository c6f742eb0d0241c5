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

package cricket

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func squad(id, name string, n int) Team {
	t := Team{ID: id, Name: name, ShortName: strings.ToUpper(id)}
	for i := 1; i <= n; i++ {
		t.Players = append(t.Players, Player{
			ID:   fmt.Sprintf("%s%d", id, i),
			Name: fmt.Sprintf("%s %d", name, i),
			Role: RoleAllRounder,
		})
	}
	return t
}

func testRosters() Rosters {
	return NewRosters(squad("h", "Home", 11), squad("a", "Away", 11))
}

func testMatch(maxOvers int) Match {
	return Match{
		ID:         "m1",
		HomeTeamID: "h",
		AwayTeamID: "a",
		Venue:      "Wankhede",
		Format:     FormatT20,
		MaxOvers:   maxOvers,
		Status:     StatusScheduled,
	}
}

func mustApply(t *testing.T, s State, r Rosters, actions ...Action) State {
	t.Helper()
	for _, a := range actions {
		next, _, err := Apply(s, a, r)
		if err != nil {
			t.Fatalf("Apply(%s) during %s: %v", a.Kind(), s.Phase, err)
		}
		s = next
	}
	return s
}

// inPlay returns a match where the home side bats with h1 on strike, h2 at
// the other end and a1 bowling.
func inPlay(t *testing.T, maxOvers int) (State, Rosters) {
	t.Helper()
	r := testRosters()
	s := mustApply(t, NewState(testMatch(maxOvers)), r,
		Toss{WinnerID: "h", Decision: DecisionBat},
		Openers{StrikerID: "h1", NonStrikerID: "h2", BowlerID: "a1"},
	)
	return s, r
}

func dots(n int) []Action {
	out := make([]Action, n)
	for i := range out {
		out[i] = Ball{Runs: 0}
	}
	return out
}

// legalDots builds n legal dot deliveries as if already bowled.
func legalDots(n int, striker, nonStriker, bowler string) []BallEvent {
	out := make([]BallEvent, n)
	for i := range out {
		out[i] = BallEvent{
			ID:           fmt.Sprintf("pre-%d", i),
			OverNumber:   i / 6,
			BallNumber:   i%6 + 1,
			BowlerID:     bowler,
			StrikerID:    striker,
			NonStrikerID: nonStriker,
		}
	}
	return out
}

func TestToss(t *testing.T) {
	r := testRosters()
	tests := []struct {
		name        string
		toss        Toss
		wantBatting string
		wantErr     bool
	}{
		{"Winner bats", Toss{WinnerID: "h", Decision: DecisionBat}, "h", false},
		{"Winner bowls", Toss{WinnerID: "h", Decision: DecisionBowl}, "a", false},
		{"Away winner bats", Toss{WinnerID: "a", Decision: DecisionBat}, "a", false},
		{"Unknown winner", Toss{WinnerID: "x", Decision: DecisionBat}, "", true},
		{"Missing decision", Toss{WinnerID: "h"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, err := Apply(NewState(testMatch(20)), tt.toss, r)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAction) {
					t.Fatalf("Apply() error = %v, want ErrInvalidAction", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if s.Phase != PhaseOpeners {
				t.Errorf("Phase = %s, want %s", s.Phase, PhaseOpeners)
			}
			if s.Match.Status != StatusLive {
				t.Errorf("Status = %s, want %s", s.Match.Status, StatusLive)
			}
			if len(s.Match.Innings) != 1 {
				t.Fatalf("len(Innings) = %d, want 1", len(s.Match.Innings))
			}
			if got := s.Match.Innings[0].BattingTeamID; got != tt.wantBatting {
				t.Errorf("BattingTeamID = %s, want %s", got, tt.wantBatting)
			}
		})
	}
}

func TestOpenersValidation(t *testing.T) {
	r := testRosters()
	base := mustApply(t, NewState(testMatch(20)), r, Toss{WinnerID: "h", Decision: DecisionBat})
	tests := []struct {
		name string
		o    Openers
		ok   bool
	}{
		{"Valid", Openers{"h1", "h2", "a1"}, true},
		{"Missing bowler", Openers{"h1", "h2", ""}, false},
		{"Missing striker", Openers{"", "h2", "a1"}, false},
		{"Same batter", Openers{"h1", "h1", "a1"}, false},
		{"Batter from bowling side", Openers{"a3", "h2", "a1"}, false},
		{"Bowler from batting side", Openers{"h1", "h2", "h3"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, err := Apply(base, tt.o, r)
			if tt.ok {
				if err != nil {
					t.Fatalf("Apply() error = %v", err)
				}
				if s.Phase != PhaseInPlay {
					t.Errorf("Phase = %s, want %s", s.Phase, PhaseInPlay)
				}
				return
			}
			if err == nil {
				t.Fatalf("Apply() succeeded, want error")
			}
			if s.Phase != PhaseOpeners {
				t.Errorf("Phase changed to %s on error", s.Phase)
			}
		})
	}
}

func TestWrongPhase(t *testing.T) {
	r := testRosters()
	s := NewState(testMatch(20))
	if _, _, err := Apply(s, Ball{Runs: 1}, r); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("Ball before toss: error = %v, want ErrWrongPhase", err)
	}
	if _, _, err := Apply(s, Conclude{}, r); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("Conclude before toss: error = %v, want ErrWrongPhase", err)
	}
	played, _ := inPlay(t, 20)
	if _, _, err := Apply(played, NewBowler{BowlerID: "a2"}, r); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("NewBowler mid-over: error = %v, want ErrWrongPhase", err)
	}
}

func TestLegalBallCounter(t *testing.T) {
	s, r := inPlay(t, 20)
	sequence := []Ball{
		{Extra: ExtraWide},
		{Runs: 0},
		{Extra: ExtraNoBall},
		{Runs: 2},
		{Runs: 0, Extra: ExtraLegBye},
		{Extra: ExtraWide, Runs: 2},
		{Runs: 0},
		{Runs: 4, Extra: ExtraBye},
		{Runs: 0},
	}
	wantLegal := []int{0, 1, 1, 2, 3, 3, 4, 5, 6}
	for i, b := range sequence {
		next, events, err := Apply(s, b, r)
		if err != nil {
			t.Fatalf("ball %d: %v", i, err)
		}
		if len(events) != 1 {
			t.Fatalf("ball %d: got %d events, want 1", i, len(events))
		}
		if got := next.Match.Innings[0].LegalBalls(); got != wantLegal[i] {
			t.Errorf("ball %d: legal balls = %d, want %d", i, got, wantLegal[i])
		}
		wantPhase := PhaseInPlay
		if i == len(sequence)-1 {
			wantPhase = PhaseNewBowler
		}
		if next.Phase != wantPhase {
			t.Errorf("ball %d: Phase = %s, want %s", i, next.Phase, wantPhase)
		}
		s = next
	}
	if got := s.Match.Innings[0].OversBowled; got != 1 {
		t.Errorf("OversBowled = %v, want 1", got)
	}
	if s.PreviousBowlerID != "a1" {
		t.Errorf("PreviousBowlerID = %q, want a1", s.PreviousBowlerID)
	}
}

func TestStrikeRotation(t *testing.T) {
	for runs := 0; runs <= 6; runs++ {
		t.Run(fmt.Sprintf("MidOver/%d", runs), func(t *testing.T) {
			s, r := inPlay(t, 20)
			pre := s.Pointers
			next := mustApply(t, s, r, Ball{Runs: runs})
			wantStriker := pre.StrikerID
			if runs%2 == 1 {
				wantStriker = pre.NonStrikerID
			}
			if next.StrikerID != wantStriker {
				t.Errorf("StrikerID = %s, want %s", next.StrikerID, wantStriker)
			}
		})
		t.Run(fmt.Sprintf("LastBall/%d", runs), func(t *testing.T) {
			s, r := inPlay(t, 20)
			s = mustApply(t, s, r, dots(5)...)
			pre := s.Pointers
			next := mustApply(t, s, r, Ball{Runs: runs})
			// Odd runs and the end of the over cancel out.
			wantStriker := pre.NonStrikerID
			if runs%2 == 1 {
				wantStriker = pre.StrikerID
			}
			if next.StrikerID != wantStriker {
				t.Errorf("StrikerID = %s, want %s", next.StrikerID, wantStriker)
			}
			if next.Phase != PhaseNewBowler {
				t.Errorf("Phase = %s, want %s", next.Phase, PhaseNewBowler)
			}
		})
	}
}

func TestWideOnSixthBallDoesNotEndOver(t *testing.T) {
	s, r := inPlay(t, 20)
	s = mustApply(t, s, r, dots(5)...)
	s = mustApply(t, s, r, Ball{Extra: ExtraWide, Runs: 1})
	if s.Phase != PhaseInPlay {
		t.Fatalf("Phase = %s, want %s", s.Phase, PhaseInPlay)
	}
	// One run on the wide crossed the batters.
	if s.StrikerID != "h2" {
		t.Errorf("StrikerID = %s, want h2", s.StrikerID)
	}
}

func TestWideWithTwoRuns(t *testing.T) {
	s, r := inPlay(t, 20)
	next, events, err := Apply(s, Ball{Runs: 2, Extra: ExtraWide}, r)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	in := next.Match.Innings[0]
	if in.TotalRuns != 3 {
		t.Errorf("TotalRuns = %d, want 3", in.TotalRuns)
	}
	if in.LegalBalls() != 0 {
		t.Errorf("LegalBalls = %d, want 0", in.LegalBalls())
	}
	ev := events[0]
	if ev.BatterRuns() != 0 {
		t.Errorf("BatterRuns = %d, want 0", ev.BatterRuns())
	}
	if ev.BowlerRuns() != 3 {
		t.Errorf("BowlerRuns = %d, want 3", ev.BowlerRuns())
	}
	if ev.Commentary != "Wide ball! Plus 2 runs ran." {
		t.Errorf("Commentary = %q", ev.Commentary)
	}
	if ev.OverNumber != 0 || ev.BallNumber != 1 {
		t.Errorf("ball position = %d.%d, want 0.1", ev.OverNumber, ev.BallNumber)
	}
}

func TestNoBallSetsFreeHit(t *testing.T) {
	s, r := inPlay(t, 20)
	s = mustApply(t, s, r, Ball{Extra: ExtraNoBall})
	if !s.FreeHit {
		t.Fatalf("FreeHit = false after no-ball")
	}
	s = mustApply(t, s, r, Ball{Extra: ExtraWide})
	if !s.FreeHit {
		t.Errorf("FreeHit cleared by a wide")
	}
	s = mustApply(t, s, r, Ball{Runs: 0})
	if s.FreeHit {
		t.Errorf("FreeHit still set after a legal delivery")
	}
	if got := s.Match.Innings[0].TotalRuns; got != 2 {
		t.Errorf("TotalRuns = %d, want 2", got)
	}
}

func TestOversLimitEndsInnings(t *testing.T) {
	s, r := inPlay(t, 1)
	s = mustApply(t, s, r, Ball{Runs: 4}, Ball{Runs: 1})
	s = mustApply(t, s, r, dots(4)...)
	if s.Phase != PhaseInningsBreak {
		t.Fatalf("Phase = %s, want %s", s.Phase, PhaseInningsBreak)
	}
	if !s.Match.Innings[0].IsClosed {
		t.Errorf("first innings not closed")
	}
	target, ok := Target(s.Match)
	if !ok || target != 6 {
		t.Errorf("Target() = %d, %v; want 6, true", target, ok)
	}
	if s.StrikerID != "" || s.BowlerID != "" {
		t.Errorf("pointers not reset at innings break: %+v", s.Pointers)
	}

	s = mustApply(t, s, r, StartSecondInnings{})
	if s.Phase != PhaseOpeners {
		t.Fatalf("Phase = %s, want %s", s.Phase, PhaseOpeners)
	}
	second := s.Match.Innings[1]
	if second.BattingTeamID != "a" || second.BowlingTeamID != "h" {
		t.Errorf("second innings teams = %s/%s, want a/h", second.BattingTeamID, second.BowlingTeamID)
	}
	if s.Match.CurrentInningsIndex != 1 {
		t.Errorf("CurrentInningsIndex = %d, want 1", s.Match.CurrentInningsIndex)
	}
}

func TestChaseConcludesImmediately(t *testing.T) {
	s, r := inPlay(t, 20)
	first := &s.Match.Innings[0]
	first.TotalRuns = 150
	first.Wickets = 6
	first.IsClosed = true
	s.Phase = PhaseInningsBreak
	s.clearPlayers()

	s = mustApply(t, s, r,
		StartSecondInnings{},
		Openers{StrikerID: "a1", NonStrikerID: "a2", BowlerID: "h1"},
	)
	second := &s.Match.Innings[1]
	second.Balls = legalDots(91, "a1", "a2", "h1")
	second.TotalRuns = 148
	second.Wickets = 3

	next, events, err := Apply(s, Ball{Runs: 3}, r)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if next.Phase != PhaseMatchOver {
		t.Fatalf("Phase = %s, want %s", next.Phase, PhaseMatchOver)
	}
	got := next.Match.Innings[1]
	if got.TotalRuns != 151 || got.Wickets != 3 || got.OversBowled != 15.2 {
		t.Errorf("second innings = %d/%d in %v, want 151/3 in 15.2", got.TotalRuns, got.Wickets, got.OversBowled)
	}
	if next.Match.WinnerTeamID != "a" {
		t.Errorf("WinnerTeamID = %q, want a", next.Match.WinnerTeamID)
	}
	if next.Match.Status != StatusCompleted {
		t.Errorf("Status = %s, want %s", next.Match.Status, StatusCompleted)
	}
	if desc := next.Match.Result.Describe(r.TeamName); desc != "Away won by 7 wickets" {
		t.Errorf("Describe() = %q", desc)
	}
	if _, _, err := Apply(next, Ball{Runs: 1}, r); !errors.Is(err, ErrMatchOver) {
		t.Errorf("Apply after conclusion: error = %v, want ErrMatchOver", err)
	}
}

func TestAllOut(t *testing.T) {
	t.Run("FirstInnings", func(t *testing.T) {
		s, r := inPlay(t, 20)
		s.Match.Innings[0].Wickets = 9
		s = mustApply(t, s, r, Wicket{Type: WicketBowled})
		if s.Match.Innings[0].Wickets != 10 {
			t.Errorf("Wickets = %d, want 10", s.Match.Innings[0].Wickets)
		}
		if s.Phase != PhaseInningsBreak {
			t.Errorf("Phase = %s, want %s", s.Phase, PhaseInningsBreak)
		}
	})
	t.Run("NinthWicketContinues", func(t *testing.T) {
		s, r := inPlay(t, 20)
		s.Match.Innings[0].Wickets = 8
		s = mustApply(t, s, r, Wicket{Type: WicketBowled})
		if s.Phase != PhaseNewBatsman {
			t.Errorf("Phase = %s, want %s", s.Phase, PhaseNewBatsman)
		}
	})
	t.Run("SecondInningsConcludes", func(t *testing.T) {
		s, r := inPlay(t, 20)
		s.Match.Innings[0].TotalRuns = 120
		s.Match.Innings[0].IsClosed = true
		s.Phase = PhaseInningsBreak
		s.clearPlayers()
		s = mustApply(t, s, r, StartSecondInnings{}, Openers{StrikerID: "a1", NonStrikerID: "a2", BowlerID: "h1"})
		s.Match.Innings[1].TotalRuns = 100
		s.Match.Innings[1].Wickets = 9
		s = mustApply(t, s, r, Wicket{Type: WicketCaught, FielderID: "h5"})
		if s.Phase != PhaseMatchOver {
			t.Fatalf("Phase = %s, want %s", s.Phase, PhaseMatchOver)
		}
		if desc := s.Match.Result.Describe(r.TeamName); desc != "Home won by 20 runs" {
			t.Errorf("Describe() = %q", desc)
		}
	})
	t.Run("SmallSquad", func(t *testing.T) {
		r := NewRosters(squad("h", "Home", 3), squad("a", "Away", 3))
		s := mustApply(t, NewState(testMatch(20)), r,
			Toss{WinnerID: "h", Decision: DecisionBat},
			Openers{StrikerID: "h1", NonStrikerID: "h2", BowlerID: "a1"},
			Wicket{Type: WicketBowled},
			NewBatsman{BatsmanID: "h3"},
			Wicket{Type: WicketLBW},
		)
		if s.Phase != PhaseInningsBreak {
			t.Errorf("Phase = %s, want %s", s.Phase, PhaseInningsBreak)
		}
	})
}

func TestWicketHandling(t *testing.T) {
	t.Run("DefaultsToStriker", func(t *testing.T) {
		s, r := inPlay(t, 20)
		s = mustApply(t, s, r, BeginWicket{})
		if s.Phase != PhaseWicket || s.PlayerOutID != "h1" {
			t.Fatalf("after BeginWicket: phase %s, out %q", s.Phase, s.PlayerOutID)
		}
		next, events, err := Apply(s, Wicket{Type: WicketLBW}, r)
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		ev := events[0]
		if ev.DismissedPlayerID != "h1" || ev.Runs != 0 || !ev.Legal() || ev.FielderID != "" {
			t.Errorf("event = %+v", ev)
		}
		if ev.Commentary != "OUT! Home 1 is gone!" {
			t.Errorf("Commentary = %q", ev.Commentary)
		}
		if next.Phase != PhaseNewBatsman {
			t.Errorf("Phase = %s, want %s", next.Phase, PhaseNewBatsman)
		}
	})
	t.Run("RunOutNonStriker", func(t *testing.T) {
		s, r := inPlay(t, 20)
		if _, _, err := Apply(s, Wicket{Type: WicketRunOut, PlayerOutID: "h2"}, r); !errors.Is(err, ErrInvalidAction) {
			t.Fatalf("run out without fielder: error = %v", err)
		}
		s = mustApply(t, s, r, Wicket{Type: WicketRunOut, PlayerOutID: "h2", FielderID: "a7"})
		ev := s.Match.Innings[0].Balls[0]
		if ev.DismissedPlayerID != "h2" || ev.FielderID != "a7" {
			t.Errorf("event = %+v", ev)
		}
		s = mustApply(t, s, r, NewBatsman{BatsmanID: "h3", FacingID: "h1"})
		if s.StrikerID != "h1" || s.NonStrikerID != "h3" {
			t.Errorf("pair = %s/%s, want h1/h3", s.StrikerID, s.NonStrikerID)
		}
	})
	t.Run("FielderIgnoredForBowled", func(t *testing.T) {
		s, r := inPlay(t, 20)
		s = mustApply(t, s, r, Wicket{Type: WicketBowled, FielderID: "a5"})
		if got := s.Match.Innings[0].Balls[0].FielderID; got != "" {
			t.Errorf("FielderID = %q, want empty", got)
		}
	})
	t.Run("NotAtCrease", func(t *testing.T) {
		s, r := inPlay(t, 20)
		if _, _, err := Apply(s, Wicket{Type: WicketBowled, PlayerOutID: "h5"}, r); !errors.Is(err, ErrInvalidAction) {
			t.Errorf("error = %v, want ErrInvalidAction", err)
		}
	})
	t.Run("Cancel", func(t *testing.T) {
		s, r := inPlay(t, 20)
		s = mustApply(t, s, r, BeginWicket{}, CancelWicket{})
		if s.Phase != PhaseInPlay || s.PlayerOutID != "" {
			t.Errorf("after cancel: phase %s, out %q", s.Phase, s.PlayerOutID)
		}
		if len(s.Match.Innings[0].Balls) != 0 {
			t.Errorf("cancel appended a delivery")
		}
	})
}

func TestNewBatsmanValidation(t *testing.T) {
	s, r := inPlay(t, 20)
	s = mustApply(t, s, r, Wicket{Type: WicketBowled})
	for _, tt := range []struct {
		name string
		a    NewBatsman
	}{
		{"Missing", NewBatsman{}},
		{"Dismissed batter", NewBatsman{BatsmanID: "h1"}},
		{"Survivor", NewBatsman{BatsmanID: "h2"}},
		{"Wrong side", NewBatsman{BatsmanID: "a3"}},
		{"Facing stranger", NewBatsman{BatsmanID: "h3", FacingID: "h4"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Apply(s, tt.a, r); !errors.Is(err, ErrInvalidAction) {
				t.Errorf("error = %v, want ErrInvalidAction", err)
			}
		})
	}
	next := mustApply(t, s, r, NewBatsman{BatsmanID: "h3"})
	if next.StrikerID != "h3" || next.NonStrikerID != "h2" || next.Phase != PhaseInPlay {
		t.Errorf("state = %+v", next.Pointers)
	}
}

func TestWicketOnLastBallOfOver(t *testing.T) {
	s, r := inPlay(t, 20)
	s = mustApply(t, s, r, dots(5)...)
	s = mustApply(t, s, r, Wicket{Type: WicketCaught, FielderID: "a4"})
	if s.Phase != PhaseNewBatsman || !s.OverEnded {
		t.Fatalf("phase %s, overEnded %v", s.Phase, s.OverEnded)
	}
	// The scorer asks for the new batter to face; the end of the over wins.
	s = mustApply(t, s, r, NewBatsman{BatsmanID: "h3", FacingID: "h3"})
	if s.StrikerID != "h2" || s.NonStrikerID != "h3" {
		t.Errorf("pair = %s/%s, want h2/h3", s.StrikerID, s.NonStrikerID)
	}
	if s.Phase != PhaseNewBowler {
		t.Fatalf("Phase = %s, want %s", s.Phase, PhaseNewBowler)
	}
	if _, _, err := Apply(s, NewBowler{BowlerID: "a1"}, r); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("same bowler twice: error = %v, want ErrInvalidAction", err)
	}
	s = mustApply(t, s, r, NewBowler{BowlerID: "a2"})
	if s.Phase != PhaseInPlay || s.BowlerID != "a2" {
		t.Errorf("after new bowler: %+v", s.Pointers)
	}
}

func TestWicketOnFinalBallEndsInnings(t *testing.T) {
	s, r := inPlay(t, 1)
	s = mustApply(t, s, r, dots(5)...)
	s = mustApply(t, s, r, Wicket{Type: WicketStumped, FielderID: "a11"})
	if s.Phase != PhaseInningsBreak {
		t.Errorf("Phase = %s, want %s", s.Phase, PhaseInningsBreak)
	}
}

func TestCorrection(t *testing.T) {
	s, r := inPlay(t, 20)
	next, events, err := Apply(s, Correct{StrikerID: "h2", NonStrikerID: "h1", BowlerID: "a3"}, r)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(events) != 0 || len(next.Match.Innings[0].Balls) != 0 {
		t.Errorf("correction appended a delivery")
	}
	if next.StrikerID != "h2" || next.NonStrikerID != "h1" || next.BowlerID != "a3" {
		t.Errorf("pointers = %+v", next.Pointers)
	}
	if _, _, err := Apply(s, Correct{StrikerID: "h2", NonStrikerID: "h2"}, r); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("duplicate batter: error = %v", err)
	}
	partial := mustApply(t, s, r, Correct{BowlerID: "a9"})
	if partial.StrikerID != "h1" || partial.BowlerID != "a9" {
		t.Errorf("partial correction = %+v", partial.Pointers)
	}
}

func TestManualConclude(t *testing.T) {
	t.Run("FirstInnings", func(t *testing.T) {
		s, r := inPlay(t, 20)
		s = mustApply(t, s, r, Ball{Runs: 4}, Conclude{})
		if s.Phase != PhaseMatchOver || s.Match.Status != StatusCompleted {
			t.Fatalf("phase %s status %s", s.Phase, s.Match.Status)
		}
		res := s.Match.Result
		if res.Kind != ResultUndecided || !res.Manual || res.WinnerTeamID != "" {
			t.Errorf("Result = %+v", res)
		}
		if !s.Match.Innings[0].IsClosed {
			t.Errorf("innings left open")
		}
	})
	t.Run("InningsBreak", func(t *testing.T) {
		s, r := inPlay(t, 1)
		s = mustApply(t, s, r, dots(6)...)
		s = mustApply(t, s, r, Conclude{})
		if s.Match.Result.Kind != ResultUndecided {
			t.Errorf("Kind = %s, want %s", s.Match.Result.Kind, ResultUndecided)
		}
	})
	t.Run("SecondInningsBehind", func(t *testing.T) {
		s, r := inPlay(t, 1)
		s = mustApply(t, s, r, Ball{Runs: 6})
		s = mustApply(t, s, r, dots(5)...)
		s = mustApply(t, s, r, StartSecondInnings{}, Openers{StrikerID: "a1", NonStrikerID: "a2", BowlerID: "h1"}, Ball{Runs: 2}, Conclude{})
		res := s.Match.Result
		if res.Kind != ResultWin || res.WinnerTeamID != "h" || res.ByRuns != 4 || !res.Manual {
			t.Errorf("Result = %+v", res)
		}
	})
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	s, r := inPlay(t, 20)
	s = mustApply(t, s, r, Ball{Runs: 1})
	before := len(s.Match.Innings[0].Balls)
	striker := s.StrikerID
	if _, _, err := Apply(s, Ball{Runs: 4}, r); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if _, _, err := Apply(s, Wicket{Type: WicketBowled}, r); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(s.Match.Innings[0].Balls) != before || s.Match.Innings[0].TotalRuns != 1 {
		t.Errorf("input innings changed: %+v", s.Match.Innings[0])
	}
	if s.StrikerID != striker || s.Phase != PhaseInPlay {
		t.Errorf("input pointers changed: %+v", s.Pointers)
	}
}

func TestBallValidation(t *testing.T) {
	s, r := inPlay(t, 20)
	for _, b := range []Ball{{Runs: -1}, {Runs: 8}, {Extra: "XX"}} {
		if _, _, err := Apply(s, b, r); !errors.Is(err, ErrInvalidAction) {
			t.Errorf("Apply(%+v) error = %v, want ErrInvalidAction", b, err)
		}
	}
}

func TestEventIDs(t *testing.T) {
	s, r := inPlay(t, 20)
	s = mustApply(t, s, r, Ball{Runs: 1}, WithStamp(Ball{Runs: 2}, "custom", 42))
	balls := s.Match.Innings[0].Balls
	if balls[0].ID != "i0-b1" {
		t.Errorf("derived id = %q, want i0-b1", balls[0].ID)
	}
	if balls[1].ID != "custom" || balls[1].Timestamp != 42 {
		t.Errorf("stamped event = %+v", balls[1])
	}
}
