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

package commentary_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/ttbt-io/cricketkeeper/backend/commentary"
	"github.com/ttbt-io/cricketkeeper/backend/commentary/mockgen"
	"github.com/ttbt-io/cricketkeeper/backend/cricket"
)

func rosters() cricket.Rosters {
	return cricket.NewRosters(
		cricket.Team{ID: "h", Name: "Mumbai Masters", Players: []cricket.Player{{ID: "h1", Name: "Rohan", Role: cricket.RoleBatsman}}},
		cricket.Team{ID: "a", Name: "Sydney Sixers", Players: []cricket.Player{{ID: "a1", Name: "Mitch", Role: cricket.RoleBowler}}},
	)
}

func liveMatch() cricket.Match {
	return cricket.Match{
		ID:         "m1",
		HomeTeamID: "h",
		AwayTeamID: "a",
		Venue:      "Wankhede",
		Format:     cricket.FormatT20,
		Innings: []cricket.Innings{{
			BattingTeamID: "h",
			BowlingTeamID: "a",
			TotalRuns:     4,
			Balls:         []cricket.BallEvent{{BowlerID: "a1", StrikerID: "h1", Runs: 4}},
		}},
	}
}

func TestServiceWithoutGenerator(t *testing.T) {
	s := commentary.NewService(nil, 0)
	ctx := context.Background()
	if s.Enabled() {
		t.Fatalf("Enabled() = true without a generator")
	}
	if got := s.Ball(ctx, commentary.BallContext{Runs: 4}); got != "Great shot!" {
		t.Errorf("Ball() = %q", got)
	}
	if got := s.Advice(ctx, liveMatch(), rosters()); got != "Keep the run rate ticking!" {
		t.Errorf("Advice() = %q", got)
	}
	if got := s.Report(ctx, liveMatch(), "Mumbai Masters"); got != "Match completed." {
		t.Errorf("Report() = %q", got)
	}
}

func TestServiceFallbackOnError(t *testing.T) {
	gen := &mockgen.Generator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))
	s := commentary.NewService(gen, 0)
	ctx := context.Background()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"Ball", s.Ball(ctx, commentary.BallContext{Runs: 3}), "And that's 3 runs off the delivery."},
		{"Advice", s.Advice(ctx, liveMatch(), rosters()), "Focus on rotating the strike and punishing the loose balls."},
		{"Report", s.Report(ctx, liveMatch(), "Mumbai Masters"), "Mumbai Masters won the match at Wankhede."},
		{"ReportNoWinner", s.Report(ctx, liveMatch(), commentary.NoWinner), "Draw won the match at Wankhede."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s() = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
	gen.AssertNumberOfCalls(t, "Generate", 4)
}

func TestServicePrompts(t *testing.T) {
	gen := &mockgen.Generator{}
	var prompts []string
	gen.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { prompts = append(prompts, args.String(1)) }).
		Return("Generated.", nil)
	s := commentary.NewService(gen, 0)
	ctx := context.Background()
	r := rosters()
	m := liveMatch()

	bc := commentary.NewBallContext(m.Innings[0].Balls[0], m.Innings[0], r)
	if got := s.Ball(ctx, bc); got != "Generated." {
		t.Errorf("Ball() = %q", got)
	}
	s.Advice(ctx, m, r)
	s.Report(ctx, m, "Mumbai Masters")

	want := [][]string{
		{"Bowler: Mitch (Bowler)", "Batsman: Rohan", "Outcome: 4 runs (Runs: 4)", "Context: 0/0 (0.0)"},
		{"Format: T20", "Batting Team: Mumbai Masters", "Bowling Team: Sydney Sixers", "Score: 4/0 in 0.1 overs."},
		{"won by Mumbai Masters.", "Venue: Wankhede."},
	}
	if len(prompts) != len(want) {
		t.Fatalf("got %d prompts, want %d", len(prompts), len(want))
	}
	for i, parts := range want {
		for _, p := range parts {
			if !strings.Contains(prompts[i], p) {
				t.Errorf("prompt %d missing %q:\n%s", i, p, prompts[i])
			}
		}
	}
}

func TestNewBallContext(t *testing.T) {
	r := rosters()
	in := cricket.Innings{BattingTeamID: "h", BowlingTeamID: "a", TotalRuns: 12, Wickets: 1}
	tests := []struct {
		ev          cricket.BallEvent
		wantOutcome string
		wantRuns    int
	}{
		{cricket.BallEvent{BowlerID: "a1", StrikerID: "h1", Runs: 2}, "2 runs", 2},
		{cricket.BallEvent{BowlerID: "a1", StrikerID: "h1", Runs: 2, IsExtra: true, ExtraType: cricket.ExtraWide}, "WD + 2", 3},
		{cricket.BallEvent{BowlerID: "a1", StrikerID: "h1", IsWicket: true, WicketType: cricket.WicketLBW}, "WICKET (LBW)", 0},
	}
	for _, tt := range tests {
		bc := commentary.NewBallContext(tt.ev, in, r)
		if bc.Outcome != tt.wantOutcome || bc.Runs != tt.wantRuns {
			t.Errorf("NewBallContext() = %+v, want %q with %d runs", bc, tt.wantOutcome, tt.wantRuns)
		}
		if bc.Bowler.Name != "Mitch" || bc.Batsman.Name != "Rohan" {
			t.Errorf("players = %+v / %+v", bc.Bowler, bc.Batsman)
		}
	}
}

func TestBallContextSituation(t *testing.T) {
	r := rosters()
	four := cricket.BallEvent{ID: "b1", BowlerID: "a1", StrikerID: "h1", Runs: 4}
	out := cricket.BallEvent{ID: "b2", BowlerID: "a1", StrikerID: "h1", IsWicket: true, WicketType: cricket.WicketBowled, DismissedPlayerID: "h1"}
	wide := cricket.BallEvent{ID: "b3", BowlerID: "a1", StrikerID: "h2", IsExtra: true, ExtraType: cricket.ExtraWide}
	single := cricket.BallEvent{ID: "b4", BowlerID: "a1", StrikerID: "h2", Runs: 1}
	in := cricket.Innings{
		BattingTeamID: "h", BowlingTeamID: "a",
		TotalRuns: 6, Wickets: 1, OversBowled: 0.3,
		Balls: []cricket.BallEvent{four, out, wide, single},
	}

	tests := []struct {
		name string
		ev   cricket.BallEvent
		want string
	}{
		{"First", four, "0/0 (0.0)"},
		{"AfterWide", single, "5/1 (0.2)"},
		{"NotYetAppended", cricket.BallEvent{ID: "b5", BowlerID: "a1", StrikerID: "h2", Runs: 2}, "6/1 (0.3)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := commentary.NewBallContext(tt.ev, in, r).Situation; got != tt.want {
				t.Errorf("Situation = %q, want %q", got, tt.want)
			}
		})
	}
}
