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
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ttbt-io/cricketkeeper/backend/cricket"
	"github.com/ttbt-io/cricketkeeper/backend/persistence"
)

func TestValidateAction(t *testing.T) {
	validUUID := "aaaaaaaa-aaaa-4aaa-aaaa-aaaaaaaaaaaa"

	tests := []struct {
		name    string
		action  string
		want    cricket.Action
		wantErr bool
	}{
		{
			name:   "Valid TOSS",
			action: fmt.Sprintf(`{"id":"%s","type":"TOSS","payload":{"winnerId":"team_ind","decision":"BAT"}}`, validUUID),
			want:   cricket.Toss{WinnerID: "team_ind", Decision: cricket.DecisionBat},
		},
		{
			name:   "Valid BALL with extra",
			action: fmt.Sprintf(`{"id":"%s","type":"BALL","timestamp":123,"payload":{"runs":2,"extra":"LB"}}`, validUUID),
			want:   cricket.Ball{Runs: 2, Extra: cricket.ExtraLegBye},
		},
		{
			name:   "Payload-free action",
			action: fmt.Sprintf(`{"id":"%s","type":"CANCEL_WICKET"}`, validUUID),
			want:   cricket.CancelWicket{},
		},
		{
			name:   "Null payload",
			action: fmt.Sprintf(`{"id":"%s","type":"NEW_BOWLER","payload":null}`, validUUID),
			want:   cricket.NewBowler{},
		},
		{
			name:    "Invalid UUID",
			action:  `{"id":"not-a-uuid","type":"BALL","payload":{"runs":1}}`,
			wantErr: true,
		},
		{
			name:    "Missing type",
			action:  fmt.Sprintf(`{"id":"%s"}`, validUUID),
			wantErr: true,
		},
		{
			name:    "Unknown type",
			action:  fmt.Sprintf(`{"id":"%s","type":"PITCH"}`, validUUID),
			wantErr: true,
		},
		{
			name:    "Negative timestamp",
			action:  fmt.Sprintf(`{"id":"%s","type":"BALL","timestamp":-1}`, validUUID),
			wantErr: true,
		},
		{
			name:    "Payload type mismatch",
			action:  fmt.Sprintf(`{"id":"%s","type":"BALL","payload":{"runs":"four"}}`, validUUID),
			wantErr: true,
		},
		{
			name:    "Player ID too long",
			action:  fmt.Sprintf(`{"id":"%s","type":"NEW_BATSMAN","payload":{"batsmanId":"%s"}}`, validUUID, strings.Repeat("p", maxIDLen+1)),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var env ActionEnvelope
			if err := json.Unmarshal([]byte(tt.action), &env); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			got, err := ValidateAction(env)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAction() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ValidateAction() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestValidateActions(t *testing.T) {
	ball := func(n int) ActionEnvelope { return envelope(n, cricket.ActBall, `{"runs":1}`) }
	big := make([]ActionEnvelope, MaxBatchSize+1)
	for i := range big {
		big[i] = ball(i)
	}

	tests := []struct {
		name    string
		batch   []ActionEnvelope
		wantErr string
	}{
		{"Empty", nil, "no actions"},
		{"TooLarge", big, "too large"},
		{"DuplicateID", []ActionEnvelope{ball(1), ball(1)}, "duplicate action ID"},
		{"BadAction", []ActionEnvelope{ball(1), {ID: "x", Type: cricket.ActBall}}, "index 1"},
		{"Valid", big[:MaxBatchSize], ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions, err := ValidateActions(tt.batch)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if len(actions) != len(tt.batch) {
					t.Errorf("Got %d actions, want %d", len(actions), len(tt.batch))
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateTeams(t *testing.T) {
	players := func(n int) []cricket.Player {
		out := make([]cricket.Player, n)
		for i := range out {
			out[i] = cricket.Player{ID: fmt.Sprintf("p%d", i), Name: "Player", Role: cricket.RoleBatsman}
		}
		return out
	}
	tests := []struct {
		name    string
		teams   []cricket.Team
		wantErr bool
	}{
		{"Valid", []cricket.Team{{ID: "t1", Name: "One", ShortName: "ONE", Players: players(11)}}, false},
		{"MissingID", []cricket.Team{{Name: "One"}}, true},
		{"ShortNameTooLong", []cricket.Team{{ID: "t1", Name: "One", ShortName: "ELEVENCHARS"}}, true},
		{"TooManyPlayers", []cricket.Team{{ID: "t1", Name: "One", Players: players(31)}}, true},
		{"PlayerWithoutName", []cricket.Team{{ID: "t1", Name: "One", Players: []cricket.Player{{ID: "p1"}}}}, true},
		{"DuplicatePlayer", []cricket.Team{{ID: "t1", Name: "One", Players: []cricket.Player{{ID: "p1", Name: "A"}, {ID: "p1", Name: "B"}}}}, true},
		{"DuplicateTeam", []cricket.Team{{ID: "t1", Name: "One"}, {ID: "t1", Name: "Two"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateTeams(tt.teams); (err != nil) != tt.wantErr {
				t.Errorf("ValidateTeams() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateMatches(t *testing.T) {
	base := cricket.Match{ID: "m1", HomeTeamID: "a", AwayTeamID: "b", Format: cricket.FormatT20, MaxOvers: 20}
	with := func(fn func(*cricket.Match)) []cricket.Match {
		m := base
		fn(&m)
		return []cricket.Match{m}
	}
	tests := []struct {
		name    string
		matches []cricket.Match
		wantErr bool
	}{
		{"Valid", []cricket.Match{base}, false},
		{"SameTeams", with(func(m *cricket.Match) { m.AwayTeamID = "a" }), true},
		{"BadFormat", with(func(m *cricket.Match) { m.Format = "Hundred" }), true},
		{"TooManyOvers", with(func(m *cricket.Match) { m.MaxOvers = 201 }), true},
		{"ForeignTossWinner", with(func(m *cricket.Match) { m.TossWinnerID = "c" }), true},
		{"ForeignWinner", with(func(m *cricket.Match) { m.WinnerTeamID = "c" }), true},
		{"InningsTeams", with(func(m *cricket.Match) {
			m.Innings = []cricket.Innings{{BattingTeamID: "a", BowlingTeamID: "a"}}
		}), true},
		{"ThreeInnings", with(func(m *cricket.Match) {
			m.Innings = make([]cricket.Innings, 3)
		}), true},
		{"CurrentInnings", with(func(m *cricket.Match) {
			m.Status = cricket.StatusLive
			m.Innings = []cricket.Innings{{BattingTeamID: "a", BowlingTeamID: "b"}, {BattingTeamID: "b", BowlingTeamID: "a"}}
			m.CurrentInningsIndex = 1
		}), false},
		{"IndexPastInnings", with(func(m *cricket.Match) {
			m.Status = cricket.StatusLive
			m.Innings = []cricket.Innings{{BattingTeamID: "a", BowlingTeamID: "b", TotalRuns: 150, IsClosed: true}}
			m.CurrentInningsIndex = 1
		}), true},
		{"IndexWithoutInnings", with(func(m *cricket.Match) {
			m.Status = cricket.StatusCompleted
			m.CurrentInningsIndex = 1
		}), true},
		{"DuplicateMatch", []cricket.Match{base, base}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateMatches(tt.matches); (err != nil) != tt.wantErr {
				t.Errorf("ValidateMatches() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSeed(t *testing.T) {
	d := persistence.Seed(time.Now())
	if err := ValidateTeams(d.Teams); err != nil {
		t.Errorf("Seed teams: %v", err)
	}
	if err := ValidateMatches(d.Matches); err != nil {
		t.Errorf("Seed matches: %v", err)
	}
	if err := ValidateTournaments(d.Tournaments); err != nil {
		t.Errorf("Seed tournaments: %v", err)
	}
}
