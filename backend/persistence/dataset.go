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

package persistence

import (
	"time"

	"github.com/ttbt-io/cricketkeeper/backend/cricket"
)

// Dataset holds the three collections the application works with. It is
// also the body of GET /api/init.
type Dataset struct {
	Teams       []cricket.Team       `json:"teams"`
	Matches     []cricket.Match      `json:"matches"`
	Tournaments []cricket.Tournament `json:"tournaments"`
}

// Empty reports whether there are no teams and no matches.
func (d Dataset) Empty() bool {
	return len(d.Teams) == 0 && len(d.Matches) == 0
}

// Normalize replaces nil collections with empty ones so they encode as [].
func (d *Dataset) Normalize() {
	if d.Teams == nil {
		d.Teams = []cricket.Team{}
	}
	if d.Matches == nil {
		d.Matches = []cricket.Match{}
	}
	if d.Tournaments == nil {
		d.Tournaments = []cricket.Tournament{}
	}
}

// Well-known ids in the seed data.
const (
	SeedTournamentID = "tour_1"
	SeedMatchID      = "match_1"
	SeedHistoryID    = "match_history_1"

	seedRohit   = "player_rohit_sharma"
	seedKishan  = "player_ishan_kishan"
	seedAbbott  = "player_sean_abbott"
	seedDwarsh  = "player_ben_dwarshuis"
	seedHomeID  = "team_ind"
	seedAwayID  = "team_aus"
	seedThirdID = "team_eng"
)

type seedPlayer struct {
	id   string
	name string
	role cricket.PlayerRole
}

func seedTeam(id, name, short, color string, players []seedPlayer) cricket.Team {
	t := cricket.Team{ID: id, Name: name, ShortName: short, Color: color}
	for _, p := range players {
		t.Players = append(t.Players, cricket.Player{ID: p.id, Name: p.name, Role: p.role})
	}
	return t
}

// Seed returns the starter data loaded into an empty store: three squads,
// a scheduled match for tomorrow, a completed match two days ago and the
// tournament containing both.
func Seed(now time.Time) Dataset {
	bat, bowl, ar, wk := cricket.RoleBatsman, cricket.RoleBowler, cricket.RoleAllRounder, cricket.RoleWicketKeeper
	teams := []cricket.Team{
		seedTeam(seedHomeID, "Mumbai Masters", "MUM", "bg-blue-600", []seedPlayer{
			{seedRohit, "R. Sharma", bat},
			{seedKishan, "I. Kishan", wk},
			{"player_suryakumar_yadav", "S. Yadav", bat},
			{"player_hardik_pandya", "H. Pandya", ar},
			{"player_jasprit_bumrah", "J. Bumrah", bowl},
			{"player_tim_david", "T. David", bat},
			{"player_akash_madhwal", "A. Madhwal", bowl},
			{"player_piyush_chawla", "P. Chawla", bowl},
			{"player_tilak_varma", "T. Varma", bat},
			{"player_gerald_coetzee", "G. Coetzee", bowl},
			{"player_nehal_wadhera", "N. Wadhera", bat},
		}),
		seedTeam(seedAwayID, "Sydney Sixers", "SYD", "bg-pink-600", []seedPlayer{
			{"player_steve_smith", "S. Smith", bat},
			{"player_josh_philippe", "J. Philippe", wk},
			{"player_moises_henriques", "M. Henriques", ar},
			{seedAbbott, "S. Abbott", bowl},
			{seedDwarsh, "B. Dwarshuis", bowl},
			{"player_jordan_silk", "J. Silk", bat},
			{"player_todd_murphy", "T. Murphy", bowl},
			{"player_izharulhaq_naveed", "I. Naveed", bowl},
			{"player_kurtis_patterson", "K. Patterson", bat},
			{"player_hayden_kerr", "H. Kerr", ar},
			{"player_jack_edwards", "J. Edwards", bat},
		}),
		seedTeam(seedThirdID, "London Spirit", "LON", "bg-indigo-600", []seedPlayer{
			{"player_zak_crawley", "Z. Crawley", bat},
			{"player_dan_lawrence", "D. Lawrence", bat},
			{"player_liam_dawson", "L. Dawson", ar},
			{"player_olly_stone", "O. Stone", bowl},
			{"player_mark_wood", "M. Wood", bowl},
			{"player_ravi_bopara", "R. Bopara", ar},
			{"player_adam_rossington", "A. Rossington", wk},
			{"player_dan_worrall", "D. Worrall", bowl},
			{"player_matt_critchley", "M. Critchley", ar},
			{"player_leus_du_plooy", "L. Du Plooy", bat},
			{"player_richard_gleeson", "R. Gleeson", bowl},
		}),
	}

	ball := func(id string, over, n int, bowler, striker, nonStriker string, runs int, text string) cricket.BallEvent {
		return cricket.BallEvent{
			ID: id, OverNumber: over, BallNumber: n,
			BowlerID: bowler, StrikerID: striker, NonStrikerID: nonStriker,
			Runs: runs, Commentary: text,
		}
	}
	history := cricket.Match{
		ID:                  SeedHistoryID,
		TournamentID:        SeedTournamentID,
		HomeTeamID:          seedHomeID,
		AwayTeamID:          seedAwayID,
		Date:                now.Add(-48 * time.Hour).UTC().Format(time.RFC3339),
		Venue:               "Eden Gardens",
		Format:              cricket.FormatT20,
		MaxOvers:            5,
		TossWinnerID:        seedHomeID,
		TossDecision:        cricket.DecisionBat,
		CurrentInningsIndex: 1,
		Status:              cricket.StatusCompleted,
		WinnerTeamID:        seedHomeID,
		Result:              &cricket.Result{Kind: cricket.ResultWin, WinnerTeamID: seedHomeID, ByRuns: 4},
		Innings: []cricket.Innings{
			{
				BattingTeamID: seedHomeID,
				BowlingTeamID: seedAwayID,
				TotalRuns:     22,
				OversBowled:   1.1,
				IsClosed:      true,
				Balls: []cricket.BallEvent{
					ball("i0-b1", 0, 1, seedAbbott, seedRohit, seedKishan, 4, "Four runs! Beautiful cover drive."),
					ball("i0-b2", 0, 2, seedAbbott, seedRohit, seedKishan, 0, "No run."),
					ball("i0-b3", 0, 3, seedAbbott, seedRohit, seedKishan, 6, "SIX! Massive hit over mid-wicket."),
					ball("i0-b4", 0, 4, seedAbbott, seedRohit, seedKishan, 1, "Single taken."),
					ball("i0-b5", 0, 5, seedAbbott, seedKishan, seedRohit, 1, "Single to rotate strike."),
					ball("i0-b6", 0, 6, seedAbbott, seedRohit, seedKishan, 4, "Four more to end the over."),
					ball("i0-b7", 1, 1, seedDwarsh, seedKishan, seedRohit, 6, "Another six! He is on fire."),
				},
			},
			{
				BattingTeamID: seedAwayID,
				BowlingTeamID: seedHomeID,
				TotalRuns:     18,
				Wickets:       4,
				OversBowled:   5,
				IsClosed:      true,
				Balls:         []cricket.BallEvent{},
			},
		},
	}
	upcoming := cricket.Match{
		ID:           SeedMatchID,
		TournamentID: SeedTournamentID,
		HomeTeamID:   seedHomeID,
		AwayTeamID:   seedAwayID,
		Date:         now.Add(24 * time.Hour).UTC().Format(time.RFC3339),
		Venue:        "Wankhede Stadium",
		Format:       cricket.FormatT20,
		MaxOvers:     20,
		Status:       cricket.StatusScheduled,
		Innings:      []cricket.Innings{},
	}

	return Dataset{
		Teams:   teams,
		Matches: []cricket.Match{upcoming, history},
		Tournaments: []cricket.Tournament{{
			ID:       SeedTournamentID,
			Name:     "Champions League 2025",
			Status:   cricket.TournamentOngoing,
			TeamIDs:  []string{seedHomeID, seedAwayID, seedThirdID},
			MatchIDs: []string{SeedMatchID, SeedHistoryID},
		}},
	}
}
