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

// Package cricket holds the match model and the live scoring state machine.
package cricket

import (
	"fmt"
	"slices"
	"strconv"
)

// PlayerRole is the playing role shown on a roster.
type PlayerRole string

const (
	RoleBatsman      PlayerRole = "Batsman"
	RoleBowler       PlayerRole = "Bowler"
	RoleAllRounder   PlayerRole = "All-Rounder"
	RoleWicketKeeper PlayerRole = "Wicket Keeper"
)

// Valid reports whether r is a known role. The empty role is accepted.
func (r PlayerRole) Valid() bool {
	switch r {
	case "", RoleBatsman, RoleBowler, RoleAllRounder, RoleWicketKeeper:
		return true
	}
	return false
}

// ExtraType is the kind of extra awarded on a delivery.
type ExtraType string

const (
	ExtraNone   ExtraType = ""
	ExtraWide   ExtraType = "WD"
	ExtraNoBall ExtraType = "NB"
	ExtraLegBye ExtraType = "LB"
	ExtraBye    ExtraType = "B"
)

const (
	// MaxBallRuns caps the runs recorded off a single delivery.
	MaxBallRuns = 7
	// SideWickets is the wicket count used for a chasing side's margin.
	SideWickets = 10
)

// Valid reports whether e is a known extra type (or none).
func (e ExtraType) Valid() bool {
	switch e {
	case ExtraNone, ExtraWide, ExtraNoBall, ExtraLegBye, ExtraBye:
		return true
	}
	return false
}

// WicketType is the mode of dismissal.
type WicketType string

const (
	WicketBowled    WicketType = "BOWLED"
	WicketCaught    WicketType = "CAUGHT"
	WicketLBW       WicketType = "LBW"
	WicketRunOut    WicketType = "RUN_OUT"
	WicketStumped   WicketType = "STUMPED"
	WicketHitWicket WicketType = "HIT_WICKET"
	WicketOther     WicketType = "OTHER"
)

// Valid reports whether w is a known dismissal.
func (w WicketType) Valid() bool {
	switch w {
	case WicketBowled, WicketCaught, WicketLBW, WicketRunOut, WicketStumped, WicketHitWicket, WicketOther:
		return true
	}
	return false
}

// NeedsFielder reports whether the dismissal must name a fielder.
func (w WicketType) NeedsFielder() bool {
	return w == WicketCaught || w == WicketRunOut || w == WicketStumped
}

// CreditsBowler reports whether the dismissal counts in the bowler's figures.
func (w WicketType) CreditsBowler() bool {
	return w != WicketRunOut
}

type MatchStatus string

const (
	StatusScheduled MatchStatus = "Scheduled"
	StatusLive      MatchStatus = "Live"
	StatusCompleted MatchStatus = "Completed"
)

type Format string

const (
	FormatT20    Format = "T20"
	FormatODI    Format = "ODI"
	FormatTest   Format = "Test"
	FormatCustom Format = "Custom"
)

type TossDecision string

const (
	DecisionBat  TossDecision = "BAT"
	DecisionBowl TossDecision = "BOWL"
)

type TournamentStatus string

const (
	TournamentUpcoming  TournamentStatus = "UPCOMING"
	TournamentOngoing   TournamentStatus = "ONGOING"
	TournamentCompleted TournamentStatus = "COMPLETED"
)

// CareerStats are the optional headline numbers entered with a player.
type CareerStats struct {
	Matches    int     `json:"matches"`
	Runs       int     `json:"runs"`
	Wickets    int     `json:"wickets"`
	Average    float64 `json:"average"`
	StrikeRate float64 `json:"strikeRate"`
	Economy    float64 `json:"economy"`
}

type Player struct {
	ID         string       `json:"id" validate:"required,max=128"`
	Name       string       `json:"name" validate:"required,max=100"`
	Role       PlayerRole   `json:"role"`
	BattingAvg *float64     `json:"battingAvg,omitempty" validate:"omitempty,min=0"`
	BowlingAvg *float64     `json:"bowlingAvg,omitempty" validate:"omitempty,min=0"`
	Stats      *CareerStats `json:"stats,omitempty"`
}

// Team is a named side. The order of Players is the default batting order.
type Team struct {
	ID        string   `json:"id" validate:"required,max=128"`
	Name      string   `json:"name" validate:"required,max=100"`
	ShortName string   `json:"shortName" validate:"max=10"`
	Color     string   `json:"color,omitempty" validate:"max=50"`
	Players   []Player `json:"players" validate:"max=30,dive"`
}

// Player returns the roster entry for id.
func (t Team) Player(id string) (Player, bool) {
	for _, p := range t.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// BallEvent records one delivery. Events are never modified once appended
// to an innings.
type BallEvent struct {
	ID                string     `json:"id,omitempty"`
	OverNumber        int        `json:"overNumber"`
	BallNumber        int        `json:"ballNumber"`
	BowlerID          string     `json:"bowlerId"`
	StrikerID         string     `json:"strikerId"`
	NonStrikerID      string     `json:"nonStrikerId"`
	Runs              int        `json:"runs"`
	IsWicket          bool       `json:"isWicket"`
	WicketType        WicketType `json:"wicketType,omitempty"`
	DismissedPlayerID string     `json:"dismissedPlayerId,omitempty"`
	FielderID         string     `json:"fielderId,omitempty"`
	IsExtra           bool       `json:"isExtra"`
	ExtraType         ExtraType  `json:"extraType,omitempty"`
	Commentary        string     `json:"commentary,omitempty"`
	Timestamp         int64      `json:"timestamp,omitempty"`
}

// Extra returns the extra type, or ExtraNone for a normal delivery.
func (b BallEvent) Extra() ExtraType {
	if !b.IsExtra {
		return ExtraNone
	}
	return b.ExtraType
}

// Legal reports whether the delivery counts towards the over.
func (b BallEvent) Legal() bool {
	e := b.Extra()
	return e != ExtraWide && e != ExtraNoBall
}

// TeamRuns is what the delivery adds to the batting side's total.
func (b BallEvent) TeamRuns() int {
	if !b.Legal() {
		return 1 + b.Runs
	}
	return b.Runs
}

// BatterRuns is what the delivery adds to the striker's score.
func (b BallEvent) BatterRuns() int {
	switch b.Extra() {
	case ExtraNone, ExtraNoBall:
		return b.Runs
	}
	return 0
}

// BowlerRuns is what the delivery adds to the bowler's conceded runs.
func (b BallEvent) BowlerRuns() int {
	switch b.Extra() {
	case ExtraLegBye, ExtraBye:
		return 0
	case ExtraWide, ExtraNoBall:
		return 1 + b.Runs
	}
	return b.Runs
}

// Innings is one side's turn to bat.
type Innings struct {
	BattingTeamID string      `json:"battingTeamId"`
	BowlingTeamID string      `json:"bowlingTeamId"`
	TotalRuns     int         `json:"totalRuns"`
	Wickets       int         `json:"wickets"`
	OversBowled   float64     `json:"oversBowled"`
	Balls         []BallEvent `json:"balls"`
	IsClosed      bool        `json:"isClosed"`
}

// LegalBalls counts the deliveries that count towards overs.
func (in Innings) LegalBalls() int {
	n := 0
	for _, b := range in.Balls {
		if b.Legal() {
			n++
		}
	}
	return n
}

// Overs formats a legal ball count in cricket notation, e.g. 92 -> "15.2".
func Overs(legalBalls int) string {
	return fmt.Sprintf("%d.%d", legalBalls/6, legalBalls%6)
}

// OversValue is Overs as the number stored in Innings.OversBowled.
func OversValue(legalBalls int) float64 {
	v, _ := strconv.ParseFloat(Overs(legalBalls), 64)
	return v
}

type Match struct {
	ID                  string       `json:"id" validate:"required,max=128"`
	TournamentID        string       `json:"tournamentId,omitempty" validate:"max=128"`
	HomeTeamID          string       `json:"homeTeamId" validate:"required,max=128"`
	AwayTeamID          string       `json:"awayTeamId" validate:"required,max=128,nefield=HomeTeamID"`
	Date                string       `json:"date" validate:"max=64"`
	Venue               string       `json:"venue" validate:"max=200"`
	Format              Format       `json:"format" validate:"omitempty,oneof=T20 ODI Test Custom"`
	MaxOvers            int          `json:"maxOvers" validate:"min=0,max=200"`
	TossWinnerID        string       `json:"tossWinnerId,omitempty"`
	TossDecision        TossDecision `json:"tossDecision,omitempty" validate:"omitempty,oneof=BAT BOWL"`
	CurrentInningsIndex int          `json:"currentInningsIndex" validate:"min=0,max=1"`
	Innings             []Innings    `json:"innings" validate:"max=2"`
	Status              MatchStatus  `json:"status" validate:"omitempty,oneof=Scheduled Live Completed"`
	WinnerTeamID        string       `json:"winnerTeamId,omitempty"`
	ManOfTheMatchID     string       `json:"manOfTheMatchId,omitempty"`
	Result              *Result      `json:"result,omitempty"`
	Scoring             *Pointers    `json:"scoring,omitempty"`
	Revision            string       `json:"revision,omitempty"`
	RecentActions       []string     `json:"recentActions,omitempty"`
}

// CurrentInnings returns the innings in progress, or nil before the toss.
func (m *Match) CurrentInnings() *Innings {
	if m.CurrentInningsIndex < 0 || m.CurrentInningsIndex >= len(m.Innings) {
		return nil
	}
	return &m.Innings[m.CurrentInningsIndex]
}

// Opponent returns the other side of the match.
func (m Match) Opponent(teamID string) string {
	if teamID == m.HomeTeamID {
		return m.AwayTeamID
	}
	return m.HomeTeamID
}

// HasTeam reports whether teamID plays in the match.
func (m Match) HasTeam(teamID string) bool {
	return teamID != "" && (teamID == m.HomeTeamID || teamID == m.AwayTeamID)
}

// Clone returns a deep copy of m.
func (m Match) Clone() Match {
	c := m
	c.Innings = make([]Innings, len(m.Innings))
	for i, in := range m.Innings {
		in.Balls = slices.Clone(in.Balls)
		c.Innings[i] = in
	}
	if m.Result != nil {
		r := *m.Result
		c.Result = &r
	}
	if m.Scoring != nil {
		p := *m.Scoring
		c.Scoring = &p
	}
	c.RecentActions = slices.Clone(m.RecentActions)
	return c
}

type Tournament struct {
	ID        string           `json:"id" validate:"required,max=128"`
	Name      string           `json:"name" validate:"required,max=100"`
	Status    TournamentStatus `json:"status" validate:"omitempty,oneof=UPCOMING ONGOING COMPLETED"`
	TeamIDs   []string         `json:"teamIds" validate:"dive,required"`
	MatchIDs  []string         `json:"matchIds" validate:"dive,required"`
	StartDate string           `json:"startDate,omitempty"`
	EndDate   string           `json:"endDate,omitempty"`
}

// Rosters supplies the squads of the two competing sides, keyed by team id.
type Rosters map[string]Team

// NewRosters indexes teams by id.
func NewRosters(teams ...Team) Rosters {
	r := make(Rosters, len(teams))
	for _, t := range teams {
		r[t.ID] = t
	}
	return r
}

// Has reports whether playerID is in the squad of teamID.
func (r Rosters) Has(teamID, playerID string) bool {
	t, ok := r[teamID]
	if !ok {
		return false
	}
	_, ok = t.Player(playerID)
	return ok
}

// Size returns the number of players in the squad of teamID.
func (r Rosters) Size(teamID string) int {
	return len(r[teamID].Players)
}

// PlayerName returns the display name of a player in any squad, or the id
// itself when the player is unknown.
func (r Rosters) PlayerName(playerID string) string {
	for _, t := range r {
		if p, ok := t.Player(playerID); ok {
			return p.Name
		}
	}
	return playerID
}

// TeamName returns the display name of the team, or the id when unknown.
func (r Rosters) TeamName(teamID string) string {
	if t, ok := r[teamID]; ok && t.Name != "" {
		return t.Name
	}
	return teamID
}
