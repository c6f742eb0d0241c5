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
	"slices"
)

var (
	// ErrWrongPhase is returned when an action is not accepted in the
	// current phase.
	ErrWrongPhase = errors.New("action not allowed in current phase")
	// ErrInvalidAction is returned for actions with missing or inconsistent
	// fields.
	ErrInvalidAction = errors.New("invalid action")
	// ErrMatchOver is returned for any action on a concluded match.
	ErrMatchOver = errors.New("match is over")
)

// Phase tags the scoring state.
type Phase string

const (
	PhaseToss         Phase = "TOSS"
	PhaseOpeners      Phase = "OPENERS"
	PhaseInPlay       Phase = "IN_PLAY"
	PhaseWicket       Phase = "WICKET"
	PhaseNewBatsman   Phase = "NEW_BATSMAN"
	PhaseNewBowler    Phase = "NEW_BOWLER"
	PhaseInningsBreak Phase = "INNINGS_BREAK"
	PhaseMatchOver    Phase = "MATCH_OVER"
)

// Live reports whether the phase belongs to a match in progress.
func (p Phase) Live() bool {
	switch p {
	case PhaseOpeners, PhaseInPlay, PhaseWicket, PhaseNewBatsman, PhaseNewBowler, PhaseInningsBreak:
		return true
	}
	return false
}

// Pointers are the active players and the phase-specific fields. They are
// persisted with the match so that scoring resumes where it stopped.
//
// PlayerOutID is the preselected batter in WICKET and the dismissed batter
// in NEW_BATSMAN. OverEnded is only meaningful in NEW_BATSMAN.
type Pointers struct {
	Phase            Phase  `json:"phase"`
	StrikerID        string `json:"strikerId,omitempty"`
	NonStrikerID     string `json:"nonStrikerId,omitempty"`
	BowlerID         string `json:"bowlerId,omitempty"`
	PreviousBowlerID string `json:"previousBowlerId,omitempty"`
	PlayerOutID      string `json:"playerOutId,omitempty"`
	OverEnded        bool   `json:"overEnded,omitempty"`
	FreeHit          bool   `json:"freeHit,omitempty"`
}

// State is the scoring state of one match.
type State struct {
	Pointers
	Match Match
}

// NewState returns the state of a match that has not had its toss yet.
func NewState(m Match) State {
	m = m.Clone()
	if m.Status == "" {
		m.Status = StatusScheduled
	}
	s := State{Pointers: Pointers{Phase: PhaseToss}, Match: m}
	s.Match.Scoring = nil
	return s
}

// Snapshot returns the match with the current pointers attached, ready to be
// stored.
func (s State) Snapshot() Match {
	m := s.Match.Clone()
	p := s.Pointers
	m.Scoring = &p
	return m
}

// Apply runs one transition. It never modifies s; on error the returned
// state is s itself. The returned events are the deliveries appended by the
// transition, in order.
func Apply(s State, a Action, r Rosters) (State, []BallEvent, error) {
	if a == nil {
		return s, nil, fmt.Errorf("%w: nil action", ErrInvalidAction)
	}
	if s.Phase == PhaseMatchOver || s.Match.Status == StatusCompleted {
		return s, nil, ErrMatchOver
	}

	next := State{Pointers: s.Pointers, Match: s.Match.Clone()}
	before := next.ballCount()

	var err error
	switch act := a.(type) {
	case Toss:
		err = next.toss(act, r)
	case Openers:
		err = next.openers(act, r)
	case Ball:
		err = next.ball(act, r)
	case BeginWicket:
		err = next.beginWicket()
	case Wicket:
		err = next.wicket(act, r)
	case CancelWicket:
		err = next.cancelWicket()
	case NewBatsman:
		err = next.newBatsman(act, r)
	case NewBowler:
		err = next.newBowler(act, r)
	case StartSecondInnings:
		err = next.startSecondInnings()
	case Correct:
		err = next.correct(act, r)
	case Conclude:
		err = next.conclude()
	default:
		err = fmt.Errorf("%w: unsupported action %T", ErrInvalidAction, a)
	}
	if err != nil {
		return s, nil, err
	}

	var events []BallEvent
	if in := next.Match.CurrentInnings(); in != nil && len(in.Balls) > before {
		events = slices.Clone(in.Balls[before:])
	}
	p := next.Pointers
	next.Match.Scoring = &p
	return next, events, nil
}

func (s *State) ballCount() int {
	if in := s.Match.CurrentInnings(); in != nil {
		return len(in.Balls)
	}
	return 0
}

func (s *State) expect(a Action, phases ...Phase) error {
	if slices.Contains(phases, s.Phase) {
		return nil
	}
	return fmt.Errorf("%w: %s during %s", ErrWrongPhase, a.Kind(), s.Phase)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidAction, fmt.Sprintf(format, args...))
}

func (s *State) innings() *Innings {
	return s.Match.CurrentInnings()
}

func (s *State) swapStrike() {
	s.StrikerID, s.NonStrikerID = s.NonStrikerID, s.StrikerID
}

// clearPlayers resets every pointer except the phase.
func (s *State) clearPlayers() {
	s.Pointers = Pointers{Phase: s.Phase}
}

func (s *State) toss(a Toss, r Rosters) error {
	if err := s.expect(a, PhaseToss); err != nil {
		return err
	}
	m := &s.Match
	if !m.HasTeam(a.WinnerID) {
		return invalid("toss winner %q is not playing", a.WinnerID)
	}
	if a.Decision != DecisionBat && a.Decision != DecisionBowl {
		return invalid("toss decision %q", a.Decision)
	}
	for _, id := range []string{m.HomeTeamID, m.AwayTeamID} {
		if _, ok := r[id]; !ok {
			return invalid("no roster for team %q", id)
		}
	}

	m.TossWinnerID = a.WinnerID
	m.TossDecision = a.Decision
	s.startFirstInnings()
	return nil
}

// startFirstInnings opens innings #0 for the side the recorded toss sent in.
func (s *State) startFirstInnings() {
	m := &s.Match
	batting := m.TossWinnerID
	if m.TossDecision == DecisionBowl {
		batting = m.Opponent(m.TossWinnerID)
	}
	m.Status = StatusLive
	m.Innings = []Innings{{
		BattingTeamID: batting,
		BowlingTeamID: m.Opponent(batting),
		Balls:         []BallEvent{},
	}}
	m.CurrentInningsIndex = 0
	s.Phase = PhaseOpeners
	s.clearPlayers()
}

func (s *State) openers(a Openers, r Rosters) error {
	if err := s.expect(a, PhaseOpeners); err != nil {
		return err
	}
	in := s.innings()
	if a.StrikerID == "" || a.NonStrikerID == "" || a.BowlerID == "" {
		return invalid("striker, non-striker and bowler are required")
	}
	if a.StrikerID == a.NonStrikerID {
		return invalid("striker and non-striker must differ")
	}
	if !r.Has(in.BattingTeamID, a.StrikerID) || !r.Has(in.BattingTeamID, a.NonStrikerID) {
		return invalid("openers must come from the batting side")
	}
	if !r.Has(in.BowlingTeamID, a.BowlerID) {
		return invalid("bowler %q is not in the bowling side", a.BowlerID)
	}
	s.StrikerID = a.StrikerID
	s.NonStrikerID = a.NonStrikerID
	s.BowlerID = a.BowlerID
	s.PreviousBowlerID = ""
	s.Phase = PhaseInPlay
	return nil
}

func (s *State) eventID(st Stamp) string {
	if st.EventID != "" {
		return st.EventID
	}
	return fmt.Sprintf("i%d-b%d", s.Match.CurrentInningsIndex, len(s.innings().Balls)+1)
}

func (s *State) ball(a Ball, r Rosters) error {
	if err := s.expect(a, PhaseInPlay); err != nil {
		return err
	}
	if a.Runs < 0 || a.Runs > MaxBallRuns {
		return invalid("runs %d out of range", a.Runs)
	}
	if !a.Extra.Valid() {
		return invalid("extra type %q", a.Extra)
	}
	if s.StrikerID == "" || s.NonStrikerID == "" || s.BowlerID == "" {
		return invalid("active players are not set")
	}

	in := s.innings()
	legal := in.LegalBalls()
	ev := BallEvent{
		ID:           s.eventID(a.Stamp),
		OverNumber:   legal / 6,
		BallNumber:   legal%6 + 1,
		BowlerID:     s.BowlerID,
		StrikerID:    s.StrikerID,
		NonStrikerID: s.NonStrikerID,
		Runs:         a.Runs,
		IsExtra:      a.Extra != ExtraNone,
		ExtraType:    a.Extra,
		Timestamp:    a.Timestamp,
	}
	ev.Commentary = DescribeBall(ev)
	in.Balls = append(in.Balls, ev)
	in.TotalRuns += ev.TeamRuns()
	if ev.Legal() {
		legal++
	}
	in.OversBowled = OversValue(legal)
	overDone := ev.Legal() && legal%6 == 0

	if a.Runs%2 == 1 {
		s.swapStrike()
	}
	if overDone {
		s.swapStrike()
	}
	// A free hit carries over a wide and ends on any other delivery.
	s.FreeHit = a.Extra == ExtraNoBall || (s.FreeHit && a.Extra == ExtraWide)

	switch {
	case s.chaseComplete():
		s.finish(false)
	case s.oversExhausted(legal):
		s.endInnings()
	case overDone:
		s.PreviousBowlerID = s.BowlerID
		s.Phase = PhaseNewBowler
	}
	return nil
}

func (s *State) beginWicket() error {
	if err := s.expect(BeginWicket{}, PhaseInPlay); err != nil {
		return err
	}
	s.Phase = PhaseWicket
	s.PlayerOutID = s.StrikerID
	return nil
}

func (s *State) cancelWicket() error {
	if err := s.expect(CancelWicket{}, PhaseWicket); err != nil {
		return err
	}
	s.Phase = PhaseInPlay
	s.PlayerOutID = ""
	return nil
}

func (s *State) wicket(a Wicket, r Rosters) error {
	if err := s.expect(a, PhaseInPlay, PhaseWicket); err != nil {
		return err
	}
	if !a.Type.Valid() {
		return invalid("wicket type %q", a.Type)
	}
	out := a.PlayerOutID
	if out == "" {
		out = s.PlayerOutID
	}
	if out == "" {
		out = s.StrikerID
	}
	if out == "" || (out != s.StrikerID && out != s.NonStrikerID) {
		return invalid("dismissed player %q is not at the crease", out)
	}
	in := s.innings()
	fielder := ""
	if a.Type.NeedsFielder() {
		if a.FielderID == "" {
			return invalid("%s requires a fielder", a.Type)
		}
		if !r.Has(in.BowlingTeamID, a.FielderID) {
			return invalid("fielder %q is not in the bowling side", a.FielderID)
		}
		fielder = a.FielderID
	}

	legal := in.LegalBalls()
	ev := BallEvent{
		ID:                s.eventID(a.Stamp),
		OverNumber:        legal / 6,
		BallNumber:        legal%6 + 1,
		BowlerID:          s.BowlerID,
		StrikerID:         s.StrikerID,
		NonStrikerID:      s.NonStrikerID,
		IsWicket:          true,
		WicketType:        a.Type,
		DismissedPlayerID: out,
		FielderID:         fielder,
		Commentary:        fmt.Sprintf("OUT! %s is gone!", r.PlayerName(out)),
		Timestamp:         a.Timestamp,
	}
	in.Balls = append(in.Balls, ev)
	in.Wickets++
	legal++
	in.OversBowled = OversValue(legal)
	overDone := legal%6 == 0
	s.FreeHit = false

	switch {
	case in.Wickets >= r.Size(in.BattingTeamID)-1:
		s.endInnings()
	case s.oversExhausted(legal):
		s.endInnings()
	default:
		s.Phase = PhaseNewBatsman
		s.PlayerOutID = out
		s.OverEnded = overDone
		if overDone {
			s.PreviousBowlerID = s.BowlerID
		}
	}
	return nil
}

// dismissed reports whether playerID has already been out in the innings.
func dismissed(in *Innings, playerID string) bool {
	for _, b := range in.Balls {
		if b.IsWicket && b.DismissedPlayerID == playerID {
			return true
		}
	}
	return false
}

func (s *State) newBatsman(a NewBatsman, r Rosters) error {
	if err := s.expect(a, PhaseNewBatsman); err != nil {
		return err
	}
	in := s.innings()
	survivor := s.StrikerID
	if s.PlayerOutID == s.StrikerID {
		survivor = s.NonStrikerID
	}
	incoming := a.BatsmanID
	switch {
	case incoming == "":
		return invalid("incoming batter is required")
	case !r.Has(in.BattingTeamID, incoming):
		return invalid("batter %q is not in the batting side", incoming)
	case incoming == survivor:
		return invalid("batter %q is already at the crease", incoming)
	case dismissed(in, incoming):
		return invalid("batter %q is already out", incoming)
	}
	facing := a.FacingID
	if facing == "" {
		facing = incoming
	}
	if facing != incoming && facing != survivor {
		return invalid("facing batter %q is not at the crease", facing)
	}

	s.StrikerID = facing
	if facing == incoming {
		s.NonStrikerID = survivor
	} else {
		s.NonStrikerID = incoming
	}
	overEnded := s.OverEnded
	s.PlayerOutID = ""
	s.OverEnded = false
	if overEnded {
		s.swapStrike()
		s.Phase = PhaseNewBowler
		return nil
	}
	s.Phase = PhaseInPlay
	return nil
}

func (s *State) newBowler(a NewBowler, r Rosters) error {
	if err := s.expect(a, PhaseNewBowler); err != nil {
		return err
	}
	in := s.innings()
	if a.BowlerID == "" {
		return invalid("bowler is required")
	}
	if !r.Has(in.BowlingTeamID, a.BowlerID) {
		return invalid("bowler %q is not in the bowling side", a.BowlerID)
	}
	if a.BowlerID == s.PreviousBowlerID {
		return invalid("bowler %q bowled the previous over", a.BowlerID)
	}
	s.BowlerID = a.BowlerID
	s.Phase = PhaseInPlay
	return nil
}

func (s *State) startSecondInnings() error {
	if err := s.expect(StartSecondInnings{}, PhaseInningsBreak); err != nil {
		return err
	}
	m := &s.Match
	if len(m.Innings) != 1 {
		return invalid("second innings already started")
	}
	first := m.Innings[0]
	m.Innings = append(m.Innings, Innings{
		BattingTeamID: first.BowlingTeamID,
		BowlingTeamID: first.BattingTeamID,
		Balls:         []BallEvent{},
	})
	m.CurrentInningsIndex = 1
	s.Phase = PhaseOpeners
	s.clearPlayers()
	return nil
}

func (s *State) correct(a Correct, r Rosters) error {
	if err := s.expect(a, PhaseInPlay); err != nil {
		return err
	}
	in := s.innings()
	striker, nonStriker, bowler := s.StrikerID, s.NonStrikerID, s.BowlerID
	if a.StrikerID != "" {
		striker = a.StrikerID
	}
	if a.NonStrikerID != "" {
		nonStriker = a.NonStrikerID
	}
	if a.BowlerID != "" {
		bowler = a.BowlerID
	}
	if striker == nonStriker {
		return invalid("striker and non-striker must differ")
	}
	if !r.Has(in.BattingTeamID, striker) || !r.Has(in.BattingTeamID, nonStriker) {
		return invalid("batters must come from the batting side")
	}
	if !r.Has(in.BowlingTeamID, bowler) {
		return invalid("bowler %q is not in the bowling side", bowler)
	}
	s.StrikerID, s.NonStrikerID, s.BowlerID = striker, nonStriker, bowler
	return nil
}

func (s *State) conclude() error {
	if !s.Phase.Live() {
		return s.expect(Conclude{})
	}
	s.finish(true)
	return nil
}

// chaseComplete reports whether the side batting second has passed the
// first-innings total.
func (s *State) chaseComplete() bool {
	m := &s.Match
	if m.CurrentInningsIndex != 1 || len(m.Innings) < 2 {
		return false
	}
	return m.Innings[1].TotalRuns > m.Innings[0].TotalRuns
}

func (s *State) oversExhausted(legalBalls int) bool {
	return s.Match.MaxOvers > 0 && legalBalls >= s.Match.MaxOvers*6
}

func (s *State) endInnings() {
	s.innings().IsClosed = true
	if s.Match.CurrentInningsIndex == 0 {
		s.Phase = PhaseInningsBreak
		s.clearPlayers()
		return
	}
	s.finish(false)
}

func (s *State) finish(manual bool) {
	if in := s.innings(); in != nil {
		in.IsClosed = true
	}
	res := Decide(s.Match, manual)
	s.Match.Result = &res
	s.Match.WinnerTeamID = res.WinnerTeamID
	s.Match.Status = StatusCompleted
	s.Phase = PhaseMatchOver
	s.clearPlayers()
}
