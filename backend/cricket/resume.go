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

// Resume rebuilds the scoring state of a stored match.
//
// Matches written by this package carry their pointers and resume exactly.
// Older records only have the ball log, so the active players are derived
// from the last delivery with the usual strike rotation applied.
func Resume(m Match) State {
	m = m.Clone()
	if m.Status == StatusCompleted {
		s := State{Pointers: Pointers{Phase: PhaseMatchOver}, Match: m}
		s.Match.Scoring = nil
		return s
	}
	if m.Scoring != nil && m.Scoring.Phase != "" {
		s := State{Pointers: *m.Scoring, Match: m}
		s.Match.Scoring = nil
		return s
	}
	if m.Status == "" {
		m.Status = StatusScheduled
	}

	s := State{Match: m}
	if n := len(s.Match.Innings); n > 0 && s.Match.CurrentInnings() == nil {
		s.Match.CurrentInningsIndex = n - 1
	}
	in := s.Match.CurrentInnings()
	switch {
	case in == nil && s.Match.HasTeam(s.Match.TossWinnerID):
		// The toss is never taken twice.
		s.startFirstInnings()
	case in == nil:
		s.Phase = PhaseToss
	case in.IsClosed && s.Match.CurrentInningsIndex == 0 && len(s.Match.Innings) == 1:
		s.Phase = PhaseInningsBreak
	case in.IsClosed:
		s.Phase = PhaseMatchOver
	case len(in.Balls) == 0:
		s.Phase = PhaseOpeners
	default:
		s.resumeFromLastBall(in)
	}
	return s
}

func (s *State) resumeFromLastBall(in *Innings) {
	last := in.Balls[len(in.Balls)-1]
	legal := in.LegalBalls()
	overDone := last.Legal() && legal > 0 && legal%6 == 0

	s.StrikerID = last.StrikerID
	s.NonStrikerID = last.NonStrikerID
	s.BowlerID = last.BowlerID

	if last.IsWicket {
		s.Phase = PhaseNewBatsman
		s.PlayerOutID = last.DismissedPlayerID
		s.OverEnded = overDone
		if overDone {
			s.PreviousBowlerID = last.BowlerID
		}
		return
	}

	if last.Runs%2 == 1 {
		s.swapStrike()
	}
	if overDone {
		s.swapStrike()
		s.PreviousBowlerID = last.BowlerID
		s.Phase = PhaseNewBowler
		return
	}
	s.FreeHit = last.Extra() == ExtraNoBall
	s.Phase = PhaseInPlay
}
