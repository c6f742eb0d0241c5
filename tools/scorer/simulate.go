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

package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/ttbt-io/cricketkeeper/backend/cricket"
)

// maxSimulatedActions bounds a simulation in case the engine stops making
// progress.
const maxSimulatedActions = 10000

var (
	runWeights = []int{0, 0, 0, 1, 1, 1, 1, 2, 2, 3, 4, 4, 6}

	errStuck = errors.New("simulation did not finish")
)

// simulator picks plausible actions for whatever the match is waiting for.
type simulator struct {
	rng     *rand.Rand
	rosters cricket.Rosters
	now     func() int64
}

func (sim *simulator) battingSide(s cricket.State) (bat, bowl cricket.Team) {
	in := s.Match.CurrentInnings()
	if in == nil {
		return sim.rosters[s.Match.HomeTeamID], sim.rosters[s.Match.AwayTeamID]
	}
	return sim.rosters[in.BattingTeamID], sim.rosters[in.BowlingTeamID]
}

// nextBatter returns the first player of the batting order who is neither
// out nor at the crease.
func nextBatter(s cricket.State, bat cricket.Team) string {
	out := map[string]bool{s.StrikerID: true, s.NonStrikerID: true}
	if in := s.Match.CurrentInnings(); in != nil {
		for _, b := range in.Balls {
			if b.IsWicket {
				out[b.DismissedPlayerID] = true
			}
		}
	}
	for _, p := range bat.Players {
		if !out[p.ID] {
			return p.ID
		}
	}
	return ""
}

// bowlers returns the last five players of a side, the usual attack.
func bowlers(t cricket.Team) []string {
	var ids []string
	for _, p := range t.Players {
		ids = append(ids, p.ID)
	}
	if len(ids) > 5 {
		ids = ids[len(ids)-5:]
	}
	return ids
}

func (sim *simulator) next(s cricket.State) (cricket.Action, error) {
	bat, bowl := sim.battingSide(s)
	switch s.Phase {
	case cricket.PhaseToss:
		decision := cricket.DecisionBat
		if sim.rng.IntN(2) == 1 {
			decision = cricket.DecisionBowl
		}
		return cricket.Toss{WinnerID: s.Match.HomeTeamID, Decision: decision}, nil
	case cricket.PhaseOpeners:
		attack := bowlers(bowl)
		if len(bat.Players) < 2 || len(attack) == 0 {
			return nil, fmt.Errorf("%s or %s has too few players", bat.Name, bowl.Name)
		}
		return cricket.Openers{StrikerID: bat.Players[0].ID, NonStrikerID: bat.Players[1].ID, BowlerID: attack[0]}, nil
	case cricket.PhaseInPlay:
		switch n := sim.rng.IntN(100); {
		case n < 4:
			return cricket.Wicket{Type: cricket.WicketBowled}, nil
		case n < 7:
			return cricket.Ball{Extra: cricket.ExtraWide}, nil
		default:
			return cricket.Ball{Runs: runWeights[sim.rng.IntN(len(runWeights))]}, nil
		}
	case cricket.PhaseWicket:
		return cricket.CancelWicket{}, nil
	case cricket.PhaseNewBatsman:
		id := nextBatter(s, bat)
		if id == "" {
			return nil, fmt.Errorf("%s has no batters left", bat.Name)
		}
		return cricket.NewBatsman{BatsmanID: id}, nil
	case cricket.PhaseNewBowler:
		attack := slices.DeleteFunc(bowlers(bowl), func(id string) bool { return id == s.PreviousBowlerID })
		if len(attack) == 0 {
			return nil, fmt.Errorf("%s has no bowler for the next over", bowl.Name)
		}
		return cricket.NewBowler{BowlerID: attack[sim.rng.IntN(len(attack))]}, nil
	case cricket.PhaseInningsBreak:
		return cricket.StartSecondInnings{}, nil
	}
	return nil, fmt.Errorf("nothing to do in phase %s", s.Phase)
}

// simulate plays m to the end and returns the completed match.
func (sim *simulator) simulate(m cricket.Match) (cricket.Match, error) {
	s := cricket.Resume(m)
	for range maxSimulatedActions {
		if s.Phase == cricket.PhaseMatchOver {
			return s.Snapshot(), nil
		}
		a, err := sim.next(s)
		if err != nil {
			return cricket.Match{}, err
		}
		if s, _, err = cricket.Apply(s, cricket.WithStamp(a, "", sim.now()), sim.rosters); err != nil {
			return cricket.Match{}, fmt.Errorf("%s in %s: %w", a.Kind(), s.Phase, err)
		}
	}
	return cricket.Match{}, errStuck
}
