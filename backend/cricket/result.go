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

import "fmt"

// ResultKind classifies an outcome. ResultUndecided marks a match concluded
// before both sides batted.
type ResultKind string

const (
	ResultWin       ResultKind = "WIN"
	ResultTie       ResultKind = "TIE"
	ResultUndecided ResultKind = "UNDECIDED"
)

// Result is the outcome of a concluded match.
type Result struct {
	Kind         ResultKind `json:"kind"`
	WinnerTeamID string     `json:"winnerTeamId,omitempty"`
	ByRuns       int        `json:"byRuns,omitempty"`
	ByWickets    int        `json:"byWickets,omitempty"`
	Manual       bool       `json:"manual,omitempty"`
}

// Decide compares the innings totals. With fewer than two innings there is
// no comparison to make and the result is undecided.
func Decide(m Match, manual bool) Result {
	if len(m.Innings) < 2 {
		return Result{Kind: ResultUndecided, Manual: manual}
	}
	first, second := m.Innings[0], m.Innings[1]
	switch {
	case second.TotalRuns > first.TotalRuns:
		return Result{
			Kind:         ResultWin,
			WinnerTeamID: second.BattingTeamID,
			ByWickets:    SideWickets - second.Wickets,
			Manual:       manual,
		}
	case first.TotalRuns > second.TotalRuns:
		return Result{
			Kind:         ResultWin,
			WinnerTeamID: first.BattingTeamID,
			ByRuns:       first.TotalRuns - second.TotalRuns,
			Manual:       manual,
		}
	}
	return Result{Kind: ResultTie, Manual: manual}
}

// Describe renders the result for display, e.g. "Sydney Sixers won by 20 runs".
func (r Result) Describe(teamName func(id string) string) string {
	switch r.Kind {
	case ResultWin:
		name := teamName(r.WinnerTeamID)
		if r.ByRuns > 0 {
			return fmt.Sprintf("%s won by %d runs", name, r.ByRuns)
		}
		return fmt.Sprintf("%s won by %d wickets", name, r.ByWickets)
	case ResultTie:
		return "Match Drawn/Tied"
	}
	return "No result"
}

// Chase describes the second-innings target.
type Chase struct {
	Target         int     `json:"target"`
	RunsNeeded     int     `json:"runsNeeded"`
	BallsRemaining int     `json:"ballsRemaining"`
	RequiredRate   float64 `json:"requiredRate"`
	Limited        bool    `json:"limited"`
}

// Target returns the first-innings total plus one once the first innings
// has closed.
func Target(m Match) (int, bool) {
	if len(m.Innings) == 0 || !m.Innings[0].IsClosed {
		return 0, false
	}
	return m.Innings[0].TotalRuns + 1, true
}

// ChaseInfo reports what the side batting second needs. It is available
// from the innings break onwards.
func ChaseInfo(m Match) (Chase, bool) {
	target, ok := Target(m)
	if !ok {
		return Chase{}, false
	}
	c := Chase{Target: target, RunsNeeded: target}
	legal := 0
	if len(m.Innings) > 1 {
		c.RunsNeeded = max(0, target-m.Innings[1].TotalRuns)
		legal = m.Innings[1].LegalBalls()
	}
	if m.MaxOvers > 0 {
		c.Limited = true
		c.BallsRemaining = max(0, m.MaxOvers*6-legal)
		if c.BallsRemaining > 0 {
			c.RequiredRate = float64(c.RunsNeeded) * 6 / float64(c.BallsRemaining)
		}
	}
	return c, true
}

// Describe renders the chase, e.g. "Need 21 off 30 balls".
func (c Chase) Describe() string {
	if c.RunsNeeded == 0 {
		return "Target reached"
	}
	if !c.Limited {
		return fmt.Sprintf("Need %d runs", c.RunsNeeded)
	}
	return fmt.Sprintf("Need %d off %d balls", c.RunsNeeded, c.BallsRemaining)
}
