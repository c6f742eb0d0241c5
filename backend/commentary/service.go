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

// Package commentary produces ball commentary, tactical advice and match
// reports. Every call returns usable text: without a generator, or when the
// generator fails, a fixed fallback is returned instead.
package commentary

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/ttbt-io/cricketkeeper/backend/cricket"
)

const (
	noKeyBall   = "Great shot!"
	noKeyAdvice = "Keep the run rate ticking!"
	noKeyReport = "Match completed."

	failAdvice = "Focus on rotating the strike and punishing the loose balls."

	DefaultTimeout = 15 * time.Second
)

// Service wraps a Generator with prompts and fallbacks.
type Service struct {
	gen     Generator
	timeout time.Duration
}

// NewService returns a Service. A nil gen disables generation.
func NewService(gen Generator, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{gen: gen, timeout: timeout}
}

// Enabled reports whether a generator is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.gen != nil
}

// BallContext describes one delivery for the commentary prompt.
type BallContext struct {
	Bowler    cricket.Player
	Batsman   cricket.Player
	Outcome   string
	Runs      int
	Situation string
}

// NewBallContext describes ev. The situation is the score of in as it stood
// before ev was bowled.
func NewBallContext(ev cricket.BallEvent, in cricket.Innings, r cricket.Rosters) BallContext {
	bc := BallContext{Runs: ev.TeamRuns()}
	bc.Bowler, _ = r[in.BowlingTeamID].Player(ev.BowlerID)
	bc.Batsman, _ = r[in.BattingTeamID].Player(ev.StrikerID)
	switch {
	case ev.IsWicket:
		bc.Outcome = fmt.Sprintf("WICKET (%s)", ev.WicketType)
		bc.Runs = 0
		bc.Situation = "Critical wicket!"
		return bc
	case ev.IsExtra:
		bc.Outcome = fmt.Sprintf("%s + %d", ev.ExtraType, ev.Runs)
	default:
		bc.Outcome = fmt.Sprintf("%d runs", ev.Runs)
	}
	bc.Situation = situationBefore(ev, in)
	return bc
}

// situationBefore returns the score of in before ev. An event that is not
// part of in yet is about to be appended.
func situationBefore(ev cricket.BallEvent, in cricket.Innings) string {
	i := slices.Index(in.Balls, ev)
	if i < 0 {
		return fmt.Sprintf("%d/%d (%s)", in.TotalRuns, in.Wickets, cricket.Overs(in.LegalBalls()))
	}
	var runs, wickets, legal int
	for _, b := range in.Balls[:i] {
		runs += b.TeamRuns()
		if b.IsWicket {
			wickets++
		}
		if b.Legal() {
			legal++
		}
	}
	return fmt.Sprintf("%d/%d (%s)", runs, wickets, cricket.Overs(legal))
}

func ballPrompt(bc BallContext) string {
	var b strings.Builder
	b.WriteString("Write a single, exciting sentence of cricket commentary.\n")
	fmt.Fprintf(&b, "Bowler: %s (%s)\n", bc.Bowler.Name, bc.Bowler.Role)
	fmt.Fprintf(&b, "Batsman: %s\n", bc.Batsman.Name)
	fmt.Fprintf(&b, "Outcome: %s (Runs: %d)\n", bc.Outcome, bc.Runs)
	fmt.Fprintf(&b, "Context: %s\n", bc.Situation)
	b.WriteString("Keep it energetic and brief (max 20 words).")
	return b.String()
}

func advicePrompt(m cricket.Match, in cricket.Innings, batting, bowling cricket.Team) string {
	var b strings.Builder
	b.WriteString("You are an expert cricket coach. Analyze the current situation:\n")
	fmt.Fprintf(&b, "Format: %s\n", m.Format)
	fmt.Fprintf(&b, "Batting Team: %s\n", batting.Name)
	fmt.Fprintf(&b, "Bowling Team: %s\n", bowling.Name)
	fmt.Fprintf(&b, "Score: %d/%d in %s overs.\n\n", in.TotalRuns, in.Wickets, cricket.Overs(in.LegalBalls()))
	b.WriteString("Provide 2-3 bullet points of strategic advice for the BATTING team captain.\n")
	b.WriteString("Keep it tactical (e.g., rotate strike, target specific bowlers, preserve wickets).")
	return b.String()
}

func reportPrompt(m cricket.Match, winner string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a short post-match summary report (max 100 words) for a cricket match won by %s.\n", winner)
	fmt.Fprintf(&b, "Format: %s.\n", m.Format)
	fmt.Fprintf(&b, "Venue: %s.\n", m.Venue)
	b.WriteString("Make it sound like a news snippet.")
	return b.String()
}

func (s *Service) generate(ctx context.Context, what, prompt string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		log.Printf("[COMMENTARY] Error generating %s: %v", what, err)
		return "", false
	}
	return text, true
}

// Ball returns one line of commentary for a delivery.
func (s *Service) Ball(ctx context.Context, bc BallContext) string {
	if !s.Enabled() {
		return noKeyBall
	}
	if text, ok := s.generate(ctx, "commentary", ballPrompt(bc)); ok {
		return text
	}
	return fmt.Sprintf("And that's %d runs off the delivery.", bc.Runs)
}

// Advice returns tactical advice for the captain of the side batting in the
// current innings.
func (s *Service) Advice(ctx context.Context, m cricket.Match, r cricket.Rosters) string {
	if !s.Enabled() {
		return noKeyAdvice
	}
	in := m.CurrentInnings()
	if in == nil {
		return failAdvice
	}
	prompt := advicePrompt(m, *in, r[in.BattingTeamID], r[in.BowlingTeamID])
	if text, ok := s.generate(ctx, "advice", prompt); ok {
		return text
	}
	return failAdvice
}

// NoWinner stands in for the winner of a tied or undecided match.
const NoWinner = "Draw"

// Report returns a short post-match summary. winnerName is NoWinner when
// nobody won.
func (s *Service) Report(ctx context.Context, m cricket.Match, winnerName string) string {
	if !s.Enabled() {
		return noKeyReport
	}
	if text, ok := s.generate(ctx, "report", reportPrompt(m, winnerName)); ok {
		return text
	}
	return fmt.Sprintf("%s won the match at %s.", winnerName, m.Venue)
}
