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
	"encoding/json"
	"fmt"
)

// ActionKind names an action on the wire.
type ActionKind string

const (
	ActToss               ActionKind = "TOSS"
	ActOpeners            ActionKind = "OPENERS"
	ActBall               ActionKind = "BALL"
	ActBeginWicket        ActionKind = "BEGIN_WICKET"
	ActWicket             ActionKind = "WICKET"
	ActCancelWicket       ActionKind = "CANCEL_WICKET"
	ActNewBatsman         ActionKind = "NEW_BATSMAN"
	ActNewBowler          ActionKind = "NEW_BOWLER"
	ActStartSecondInnings ActionKind = "START_SECOND_INNINGS"
	ActCorrect            ActionKind = "CORRECT"
	ActConclude           ActionKind = "CONCLUDE"
)

// Action is a scorer input consumed by Apply.
type Action interface {
	Kind() ActionKind
}

// Stamp identifies the delivery produced by a Ball or Wicket action. When
// left empty, Apply derives a deterministic id from the innings position.
type Stamp struct {
	EventID   string `json:"-"`
	Timestamp int64  `json:"-"`
}

type Toss struct {
	WinnerID string       `json:"winnerId"`
	Decision TossDecision `json:"decision"`
}

type Openers struct {
	StrikerID    string `json:"strikerId"`
	NonStrikerID string `json:"nonStrikerId"`
	BowlerID     string `json:"bowlerId"`
}

// Ball scores one delivery. Runs are the runs run or hit; for wides and
// no-balls the one-run penalty is added on top.
type Ball struct {
	Stamp
	Runs  int       `json:"runs"`
	Extra ExtraType `json:"extra,omitempty"`
}

// BeginWicket opens the dismissal form with the striker preselected.
type BeginWicket struct{}

// Wicket records a dismissal. An empty PlayerOutID means the preselected
// batter, which is the striker unless changed.
type Wicket struct {
	Stamp
	Type        WicketType `json:"wicketType"`
	PlayerOutID string     `json:"playerOutId,omitempty"`
	FielderID   string     `json:"fielderId,omitempty"`
}

type CancelWicket struct{}

// NewBatsman sends in the next batter. FacingID picks who takes strike and
// defaults to the incoming batter.
type NewBatsman struct {
	BatsmanID string `json:"batsmanId"`
	FacingID  string `json:"facingId,omitempty"`
}

type NewBowler struct {
	BowlerID string `json:"bowlerId"`
}

type StartSecondInnings struct{}

// Correct reassigns the active players without recording a delivery. Empty
// fields keep their current value.
type Correct struct {
	StrikerID    string `json:"strikerId,omitempty"`
	NonStrikerID string `json:"nonStrikerId,omitempty"`
	BowlerID     string `json:"bowlerId,omitempty"`
}

// Conclude finishes the match immediately with the current totals.
type Conclude struct{}

func (Toss) Kind() ActionKind               { return ActToss }
func (Openers) Kind() ActionKind            { return ActOpeners }
func (Ball) Kind() ActionKind               { return ActBall }
func (BeginWicket) Kind() ActionKind        { return ActBeginWicket }
func (Wicket) Kind() ActionKind             { return ActWicket }
func (CancelWicket) Kind() ActionKind       { return ActCancelWicket }
func (NewBatsman) Kind() ActionKind         { return ActNewBatsman }
func (NewBowler) Kind() ActionKind          { return ActNewBowler }
func (StartSecondInnings) Kind() ActionKind { return ActStartSecondInnings }
func (Correct) Kind() ActionKind            { return ActCorrect }
func (Conclude) Kind() ActionKind           { return ActConclude }

// DecodeAction builds the action of the given kind from its JSON payload.
// An empty payload is accepted for actions without fields.
func DecodeAction(kind ActionKind, payload json.RawMessage) (Action, error) {
	switch kind {
	case ActToss:
		return decodeAs[Toss](kind, payload)
	case ActOpeners:
		return decodeAs[Openers](kind, payload)
	case ActBall:
		return decodeAs[Ball](kind, payload)
	case ActBeginWicket:
		return BeginWicket{}, nil
	case ActWicket:
		return decodeAs[Wicket](kind, payload)
	case ActCancelWicket:
		return CancelWicket{}, nil
	case ActNewBatsman:
		return decodeAs[NewBatsman](kind, payload)
	case ActNewBowler:
		return decodeAs[NewBowler](kind, payload)
	case ActStartSecondInnings:
		return StartSecondInnings{}, nil
	case ActCorrect:
		return decodeAs[Correct](kind, payload)
	case ActConclude:
		return Conclude{}, nil
	}
	return nil, fmt.Errorf("%w: unknown action type %q", ErrInvalidAction, kind)
}

func decodeAs[T Action](kind ActionKind, payload json.RawMessage) (Action, error) {
	var a T
	if len(payload) == 0 || string(payload) == "null" {
		return a, nil
	}
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, fmt.Errorf("%w: %s payload: %v", ErrInvalidAction, kind, err)
	}
	return a, nil
}

// WithStamp attaches a delivery id and time to Ball and Wicket actions.
// Other actions are returned unchanged.
func WithStamp(a Action, eventID string, timestamp int64) Action {
	switch v := a.(type) {
	case Ball:
		v.Stamp = Stamp{EventID: eventID, Timestamp: timestamp}
		return v
	case Wicket:
		v.Stamp = Stamp{EventID: eventID, Timestamp: timestamp}
		return v
	}
	return a
}
