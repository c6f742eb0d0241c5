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
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ttbt-io/cricketkeeper/backend/cricket"
)

const (
	// MaxBatchSize is the largest number of actions accepted in one request.
	MaxBatchSize = 100
	// MaxRecentActions is how many applied action ids a match remembers.
	MaxRecentActions = 100

	maxIDLen = 128
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// isValidUUID checks if the string is a canonical UUID.
func isValidUUID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// ActionEnvelope is one scorer action on the wire.
type ActionEnvelope struct {
	ID        string             `json:"id"`
	Type      cricket.ActionKind `json:"type"`
	Payload   json.RawMessage    `json:"payload,omitempty"`
	Timestamp int64              `json:"timestamp"`
}

// ActionBatch is the body of POST /api/matches/{id}/actions.
type ActionBatch struct {
	BaseRevision string           `json:"baseRevision"`
	Actions      []ActionEnvelope `json:"actions"`
}

// validateStringLen checks if the string length is within the limit.
func validateStringLen(s string, max int, name string) error {
	if len(s) > max {
		return fmt.Errorf("%s too long (max %d chars)", name, max)
	}
	return nil
}

// ValidateAction checks the envelope and decodes its payload.
func ValidateAction(a ActionEnvelope) (cricket.Action, error) {
	if !isValidUUID(a.ID) {
		return nil, fmt.Errorf("invalid action ID: %q", a.ID)
	}
	if a.Type == "" {
		return nil, errors.New("missing action type")
	}
	if a.Timestamp < 0 {
		return nil, fmt.Errorf("invalid timestamp: %d", a.Timestamp)
	}
	act, err := cricket.DecodeAction(a.Type, a.Payload)
	if err != nil {
		return nil, err
	}
	if err := validateActionIDs(act); err != nil {
		return nil, err
	}
	return act, nil
}

func validateActionIDs(act cricket.Action) error {
	var ids map[string]string
	switch v := act.(type) {
	case cricket.Toss:
		ids = map[string]string{"winnerId": v.WinnerID}
	case cricket.Openers:
		ids = map[string]string{"strikerId": v.StrikerID, "nonStrikerId": v.NonStrikerID, "bowlerId": v.BowlerID}
	case cricket.Wicket:
		ids = map[string]string{"playerOutId": v.PlayerOutID, "fielderId": v.FielderID}
	case cricket.NewBatsman:
		ids = map[string]string{"batsmanId": v.BatsmanID, "facingId": v.FacingID}
	case cricket.NewBowler:
		ids = map[string]string{"bowlerId": v.BowlerID}
	case cricket.Correct:
		ids = map[string]string{"strikerId": v.StrikerID, "nonStrikerId": v.NonStrikerID, "bowlerId": v.BowlerID}
	}
	for name, id := range ids {
		if err := validateStringLen(id, maxIDLen, name); err != nil {
			return err
		}
	}
	return nil
}

// ValidateActions validates a whole batch and returns the decoded actions
// in order.
func ValidateActions(batch []ActionEnvelope) ([]cricket.Action, error) {
	if len(batch) == 0 {
		return nil, errors.New("no actions")
	}
	if len(batch) > MaxBatchSize {
		return nil, fmt.Errorf("batch size too large (max %d)", MaxBatchSize)
	}
	seen := make(map[string]bool, len(batch))
	out := make([]cricket.Action, 0, len(batch))
	for i, a := range batch {
		act, err := ValidateAction(a)
		if err != nil {
			return nil, fmt.Errorf("invalid action at index %d: %w", i, err)
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("duplicate action ID at index %d: %s", i, a.ID)
		}
		seen[a.ID] = true
		out = append(out, act)
	}
	return out, nil
}

// validationMessage flattens validator errors into one line.
func validationMessage(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("field validation for '%s' failed on the '%s' tag", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func checkUnique(kind string, ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("duplicate %s id %q", kind, id)
		}
		seen[id] = true
	}
	return nil
}

// ValidateTeams validates a replace-all body for the teams collection.
func ValidateTeams(teams []cricket.Team) error {
	ids := make([]string, 0, len(teams))
	for i, t := range teams {
		if err := validate.Struct(t); err != nil {
			return fmt.Errorf("team %d: %w", i, validationMessage(err))
		}
		players := make([]string, 0, len(t.Players))
		for _, p := range t.Players {
			if !p.Role.Valid() {
				return fmt.Errorf("team %d: unknown role %q for player %s", i, p.Role, p.ID)
			}
			players = append(players, p.ID)
		}
		if err := checkUnique("player", players); err != nil {
			return fmt.Errorf("team %d: %w", i, err)
		}
		ids = append(ids, t.ID)
	}
	return checkUnique("team", ids)
}

// ValidateMatches validates a replace-all body for the matches collection.
func ValidateMatches(matches []cricket.Match) error {
	ids := make([]string, 0, len(matches))
	for i, m := range matches {
		if err := validate.Struct(m); err != nil {
			return fmt.Errorf("match %d: %w", i, validationMessage(err))
		}
		if m.TossWinnerID != "" && !m.HasTeam(m.TossWinnerID) {
			return fmt.Errorf("match %d: toss winner %s is not playing", i, m.TossWinnerID)
		}
		if m.WinnerTeamID != "" && !m.HasTeam(m.WinnerTeamID) {
			return fmt.Errorf("match %d: winner %s is not playing", i, m.WinnerTeamID)
		}
		if n := len(m.Innings); n > 0 && m.CurrentInningsIndex >= n {
			return fmt.Errorf("match %d: current innings %d but only %d recorded", i, m.CurrentInningsIndex, n)
		}
		if len(m.Innings) == 0 && m.CurrentInningsIndex > 0 {
			return fmt.Errorf("match %d: current innings %d but none recorded", i, m.CurrentInningsIndex)
		}
		for j, in := range m.Innings {
			if !m.HasTeam(in.BattingTeamID) || !m.HasTeam(in.BowlingTeamID) || in.BattingTeamID == in.BowlingTeamID {
				return fmt.Errorf("match %d: innings %d has invalid teams", i, j)
			}
		}
		ids = append(ids, m.ID)
	}
	return checkUnique("match", ids)
}

// ValidateTournaments validates a replace-all body for the tournaments
// collection.
func ValidateTournaments(tournaments []cricket.Tournament) error {
	ids := make([]string, 0, len(tournaments))
	for i, t := range tournaments {
		if err := validate.Struct(t); err != nil {
			return fmt.Errorf("tournament %d: %w", i, validationMessage(err))
		}
		ids = append(ids, t.ID)
	}
	return checkUnique("tournament", ids)
}
