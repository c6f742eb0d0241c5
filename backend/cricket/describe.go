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

// DescribeBall returns the scorer's one-line note for a non-wicket delivery.
func DescribeBall(b BallEvent) string {
	switch b.Extra() {
	case ExtraWide:
		if b.Runs > 0 {
			return fmt.Sprintf("Wide ball! Plus %d runs ran.", b.Runs)
		}
		return "Wide ball!"
	case ExtraNoBall:
		if b.Runs > 0 {
			return fmt.Sprintf("No Ball! Hit for %d runs.", b.Runs)
		}
		return "No Ball! Free hit coming up."
	case ExtraLegBye:
		return fmt.Sprintf("Leg Bye, %d runs.", b.Runs)
	case ExtraBye:
		return fmt.Sprintf("Byes, %d runs.", b.Runs)
	}
	switch b.Runs {
	case 0:
		return "No run."
	case 1:
		return "1 run taken."
	case 4:
		return "Four runs! Great shot."
	case 6:
		return "Six! That's huge."
	}
	return fmt.Sprintf("%d runs taken.", b.Runs)
}

// Outcome is a short label for a delivery, used when asking for commentary.
func Outcome(b BallEvent) string {
	switch {
	case b.IsWicket:
		return "WICKET (" + string(b.WicketType) + ")"
	case b.Extra() == ExtraWide:
		return "WIDE"
	case b.Extra() == ExtraNoBall:
		return "NO BALL"
	case b.Extra() == ExtraLegBye:
		return "LEG BYE"
	case b.Extra() == ExtraBye:
		return "BYE"
	case b.Runs == 4:
		return "FOUR"
	case b.Runs == 6:
		return "SIX"
	case b.Runs == 0:
		return "DOT BALL"
	}
	return fmt.Sprintf("%d RUNS", b.Runs)
}
