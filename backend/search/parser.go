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

// Package search parses the match list query language:
//
//	team:mumbai venue:"Eden Gardens" status:live date:>=2025-01-01 final
//
// Values may be quoted. Dates accept =, >, >=, <, <= and a..b ranges.
package search

import (
	"strings"
	"unicode"
)

// Operator is the comparison of a filter.
type Operator string

const (
	OpEqual          Operator = "="
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpRange          Operator = ".."
)

// prefixes are tried in order, longest first.
var prefixes = []Operator{OpGreaterOrEqual, OpLessOrEqual, OpGreater, OpLess}

// Filter is one key:value term. Max is only set for OpRange.
type Filter struct {
	Key   string
	Op    Operator
	Value string
	Max   string
}

// Query is a parsed search string.
type Query struct {
	Filters []Filter
	Terms   []string
}

// Empty reports whether the query matches everything.
func (q Query) Empty() bool {
	return len(q.Filters) == 0 && len(q.Terms) == 0
}

// token is a whitespace-separated word. colon is the index of the first
// colon outside quotes, or -1.
type token struct {
	text  string
	colon int
}

func scan(input string) []token {
	var (
		out   []token
		cur   strings.Builder
		quote rune
		colon = -1
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, token{text: cur.String(), colon: colon})
		}
		cur.Reset()
		colon = -1
	}
	for _, r := range input {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case unicode.IsSpace(r):
			flush()
			continue
		case r == ':' && colon < 0:
			colon = cur.Len()
		}
		cur.WriteRune(r)
	}
	flush()
	return out
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// Parse never fails: anything that is not a well-formed key:value becomes
// a free-text term.
func Parse(input string) Query {
	var q Query
	for _, tok := range scan(input) {
		if f, ok := parseFilter(tok); ok {
			q.Filters = append(q.Filters, f)
			continue
		}
		q.Terms = append(q.Terms, unquote(tok.text))
	}
	return q
}

func parseFilter(tok token) (Filter, bool) {
	if tok.colon <= 0 {
		return Filter{}, false
	}
	key := strings.ToLower(tok.text[:tok.colon])
	val := tok.text[tok.colon+1:]
	if val == "" {
		return Filter{}, false
	}
	quoted := val[0] == '"' || val[0] == '\''
	if !quoted && strings.Contains(val, ":") {
		return Filter{}, false
	}
	if !quoted {
		if lo, hi, ok := strings.Cut(val, ".."); ok && lo != "" && hi != "" {
			return Filter{Key: key, Op: OpRange, Value: lo, Max: hi}, true
		}
	}
	for _, op := range prefixes {
		if rest, ok := strings.CutPrefix(val, string(op)); ok {
			if rest = unquote(rest); rest == "" {
				return Filter{}, false
			}
			return Filter{Key: key, Op: op, Value: rest}, true
		}
	}
	return Filter{Key: key, Op: OpEqual, Value: unquote(val)}, true
}

// MatchDate compares an RFC 3339 date against f. Equality is a prefix
// match, so date:2025-03 selects the whole month.
func MatchDate(date string, f Filter) bool {
	switch f.Op {
	case OpEqual:
		return strings.HasPrefix(date, f.Value)
	case OpGreater:
		return date > f.Value && !strings.HasPrefix(date, f.Value)
	case OpGreaterOrEqual:
		return date >= f.Value
	case OpLess:
		return date < f.Value
	case OpLessOrEqual:
		return date <= f.Value || strings.HasPrefix(date, f.Value)
	case OpRange:
		return date >= f.Value && (date <= f.Max || strings.HasPrefix(date, f.Max))
	}
	return true
}
