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
	"log"
	"net/http"
)

// AccessControl decides who may change data. Reads are always public.
// With no scorers and no admin configured, anyone may write.
type AccessControl struct {
	bootstrapAdmin string
	scorers        map[string]bool
}

// NewAccessControl returns an AccessControl for the given scorer allowlist.
func NewAccessControl(bootstrapAdmin string, scorers []string) *AccessControl {
	ac := &AccessControl{
		bootstrapAdmin: normalizeEmail(bootstrapAdmin),
		scorers:        make(map[string]bool, len(scorers)),
	}
	for _, s := range scorers {
		if s = normalizeEmail(s); s != "" {
			ac.scorers[s] = true
		}
	}
	return ac
}

// Open reports whether writes are unrestricted.
func (ac *AccessControl) Open() bool {
	return ac.bootstrapAdmin == "" && len(ac.scorers) == 0
}

// IsAllowed checks if a user may write. Returns a denial message when not.
func (ac *AccessControl) IsAllowed(email string) (bool, string) {
	if ac.Open() {
		return true, ""
	}
	if email == "" {
		return false, "Authentication required"
	}
	email = normalizeEmail(email)
	if email == ac.bootstrapAdmin || ac.scorers[email] {
		return true, ""
	}
	return false, "You are not a registered scorer"
}

// IsAdmin checks if a user has admin privileges.
func (ac *AccessControl) IsAdmin(email string) bool {
	return email != "" && ac.bootstrapAdmin != "" && normalizeEmail(email) == ac.bootstrapAdmin
}

// requireWriter wraps a mutating handler with the allowlist check.
func (ac *AccessControl) requireWriter(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := getUserID(r)
		allowed, msg := ac.IsAllowed(userID)
		if !allowed {
			log.Printf("Forbidden: User %s attempted %s %s", maskEmail(userID), r.Method, r.URL.Path)
			if userID == "" {
				http.Error(w, "Unauthenticated: "+msg, http.StatusUnauthorized)
				return
			}
			http.Error(w, "Forbidden: "+msg, http.StatusForbidden)
			return
		}
		next(w, r)
	}
}
