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
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

const (
	// DefaultAuthCookie holds the JWT when no cookie name is configured.
	DefaultAuthCookie = "cricketkeeper_auth"

	jwksFetchTimeout = 10 * time.Second
	jwksMinRefresh   = time.Minute
)

var errNoJWKS = errors.New("no JWKS URL provided")

type userClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// jwksKeys caches the key set and refetches it when an unknown kid shows
// up, at most once per jwksMinRefresh.
type jwksKeys struct {
	url string

	mu          sync.RWMutex
	set         jwk.Set
	lastRefresh time.Time
}

func (k *jwksKeys) refresh() error {
	if k.url == "" {
		return errNoJWKS
	}
	ctx, cancel := context.WithTimeout(context.Background(), jwksFetchTimeout)
	defer cancel()

	set, err := jwk.Fetch(ctx, k.url)
	if err != nil {
		return fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	k.mu.Lock()
	k.set = set
	k.lastRefresh = time.Now()
	k.mu.Unlock()
	return nil
}

func (k *jwksKeys) lookup(kid string) (any, error) {
	k.mu.RLock()
	set := k.set
	k.mu.RUnlock()
	if set == nil {
		return nil, errors.New("JWKS not initialized")
	}
	key, ok := set.LookupKeyID(kid)
	if !ok {
		return nil, fmt.Errorf("key %s not found in JWKS", kid)
	}
	var raw any
	if err := jwk.Export(key, &raw); err != nil {
		return nil, fmt.Errorf("failed to materialize key: %w", err)
	}
	return raw, nil
}

// keyFunc resolves the verification key of a token by its kid header.
func (k *jwksKeys) keyFunc(token *jwt.Token) (any, error) {
	kid, ok := token.Header["kid"].(string)
	if !ok {
		return nil, errors.New("token missing 'kid' header")
	}
	key, err := k.lookup(kid)
	if err == nil {
		return key, nil
	}
	k.mu.RLock()
	stale := time.Since(k.lastRefresh) > jwksMinRefresh
	k.mu.RUnlock()
	if !stale {
		return nil, err
	}
	if err := k.refresh(); err != nil {
		log.Printf("Error refreshing JWKS: %v", err)
		return nil, err
	}
	return k.lookup(kid)
}

// jwtAuthMiddleware sets the user id from a JWT cookie verified against the
// configured JWKS. Requests without a valid token continue anonymously.
func jwtAuthMiddleware(opts Options, next http.Handler) http.Handler {
	keys := &jwksKeys{url: opts.AuthJWKSURL}
	if opts.AuthJWKSURL != "" {
		if err := keys.refresh(); err != nil {
			log.Printf("Warning: Failed to fetch JWKS on startup: %v", err)
		}
	} else {
		log.Println("Warning: No AuthJWKSURL provided. JWT validation will fail unless MockAuth is used.")
	}

	cookieName := opts.AuthCookieName
	if cookieName == "" {
		cookieName = DefaultAuthCookie
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{
		"RS256", "RS384", "RS512", "ES256", "ES384", "ES512", "EdDSA",
	}))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(cookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		var claims userClaims
		token, err := parser.ParseWithClaims(cookie.Value, &claims, keys.keyFunc)
		if err != nil || !token.Valid {
			if opts.Debug {
				log.Printf("JWT Validation failed: %v", err)
			}
			next.ServeHTTP(w, r)
			return
		}
		if claims.Email != "" {
			r = withUserID(r, claims.Email)
		}
		next.ServeHTTP(w, r)
	})
}
