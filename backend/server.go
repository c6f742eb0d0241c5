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
	"crypto/sha256"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/c2FmZQ/storage"

	"github.com/ttbt-io/cricketkeeper/backend/commentary"
	"github.com/ttbt-io/cricketkeeper/backend/cricket"
)

const (
	maxActionBody     = 1 << 20
	maxCollectionBody = 16 << 20

	retryAfterAction = "5"

	// DefaultFlushInterval is how often dirty matches are written out.
	DefaultFlushInterval = 5 * time.Second
)

func generateETag(data []byte) string {
	return fmt.Sprintf("\"%x\"", sha256.Sum256(data))
}

func hubBusyResponse(w http.ResponseWriter, retryAfter string) {
	w.Header().Set("Retry-After", retryAfter)
	http.Error(w, "Too Many Requests: Server is busy", http.StatusTooManyRequests)
}

func parsePagination(r *http.Request) (limit, offset int, query string) {
	limit = 50
	query = r.URL.Query().Get("q")

	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil {
			offset = val
		}
	}

	if limit < 1 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset, query
}

// Options represent server options.
type Options struct {
	Addr     string
	Cert     *tls.Certificate
	Listener net.Listener

	// Record storage. Store wins over DataDir/Storage when set.
	DataDir string
	Storage *storage.Storage
	Store   RecordStore

	UseMockAuth bool
	Debug       bool

	// Auth Options
	AuthCookieName string
	AuthJWKSURL    string

	// Access Control Options
	BootstrapAdmin string
	Scorers        []string

	// Commentary on the live feed and the advice/report endpoints. Nil
	// serves the fallback texts.
	Commentary *commentary.Service

	FlushInterval      time.Duration
	ScorecardCacheSize int
}

// App holds the state behind the HTTP handlers.
type App struct {
	store       RecordStore
	teams       *Collection[cricket.Team]
	matches     *Collection[cricket.Match]
	tournaments *Collection[cricket.Tournament]
	registry    *Registry
	cards       *ScorecardCache
	hubs        *HubManager
	metrics     *Metrics
	access      *AccessControl
	commentary  *commentary.Service
	debugf      func(string, ...any)
	now         func() time.Time

	stopFlush chan struct{}
	flushDone chan struct{}
}

// NewApp opens the record store and loads the three collections.
func NewApp(ctx context.Context, opts Options) (*App, error) {
	store := opts.Store
	if store == nil {
		if opts.DataDir == "" {
			opts.DataDir = "data"
		}
		if opts.Storage == nil {
			opts.Storage = storage.New(opts.DataDir, nil)
		}
		fs, err := NewFileStore(opts.DataDir, opts.Storage)
		if err != nil {
			return nil, err
		}
		store = fs
	}

	debugf := func(string, ...any) {}
	if opts.Debug {
		debugf = func(f string, a ...any) {
			log.Printf("[DEBUG BACKEND] "+f, a...)
		}
	}

	a := &App{
		store:       store,
		teams:       NewTeams(store),
		matches:     NewMatches(store),
		tournaments: NewTournaments(store),
		metrics:     NewMetrics(),
		access:      NewAccessControl(opts.BootstrapAdmin, opts.Scorers),
		commentary:  opts.Commentary,
		cards:       NewScorecardCache(opts.ScorecardCacheSize),
		debugf:      debugf,
		now:         time.Now,
		stopFlush:   make(chan struct{}),
		flushDone:   make(chan struct{}),
	}
	if a.commentary == nil {
		a.commentary = commentary.NewService(nil, 0)
	}
	for _, load := range []func(context.Context) error{a.teams.Load, a.matches.Load, a.tournaments.Load} {
		if err := load(ctx); err != nil {
			return nil, fmt.Errorf("loading collections: %w", err)
		}
	}
	log.Printf("[STORE] Loaded %d teams, %d matches, %d tournaments", a.teams.Len(), a.matches.Len(), a.tournaments.Len())

	a.registry = NewRegistry(a.matches, a.teams, a.tournaments)
	a.hubs = NewHubManager(a.matches, a.registry, a.cards, a.commentary, a.metrics, debugf)

	interval := opts.FlushInterval
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	go a.flushLoop(interval)
	return a, nil
}

func (a *App) flushLoop(interval time.Duration) {
	defer close(a.flushDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-a.stopFlush:
			return
		case <-ticker.C:
			if err := a.matches.FlushAll(context.Background()); err != nil {
				log.Printf("[STORE] Error: %v", err)
			} else {
				a.metrics.Inc(MetricCollectionSaves, 1)
			}
		}
	}
}

// Close stops the hubs, writes every dirty record and closes the store.
func (a *App) Close(ctx context.Context) error {
	select {
	case <-a.stopFlush:
	default:
		close(a.stopFlush)
	}
	<-a.flushDone
	a.hubs.Close()

	var errs []string
	if err := a.matches.FlushAll(ctx); err != nil {
		errs = append(errs, fmt.Sprintf("flush: %v", err))
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Sprintf("store: %v", err))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, ", "))
	}
	return nil
}

// Server represents the running server instance.
type Server struct {
	httpServer *http.Server
	app        *App
}

// Shutdown stops accepting requests, then flushes and closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []string

	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Sprintf("http: %v", err))
	}
	if err := s.app.Close(ctx); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %s", strings.Join(errs, ", "))
	}
	return nil
}

// StartServer starts the web server and registers the API handlers.
func StartServer(opts Options) (*Server, error) {
	app, err := NewApp(context.Background(), opts)
	if err != nil {
		return nil, err
	}
	handler := NewServerHandler(app, opts)

	httpServer := &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if opts.Cert != nil {
		httpServer.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{*opts.Cert},
		}
	}

	go func() {
		var err error
		if opts.Listener != nil {
			if httpServer.TLSConfig != nil {
				log.Printf("Starting HTTPS server on provided listener %s...", opts.Listener.Addr())
				err = httpServer.ServeTLS(opts.Listener, "", "")
			} else {
				log.Printf("Starting HTTP server on provided listener %s...", opts.Listener.Addr())
				err = httpServer.Serve(opts.Listener)
			}
		} else {
			log.Printf("Server starting on port %s...\n", opts.Addr)
			if opts.Cert != nil {
				err = httpServer.ListenAndServeTLS("", "")
			} else if _, statErr := os.Stat("certs/cert.pem"); statErr == nil {
				log.Println("Starting HTTPS server using certs/cert.pem...")
				err = httpServer.ListenAndServeTLS("certs/cert.pem", "certs/key.pem")
			} else {
				log.Println("Starting HTTP server...")
				err = httpServer.ListenAndServe()
			}
		}

		if err != nil && !errors.Is(err, net.ErrClosed) && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	return &Server{httpServer: httpServer, app: app}, nil
}

// NewServerHandler creates and configures the HTTP handler for the app.
func NewServerHandler(a *App, opts Options) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/init", a.handleInit)
	mux.HandleFunc("/api/teams", a.handleTeams)
	mux.HandleFunc("/api/matches", a.handleMatches)
	mux.HandleFunc("/api/tournaments", a.handleTournaments)

	mux.HandleFunc("/api/matches/{id}", a.withMatch(a.handleMatch))
	mux.HandleFunc("/api/matches/{id}/actions", a.access.requireWriter(a.handleActions))
	mux.HandleFunc("/api/matches/{id}/state", a.withMatch(a.handleState))
	mux.HandleFunc("/api/matches/{id}/scorecard", a.withMatch(a.handleScorecard))
	mux.HandleFunc("/api/matches/{id}/awards", a.withMatch(a.handleAwards))
	mux.HandleFunc("/api/matches/{id}/advice", a.withMatch(a.handleAdvice))
	mux.HandleFunc("/api/matches/{id}/report", a.withMatch(a.handleReport))

	mux.HandleFunc("/api/tournaments/{id}/table", a.withTournament(a.handleTable))
	mux.HandleFunc("/api/tournaments/{id}/leaders", a.withTournament(a.handleLeaders))
	mux.HandleFunc("/api/players/{id}/career", a.handleCareer)

	mux.HandleFunc("/api/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(a.hubs, w, r)
	})
	mux.HandleFunc("/api/status", a.handleStatus)
	mux.HandleFunc("/api/me", a.handleMe)

	handler := http.Handler(mux)
	if opts.UseMockAuth {
		handler = mockAuthMiddleware(handler)
	} else {
		handler = jwtAuthMiddleware(opts, handler)
	}
	handler = loggingMiddleware(handler)
	handler = securityMiddleware(handler)
	handler = cacheControlMiddleware(handler)
	return handler
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// storeError reports a storage failure.
func storeError(w http.ResponseWriter, err error) {
	log.Printf("[STORE] Error: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit)).Decode(v); err != nil {
		http.Error(w, "Bad Request: Malformed JSON", http.StatusBadRequest)
		return false
	}
	return true
}

// cacheControlMiddleware keeps API responses out of shared caches.
func cacheControlMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "private, no-cache, no-transform")
		}
		next.ServeHTTP(w, r)
	})
}

// securityMiddleware adds HTTP security headers to responses.
func securityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs the method and URL path of every incoming HTTP request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Received request: %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
