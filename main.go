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
	"context"
	"crypto/tls"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ttbt-io/cricketkeeper/backend"
	"github.com/ttbt-io/cricketkeeper/backend/commentary"
)

var (
	addr              = flag.String("addr", ":8080", "The TCP address to listen to")
	useMockAuth       = flag.Bool("use-mock-auth", false, "Use Mock Authentication. For testing purposes only.")
	debugMode         = flag.Bool("debug", false, "Enable debug mode")
	dataDir           = flag.String("data-dir", "data", "Directory for team, match and tournament data")
	tlsCert           = flag.String("tls-cert", "", "Path to main HTTP TLS certificate")
	tlsKey            = flag.String("tls-key", "", "Path to main HTTP TLS key")
	authCookieName    = flag.String("auth-cookie-name", backend.DefaultAuthCookie, "Name of the cookie containing the JWT")
	authJWKSURL       = flag.String("auth-jwks-url", "", "URL of the JWKS endpoint used to verify JWTs")
	bootstrapAdmin    = flag.String("admin", "", "Email of the admin user")
	scorers           = flag.String("scorers", "", "Comma-separated list of emails allowed to score. Empty with no admin means anyone")
	geminiModel       = flag.String("gemini-model", commentary.DefaultModel, "Gemini model used for commentary")
	geminiEndpoint    = flag.String("gemini-endpoint", "", "Base URL of the Gemini API. Empty uses the public endpoint")
	commentaryTimeout = flag.Duration("commentary-timeout", commentary.DefaultTimeout, "Timeout of each commentary request")
	flushInterval     = flag.Duration("flush-interval", backend.DefaultFlushInterval, "How often live matches are written to the store")
)

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// main starts the web server and registers the API handlers.
func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env: %v", err)
	}
	flag.Parse()

	var mainTLSCert *tls.Certificate
	if *tlsCert != "" && *tlsKey != "" {
		cert, err := tls.LoadX509KeyPair(*tlsCert, *tlsKey)
		if err != nil {
			log.Fatalf("Failed to load main TLS cert/key: %v", err)
		}
		mainTLSCert = &cert
	}

	ctx := context.Background()
	opts := backend.Options{
		Addr:           *addr,
		Cert:           mainTLSCert,
		DataDir:        *dataDir,
		UseMockAuth:    *useMockAuth,
		Debug:          *debugMode,
		AuthCookieName: *authCookieName,
		AuthJWKSURL:    *authJWKSURL,
		BootstrapAdmin: *bootstrapAdmin,
		Scorers:        splitList(*scorers),
		FlushInterval:  *flushInterval,
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		pg, err := backend.NewPostgresStore(ctx, dsn)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		log.Println("Using Postgres record store.")
		opts.Store = pg
	} else {
		store, err := backend.OpenStorage(*dataDir, os.Getenv("CK_MASTER_KEY"))
		if err != nil {
			log.Fatalf("Failed to open storage: %v", err)
		}
		opts.Storage = store
	}

	var gen commentary.Generator
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		g, err := commentary.NewGemini(ctx, key, *geminiModel, *geminiEndpoint)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		gen = g
	} else {
		log.Println("Warning: No GEMINI_API_KEY provided. Commentary uses the fallback texts.")
	}
	opts.Commentary = commentary.NewService(gen, *commentaryTimeout)

	server, err := backend.StartServer(opts)
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	// Wait for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	} else {
		log.Println("Gracefully stopped.")
	}
}
