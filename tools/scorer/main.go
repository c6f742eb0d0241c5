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

// scorer is a terminal client for cricketkeeper. It works on the local data
// directory or, in backend mode, on a cricketkeeper server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/ttbt-io/cricketkeeper/backend"
	"github.com/ttbt-io/cricketkeeper/backend/cricket"
	"github.com/ttbt-io/cricketkeeper/backend/persistence"
	"github.com/ttbt-io/cricketkeeper/backend/stats"
)

var (
	dataDir  = flag.String("dir", defaultDir(), "Local data directory")
	server   = flag.String("server", "", "Backend URL, e.g. http://localhost:8080")
	modeFlag = flag.String("mode", "", "Storage mode for this run: local or backend. Defaults to the saved mode")
	seedFlag = flag.Uint64("seed", 0, "Random seed for simulate. 0 picks one")
)

func defaultDir() string {
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "cricketkeeper")
	}
	return ".cricketkeeper"
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: %s [flags] <command> [args]

Commands:
  mode [local|backend]             Show or switch the storage mode
  list                             List matches
  scorecard <match>                Print the scorecard of a match
  awards <match>                   Print the awards of a match
  score <match> <action> [payload] Apply one action, e.g. score match_1 BALL '{"runs":4}'
  simulate <match>                 Play a match to the end with random deliveries

Flags:
`, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env: %v", err)
	}
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	store, err := backend.OpenStorage(*dataDir, os.Getenv("CK_MASTER_KEY"))
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	var remote persistence.Source
	if *server != "" {
		remote = persistence.NewRemote(*server, nil)
	}
	var cfg persistence.Config
	if *modeFlag != "" {
		if cfg.Mode, err = persistence.ParseMode(*modeFlag); err != nil {
			log.Fatal(err)
		}
	}
	client, err := persistence.NewClient(cfg, persistence.NewLocal(store), remote)
	if err != nil {
		log.Fatal(err)
	}
	if err := run(context.Background(), client, args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, client *persistence.Client, args []string) error {
	if args[0] == "mode" {
		if len(args) == 1 {
			fmt.Println(client.Mode())
			return nil
		}
		m, err := persistence.ParseMode(args[1])
		if err != nil {
			return err
		}
		d, err := client.SetMode(ctx, m)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d teams, %d matches, %d tournaments\n", client.Mode(), len(d.Teams), len(d.Matches), len(d.Tournaments))
		return nil
	}

	d, err := client.Load(ctx)
	if err != nil {
		return err
	}
	rosters := cricket.NewRosters(d.Teams...)

	switch args[0] {
	case "list":
		for _, m := range d.Matches {
			line := fmt.Sprintf("%-20s %-10s %s vs %s (%s)", m.ID, m.Status, rosters.TeamName(m.HomeTeamID), rosters.TeamName(m.AwayTeamID), m.Venue)
			if m.Result != nil {
				line += ": " + m.Result.Describe(rosters.TeamName)
			}
			fmt.Println(line)
		}
		return nil
	case "scorecard", "awards", "score", "simulate":
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}

	if len(args) < 2 {
		return fmt.Errorf("%s: missing match id", args[0])
	}
	idx := -1
	for i, m := range d.Matches {
		if m.ID == args[1] {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("match %q not found", args[1])
	}
	m := d.Matches[idx]

	switch args[0] {
	case "scorecard":
		return stats.BuildScorecard(m, rosters).WriteText(os.Stdout)
	case "awards":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats.ComputeAwards(m, rosters))
	case "score":
		if len(args) < 3 {
			return fmt.Errorf("score: missing action")
		}
		var payload json.RawMessage
		if len(args) > 3 {
			payload = json.RawMessage(args[3])
		}
		a, err := cricket.DecodeAction(cricket.ActionKind(args[2]), payload)
		if err != nil {
			return err
		}
		s, events, err := cricket.Apply(cricket.Resume(m), cricket.WithStamp(a, "", time.Now().UnixMilli()), rosters)
		if err != nil {
			return err
		}
		for _, ev := range events {
			fmt.Printf("%d.%d %s\n", ev.OverNumber, ev.BallNumber, ev.Commentary)
		}
		fmt.Println("Next:", s.Phase)
		m = s.Snapshot()
	case "simulate":
		seed := *seedFlag
		if seed == 0 {
			seed = rand.Uint64()
		}
		sim := &simulator{
			rng:     rand.New(rand.NewPCG(seed, seed)),
			rosters: rosters,
			now:     func() int64 { return time.Now().UnixMilli() },
		}
		if m, err = sim.simulate(m); err != nil {
			return err
		}
		if err := stats.BuildScorecard(m, rosters).WriteText(os.Stdout); err != nil {
			return err
		}
	}

	if m.Status == cricket.StatusCompleted && m.ManOfTheMatchID == "" {
		if mvp := stats.ComputeAwards(m, rosters).MVP; mvp != nil {
			m.ManOfTheMatchID = mvp.PlayerID
		}
	}
	d.Matches[idx] = m
	return client.SaveMatches(ctx, d.Matches)
}
