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

// readfile prints stored records as JSON. Arguments are a kind ("teams",
// "matches", "tournaments") or kind/id.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ttbt-io/cricketkeeper/backend"
	"github.com/ttbt-io/cricketkeeper/backend/cricket"
)

var (
	dataDir = flag.String("data-dir", "data", "Directory for team, match and tournament data")
)

func decode(kind backend.Kind, data []byte) (any, error) {
	var obj any
	switch kind {
	case backend.KindTeams:
		obj = new(cricket.Team)
	case backend.KindMatches:
		obj = new(cricket.Match)
	case backend.KindTournaments:
		obj = new(cricket.Tournament)
	default:
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
	if err := json.Unmarshal(data, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func main() {
	flag.Parse()
	s, err := backend.OpenStorage(*dataDir, os.Getenv("CK_MASTER_KEY"))
	if err != nil {
		log.Fatal(err)
	}
	fs, err := backend.NewFileStore(*dataDir, s)
	if err != nil {
		log.Fatal(err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	ctx := context.Background()
	for _, arg := range flag.Args() {
		kindName, id, _ := strings.Cut(strings.Trim(arg, "/"), "/")
		kind := backend.Kind(kindName)
		var recs []backend.Record
		if id == "" {
			recs, err = fs.List(ctx, kind)
		} else {
			var rec backend.Record
			rec, err = fs.Get(ctx, kind, id)
			recs = []backend.Record{rec}
		}
		if err != nil {
			log.Printf("%s: %v", arg, err)
			continue
		}
		for _, rec := range recs {
			obj, err := decode(kind, rec.Data)
			if err != nil {
				log.Printf("%s/%s: %v", kind, rec.ID, err)
				continue
			}
			fmt.Printf("=========== %s/%s ===========\n", kind, rec.ID)
			if err := enc.Encode(obj); err != nil {
				log.Printf("JSON: %s/%s: %v", kind, rec.ID, err)
			}
		}
	}
}
