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
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ttbt-io/cricketkeeper/backend/cricket"
	"github.com/ttbt-io/cricketkeeper/backend/stats"
)

// DefaultScorecardCacheSize is the number of match trackers kept warm.
const DefaultScorecardCacheSize = 256

// ScorecardCache keeps a stats.Tracker per recently viewed match so that a
// scorecard request only aggregates the deliveries bowled since the last one.
type ScorecardCache struct {
	mu       sync.Mutex
	trackers *lru.Cache[string, *stats.Tracker]
}

func NewScorecardCache(size int) *ScorecardCache {
	if size <= 0 {
		size = DefaultScorecardCacheSize
	}
	c, _ := lru.New[string, *stats.Tracker](size)
	return &ScorecardCache{trackers: c}
}

func (c *ScorecardCache) tracker(m cricket.Match, r cricket.Rosters) *stats.Tracker {
	t, ok := c.trackers.Get(m.ID)
	if !ok {
		t = stats.NewTracker(r)
		c.trackers.Add(m.ID, t)
	}
	t.Sync(m)
	return t
}

func (c *ScorecardCache) Scorecard(m cricket.Match, r cricket.Rosters) stats.Scorecard {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker(m, r).Scorecard(m)
}

func (c *ScorecardCache) Awards(m cricket.Match, r cricket.Rosters) stats.Awards {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker(m, r).Awards(m)
}

// Purge drops every tracker. Trackers hold player names, so a roster change
// must purge.
func (c *ScorecardCache) Purge() {
	c.trackers.Purge()
}

// Len returns the number of cached trackers.
func (c *ScorecardCache) Len() int {
	return c.trackers.Len()
}
