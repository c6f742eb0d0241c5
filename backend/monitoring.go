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
	"time"
)

const (
	LatencyBuckets    = 101
	LatencyBucketSize = 5 * time.Millisecond
)

// Histogram counts durations in fixed-width buckets. The last bucket holds
// everything above the range.
type Histogram struct {
	Buckets [LatencyBuckets]uint64 `json:"b"`
	Count   uint64                 `json:"c"`
	Sum     float64                `json:"s"` // milliseconds
}

func (h *Histogram) Add(d time.Duration) {
	idx := int(d / LatencyBucketSize)
	if idx < 0 {
		idx = 0
	}
	if idx >= LatencyBuckets {
		idx = LatencyBuckets - 1
	}
	h.Buckets[idx]++
	h.Count++
	h.Sum += float64(d) / float64(time.Millisecond)
}

// Quantile returns the upper bound of the bucket holding quantile q.
func (h *Histogram) Quantile(q float64) time.Duration {
	if h.Count == 0 {
		return 0
	}
	want := uint64(q * float64(h.Count))
	if want == 0 {
		want = 1
	}
	var seen uint64
	for i, n := range h.Buckets {
		seen += n
		if seen >= want {
			return time.Duration(i+1) * LatencyBucketSize
		}
	}
	return LatencyBuckets * LatencyBucketSize
}

// Point is one sample of a time series.
type Point[T any] struct {
	Timestamp int64 `json:"t"`
	Value     T     `json:"v"`
}

// RingBuffer keeps the last len(Data) samples at a fixed resolution.
type RingBuffer[T any] struct {
	Resolution time.Duration `json:"-"`
	Data       []Point[T]    `json:"data"`
	Head       int           `json:"head"` // next write position
}

func NewRingBuffer[T any](resolution time.Duration, size int) *RingBuffer[T] {
	return &RingBuffer[T]{Resolution: resolution, Data: make([]Point[T], size)}
}

// Update applies fn to the sample of the slot containing ts, starting a new
// slot when ts is past the last one.
func (rb *RingBuffer[T]) Update(ts time.Time, fn func(*T)) {
	res := int64(rb.Resolution / time.Second)
	if res < 1 {
		res = 1
	}
	aligned := (ts.Unix() / res) * res
	prev := (rb.Head - 1 + len(rb.Data)) % len(rb.Data)
	if rb.Data[prev].Timestamp == aligned {
		fn(&rb.Data[prev].Value)
		return
	}
	var zero T
	rb.Data[rb.Head] = Point[T]{Timestamp: aligned, Value: zero}
	fn(&rb.Data[rb.Head].Value)
	rb.Head = (rb.Head + 1) % len(rb.Data)
}

// Points returns the samples in time order.
func (rb *RingBuffer[T]) Points() []Point[T] {
	out := make([]Point[T], 0, len(rb.Data))
	for i := range rb.Data {
		p := rb.Data[(rb.Head+i)%len(rb.Data)]
		if p.Timestamp > 0 {
			out = append(out, p)
		}
	}
	return out
}

// Metrics are the process counters reported by /api/status.
type Metrics struct {
	mu        sync.Mutex
	start     time.Time
	counters  map[string]uint64
	latency   Histogram
	perMinute *RingBuffer[uint64]
}

// Counter names.
const (
	MetricActions         = "actions"
	MetricBalls           = "balls"
	MetricConflicts       = "conflicts"
	MetricRejected        = "rejected"
	MetricDuplicates      = "duplicates"
	MetricCommentary      = "commentary"
	MetricSpectators      = "spectators"
	MetricCollectionSaves = "collectionSaves"
)

func NewMetrics() *Metrics {
	return &Metrics{
		start:     time.Now(),
		counters:  make(map[string]uint64),
		perMinute: NewRingBuffer[uint64](time.Minute, 120),
	}
}

func (m *Metrics) Inc(name string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += uint64(n)
}

// ObserveAction records one applied batch.
func (m *Metrics) ObserveAction(d time.Duration, actions int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency.Add(d)
	m.counters[MetricActions] += uint64(actions)
	m.perMinute.Update(time.Now(), func(v *uint64) { *v += uint64(actions) })
}

// StatusReport is the body of GET /api/status.
type StatusReport struct {
	UptimeSeconds int64             `json:"uptimeSeconds"`
	Counters      map[string]uint64 `json:"counters"`
	Teams         int               `json:"teams"`
	Matches       int               `json:"matches"`
	Tournaments   int               `json:"tournaments"`
	LiveHubs      int               `json:"liveHubs"`
	Latency       Histogram         `json:"latency"`
	P50MS         int64             `json:"p50Ms"`
	P99MS         int64             `json:"p99Ms"`
	ActionsPerMin []Point[uint64]   `json:"actionsPerMinute"`
}

// Report snapshots the counters. The collection sizes are filled in by the
// caller.
func (m *Metrics) Report() StatusReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	counters := make(map[string]uint64, len(m.counters))
	for k, v := range m.counters {
		counters[k] = v
	}
	return StatusReport{
		UptimeSeconds: int64(time.Since(m.start) / time.Second),
		Counters:      counters,
		Latency:       m.latency,
		P50MS:         m.latency.Quantile(0.5).Milliseconds(),
		P99MS:         m.latency.Quantile(0.99).Milliseconds(),
		ActionsPerMin: m.perMinute.Points(),
	}
}
