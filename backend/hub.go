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
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ttbt-io/cricketkeeper/backend/commentary"
	"github.com/ttbt-io/cricketkeeper/backend/cricket"
)

const (
	hubQueueSize   = 64
	hubIdleTimeout = 5 * time.Minute
)

// ErrConflict is returned when a batch was built on a stale revision.
var ErrConflict = errors.New("revision conflict")

// errHubClosed is returned to requests still queued when the manager shuts
// down.
var errHubClosed = errors.New("hub closed")

// Hub request types.
const (
	ReqTypeWSJoin     = "WS_JOIN"
	ReqTypeWSPing     = "WS_PING"
	ReqTypeAction     = "ACTION"
	ReqTypeCommentary = "COMMENTARY"
	ReqTypeReload     = "RELOAD"
)

// HubRequest is one unit of work for a match hub.
type HubRequest struct {
	Type    string
	Client  *wsClient        // For WS requests
	UserID  string           // For actions
	Batch   ActionBatch      // For actions
	Actions []cricket.Action // Decoded Batch.Actions
	BallID  string           // For commentary
	Text    string           // For commentary
	Reply   chan HubResponse // For actions, buffered
}

// HubResponse answers an ACTION request. Revision is the current revision
// of the match when Err is ErrConflict.
type HubResponse struct {
	Result   *ActionResult
	Revision string
	Err      error
}

// ActionResult is the body returned by POST /api/matches/{id}/actions.
type ActionResult struct {
	Revision  string              `json:"revision"`
	Applied   int                 `json:"applied"`
	Duplicate bool                `json:"duplicate,omitempty"`
	State     StateSummary        `json:"state"`
	Balls     []cricket.BallEvent `json:"balls"`
}

// StateSummary is the live state of a match: the phase, the active players
// and the score of the innings in progress.
type StateSummary struct {
	MatchID  string              `json:"matchId"`
	Revision string              `json:"revision,omitempty"`
	Status   cricket.MatchStatus `json:"status"`
	cricket.Pointers
	InningsIndex    int            `json:"inningsIndex"`
	BattingTeamID   string         `json:"battingTeamId,omitempty"`
	Runs            int            `json:"runs"`
	Wickets         int            `json:"wickets"`
	Overs           string         `json:"overs"`
	Chase           *cricket.Chase `json:"chase,omitempty"`
	Result          string         `json:"result,omitempty"`
	WinnerTeamID    string         `json:"winnerTeamId,omitempty"`
	ManOfTheMatchID string         `json:"manOfTheMatchId,omitempty"`
}

// Summarize returns the state summary of a stored match.
func Summarize(m cricket.Match, r cricket.Rosters) StateSummary {
	var p cricket.Pointers
	if m.Scoring != nil && m.Status != cricket.StatusCompleted {
		p = *m.Scoring
	} else {
		p = cricket.Resume(m).Pointers
	}
	sum := StateSummary{
		MatchID:         m.ID,
		Revision:        m.Revision,
		Status:          m.Status,
		Pointers:        p,
		InningsIndex:    m.CurrentInningsIndex,
		WinnerTeamID:    m.WinnerTeamID,
		ManOfTheMatchID: m.ManOfTheMatchID,
		Overs:           cricket.Overs(0),
	}
	if in := m.CurrentInnings(); in != nil {
		sum.BattingTeamID = in.BattingTeamID
		sum.Runs = in.TotalRuns
		sum.Wickets = in.Wickets
		sum.Overs = cricket.Overs(in.LegalBalls())
	}
	if c, ok := cricket.ChaseInfo(m); ok {
		sum.Chase = &c
	}
	if m.Result != nil {
		sum.Result = m.Result.Describe(r.TeamName)
	}
	return sum
}

// Hub serializes every change to one match and fans the results out to the
// spectators of that match.
type Hub struct {
	matchID string

	// Registered clients.
	clients map[*wsClient]bool

	// Inbound requests
	requests chan HubRequest

	// Unregister requests from clients.
	unregister chan *wsClient

	// Closed when run returns.
	done chan struct{}

	// Scoring state of the last revision seen.
	state    *cricket.State
	revision string

	hm *HubManager
}

func newHub(id string, hm *HubManager) *Hub {
	return &Hub{
		matchID:    id,
		clients:    make(map[*wsClient]bool),
		requests:   make(chan HubRequest, hubQueueSize),
		unregister: make(chan *wsClient),
		done:       make(chan struct{}),
		hm:         hm,
	}
}

func (h *Hub) run() {
	defer close(h.done)
	idleTimer := time.NewTicker(hubIdleTimeout)
	defer idleTimer.Stop()

	for {
		select {
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case req := <-h.requests:
			switch req.Type {
			case ReqTypeWSJoin:
				h.handleJoin(req.Client)
			case ReqTypeWSPing:
				if h.clients[req.Client] {
					req.Client.sendJSON(Message{Type: MsgTypePong})
				}
			case ReqTypeAction:
				req.Reply <- h.processActions(req)
			case ReqTypeCommentary:
				h.broadcast(Message{Type: MsgTypeCommentary, MatchID: h.matchID, BallID: req.BallID, Text: req.Text})
			case ReqTypeReload:
				h.handleReload()
			}
		case <-h.hm.ctx.Done():
			h.drain()
			return
		case <-idleTimer.C:
			if len(h.clients) == 0 && h.hm.RemoveHub(h.matchID, h) {
				if err := h.hm.matches.Flush(context.Background(), h.matchID); err != nil {
					log.Printf("[HUB] Error flushing match %s: %v", h.matchID, err)
				}
				return
			}
		}
	}
}

// drain fails the queued action requests and disconnects the spectators.
func (h *Hub) drain() {
	for {
		select {
		case req := <-h.requests:
			if req.Reply != nil {
				req.Reply <- HubResponse{Err: errHubClosed}
			}
		default:
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return
		}
	}
}

func (h *Hub) handleJoin(c *wsClient) {
	h.clients[c] = true
	h.hm.metrics.Inc(MetricSpectators, 1)
	m, ok := h.hm.matches.Get(h.matchID)
	if !ok {
		c.sendJSON(Message{Type: MsgTypeError, MatchID: h.matchID, Error: "Match not found"})
		return
	}
	c.sendJSON(h.snapshot(m))
}

func (h *Hub) snapshot(m cricket.Match) Message {
	sum := Summarize(m, h.hm.registry.Rosters(m))
	return Message{Type: MsgTypeSnapshot, MatchID: m.ID, Match: &m, State: &sum}
}

// handleReload drops the cached state after the match collection was
// replaced and sends the new match to every spectator.
func (h *Hub) handleReload() {
	h.state = nil
	h.revision = ""
	m, ok := h.hm.matches.Get(h.matchID)
	if !ok {
		h.broadcast(Message{Type: MsgTypeError, MatchID: h.matchID, Error: "Match removed"})
		return
	}
	h.broadcast(h.snapshot(m))
}

// seenAll reports whether every action of the batch was already applied.
func seenAll(recent []string, batch []ActionEnvelope) bool {
	for _, a := range batch {
		if !slices.Contains(recent, a.ID) {
			return false
		}
	}
	return true
}

func appendRecent(recent []string, batch []ActionEnvelope) []string {
	out := slices.Clone(recent)
	for _, a := range batch {
		out = append(out, a.ID)
	}
	if len(out) > MaxRecentActions {
		out = out[len(out)-MaxRecentActions:]
	}
	return out
}

func (h *Hub) processActions(req HubRequest) HubResponse {
	start := time.Now()
	m, ok := h.hm.matches.Get(h.matchID)
	if !ok {
		return HubResponse{Err: ErrNotFound}
	}
	if h.state == nil || h.revision != m.Revision {
		s := cricket.Resume(m)
		h.state = &s
		h.revision = m.Revision
	}
	rosters := h.hm.registry.Rosters(m)

	if seenAll(m.RecentActions, req.Batch.Actions) {
		h.hm.metrics.Inc(MetricDuplicates, len(req.Batch.Actions))
		h.hm.debugf("Duplicate batch for match %s from %s", h.matchID, maskEmail(req.UserID))
		return HubResponse{Result: &ActionResult{
			Revision:  m.Revision,
			Duplicate: true,
			State:     Summarize(m, rosters),
			Balls:     []cricket.BallEvent{},
		}}
	}
	if req.Batch.BaseRevision != m.Revision {
		h.hm.metrics.Inc(MetricConflicts, 1)
		log.Printf("[HUB] Conflict: User %s sent actions for match %s at revision %q, current is %q",
			maskEmail(req.UserID), h.matchID, req.Batch.BaseRevision, m.Revision)
		return HubResponse{Err: ErrConflict, Revision: m.Revision}
	}

	next := *h.state
	balls := make([]cricket.BallEvent, 0, len(req.Actions))
	for i, a := range req.Actions {
		env := req.Batch.Actions[i]
		ts := env.Timestamp
		if ts == 0 {
			ts = time.Now().UnixMilli()
		}
		var events []cricket.BallEvent
		var err error
		next, events, err = cricket.Apply(next, cricket.WithStamp(a, "", ts), rosters)
		if err != nil {
			h.hm.metrics.Inc(MetricRejected, 1)
			return HubResponse{Err: fmt.Errorf("action %d (%s): %w", i, env.Type, err)}
		}
		balls = append(balls, events...)
	}

	snap := next.Snapshot()
	if snap.Status == cricket.StatusCompleted && snap.ManOfTheMatchID == "" {
		if mvp := h.hm.cards.Awards(snap, rosters).MVP; mvp != nil {
			snap.ManOfTheMatchID = mvp.PlayerID
		}
	}
	snap.Revision = uuid.NewString()
	snap.RecentActions = appendRecent(m.RecentActions, req.Batch.Actions)

	// Innings and match boundaries are written through; balls are flushed
	// in the background.
	forceSync := snap.Status == cricket.StatusCompleted || next.Phase == cricket.PhaseInningsBreak
	if err := h.hm.matches.Put(context.Background(), snap, forceSync); err != nil {
		log.Printf("[HUB] Error saving match %s: %v", h.matchID, err)
		return HubResponse{Err: err}
	}
	s := cricket.Resume(snap)
	h.state = &s
	h.revision = snap.Revision

	sum := Summarize(snap, rosters)
	for i := range balls {
		h.broadcast(Message{Type: MsgTypeBall, MatchID: h.matchID, Ball: &balls[i]})
	}
	h.broadcast(Message{Type: MsgTypeState, MatchID: h.matchID, State: &sum})

	h.hm.metrics.ObserveAction(time.Since(start), len(req.Actions))
	h.hm.metrics.Inc(MetricBalls, len(balls))
	h.describe(snap, balls, rosters)

	return HubResponse{Result: &ActionResult{
		Revision: snap.Revision,
		Applied:  len(req.Actions),
		State:    sum,
		Balls:    balls,
	}}
}

func inningsOf(m cricket.Match, ballID string) (cricket.Innings, bool) {
	for _, in := range m.Innings {
		for _, b := range in.Balls {
			if b.ID == ballID {
				return in, true
			}
		}
	}
	return cricket.Innings{}, false
}

// describe asks for commentary on each new delivery. The text goes out on
// the live feed only; the stored event keeps its own description.
func (h *Hub) describe(m cricket.Match, balls []cricket.BallEvent, r cricket.Rosters) {
	svc := h.hm.commentary
	if !svc.Enabled() || len(balls) == 0 {
		return
	}
	type pending struct {
		ballID string
		bc     commentary.BallContext
	}
	work := make([]pending, 0, len(balls))
	for _, b := range balls {
		if in, ok := inningsOf(m, b.ID); ok {
			work = append(work, pending{ballID: b.ID, bc: commentary.NewBallContext(b, in, r)})
		}
	}
	go func() {
		for _, p := range work {
			text := svc.Ball(h.hm.ctx, p.bc)
			if h.hm.ctx.Err() != nil {
				return
			}
			h.hm.metrics.Inc(MetricCommentary, 1)
			h.hm.Submit(h.matchID, HubRequest{Type: ReqTypeCommentary, BallID: p.ballID, Text: text})
		}
	}()
}

func (h *Hub) broadcast(msg Message) {
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
}

// HubManager owns the hubs of the matches with recent activity.
type HubManager struct {
	hubs map[string]*Hub
	mu   sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc

	matches    *Collection[cricket.Match]
	registry   *Registry
	cards      *ScorecardCache
	commentary *commentary.Service
	metrics    *Metrics
	debugf     func(string, ...any)
}

func NewHubManager(matches *Collection[cricket.Match], registry *Registry, cards *ScorecardCache, comm *commentary.Service, metrics *Metrics, debugf func(string, ...any)) *HubManager {
	ctx, cancel := context.WithCancel(context.Background())
	if debugf == nil {
		debugf = func(string, ...any) {}
	}
	return &HubManager{
		hubs:       make(map[string]*Hub),
		ctx:        ctx,
		cancel:     cancel,
		matches:    matches,
		registry:   registry,
		cards:      cards,
		commentary: comm,
		metrics:    metrics,
		debugf:     debugf,
	}
}

// getHubLocked returns the hub of a match, starting it if needed.
func (hm *HubManager) getHubLocked(id string) *Hub {
	if hub, ok := hm.hubs[id]; ok {
		return hub
	}
	hub := newHub(id, hm)
	hm.hubs[id] = hub
	go hub.run()
	return hub
}

// Submit queues req on the hub of the match. It returns false when the hub
// is busy or the manager is closed.
func (hm *HubManager) Submit(id string, req HubRequest) bool {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	if hm.ctx.Err() != nil {
		return false
	}
	select {
	case hm.getHubLocked(id).requests <- req:
		return true
	default:
		log.Printf("[HUB] Warning: queue full for match %s, dropping %s", id, req.Type)
		return false
	}
}

// RemoveHub unregisters an idle hub. It returns false if work arrived in
// the meantime.
func (hm *HubManager) RemoveHub(id string, h *Hub) bool {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	if len(h.requests) > 0 {
		return false
	}
	if hm.hubs[id] == h {
		delete(hm.hubs, id)
	}
	return true
}

// ReloadAll tells every live hub that the match collection changed.
func (hm *HubManager) ReloadAll() {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	for id, hub := range hm.hubs {
		select {
		case hub.requests <- HubRequest{Type: ReqTypeReload}:
		default:
			log.Printf("[HUB] Warning: queue full for match %s, dropping reload", id)
		}
	}
}

// Len returns the number of live hubs.
func (hm *HubManager) Len() int {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	return len(hm.hubs)
}

// Close stops every hub and waits for them to exit.
func (hm *HubManager) Close() {
	hm.mu.Lock()
	hm.cancel()
	hubs := make([]*Hub, 0, len(hm.hubs))
	for _, h := range hm.hubs {
		hubs = append(hubs, h)
	}
	hm.hubs = make(map[string]*Hub)
	hm.mu.Unlock()

	for _, h := range hubs {
		<-h.done
	}
}
