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
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ttbt-io/cricketkeeper/backend/cricket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Spectators only send PING.
	maxMessageSize = 4096

	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

// Message types of the live feed.
const (
	MsgTypeSnapshot   = "SNAPSHOT"
	MsgTypeBall       = "BALL"
	MsgTypeState      = "STATE"
	MsgTypeCommentary = "COMMENTARY"
	MsgTypeError      = "ERROR"
	MsgTypePing       = "PING"
	MsgTypePong       = "PONG"
)

// Message is one live feed message.
type Message struct {
	Type    string             `json:"type"`
	MatchID string             `json:"matchId,omitempty"`
	Match   *cricket.Match     `json:"match,omitempty"`
	State   *StateSummary      `json:"state,omitempty"`
	Ball    *cricket.BallEvent `json:"ball,omitempty"`
	BallID  string             `json:"ballId,omitempty"`
	Text    string             `json:"text,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// wsClient is a middleman between the websocket connection and the hub.
type wsClient struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages. Only the hub sends on it and
	// closes it.
	send chan Message

	userID  string
	matchID string
	hm      *HubManager
}

// readPump reads PINGs until the connection closes.
func (c *wsClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[HUB] error: %v", err)
			}
			return
		}
		switch msg.Type {
		case MsgTypePing:
			c.hm.Submit(c.matchID, HubRequest{Type: ReqTypeWSPing, Client: c})
		default:
			c.hm.debugf("Unknown message type from %s: %s", maskEmail(c.userID), msg.Type)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendJSON queues msg without blocking. Called from the hub goroutine only.
func (c *wsClient) sendJSON(msg Message) {
	select {
	case c.send <- msg:
	default:
	}
}

// serveWS upgrades a spectator connection for the match in ?matchId=.
func serveWS(hm *HubManager, w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("matchId")
	if matchID == "" || len(matchID) > maxIDLen {
		http.Error(w, "Bad Request: invalid matchId", http.StatusBadRequest)
		return
	}
	if _, ok := hm.matches.Get(matchID); !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[HUB] upgrade: %v", err)
		return
	}

	hm.mu.Lock()
	if hm.ctx.Err() != nil {
		hm.mu.Unlock()
		conn.Close()
		return
	}
	hub := hm.getHubLocked(matchID)
	c := &wsClient{
		hub:     hub,
		conn:    conn,
		send:    make(chan Message, sendBufferSize),
		userID:  getUserID(r),
		matchID: matchID,
		hm:      hm,
	}
	var queued bool
	select {
	case hub.requests <- HubRequest{Type: ReqTypeWSJoin, Client: c}:
		queued = true
	default:
	}
	hm.mu.Unlock()
	if !queued {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "Server is busy"))
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
