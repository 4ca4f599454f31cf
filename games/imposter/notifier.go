/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Message types on the realtime channel.
const (
	MsgJoinRoom   = "JOIN_ROOM"
	MsgUpdateRoom = "UPDATE_ROOM"
	MsgRoomClosed = "ROOM_CLOSED"
)

const (
	sendBuffer     = 16
	maxMessageSize = 512
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait / 2
	messageBurst   = 5
)

// Notification tells subscribers a room changed. It never carries secrets or
// per-viewer data; clients re-fetch their own view.
type Notification struct {
	Type    string              `json:"type"`
	Payload NotificationPayload `json:"payload"`
}

type NotificationPayload struct {
	Code        string `json:"code"`
	Status      Status `json:"status,omitempty"`
	PlayerCount int    `json:"playerCount,omitempty"`
}

// RoomUpdated builds the change signal for a room mutation.
func RoomUpdated(room Room, playerCount int) Notification {
	return Notification{
		Type: MsgUpdateRoom,
		Payload: NotificationPayload{
			Code:        room.Code,
			Status:      room.Status,
			PlayerCount: playerCount,
		},
	}
}

// RoomClosed builds the signal sent when a room is reaped.
func RoomClosed(code string) Notification {
	return Notification{
		Type:    MsgRoomClosed,
		Payload: NotificationPayload{Code: code},
	}
}

type clientMessage struct {
	Type    string `json:"type"`
	Payload struct {
		Code string `json:"code"`
	} `json:"payload"`
}

// Subscriber is one live realtime connection.
type Subscriber struct {
	conn    *websocket.Conn
	send    chan Notification
	limiter *rate.Limiter
}

// Notifier maps live connections to the room code each is subscribed to.
// A connection with an empty code is attached but not subscribed.
type Notifier struct {
	mu   sync.Mutex
	subs map[*Subscriber]string

	limit rate.Limit
	log   zerolog.Logger
}

// NewNotifier returns a notifier that accepts perSecond inbound messages per
// connection. A non-positive rate disables the limit.
func NewNotifier(log zerolog.Logger, perSecond float64) *Notifier {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}

	return &Notifier{
		subs:  make(map[*Subscriber]string),
		limit: limit,
		log:   log,
	}
}

// Serve runs a connection until it closes.
func (n *Notifier) Serve(conn *websocket.Conn) {
	s := &Subscriber{
		conn:    conn,
		send:    make(chan Notification, sendBuffer),
		limiter: rate.NewLimiter(n.limit, messageBurst),
	}

	n.mu.Lock()
	n.subs[s] = ""
	n.mu.Unlock()

	go s.writePump()

	s.readPump(n)
}

// Subscribe points a connection at a room code, replacing any earlier one.
func (n *Notifier) Subscribe(s *Subscriber, code string) bool {
	code, err := NormalizeCode(code)
	if err != nil {
		return false
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.subs[s]; !ok {
		return false
	}

	n.subs[s] = code

	n.log.Debug().Str("room", code).Str("remote", s.conn.RemoteAddr().String()).Msg("socket subscribed")

	return true
}

// Unsubscribe forgets a connection and ends its write pump.
func (n *Notifier) Unsubscribe(s *Subscriber) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.dropLocked(s)
}

func (n *Notifier) dropLocked(s *Subscriber) {
	if _, ok := n.subs[s]; !ok {
		return
	}

	delete(n.subs, s)
	close(s.send)
}

// Publish queues msg for every connection subscribed to its room code and
// returns how many were queued. It never blocks; a connection whose queue is
// full is dropped.
func (n *Notifier) Publish(msg Notification) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	sent := 0

	for s, code := range n.subs {
		if code == "" || code != msg.Payload.Code {
			continue
		}

		select {
		case s.send <- msg:
			sent++
		default:
			n.log.Debug().Str("room", code).Msg("socket dropped, send queue full")
			n.dropLocked(s)
		}
	}

	return sent
}

// Subscribers reports how many connections are subscribed to code.
func (n *Notifier) Subscribers(code string) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	count := 0
	for _, c := range n.subs {
		if c == code {
			count++
		}
	}

	return count
}

// Close disconnects every connection.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for s := range n.subs {
		n.dropLocked(s)
	}
}

func (s *Subscriber) readPump(n *Notifier) {
	defer func() {
		n.Unsubscribe(s)
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		if !s.limiter.Allow() {
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case MsgJoinRoom:
			n.Subscribe(s, msg.Payload.Code)
		default:
			// ignore unknown types
		}
	}
}

func (s *Subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := s.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
