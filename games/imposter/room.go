/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import (
	"sync"
	"time"
)

// Status is the phase a room is in. Rooms cycle freely between the two.
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusPlaying Status = "playing"
)

// Room is a snapshot of a room's authoritative state.
//
// Word and ImposterID are both empty while waiting and both set while playing.
type Room struct {
	Code       string
	HostID     string
	Language   Language
	Status     Status
	Word       string
	ImposterID string
	CreatedAt  time.Time
	LastActive time.Time
}

// Player is a snapshot of one roster entry.
type Player struct {
	ID        int64
	SessionID string
	RoomCode  string
	Name      string
	IsHost    bool
}

// room is the stored, lockable form of a Room. The players slice is append-only
// and kept in join order.
type room struct {
	mu sync.Mutex

	Room
	players []Player
	closed  bool // set once reaped
}

func (r *room) findSession(sessionID string) (Player, bool) {
	for _, p := range r.players {
		if p.SessionID == sessionID {
			return p, true
		}
	}

	return Player{}, false
}

func (r *room) roster() []Player {
	out := make([]Player, len(r.players))
	copy(out, r.players)

	return out
}

func (r *room) touch() {
	r.LastActive = time.Now()
}
