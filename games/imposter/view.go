/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

// ImposterWord replaces the secret word in the imposter's view.
const ImposterWord = "IMPOSTER"

// Sanitize masks a room's secrets for one viewer. The imposter comparison is
// made against the unmasked room before ImposterID is cleared. A nil viewer is
// treated as the imposter.
func Sanitize(room Room, viewer *Player) Room {
	out := room
	out.HostID = ""

	if room.Status != StatusPlaying {
		out.Word = ""
		out.ImposterID = ""

		return out
	}

	if viewer == nil || viewer.SessionID == room.ImposterID {
		out.Word = ImposterWord
	}

	out.ImposterID = ""

	return out
}

// RoomView is the JSON form of a sanitized room.
type RoomView struct {
	Code        string   `json:"code"`
	Language    Language `json:"language"`
	Status      Status   `json:"status"`
	Word        *string  `json:"word"`
	ImposterID  *string  `json:"imposterId"`
	PlayerCount int      `json:"playerCount"`
}

// PlayerView is the JSON form of a roster entry. SessionID is only filled for
// the viewer's own entry.
type PlayerView struct {
	ID        int64  `json:"id"`
	SessionID string `json:"sessionId,omitempty"`
	RoomCode  string `json:"roomCode"`
	Name      string `json:"name"`
	IsHost    bool   `json:"isHost"`
}

// View is everything one viewer is allowed to see of a room.
type View struct {
	Room    RoomView     `json:"room"`
	Players []PlayerView `json:"players"`
	Me      *PlayerView  `json:"me"`
}

// NewView sanitizes room for viewer and attaches the roster.
func NewView(room Room, players []Player, viewer *Player) View {
	safe := Sanitize(room, viewer)

	v := View{
		Room: RoomView{
			Code:        safe.Code,
			Language:    safe.Language,
			Status:      safe.Status,
			Word:        optional(safe.Word),
			ImposterID:  optional(safe.ImposterID),
			PlayerCount: len(players),
		},
		Players: make([]PlayerView, 0, len(players)),
	}

	for _, p := range players {
		pv := PlayerView{
			ID:       p.ID,
			RoomCode: p.RoomCode,
			Name:     p.Name,
			IsHost:   p.IsHost,
		}
		v.Players = append(v.Players, pv)
	}

	if viewer != nil {
		me := PlayerView{
			ID:        viewer.ID,
			SessionID: viewer.SessionID,
			RoomCode:  viewer.RoomCode,
			Name:      viewer.Name,
			IsHost:    viewer.IsHost,
		}
		v.Me = &me
	}

	return v
}

func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
