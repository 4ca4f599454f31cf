/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

// ResolveViewer finds the player a session token belongs to. A token equal to
// the room's host ID falls back to the roster's host entry. An unknown or
// empty token resolves to nil, which is a valid anonymous viewer.
func ResolveViewer(room Room, players []Player, sessionID string) *Player {
	if sessionID == "" {
		return nil
	}

	for i := range players {
		if players[i].SessionID == sessionID {
			p := players[i]
			return &p
		}
	}

	if sessionID == room.HostID {
		for i := range players {
			if players[i].IsHost {
				p := players[i]
				return &p
			}
		}
	}

	return nil
}
