// Package imposter holds the state and rules for the Imposter party game.
//
// How to play
// - The host creates a room, picks a language, and shares the 4-letter code
// - Everyone else joins with the code and a display name
// - Once enough players are in, the host starts a round
// - One player is picked at random as the imposter; everyone else is shown the same secret word
// - The imposter is only told that they are the imposter
// - Players take turns describing the word without saying it, then vote on who is bluffing
// - The host resets the room to play another round with the same players
//
// Implementation details:
// - Rooms live in memory only and are reaped after a configurable idle period
// - Players are identified by an opaque session token returned on create/join
// - Websockets only carry "room changed" hints; clients re-fetch their own view over HTTP
package imposter
