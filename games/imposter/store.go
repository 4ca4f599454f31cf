/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	codeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// DefaultMinPlayers is the smallest roster a round can start with.
	DefaultMinPlayers = 3

	// MinPlayersFloor is the lowest minimum a store accepts.
	MinPlayersFloor = 2
)

// Store owns every room and player. Operations on one room are serialized by
// that room's lock; operations on different rooms proceed in parallel.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*room

	lastPlayerID atomic.Int64

	words      WordProvider
	minPlayers int
	intn       func(int) int
	log        zerolog.Logger
}

type Option func(*Store)

// WithWords sets the source of secret words.
func WithWords(w WordProvider) Option {
	return func(s *Store) {
		s.words = w
	}
}

// WithMinPlayers sets how many players a round needs. Values below
// MinPlayersFloor are raised to it.
func WithMinPlayers(n int) Option {
	return func(s *Store) {
		s.minPlayers = max(n, MinPlayersFloor)
	}
}

// WithRandom replaces the uniform integer source used for room codes and
// imposter selection. intn must return a value in [0, n) and be safe for
// concurrent use.
func WithRandom(intn func(int) int) Option {
	return func(s *Store) {
		s.intn = intn
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		rooms:      make(map[string]*room),
		words:      DefaultWordTable(),
		minPlayers: DefaultMinPlayers,
		intn:       rand.IntN,
		log:        zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// MinPlayers reports the roster size needed to start a round.
func (s *Store) MinPlayers() int {
	return s.minPlayers
}

// Len reports the number of live rooms.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.rooms)
}

// newCodeLocked returns a code no live room is using. s.mu must be held.
func (s *Store) newCodeLocked() string {
	buf := make([]byte, CodeLength)

	for {
		for i := range buf {
			buf[i] = codeLetters[s.intn(len(codeLetters))]
		}

		code := string(buf)
		if _, exists := s.rooms[code]; !exists {
			return code
		}
	}
}

func (s *Store) lookup(code string) (*room, error) {
	code, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	r, ok := s.rooms[code]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}

	return r, nil
}

// CreateRoom opens a new waiting room with the caller as its host.
func (s *Store) CreateRoom(name string, lang Language, sessionID string) (Room, Player, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return Room{}, Player{}, err
	}

	if !lang.Valid() {
		return Room{}, Player{}, invalid("language", "must be one of en, sq, es, de")
	}

	if sessionID == "" {
		return Room{}, Player{}, invalid("session", "must not be empty")
	}

	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	code := s.newCodeLocked()

	host := Player{
		ID:        s.lastPlayerID.Add(1),
		SessionID: sessionID,
		RoomCode:  code,
		Name:      name,
		IsHost:    true,
	}

	r := &room{
		Room: Room{
			Code:       code,
			HostID:     sessionID,
			Language:   lang,
			Status:     StatusWaiting,
			CreatedAt:  now,
			LastActive: now,
		},
		players: []Player{host},
	}

	s.rooms[code] = r

	s.log.Info().Str("room", code).Str("language", string(lang)).Msg("room created")

	return r.Room, host, nil
}

// JoinRoom adds a guest to a waiting room. A session already on the roster
// gets its existing player back, whatever the room's status.
func (s *Store) JoinRoom(code, name, sessionID string) (Room, Player, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return Room{}, Player{}, err
	}

	if sessionID == "" {
		return Room{}, Player{}, invalid("session", "must not be empty")
	}

	r, err := s.lookup(code)
	if err != nil {
		return Room{}, Player{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return Room{}, Player{}, fmt.Errorf("%w: %s", ErrNotFound, r.Code)
	}

	r.touch()

	if p, ok := r.findSession(sessionID); ok {
		return r.Room, p, nil
	}

	if r.Status != StatusWaiting {
		return Room{}, Player{}, fmt.Errorf("%w: %s", ErrJoinRejected, r.Code)
	}

	p := Player{
		ID:        s.lastPlayerID.Add(1),
		SessionID: sessionID,
		RoomCode:  r.Code,
		Name:      name,
	}
	r.players = append(r.players, p)

	s.log.Info().Str("room", r.Code).Int64("player", p.ID).Int("players", len(r.players)).Msg("player joined")

	return r.Room, p, nil
}

// GetRoom returns the unsanitized room.
func (s *Store) GetRoom(code string) (Room, error) {
	room, _, err := s.Snapshot(code)

	return room, err
}

// GetPlayers returns the roster in join order, or nil for an unknown code.
func (s *Store) GetPlayers(code string) []Player {
	_, players, err := s.Snapshot(code)
	if err != nil {
		return nil
	}

	return players
}

// Snapshot returns a consistent copy of a room and its roster.
func (s *Store) Snapshot(code string) (Room, []Player, error) {
	r, err := s.lookup(code)
	if err != nil {
		return Room{}, nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return Room{}, nil, fmt.Errorf("%w: %s", ErrNotFound, r.Code)
	}

	r.touch()

	return r.Room, r.roster(), nil
}

// StartGame picks an imposter uniformly from the roster and deals a word.
// Starting a room that is already playing deals a fresh round.
func (s *Store) StartGame(code string) (Room, error) {
	r, err := s.lookup(code)
	if err != nil {
		return Room{}, fmt.Errorf("%w: %w", ErrStartRejected, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return Room{}, fmt.Errorf("%w: %w: %s", ErrStartRejected, ErrNotFound, r.Code)
	}

	if len(r.players) < s.minPlayers {
		return Room{}, fmt.Errorf("%w: need at least %d players, have %d", ErrStartRejected, s.minPlayers, len(r.players))
	}

	imposter := r.players[s.intn(len(r.players))]
	word := s.words.RandomWord(r.Language)

	if word == "" {
		return Room{}, fmt.Errorf("no word available for %q", r.Language)
	}

	r.Status = StatusPlaying
	r.ImposterID = imposter.SessionID
	r.Word = word
	r.touch()

	s.log.Info().Str("room", r.Code).Int("players", len(r.players)).Msg("round started")

	return r.Room, nil
}

// ResetGame returns a room to waiting and clears the round's secrets.
// The roster is kept.
func (s *Store) ResetGame(code string) (Room, error) {
	r, err := s.lookup(code)
	if err != nil {
		return Room{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return Room{}, fmt.Errorf("%w: %s", ErrNotFound, r.Code)
	}

	r.Status = StatusWaiting
	r.Word = ""
	r.ImposterID = ""
	r.touch()

	s.log.Info().Str("room", r.Code).Msg("round reset")

	return r.Room, nil
}

// Reap removes rooms that have been idle since before cutoff and returns
// their codes.
func (s *Store) Reap(cutoff time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reaped []string

	for code, r := range s.rooms {
		r.mu.Lock()
		if r.LastActive.Before(cutoff) {
			r.closed = true
			delete(s.rooms, code)
			reaped = append(reaped, code)
		}
		r.mu.Unlock()
	}

	return reaped
}

// RunReaper removes rooms idle longer than timeout until ctx is done, calling
// onReap for each removed code. A non-positive timeout disables reaping.
func (s *Store) RunReaper(ctx context.Context, timeout time.Duration, onReap func(code string)) {
	if timeout <= 0 {
		return
	}

	ticker := time.NewTicker(timeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, code := range s.Reap(now.Add(-timeout)) {
				s.log.Info().Str("room", code).Msg("room reaped")

				if onReap != nil {
					onReap(code)
				}
			}
		}
	}
}
