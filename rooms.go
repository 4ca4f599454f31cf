/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Seednode/imposter/games/imposter"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

const (
	sessionHeader = "X-Session-Id"
	maxBodyBytes  = 4 << 10
)

type createRoomRequest struct {
	Name     string `json:"name"`
	Language string `json:"language"`
}

type joinRoomRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// sessionResponse hands the caller the token they must present from now on.
type sessionResponse struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type roomHandlers struct {
	cfg      *Config
	log      zerolog.Logger
	store    *imposter.Store
	notifier *imposter.Notifier
}

// sessionToken reads the caller's session token from X-Session-Id, falling
// back to an Authorization bearer token.
func sessionToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(sessionHeader)); token != "" {
		return token
	}

	auth := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(auth, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}

	return ""
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	if err := dec.Decode(v); err != nil {
		return &imposter.ValidationError{Field: "body", Message: "must be a JSON object"}
	}

	return nil
}

// notify tells subscribers of code that the room changed.
func (h *roomHandlers) notify(code string) {
	room, players, err := h.store.Snapshot(code)
	if err != nil {
		return
	}

	sent := h.notifier.Publish(imposter.RoomUpdated(room, len(players)))

	h.log.Debug().Str("room", room.Code).Int("sockets", sent).Msg("room update published")
}

func (h *roomHandlers) reply(w http.ResponseWriter, r *http.Request, status int, v any, what string, startTime time.Time) {
	written, err := writeJSON(h.cfg, w, status, v)
	if err != nil {
		h.log.Debug().Err(err).Msg("failed to write response")

		return
	}

	logServed(h.log, what, r, written, startTime)
}

func (h *roomHandlers) create() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var req createRoomRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(h.cfg, h.log, w, r, err)
			return
		}

		lang, err := imposter.ParseLanguage(req.Language)
		if err != nil {
			writeError(h.cfg, h.log, w, r, err)
			return
		}

		token := uuid.NewString()

		room, _, err := h.store.CreateRoom(req.Name, lang, token)
		if err != nil {
			writeError(h.cfg, h.log, w, r, err)
			return
		}

		h.notify(room.Code)

		h.reply(w, r, http.StatusCreated, sessionResponse{Code: room.Code, PlayerID: token}, "Created room "+room.Code, startTime)
	}
}

func (h *roomHandlers) join() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var req joinRoomRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(h.cfg, h.log, w, r, err)
			return
		}

		token := sessionToken(r)
		if token == "" {
			token = uuid.NewString()
		}

		room, player, err := h.store.JoinRoom(req.Code, req.Name, token)
		if err != nil {
			writeError(h.cfg, h.log, w, r, err)
			return
		}

		h.notify(room.Code)

		h.reply(w, r, http.StatusOK, sessionResponse{Code: room.Code, PlayerID: player.SessionID}, "Joined room "+room.Code, startTime)
	}
}

// roomAction serves POST /api/rooms/join. httprouter cannot register a static
// segment next to :code, so the join path is matched through the wildcard.
// Room codes are upper case, so "join" never names a room.
func (h *roomHandlers) roomAction() httprouter.Handle {
	join := h.join()

	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if ps.ByName("code") != "join" {
			http.NotFound(w, r)
			return
		}

		join(w, r, ps)
	}
}

func (h *roomHandlers) get() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		room, players, err := h.store.Snapshot(ps.ByName("code"))
		if err != nil {
			writeError(h.cfg, h.log, w, r, err)
			return
		}

		me := imposter.ResolveViewer(room, players, sessionToken(r))

		h.reply(w, r, http.StatusOK, imposter.NewView(room, players, me), "Room "+room.Code, startTime)
	}
}

func (h *roomHandlers) start() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		room, players, err := h.store.Snapshot(ps.ByName("code"))
		if err != nil {
			writeError(h.cfg, h.log, w, r, err)
			return
		}

		me := imposter.ResolveViewer(room, players, sessionToken(r))
		if me == nil || !me.IsHost {
			writeError(h.cfg, h.log, w, r, imposter.ErrStartRejected)
			return
		}

		if _, err := h.store.StartGame(room.Code); err != nil {
			writeError(h.cfg, h.log, w, r, err)
			return
		}

		h.notify(room.Code)

		h.reply(w, r, http.StatusOK, successResponse{Success: true}, "Started room "+room.Code, startTime)
	}
}

func (h *roomHandlers) reset() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		room, err := h.store.ResetGame(ps.ByName("code"))
		if err != nil {
			writeError(h.cfg, h.log, w, r, err)
			return
		}

		h.notify(room.Code)

		h.reply(w, r, http.StatusOK, successResponse{Success: true}, "Reset room "+room.Code, startTime)
	}
}

// registerImposterGame sets up routes so that:
//   - POST $prefix/api/rooms              → create a room
//   - POST $prefix/api/rooms/join         → join (or rejoin) a room
//   - GET  $prefix/api/rooms/:code        → the caller's view of a room
//   - POST $prefix/api/rooms/:code/start  → deal a round (host only)
//   - POST $prefix/api/rooms/:code/reset  → back to the lobby
//   - GET  $prefix/api/rooms/:code/qr     → PNG QR code for the join link
//   - GET  $prefix/ws                     → room change notifications
func registerImposterGame(cfg *Config, log zerolog.Logger, mux *httprouter.Router, store *imposter.Store, notifier *imposter.Notifier) {
	h := &roomHandlers{
		cfg:      cfg,
		log:      log,
		store:    store,
		notifier: notifier,
	}

	mux.POST(cfg.prefix+"/api/rooms", h.create())
	mux.POST(cfg.prefix+"/api/rooms/:code", h.roomAction())
	mux.GET(cfg.prefix+"/api/rooms/:code", h.get())
	mux.POST(cfg.prefix+"/api/rooms/:code/start", h.start())
	mux.POST(cfg.prefix+"/api/rooms/:code/reset", h.reset())
	mux.GET(cfg.prefix+"/api/rooms/:code/qr", h.qr())

	mux.GET(cfg.prefix+"/ws", serveSocket(log, notifier))
}
