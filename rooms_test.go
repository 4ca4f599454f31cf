/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Seednode/imposter/games/imposter"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	cfg      *Config
	store    *imposter.Store
	notifier *imposter.Notifier
	router   *httprouter.Router
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &Config{port: 8080, minPlayers: imposter.DefaultMinPlayers}
	store := imposter.NewStore(imposter.WithMinPlayers(cfg.minPlayers))
	notifier := imposter.NewNotifier(zerolog.Nop(), 0)
	t.Cleanup(notifier.Close)

	errs := make(chan error, 64)

	return &testServer{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		router:   newRouter(cfg, zerolog.Nop(), store, notifier, errs),
	}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(sessionHeader, token)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	return rec
}

func (ts *testServer) create(t *testing.T, name, lang string) sessionResponse {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/api/rooms", "", map[string]string{"name": name, "language": lang})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return resp
}

func (ts *testServer) join(t *testing.T, code, name, token string) sessionResponse {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/api/rooms/join", token, map[string]string{"code": code, "name": name})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return resp
}

func (ts *testServer) view(t *testing.T, code, token string) imposter.View {
	t.Helper()

	rec := ts.do(t, http.MethodGet, "/api/rooms/"+code, token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var v imposter.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))

	return v
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return resp
}

func TestCreateRoomHandler(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.create(t, "Ava", "en")

	assert.Regexp(t, `^[A-Z]{4}$`, resp.Code)
	assert.NotEmpty(t, resp.PlayerID)

	v := ts.view(t, resp.Code, resp.PlayerID)
	assert.Equal(t, imposter.StatusWaiting, v.Room.Status)
	require.NotNil(t, v.Me)
	assert.True(t, v.Me.IsHost)
	assert.Equal(t, resp.PlayerID, v.Me.SessionID)
}

func TestCreateRoomHandlerValidation(t *testing.T) {
	ts := newTestServer(t)

	testCases := []struct {
		name      string
		body      any
		wantField string
	}{
		{name: "invalid json", body: `{invalid}`, wantField: "body"},
		{name: "name too short", body: map[string]string{"name": "A", "language": "en"}, wantField: "name"},
		{name: "name too long", body: map[string]string{"name": "Maximilianus I", "language": "en"}, wantField: "name"},
		{name: "unknown language", body: map[string]string{"name": "Ava", "language": "fr"}, wantField: "language"},
		{name: "missing language", body: map[string]string{"name": "Ava"}, wantField: "language"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/rooms", "", tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.wantField, decodeError(t, rec).Field)
		})
	}

	assert.Zero(t, ts.store.Len())
}

func TestJoinRoomHandler(t *testing.T) {
	ts := newTestServer(t)

	host := ts.create(t, "Ava", "en")

	t.Run("new player gets a fresh token", func(t *testing.T) {
		guest := ts.join(t, strings.ToLower(host.Code), "Ben", "")

		assert.Equal(t, host.Code, guest.Code)
		assert.NotEmpty(t, guest.PlayerID)
		assert.NotEqual(t, host.PlayerID, guest.PlayerID)
		assert.Equal(t, 2, ts.view(t, host.Code, "").Room.PlayerCount)
	})

	t.Run("rejoin returns the same token", func(t *testing.T) {
		again := ts.join(t, host.Code, "Ava", host.PlayerID)

		assert.Equal(t, host.PlayerID, again.PlayerID)
		assert.Equal(t, 2, ts.view(t, host.Code, "").Room.PlayerCount)
	})

	t.Run("bearer token rejoin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/rooms/join", strings.NewReader(`{"code":"`+host.Code+`","name":"Ava"}`))
		req.Header.Set("Authorization", "Bearer "+host.PlayerID)

		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), host.PlayerID)
	})

	t.Run("unknown room", func(t *testing.T) {
		code := "QQQQ"
		if host.Code == code {
			code = "PPPP"
		}

		rec := ts.do(t, http.MethodPost, "/api/rooms/join", "", map[string]string{"code": code, "name": "Ben"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed code", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/rooms/join", "", map[string]string{"code": "AB", "name": "Ben"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "code", decodeError(t, rec).Field)
	})

	t.Run("other room actions are not routes", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/rooms/"+host.Code, "", map[string]string{"name": "Ben"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestJoinRoomHandlerWhilePlaying(t *testing.T) {
	ts := newTestServer(t)

	host := ts.create(t, "Ava", "en")
	ben := ts.join(t, host.Code, "Ben", "")
	ts.join(t, host.Code, "Cleo", "")

	rec := ts.do(t, http.MethodPost, "/api/rooms/"+host.Code+"/start", host.PlayerID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/rooms/join", "", map[string]string{"code": host.Code, "name": "Dana"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Game already started", decodeError(t, rec).Message)

	again := ts.join(t, host.Code, "Ben", ben.PlayerID)
	assert.Equal(t, ben.PlayerID, again.PlayerID)
}

func TestGetRoomHandler(t *testing.T) {
	ts := newTestServer(t)

	host := ts.create(t, "Ava", "sq")

	rec := ts.do(t, http.MethodGet, "/api/rooms/ZZZZ", "", nil)
	if host.Code != "ZZZZ" {
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Room not found", decodeError(t, rec).Message)
	}

	anon := ts.view(t, host.Code, "")
	assert.Nil(t, anon.Me)
	assert.Equal(t, imposter.Albanian, anon.Room.Language)
	assert.Len(t, anon.Players, 1)
	assert.Empty(t, anon.Players[0].SessionID)

	unknown := ts.view(t, host.Code, "nobody")
	assert.Nil(t, unknown.Me)
}

func TestStartGameHandler(t *testing.T) {
	ts := newTestServer(t)

	host := ts.create(t, "Ava", "en")
	ben := ts.join(t, host.Code, "Ben", "")

	t.Run("not enough players", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/rooms/"+host.Code+"/start", host.PlayerID, nil)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, decodeError(t, rec).Message, "need at least 3 players")
		assert.Equal(t, imposter.StatusWaiting, ts.view(t, host.Code, "").Room.Status)
	})

	ts.join(t, host.Code, "Cleo", "")

	t.Run("guest cannot start", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/rooms/"+host.Code+"/start", ben.PlayerID, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("anonymous cannot start", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/rooms/"+host.Code+"/start", "", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown room", func(t *testing.T) {
		code := "QQQQ"
		if host.Code == code {
			code = "PPPP"
		}

		rec := ts.do(t, http.MethodPost, "/api/rooms/"+code+"/start", host.PlayerID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("host starts", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/rooms/"+host.Code+"/start", host.PlayerID, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
		assert.Equal(t, imposter.StatusPlaying, ts.view(t, host.Code, "").Room.Status)
	})
}

func TestResetGameHandler(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/rooms/QQQQ/reset", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/rooms/Q1/reset", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoundOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	ava := ts.create(t, "Ava", "en")
	ben := ts.join(t, ava.Code, "Ben", "")
	cleo := ts.join(t, ava.Code, "Cleo", "")

	tokens := []string{ava.PlayerID, ben.PlayerID, cleo.PlayerID}
	assert.Len(t, ts.view(t, ava.Code, "").Players, 3)

	rec := ts.do(t, http.MethodPost, "/api/rooms/"+ava.Code+"/start", ava.PlayerID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	room, err := ts.store.GetRoom(ava.Code)
	require.NoError(t, err)

	imposters := 0
	words := make(map[string]bool)

	for _, token := range tokens {
		v := ts.view(t, ava.Code, token)

		assert.Equal(t, imposter.StatusPlaying, v.Room.Status)
		assert.Nil(t, v.Room.ImposterID)
		require.NotNil(t, v.Room.Word)
		require.NotNil(t, v.Me)

		if token == room.ImposterID {
			imposters++
			assert.Equal(t, imposter.ImposterWord, *v.Room.Word)
			continue
		}

		assert.NotEmpty(t, *v.Room.Word)
		words[*v.Room.Word] = true
	}

	assert.Equal(t, 1, imposters)
	assert.Len(t, words, 1)

	rec = ts.do(t, http.MethodPost, "/api/rooms/"+ava.Code+"/reset", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	v := ts.view(t, ava.Code, ben.PlayerID)
	assert.Equal(t, imposter.StatusWaiting, v.Room.Status)
	assert.Nil(t, v.Room.Word)
	assert.Nil(t, v.Room.ImposterID)
	assert.Len(t, v.Players, 3)
}

func TestRoomQRCode(t *testing.T) {
	ts := newTestServer(t)

	host := ts.create(t, "Ava", "en")

	rec := ts.do(t, http.MethodGet, "/api/rooms/"+host.Code+"/qr", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	code := "QQQQ"
	if host.Code == code {
		code = "PPPP"
	}
	rec = ts.do(t, http.MethodGet, "/api/rooms/"+code+"/qr", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJoinURL(t *testing.T) {
	cfg := &Config{prefix: "/games"}

	req := httptest.NewRequest(http.MethodGet, "http://party.example/api/rooms/ABCD/qr", nil)
	assert.Equal(t, "http://party.example/games/room/ABCD", joinURL(cfg, req, "ABCD"))

	req.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://party.example/games/room/ABCD", joinURL(cfg, req, "ABCD"))

	req.Header.Set("X-Forwarded-Proto", "javascript")
	assert.Equal(t, "http://party.example/games/room/ABCD", joinURL(cfg, req, "ABCD"))
}

func TestSessionToken(t *testing.T) {
	testCases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "none", want: ""},
		{name: "session header", headers: map[string]string{sessionHeader: "abc"}, want: "abc"},
		{name: "bearer", headers: map[string]string{"Authorization": "Bearer xyz"}, want: "xyz"},
		{name: "lower case bearer", headers: map[string]string{"Authorization": "bearer xyz"}, want: "xyz"},
		{name: "basic auth ignored", headers: map[string]string{"Authorization": "Basic xyz"}, want: ""},
		{name: "header wins", headers: map[string]string{sessionHeader: "abc", "Authorization": "Bearer xyz"}, want: "abc"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tc.want, sessionToken(req))
		})
	}
}

func TestSocketReceivesRoomUpdates(t *testing.T) {
	ts := newTestServer(t)

	srv := httptest.NewServer(ts.router)
	t.Cleanup(srv.Close)

	host := ts.create(t, "Ava", "en")

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    imposter.MsgJoinRoom,
		"payload": map[string]string{"code": host.Code},
	}))

	require.Eventually(t, func() bool {
		return ts.notifier.Subscribers(host.Code) == 1
	}, 2*time.Second, 5*time.Millisecond)

	ts.join(t, host.Code, "Ben", "")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var msg imposter.Notification
	require.NoError(t, conn.ReadJSON(&msg))

	assert.Equal(t, imposter.MsgUpdateRoom, msg.Type)
	assert.Equal(t, host.Code, msg.Payload.Code)
	assert.Equal(t, imposter.StatusWaiting, msg.Payload.Status)
	assert.Equal(t, 2, msg.Payload.PlayerCount)
}
