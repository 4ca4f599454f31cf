/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"

	"github.com/Seednode/imposter/games/imposter"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveSocket upgrades the request and hands the connection to the notifier
// until it closes. Subscriptions are made over the socket, not the URL.
func serveSocket(log zerolog.Logger, notifier *imposter.Notifier) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Debug().Err(err).Str("remote", realIP(r)).Msg("websocket upgrade failed")
			return
		}

		log.Info().Str("remote", realIP(r)).Msg("SOCKET: connected")

		notifier.Serve(conn)

		log.Info().Str("remote", realIP(r)).Msg("SOCKET: disconnected")
	}
}
