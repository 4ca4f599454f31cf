/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320 // mobile-friendly size

// joinURL is the link a QR code for code points at, derived from the request
// (respecting TLS and X-Forwarded-Proto if present).
func joinURL(cfg *Config, r *http.Request, code string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}

	return scheme + "://" + r.Host + cfg.prefix + "/room/" + code
}

func (h *roomHandlers) qr() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		room, err := h.store.GetRoom(ps.ByName("code"))
		if err != nil {
			writeError(h.cfg, h.log, w, r, err)
			return
		}

		png, err := qrcode.Encode(joinURL(h.cfg, r, room.Code), qrcode.Medium, qrSize)
		if err != nil {
			writeError(h.cfg, h.log, w, r, err)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(h.cfg, w)

		written, err := w.Write(png)
		if err != nil {
			h.log.Debug().Err(err).Msg("failed to write qr code")
			return
		}

		logServed(h.log, "QR code for room "+room.Code, r, written, startTime)
	}
}
