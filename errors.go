/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/Seednode/imposter/games/imposter"
	"github.com/rs/zerolog"
)

const logDate string = `2006-01-02T15:04:05.000-07:00`

func newLogger(cfg *Config, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}

	level := zerolog.WarnLevel
	if cfg.verbose {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: logDate}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", body))

	return htmlBody.String()
}

type errorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// writeError maps a room error onto a status code. Anything unclassified is
// logged and reported as a bare 500.
func writeError(cfg *Config, log zerolog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var (
		status = http.StatusInternalServerError
		body   = errorResponse{Message: "Internal Server Error"}
		verr   *imposter.ValidationError
	)

	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		body = errorResponse{Message: verr.Error(), Field: verr.Field}
	case errors.Is(err, imposter.ErrNotFound):
		status = http.StatusNotFound
		body.Message = "Room not found"
	case errors.Is(err, imposter.ErrJoinRejected):
		status = http.StatusConflict
		body.Message = "Game already started"
	case errors.Is(err, imposter.ErrStartRejected):
		status = http.StatusForbidden
		body.Message = err.Error()
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Str("remote", realIP(r)).Msg("ERROR")
	}

	if _, werr := writeJSON(cfg, w, status, body); werr != nil {
		log.Debug().Err(werr).Msg("failed to write error response")
	}
}
