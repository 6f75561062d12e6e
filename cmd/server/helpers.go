package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/game"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Debug(http.StatusText(status), "method", method, "uri", uri)
	http.Error(w, http.StatusText(status), status)
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.clientError(w, r, http.StatusNotFound)
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "encode response", errors.SlogError(err))
	}
}

// gameError translates room operation failures to HTTP responses with the
// same error codes the websocket protocol uses.
func (app *application) gameError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrNameConflict):
		status = http.StatusConflict
	case errors.Is(err, game.ErrInvalidName):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrRoomClosed):
		status = http.StatusGone
	}
	if status == http.StatusInternalServerError {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, status, map[string]string{
		"code": game.ErrorCode(err),
		"msg":  err.Error(),
	})
}
