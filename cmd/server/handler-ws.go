package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/myrjola/whodunit/internal/errors"
)

var upgrader = websocket.Upgrader{ //nolint:exhaustruct // this is better for readability
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Clients connect from whatever origin serves the game frontend.
	// Identity comes from bearer tokens or the session cookie, not from the
	// origin.
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// serveWS upgrades the connection and hands it to the hub. The connection's
// identity is the verified bearer token subject when one is presented, and a
// stable anonymous participant id from the session otherwise, so a dropped
// controller can reconnect into its old role.
func (app *application) serveWS(w http.ResponseWriter, r *http.Request) {
	responseHeader := http.Header{}

	participantIdentity, err := app.resolveIdentity(r, responseHeader)
	if err != nil {
		if errors.Is(err, errUnverifiedToken) {
			app.clientError(w, r, http.StatusUnauthorized)
			return
		}
		app.serverError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, responseHeader)
	if err != nil {
		// Upgrade has already written the failure response.
		app.logger.Debug("websocket upgrade failed", errors.SlogError(err))
		return
	}

	app.hub.ServeConn(conn, participantIdentity)
}

var errUnverifiedToken = errors.NewSentinel("unverified bearer token")

// resolveIdentity prefers a verified bearer token subject. Without one it
// falls back to a participant id stored in the session, minting and
// committing a new session on the handshake response if needed.
func (app *application) resolveIdentity(r *http.Request, responseHeader http.Header) (string, error) {
	if authorization := r.Header.Get("Authorization"); authorization != "" && app.verifier != nil {
		token := strings.TrimPrefix(authorization, "Bearer ")
		subject, err := app.verifier.Verify(token)
		if err != nil {
			app.logger.Debug("bearer token rejected", errors.SlogError(err))
			return "", errUnverifiedToken
		}
		return subject, nil
	}

	ctx := r.Context()
	participantID := app.sessionManager.GetString(ctx, "participantID")
	if participantID != "" {
		return participantID, nil
	}

	participantID = uuid.NewString()
	app.sessionManager.Put(ctx, "participantID", participantID)
	token, expiry, err := app.sessionManager.Commit(ctx)
	if err != nil {
		return "", errors.Wrap(err, "commit session")
	}

	// The handshake response is written by the upgrader, so the session
	// cookie rides its headers instead of the ResponseWriter.
	cookie := http.Cookie{ //nolint:exhaustruct // this is better for readability
		Name:     app.sessionManager.Cookie.Name,
		Value:    token,
		Path:     app.sessionManager.Cookie.Path,
		Domain:   app.sessionManager.Cookie.Domain,
		Expires:  expiry,
		Secure:   app.sessionManager.Cookie.Secure,
		HttpOnly: app.sessionManager.Cookie.HttpOnly,
		SameSite: app.sessionManager.Cookie.SameSite,
	}
	responseHeader.Add("Set-Cookie", cookie.String())
	app.logger.Debug("minted anonymous participant identity", slog.String("participant_id", participantID))

	return participantID, nil
}
