package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	session := alice.New(app.sessionManager.LoadAndSave)
	// The websocket handler hijacks the connection, so the session is loaded
	// without the response-writing wrapper.
	wsSession := alice.New(app.websocketSessionMiddleware)

	mux.HandleFunc("GET /api/healthy", app.healthy)
	mux.Handle("GET /ws", wsSession.ThenFunc(app.serveWS))

	mux.Handle("GET /api/rooms", session.ThenFunc(app.listRooms))
	mux.Handle("POST /api/rooms", session.ThenFunc(app.createRoom))
	mux.Handle("GET /api/rooms/{code}", session.ThenFunc(app.roomSnapshot))
	mux.Handle("GET /api/rooms/{code}/summary", session.ThenFunc(app.caseSummary))
	mux.Handle("GET /api/rooms/{code}/clues", session.ThenFunc(app.caseClues))
	mux.Handle("GET /api/rooms/{code}/evidence", session.ThenFunc(app.caseEvidence))
	mux.Handle("GET /api/rooms/{code}/timeline", session.ThenFunc(app.caseTimeline))
	mux.Handle("GET /api/rooms/{code}/alibis", session.ThenFunc(app.caseAlibis))
	mux.Handle("GET /api/rooms/{code}/credibility", session.ThenFunc(app.caseCredibility))
	mux.Handle("POST /api/rooms/{code}/seed", session.ThenFunc(app.seedRoomCase))

	mux.Handle("GET /api/characters/{name}", session.ThenFunc(app.characterDossier))
	mux.Handle("GET /api/locations/search", session.ThenFunc(app.searchLocation))

	return app.recoverPanic(app.logRequest(secureHeaders(mux)))
}
