package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/repositories"
)

// healthy responds with a JSON object indicating that the server is healthy.
func (app *application) healthy(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (app *application) listRooms(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, app.service.Registry().ListActive())
}

func (app *application) createRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PreferredCode string `json:"preferredCode"`
		DisplayName   string `json:"displayName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	room, err := app.service.Registry().CreateRoom(req.PreferredCode, req.DisplayName)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, room.Snapshot())
}

func (app *application) roomSnapshot(w http.ResponseWriter, r *http.Request) {
	room, err := app.service.Registry().Get(r.PathValue("code"))
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, room.Snapshot())
}

// roomCase resolves the case a room plays against. Reads of the case file go
// through the room so that reseeding takes effect for its participants.
func (app *application) roomCase(w http.ResponseWriter, r *http.Request) (string, bool) {
	room, err := app.service.Registry().Get(r.PathValue("code"))
	if err != nil {
		app.gameError(w, r, err)
		return "", false
	}
	return room.CaseRef(), true
}

func (app *application) caseSummary(w http.ResponseWriter, r *http.Request) {
	caseRef, ok := app.roomCase(w, r)
	if !ok {
		return
	}
	c, err := app.cases.Case(r.Context(), caseRef)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, c)
}

func (app *application) caseClues(w http.ResponseWriter, r *http.Request) {
	caseRef, ok := app.roomCase(w, r)
	if !ok {
		return
	}
	clues, err := app.cases.Clues(r.Context(), caseRef)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, clues)
}

func (app *application) caseEvidence(w http.ResponseWriter, r *http.Request) {
	caseRef, ok := app.roomCase(w, r)
	if !ok {
		return
	}
	evidence, err := app.cases.Evidence(r.Context(), caseRef)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, evidence)
}

func (app *application) caseTimeline(w http.ResponseWriter, r *http.Request) {
	caseRef, ok := app.roomCase(w, r)
	if !ok {
		return
	}
	timeline, err := app.cases.Timeline(r.Context(), caseRef)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, timeline)
}

func (app *application) caseAlibis(w http.ResponseWriter, r *http.Request) {
	caseRef, ok := app.roomCase(w, r)
	if !ok {
		return
	}
	alibis, err := app.cases.Alibis(r.Context(), caseRef)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, alibis)
}

func (app *application) caseCredibility(w http.ResponseWriter, r *http.Request) {
	caseRef, ok := app.roomCase(w, r)
	if !ok {
		return
	}
	scores, err := app.cases.Credibility(r.Context(), caseRef)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, scores)
}

// seedRoomCase replaces the case content a room plays against from a
// structured seed document and points the room at it.
func (app *application) seedRoomCase(w http.ResponseWriter, r *http.Request) {
	room, err := app.service.Registry().Get(r.PathValue("code"))
	if err != nil {
		app.gameError(w, r, err)
		return
	}

	var seed models.CaseSeed
	if err = json.NewDecoder(r.Body).Decode(&seed); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	if seed.Case.ID == "" {
		seed.Case.ID = "case-" + strings.ToLower(room.Code())
	}
	if err = app.cases.Seed(r.Context(), seed); err != nil {
		app.serverError(w, r, err)
		return
	}
	room.SetCaseRef(seed.Case.ID)

	app.writeJSON(w, r, http.StatusOK, room.Snapshot())
}

func (app *application) characterDossier(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	caseRef := defaultCaseID
	if code := r.URL.Query().Get("room"); code != "" {
		room, err := app.service.Registry().Get(code)
		if err != nil {
			app.gameError(w, r, err)
			return
		}
		caseRef = room.CaseRef()
	}
	suspect, err := app.cases.Suspect(r.Context(), caseRef, name)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, suspect)
}

func (app *application) searchLocation(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	caseRef := defaultCaseID
	if code := r.URL.Query().Get("room"); code != "" {
		room, err := app.service.Registry().Get(code)
		if err != nil {
			app.gameError(w, r, err)
			return
		}
		caseRef = room.CaseRef()
	}
	evidence, err := app.cases.SearchLocation(r.Context(), caseRef, query)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if evidence == nil {
		evidence = []models.Evidence{}
	}
	app.writeJSON(w, r, http.StatusOK, evidence)
}
