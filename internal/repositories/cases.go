package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/sqlite"
)

// ErrNotFound is returned when the requested case or suspect does not exist.
var ErrNotFound = errors.NewSentinel("not found")

type CaseRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewCaseRepository(dbs *sqlite.Database, logger *slog.Logger) *CaseRepository {
	return &CaseRepository{
		dbs:    dbs,
		logger: logger.With("source", "CaseRepository"),
	}
}

func (r *CaseRepository) Case(ctx context.Context, caseID string) (*models.Case, error) {
	var c models.Case
	stmt := `SELECT id, title, summary FROM cases WHERE id = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &c, stmt, caseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "read case", slog.String("case_id", caseID))
	}
	return &c, nil
}

func (r *CaseRepository) Suspects(ctx context.Context, caseID string) ([]models.Suspect, error) {
	var suspects []models.Suspect
	stmt := `SELECT case_id, name, occupation, demeanor, background
	FROM suspects WHERE case_id = ? ORDER BY name`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &suspects, stmt, caseID); err != nil {
		return nil, errors.Wrap(err, "query suspects")
	}
	return suspects, nil
}

func (r *CaseRepository) Suspect(ctx context.Context, caseID, name string) (*models.Suspect, error) {
	var suspect models.Suspect
	stmt := `SELECT case_id, name, occupation, demeanor, background
	FROM suspects WHERE case_id = ? AND name = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &suspect, stmt, caseID, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "read suspect", slog.String("name", name))
	}
	return &suspect, nil
}

func (r *CaseRepository) Clues(ctx context.Context, caseID string) ([]models.Clue, error) {
	var clues []models.Clue
	stmt := `SELECT id, case_id, "order", description
	FROM clues WHERE case_id = ? ORDER BY "order"`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &clues, stmt, caseID); err != nil {
		return nil, errors.Wrap(err, "query clues")
	}
	return clues, nil
}

func (r *CaseRepository) Evidence(ctx context.Context, caseID string) ([]models.Evidence, error) {
	var evidence []models.Evidence
	stmt := `SELECT id, case_id, name, location, description
	FROM evidence WHERE case_id = ? ORDER BY id`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &evidence, stmt, caseID); err != nil {
		return nil, errors.Wrap(err, "query evidence")
	}
	return evidence, nil
}

// SearchLocation returns the evidence hidden at a location. The match is a
// case-insensitive substring so "the study" finds evidence placed in "study".
func (r *CaseRepository) SearchLocation(ctx context.Context, caseID, location string) ([]models.Evidence, error) {
	var evidence []models.Evidence
	stmt := `SELECT id, case_id, name, location, description
	FROM evidence
	WHERE case_id = ? AND instr(lower(?), lower(location)) > 0
	ORDER BY id`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &evidence, stmt, caseID, location); err != nil {
		return nil, errors.Wrap(err, "search evidence", slog.String("location", location))
	}
	return evidence, nil
}

func (r *CaseRepository) Timeline(ctx context.Context, caseID string) ([]models.TimelineEvent, error) {
	var events []models.TimelineEvent
	stmt := `SELECT id, case_id, happened_at, description
	FROM timeline_events WHERE case_id = ? ORDER BY happened_at, id`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &events, stmt, caseID); err != nil {
		return nil, errors.Wrap(err, "query timeline")
	}
	return events, nil
}

func (r *CaseRepository) Alibis(ctx context.Context, caseID string) ([]models.Alibi, error) {
	var alibis []models.Alibi
	stmt := `SELECT case_id, suspect_name, claim, corroborated
	FROM alibis WHERE case_id = ? ORDER BY suspect_name`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &alibis, stmt, caseID); err != nil {
		return nil, errors.Wrap(err, "query alibis")
	}
	return alibis, nil
}

func (r *CaseRepository) Credibility(ctx context.Context, caseID string) ([]models.Credibility, error) {
	var scores []models.Credibility
	stmt := `SELECT case_id, suspect_name, score
	FROM credibility WHERE case_id = ? ORDER BY suspect_name`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &scores, stmt, caseID); err != nil {
		return nil, errors.Wrap(err, "query credibility")
	}
	return scores, nil
}

// Seed replaces the full content of a case in one transaction. Child rows are
// wiped and reinserted so the seed document is authoritative.
func (r *CaseRepository) Seed(ctx context.Context, seed models.CaseSeed) error {
	tx, err := r.dbs.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin seed transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			r.logger.Error("could not roll back seed transaction", errors.SlogError(rollbackErr))
		}
	}()

	stmt := `INSERT INTO cases (id, title, summary) VALUES (:id, :title, :summary)
	ON CONFLICT (id) DO UPDATE SET title = excluded.title, summary = excluded.summary`
	if _, err = tx.NamedExecContext(ctx, stmt, seed.Case); err != nil {
		return errors.Wrap(err, "upsert case", slog.String("case_id", seed.Case.ID))
	}

	for _, table := range []string{"suspects", "clues", "evidence", "timeline_events", "alibis", "credibility"} {
		if _, err = tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE case_id = ?`, seed.Case.ID); err != nil {
			return errors.Wrap(err, "clear "+table)
		}
	}

	for i := range seed.Suspects {
		seed.Suspects[i].CaseID = seed.Case.ID
	}
	if len(seed.Suspects) > 0 {
		stmt = `INSERT INTO suspects (case_id, name, occupation, demeanor, background)
		VALUES (:case_id, :name, :occupation, :demeanor, :background)`
		if _, err = tx.NamedExecContext(ctx, stmt, seed.Suspects); err != nil {
			return errors.Wrap(err, "insert suspects")
		}
	}

	for i := range seed.Clues {
		seed.Clues[i].CaseID = seed.Case.ID
	}
	if len(seed.Clues) > 0 {
		stmt = `INSERT INTO clues (case_id, "order", description)
		VALUES (:case_id, :order, :description)`
		if _, err = tx.NamedExecContext(ctx, stmt, seed.Clues); err != nil {
			return errors.Wrap(err, "insert clues")
		}
	}

	for i := range seed.Evidence {
		seed.Evidence[i].CaseID = seed.Case.ID
	}
	if len(seed.Evidence) > 0 {
		stmt = `INSERT INTO evidence (case_id, name, location, description)
		VALUES (:case_id, :name, :location, :description)`
		if _, err = tx.NamedExecContext(ctx, stmt, seed.Evidence); err != nil {
			return errors.Wrap(err, "insert evidence")
		}
	}

	for i := range seed.Timeline {
		seed.Timeline[i].CaseID = seed.Case.ID
	}
	if len(seed.Timeline) > 0 {
		stmt = `INSERT INTO timeline_events (case_id, happened_at, description)
		VALUES (:case_id, :happened_at, :description)`
		if _, err = tx.NamedExecContext(ctx, stmt, seed.Timeline); err != nil {
			return errors.Wrap(err, "insert timeline events")
		}
	}

	for i := range seed.Alibis {
		seed.Alibis[i].CaseID = seed.Case.ID
	}
	if len(seed.Alibis) > 0 {
		stmt = `INSERT INTO alibis (case_id, suspect_name, claim, corroborated)
		VALUES (:case_id, :suspect_name, :claim, :corroborated)`
		if _, err = tx.NamedExecContext(ctx, stmt, seed.Alibis); err != nil {
			return errors.Wrap(err, "insert alibis")
		}
	}

	for i := range seed.Credibility {
		seed.Credibility[i].CaseID = seed.Case.ID
	}
	if len(seed.Credibility) > 0 {
		stmt = `INSERT INTO credibility (case_id, suspect_name, score)
		VALUES (:case_id, :suspect_name, :score)`
		if _, err = tx.NamedExecContext(ctx, stmt, seed.Credibility); err != nil {
			return errors.Wrap(err, "insert credibility")
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit seed transaction")
	}
	return nil
}
