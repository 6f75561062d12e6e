package models

// Case is the narrative seed a room plays against. Rooms refer to cases by
// ID, so several rooms can share one case.
type Case struct {
	ID      string `db:"id" json:"id"`
	Title   string `db:"title" json:"title"`
	Summary string `db:"summary" json:"summary"`
}

// Suspect is a character dossier within a case.
type Suspect struct {
	CaseID     string `db:"case_id" json:"-"`
	Name       string `db:"name" json:"name"`
	Occupation string `db:"occupation" json:"occupation"`
	Demeanor   string `db:"demeanor" json:"demeanor"`
	Background string `db:"background" json:"background"`
}

type Clue struct {
	ID          int64  `db:"id" json:"id"`
	CaseID      string `db:"case_id" json:"-"`
	Order       int64  `db:"order" json:"order"`
	Description string `db:"description" json:"description"`
}

type Evidence struct {
	ID          int64  `db:"id" json:"id"`
	CaseID      string `db:"case_id" json:"-"`
	Name        string `db:"name" json:"name"`
	Location    string `db:"location" json:"location"`
	Description string `db:"description" json:"description"`
}

type TimelineEvent struct {
	ID          int64  `db:"id" json:"id"`
	CaseID      string `db:"case_id" json:"-"`
	HappenedAt  string `db:"happened_at" json:"happenedAt"`
	Description string `db:"description" json:"description"`
}

type Alibi struct {
	CaseID       string `db:"case_id" json:"-"`
	SuspectName  string `db:"suspect_name" json:"suspectName"`
	Claim        string `db:"claim" json:"claim"`
	Corroborated bool   `db:"corroborated" json:"corroborated"`
}

// Credibility is an externally computed believability score for a suspect.
type Credibility struct {
	CaseID      string `db:"case_id" json:"-"`
	SuspectName string `db:"suspect_name" json:"suspectName"`
	Score       int64  `db:"score" json:"score"`
}
