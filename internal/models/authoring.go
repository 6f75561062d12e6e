package models

// CaseSeed is the structured input the authoring flow uses to (re)seed a
// case: narrative, cast, evidence, clues, timeline and alibis in one
// document. Credibility scores are optional; absent suspects default to a
// neutral score.
type CaseSeed struct {
	Case        Case            `json:"case"`
	Suspects    []Suspect       `json:"suspects"`
	Clues       []Clue          `json:"clues"`
	Evidence    []Evidence      `json:"evidence"`
	Timeline    []TimelineEvent `json:"timeline"`
	Alibis      []Alibi         `json:"alibis"`
	Credibility []Credibility   `json:"credibility,omitempty"`
}
