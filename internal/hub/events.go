package hub

import (
	"time"

	"github.com/myrjola/whodunit/internal/models"
)

// Wire protocol. Every frame is a JSON object with a "type" discriminator.

// clientMessage covers all client-to-server events. Unused fields stay empty.
type clientMessage struct {
	Type          string `json:"type"`
	PreferredCode string `json:"preferredCode,omitempty"`
	DisplayName   string `json:"displayName,omitempty"`
	Role          string `json:"role,omitempty"`
	Room          string `json:"room,omitempty"`
	Character     string `json:"character,omitempty"`
	Question      string `json:"question,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
	Answer        string `json:"answer,omitempty"`
}

type roomCreatedMessage struct {
	Type string      `json:"type"` // "roomCreated"
	Room models.Room `json:"room"`
}

type matchedMessage struct {
	Type string      `json:"type"` // "matched"
	Room models.Room `json:"room"`
}

type systemMessage struct {
	Type string `json:"type"` // "system"
	Msg  string `json:"msg"`
}

// characterLockedMessage is only ever sent to the character controller.
type characterLockedMessage struct {
	Type      string `json:"type"` // "characterLocked"
	Character string `json:"character"`
}

type questionForMurdererMessage struct {
	Type          string    `json:"type"` // "questionForMurderer"
	CorrelationID string    `json:"correlationId"`
	Character     string    `json:"character"`
	Question      string    `json:"question"`
	Deadline      time.Time `json:"deadline"`
}

// answerMessage has the same shape for human and automated answers.
type answerMessage struct {
	Type      string `json:"type"` // "answer"
	Character string `json:"character"`
	Answer    string `json:"answer"`
}

type errorMessage struct {
	Type string `json:"type"` // "error"
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
