package game

import (
	"time"

	"github.com/myrjola/whodunit/internal/models"
)

// Conn is the outbound half of a participant connection. The transport layer
// implements it; the coordination core never touches sockets directly.
// Implementations must not block: deliveries go into a per-connection send
// buffer and a slow consumer is the transport's problem.
type Conn interface {
	// ID identifies the live connection. A reconnect gets a new ID.
	ID() string
	// Identity is the opaque subject verified by the external identity
	// provider, or the session-scoped anonymous id. Used for rebinds.
	Identity() string

	RoomCreated(room models.Room)
	Matched(room models.Room)
	System(msg string)
	// CharacterLocked is only ever sent to the character controller. The
	// suspect's name must never travel to any other participant.
	CharacterLocked(character string)
	QuestionForMurderer(correlationID, character, question string, deadline time.Time)
	// Answer is delivered identically whether a human or the automated
	// answerer produced the text.
	Answer(character, answer string)
	Error(code, msg string)
}
