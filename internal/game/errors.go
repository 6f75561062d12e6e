package game

import (
	"github.com/myrjola/whodunit/internal/errors"
)

// Protocol-level errors. All of them are recoverable: a bad request produces
// an error event on the offending connection and the room carries on.
var (
	ErrRoomNotFound       = errors.NewSentinel("room not found")
	ErrNameConflict       = errors.NewSentinel("display name already in use")
	ErrInvalidName        = errors.NewSentinel("invalid display name")
	ErrRoomClosed         = errors.NewSentinel("room is closed")
	ErrRoleTaken          = errors.NewSentinel("role is already taken")
	ErrRoleRequired       = errors.NewSentinel("caller does not hold the required role")
	ErrUnauthorized       = errors.NewSentinel("identity required")
	ErrAlreadyLocked      = errors.NewSentinel("a character is already locked")
	ErrUnknownCharacter   = errors.NewSentinel("unknown character")
	ErrUnknownCorrelation = errors.NewSentinel("unknown correlation id")
	ErrForbidden          = errors.NewSentinel("connection does not own the character lock")
	ErrExpired            = errors.NewSentinel("answer deadline has passed")
	ErrQuestionInFlight   = errors.NewSentinel("character already has an unresolved question")
	ErrInvalidRole        = errors.NewSentinel("unknown role")
	ErrNotInRoom          = errors.NewSentinel("connection has not joined a room")
	ErrShuttingDown       = errors.NewSentinel("matchmaking is shutting down")
)

// ErrorCode maps a protocol error to the wire-level code sent in error events.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "RoomNotFound"
	case errors.Is(err, ErrNameConflict):
		return "NameConflict"
	case errors.Is(err, ErrInvalidName):
		return "InvalidName"
	case errors.Is(err, ErrRoomClosed):
		return "RoomClosed"
	case errors.Is(err, ErrRoleTaken):
		return "RoleTaken"
	case errors.Is(err, ErrRoleRequired):
		return "RoleRequired"
	case errors.Is(err, ErrUnauthorized):
		return "Unauthorized"
	case errors.Is(err, ErrAlreadyLocked):
		return "AlreadyLocked"
	case errors.Is(err, ErrUnknownCharacter):
		return "UnknownCharacter"
	case errors.Is(err, ErrUnknownCorrelation):
		return "UnknownCorrelation"
	case errors.Is(err, ErrForbidden):
		return "Forbidden"
	case errors.Is(err, ErrExpired):
		return "Expired"
	case errors.Is(err, ErrQuestionInFlight):
		return "QuestionInFlight"
	case errors.Is(err, ErrInvalidRole):
		return "InvalidRole"
	case errors.Is(err, ErrNotInRoom):
		return "NotInRoom"
	case errors.Is(err, ErrShuttingDown):
		return "ShuttingDown"
	default:
		return "Internal"
	}
}
