package game

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/random"
)

const (
	roomCodeLength        = 6
	minDisplayNameLength  = 4
	codeAllocationRetries = 10
)

// Registry creates, looks up and lists rooms. Room codes are the natural key
// and are case-insensitive; the registry stores them uppercased.
type Registry struct {
	logger         *slog.Logger
	defaultCaseRef string

	mu    sync.Mutex
	rooms map[string]*Room
}

func NewRegistry(logger *slog.Logger, defaultCaseRef string) *Registry {
	return &Registry{
		logger:         logger.With("source", "Registry"),
		defaultCaseRef: defaultCaseRef,
		rooms:          make(map[string]*Room),
	}
}

// CreateRoom creates a room with the given optional preferred code and
// display name. A taken or absent preferred code yields a freshly generated
// one. The display name, when given, must be alphanumeric, at least four
// characters, and unique across rooms that are not closed.
func (g *Registry) CreateRoom(preferredCode, displayName string) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if displayName != "" {
		if !validDisplayName(displayName) {
			return nil, errors.Wrap(ErrInvalidName, "validate display name", slog.String("displayName", displayName))
		}
		for _, room := range g.rooms {
			snapshot := room.Snapshot()
			if snapshot.Status != models.RoomStatusClosed && strings.EqualFold(snapshot.DisplayName, displayName) {
				return nil, errors.Wrap(ErrNameConflict, "validate display name", slog.String("displayName", displayName))
			}
		}
	}

	code := strings.ToUpper(strings.TrimSpace(preferredCode))
	if code == "" || g.rooms[code] != nil {
		var err error
		if code, err = g.allocateCodeLocked(); err != nil {
			return nil, err
		}
	}

	room := newRoom(code, displayName, g.defaultCaseRef)
	g.rooms[code] = room
	g.logger.Debug("room created", "code", code, "displayName", displayName)
	return room, nil
}

func (g *Registry) allocateCodeLocked() (string, error) {
	for range codeAllocationRetries {
		code, err := random.Code(roomCodeLength)
		if err != nil {
			return "", errors.Wrap(err, "generate room code")
		}
		if g.rooms[code] == nil {
			return code, nil
		}
	}
	return "", errors.New("exhausted room code allocation retries")
}

// Get looks up a room by code, case-insensitively.
func (g *Registry) Get(code string) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room := g.rooms[strings.ToUpper(strings.TrimSpace(code))]
	if room == nil {
		return nil, errors.Wrap(ErrRoomNotFound, "look up room", slog.String("code", code))
	}
	return room, nil
}

// ListActive returns snapshots of rooms in forming or active status, for
// display purposes only.
func (g *Registry) ListActive() []models.Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]models.Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		snapshot := room.Snapshot()
		if snapshot.Status != models.RoomStatusClosed {
			out = append(out, snapshot)
		}
	}
	return out
}

// StartReaper closes and drops rooms that have been empty and idle for longer
// than maxIdle. The retention policy itself is deliberately simple: a room
// with any live connection is never reaped.
func (g *Registry) StartReaper(ctx context.Context, interval, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				g.reap(maxIdle)
			}
		}
	}()
}

func (g *Registry) reap(maxIdle time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for code, room := range g.rooms {
		if room.empty() && time.Since(room.idleSince()) > maxIdle {
			room.close()
			delete(g.rooms, code)
			g.logger.Debug("room reaped", "code", code)
		}
	}
}

func validDisplayName(name string) bool {
	if len(name) < minDisplayNameLength {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
