package game_test

import (
	"io"
	"testing"

	"github.com/myrjola/whodunit/internal/game"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *game.Registry {
	t.Helper()
	return game.NewRegistry(testhelpers.NewLogger(io.Discard), "hollowbrook-manor")
}

func TestCreateRoomCodes(t *testing.T) {
	registry := newTestRegistry(t)

	room, err := registry.CreateRoom("parlour", "")
	require.NoError(t, err)
	require.Equal(t, "PARLOUR", room.Code(), "codes are canonicalised to uppercase")

	// A taken preferred code yields a fresh one instead of an error.
	other, err := registry.CreateRoom("PARLOUR", "")
	require.NoError(t, err)
	require.NotEqual(t, room.Code(), other.Code())

	generated, err := registry.CreateRoom("", "")
	require.NoError(t, err)
	require.Len(t, generated.Code(), 6)

	found, err := registry.Get("parlour")
	require.NoError(t, err)
	require.Equal(t, room, found)

	_, err = registry.Get("ZZZZZZ")
	require.ErrorIs(t, err, game.ErrRoomNotFound)
}

func TestCreateRoomDisplayNames(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		wantErr     error
	}{
		{name: "valid", displayName: "MysteryNight42", wantErr: nil},
		{name: "too short", displayName: "abc", wantErr: game.ErrInvalidName},
		{name: "non-alphanumeric", displayName: "murder mystery!", wantErr: game.ErrInvalidName},
		{name: "empty is allowed", displayName: "", wantErr: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := newTestRegistry(t)
			_, err := registry.CreateRoom("", tt.displayName)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCreateRoomDisplayNameConflict(t *testing.T) {
	registry := newTestRegistry(t)
	_, err := registry.CreateRoom("", "FridayGame")
	require.NoError(t, err)

	_, err = registry.CreateRoom("", "FridayGame")
	require.ErrorIs(t, err, game.ErrNameConflict)

	// Conflicts are case-insensitive among active rooms.
	_, err = registry.CreateRoom("", "fridaygame")
	require.ErrorIs(t, err, game.ErrNameConflict)

	// Two anonymous rooms never conflict.
	_, err = registry.CreateRoom("", "")
	require.NoError(t, err)
}

func TestListActive(t *testing.T) {
	registry := newTestRegistry(t)
	require.Empty(t, registry.ListActive())

	first, err := registry.CreateRoom("", "")
	require.NoError(t, err)
	_, err = registry.CreateRoom("", "")
	require.NoError(t, err)

	rooms := registry.ListActive()
	require.Len(t, rooms, 2)
	for _, room := range rooms {
		require.Equal(t, models.RoomStatusForming, room.Status)
		require.Equal(t, "hollowbrook-manor", room.CaseRef)
	}

	codes := []string{rooms[0].Code, rooms[1].Code}
	require.Contains(t, codes, first.Code())
}
