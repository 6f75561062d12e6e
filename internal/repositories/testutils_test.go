package repositories_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/myrjola/whodunit/internal/sqlite"
)

// newTestDB creates an in-memory database for testing purposes. The schema
// initialisation seeds the default case, which doubles as fixture data.
func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()

	dbs, err := sqlite.NewDatabase(context.Background(), ":memory:")
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := dbs.Close(); err != nil {
			t.Fatal(err)
		}
	})

	return dbs
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
