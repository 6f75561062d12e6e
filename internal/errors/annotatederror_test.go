package errors

import (
	"github.com/stretchr/testify/require"
	"log/slog"
	"slices"
	"testing"
)

func TestAnnotatedError(t *testing.T) {
	err := New("test error", slog.String("id", "123"))
	require.Equal(t, "test error", err.Error())

	// Assert that wrapping sentinel errors works as expected.
	sentinel := NewSentinel("sentinel error")
	require.NotErrorIs(t, err, NewSentinel("sentinel error"))
	wrapped := Wrap(sentinel, "more context", slog.Int("attempt", 2))
	require.ErrorIs(t, wrapped, sentinel)
	require.Equal(t, "more context: sentinel error", wrapped.Error())

	// Ensure log values are coming through.
	group := err.LogValue().Group()
	require.Contains(t, group, slog.String("id", "123"))

	// Assert there's a valid source.
	sourceIdx := slices.IndexFunc(group, func(attr slog.Attr) bool {
		return attr.Key == "source"
	})
	require.GreaterOrEqual(t, sourceIdx, 0)
	source := group[sourceIdx]
	require.Contains(t, source.Value.String(), "annotatederror_test.go")
}

func TestSlogError(t *testing.T) {
	attr := SlogError(NewSentinel("plain"))
	require.Equal(t, "error", attr.Key)
	require.Equal(t, "plain", attr.Value.String())

	inner := New("inner", slog.String("character", "Mrs. Bellamy"))
	outer := Wrap(inner, "outer")
	attr = SlogError(outer)
	group := attr.Value.Group()
	wrappedIdx := slices.IndexFunc(group, func(a slog.Attr) bool {
		return a.Key == "wrapped"
	})
	require.GreaterOrEqual(t, wrappedIdx, 0, "wrapped annotation missing from log value")
	require.Contains(t, group[wrappedIdx].Value.Group(), slog.String("character", "Mrs. Bellamy"))
}
