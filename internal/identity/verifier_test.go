package identity_test

import (
	"testing"
	"time"

	"github.com/myrjola/whodunit/internal/identity"
	"github.com/stretchr/testify/require"
)

func TestVerifier(t *testing.T) {
	verifier := identity.NewVerifier("test-secret")

	token, err := verifier.Issue("user-42", time.Minute)
	require.NoError(t, err)

	subject, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-42", subject)
}

func TestVerifierRejections(t *testing.T) {
	verifier := identity.NewVerifier("test-secret")

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{
			name:  "garbage",
			token: func(_ *testing.T) string { return "not-a-token" },
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				other := identity.NewVerifier("other-secret")
				token, err := other.Issue("user-42", time.Minute)
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				token, err := verifier.Issue("user-42", -time.Minute)
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "missing subject",
			token: func(t *testing.T) string {
				token, err := verifier.Issue("", time.Minute)
				require.NoError(t, err)
				return token
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.token(t))
			require.ErrorIs(t, err, identity.ErrInvalidToken)
		})
	}
}
