// Package identity verifies bearer tokens issued by the external identity
// provider. The core only needs the opaque subject for reconnection
// correlation; everything else about sign-in lives outside this repo.
package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/myrjola/whodunit/internal/errors"
)

var ErrInvalidToken = errors.NewSentinel("invalid identity token")

type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier sharing an HMAC secret with the identity
// provider.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify validates the token signature and expiry and returns the subject.
func (v *Verifier) Verify(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(_ *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", errors.Wrap(ErrInvalidToken, "parse token")
	}
	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", errors.Wrap(ErrInvalidToken, "missing subject")
	}
	return subject, nil
}

// Issue mints a token for subject. The real tokens come from the identity
// provider; this is for tests and local development.
func (v *Verifier) Issue(subject string, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return token, nil
}
