package random

import (
	"crypto/rand"
	"math/big"
)

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// Room codes avoid characters that are easy to misread when shared out loud
// or scribbled on paper (0/O, 1/I/L).
var codeRunes = []rune("ABCDEFGHJKMNPQRSTUVWXYZ23456789")

func fromAlphabet(alphabet []rune, n uint) (string, error) {
	runes := make([]rune, n)
	for i := range runes {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		runes[i] = alphabet[idx.Int64()]
	}
	return string(runes), nil
}

// Letters returns n cryptographically random ASCII letters.
func Letters(n uint) (string, error) {
	return fromAlphabet(letterRunes, n)
}

// Code returns an n-character room code drawn from an unambiguous alphabet.
// Uniqueness is the caller's responsibility.
func Code(n uint) (string, error) {
	return fromAlphabet(codeRunes, n)
}
