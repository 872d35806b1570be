// Package keygen generates random short-link identifiers.
package keygen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Alphabet is the set of characters a short id is drawn from.
const Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// DefaultLength is the number of characters in a short id.
// 36^7 gives roughly 78 billion ids.
const DefaultLength = 7

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// Generate returns a string of n characters, each picked uniformly and
// independently from Alphabet using crypto/rand.
func Generate(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("length must be positive, got %d", n)
	}

	id := make([]byte, n)
	for i := range id {
		idx, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		id[i] = Alphabet[idx.Int64()]
	}

	return string(id), nil
}

// New returns a generator producing ids of the given length.
// A non-positive length falls back to DefaultLength.
func New(length int) func() (string, error) {
	if length <= 0 {
		length = DefaultLength
	}
	return func() (string, error) {
		return Generate(length)
	}
}
