// Package joincode generates the short shareable codes used to join a
// group.
//
// Codes are 6 characters drawn uniformly from a 32-symbol alphabet
// (uppercase letters and digits minus the visually ambiguous I, O, 0, 1).
// The code space is 32^6 ≈ 1.07e9, so New does NOT guarantee global
// uniqueness: the caller must insert against the unique join_code index
// and retry on collision.
package joincode

import (
	"crypto/rand"
	"strings"
)

const (
	// Alphabet is the fixed 32-symbol code alphabet.
	Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// Length is the fixed code length.
	Length = 6
	// MaxAttempts bounds collision retries when assigning a code.
	MaxAttempts = 5
)

// New returns a fresh random code.
func New() string {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// nothing sensible can be done at this layer.
		panic("joincode: crypto/rand unavailable: " + err.Error())
	}
	out := make([]byte, Length)
	for i, b := range buf {
		out[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(out)
}

// Valid reports whether s has the exact shape of a join code.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}
	return true
}
