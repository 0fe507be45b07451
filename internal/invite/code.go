// Package invite generates and validates event invite codes.
//
// Codes are short, human-shareable strings drawn from a fixed alphabet that
// omits easily confused characters (0/O, 1/I/L). The generator knows nothing
// about persistence: uniqueness is enforced by the store's key constraint,
// and the caller retries on collision.
package invite

import (
	"crypto/rand"
	"math/big"
)

const (
	// Alphabet is the character set invite codes are drawn from.
	Alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

	// Length is the number of characters in a code.
	Length = 6
)

// Generator produces random invite codes.
type Generator struct{}

// NewGenerator returns a code generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns a fresh random code. The code is well-formed but not
// guaranteed unique; the caller checks against the store.
func (g *Generator) Generate() string {
	buf := make([]byte, Length)
	max := big.NewInt(int64(len(Alphabet)))
	for i := range buf {
		// crypto/rand.Int only fails if the source does, which is fatal
		// for code generation anyway.
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("invite: random source unavailable: " + err.Error())
		}
		buf[i] = Alphabet[n.Int64()]
	}
	return string(buf)
}

// Valid reports whether code is a well-formed invite code: exactly Length
// characters, all from Alphabet.
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !inAlphabet(code[i]) {
			return false
		}
	}
	return true
}

func inAlphabet(c byte) bool {
	for i := 0; i < len(Alphabet); i++ {
		if Alphabet[i] == c {
			return true
		}
	}
	return false
}
