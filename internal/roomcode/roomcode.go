package roomcode

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
)

// Length is the number of characters in a room code.
const Length = 4

// Alphabet holds the characters a room code may contain.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Space is the number of distinct room codes.
const Space = 36 * 36 * 36 * 36

// rejectAbove drops bytes that would bias the modulo.
const rejectAbove = 256 - 256%len(alphabet)

// RandSource interface for dependency injection of randomness
type RandSource interface {
	IntN(n int) int
}

// Generator produces room codes. Safe for concurrent use.
type Generator struct {
	mu         sync.Mutex
	randSource RandSource
}

// NewGenerator creates a generator drawing from randSource, or from
// crypto/rand when randSource is nil.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate returns a room code using crypto/rand.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate returns a new 4-character upper-case alphanumeric code. It does
// not check uniqueness; that belongs to whoever owns the code namespace.
func (g *Generator) Generate() string {
	code := make([]byte, Length)

	if g.randSource != nil {
		g.mu.Lock()
		for i := range code {
			code[i] = alphabet[g.randSource.IntN(len(alphabet))]
		}
		g.mu.Unlock()
		return string(code)
	}

	var buf [16]byte
	filled := 0
	for filled < Length {
		if _, err := rand.Read(buf[:]); err != nil {
			panic("failed to generate random bytes: " + err.Error())
		}
		for _, b := range buf {
			if int(b) >= rejectAbove {
				continue
			}
			code[filled] = alphabet[int(b)%len(alphabet)]
			filled++
			if filled == Length {
				break
			}
		}
	}
	return string(code)
}

// Normalize trims and upper-cases a user supplied code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks that code is exactly Length upper-case alphanumerics.
func Validate(code string) error {
	if len(code) != Length {
		return fmt.Errorf("room code must be exactly %d characters, got %d", Length, len(code))
	}

	for i, char := range code {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}

	return nil
}
