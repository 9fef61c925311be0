package ident

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

// Source supplies the two identifier kinds the deck domain uses: globally
// unique ids for decks and short local keys for cards, traits and stats.
// It is an interface so tests can substitute a deterministic sequence.
type Source interface {
	// GlobalID returns a universally unique identifier (UUID v4).
	GlobalID() string
	// LocalKey returns a short random key, unique only within its parent
	// collection. 6 chars over [0-9a-z] give a 36^6 space; collisions at
	// realistic deck sizes are negligible and the merge engine tolerates
	// them, so there is no retry loop.
	LocalKey() string
}

const (
	localKeyLen      = 6
	localKeyAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

type randomSource struct{}

// NewSource returns the production identifier source.
func NewSource() Source {
	return randomSource{}
}

func (randomSource) GlobalID() string {
	return uuid.NewString()
}

func (randomSource) LocalKey() string {
	buf := make([]byte, localKeyLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the platform entropy source is
		// broken; fall back to a uuid-derived key rather than panic.
		return uuid.NewString()[:localKeyLen]
	}
	for i, b := range buf {
		buf[i] = localKeyAlphabet[int(b)%len(localKeyAlphabet)]
	}
	return string(buf)
}

// Sequence is a deterministic Source for tests: ids come out as
// "<prefix>-g1", "<prefix>-g2", ... and local keys as "<prefix>-k1", ...
type Sequence struct {
	Prefix  string
	globals int
	locals  int
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{Prefix: prefix}
}

func (s *Sequence) GlobalID() string {
	s.globals++
	return fmt.Sprintf("%s-g%d", s.Prefix, s.globals)
}

func (s *Sequence) LocalKey() string {
	s.locals++
	return fmt.Sprintf("%s-k%d", s.Prefix, s.locals)
}
