// set.go - Grow-only set of revealed nullifiers.
//
// A nullifier enters the set when the note it tags is spent and is
// never removed. Rejecting a duplicate insert is the double-spend
// check; the external ledger that finalizes transactions performs the
// same check authoritatively.

package nullifier

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bw6-761/fr"
)

// ErrDuplicateNullifier is returned when a nullifier is inserted twice.
var ErrDuplicateNullifier = errors.New("nullifier already revealed")

// Set tracks spent notes. fr.Element is comparable, so membership is a
// single map lookup.
type Set struct {
	m map[fr.Element]struct{}
}

func NewSet() *Set {
	return &Set{m: make(map[fr.Element]struct{})}
}

// Contains reports whether the nullifier has been revealed.
func (s *Set) Contains(nf fr.Element) bool {
	_, ok := s.m[nf]
	return ok
}

// Insert records a revealed nullifier, failing on duplicates. The set
// is unchanged when the insert fails.
func (s *Set) Insert(nf fr.Element) error {
	if _, ok := s.m[nf]; ok {
		return ErrDuplicateNullifier
	}
	s.m[nf] = struct{}{}
	return nil
}

// Len returns the number of revealed nullifiers.
func (s *Set) Len() int {
	return len(s.m)
}

// Clone copies the set for a ledger snapshot.
func (s *Set) Clone() *Set {
	c := &Set{m: make(map[fr.Element]struct{}, len(s.m))}
	for k := range s.m {
		c.m[k] = struct{}{}
	}
	return c
}
