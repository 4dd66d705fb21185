// Package testutil holds fixtures shared by the election tests.
package testutil

import (
	"crypto/rand"
	"fmt"

	"github.com/vocdoni/davinci-anonvote/crypto/field"
	"github.com/vocdoni/davinci-anonvote/crypto/pedersen"
)

// FixedElectionID is the identifier used by tests that need a stable id.
var FixedElectionID = []byte("election-2026-test")

// TestKey returns the commitment key used by the election tests.
func TestKey() pedersen.CommitmentKey {
	return pedersen.DeriveKey([]byte("davinci-anonvote/test"))
}

// Roster returns n distinct voter identifiers.
func Roster(n int) [][]byte {
	roster := make([][]byte, n)
	for i := range roster {
		roster[i] = fmt.Appendf(nil, "voter-%d", i)
	}
	return roster
}

// RandomScalar returns a random field element and panics on failure.
func RandomScalar() field.Scalar {
	s, err := field.Random(rand.Reader)
	if err != nil {
		panic(err)
	}
	return s
}

// Voter is the private material of one test voter.
type Voter struct {
	Index    uint64
	Value    uint64
	Blinding field.Scalar
	Secret   field.Scalar
}

// Voters returns one voter per value, indexed in order, with fresh random
// blindings and secrets.
func Voters(values ...uint64) []Voter {
	voters := make([]Voter, len(values))
	for i, v := range values {
		voters[i] = Voter{
			Index:    uint64(i),
			Value:    v,
			Blinding: RandomScalar(),
			Secret:   RandomScalar(),
		}
	}
	return voters
}

// SumBlindings adds the blinding factors of voters.
func SumBlindings(voters []Voter) field.Scalar {
	sum := field.Zero()
	for _, v := range voters {
		sum = sum.Add(v.Blinding)
	}
	return sum
}
