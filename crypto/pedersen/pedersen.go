// Package pedersen implements a Pedersen-style commitment C = v·g + b·h over
// the field of package field. The generators are field elements derived from
// a domain string, not curve points, so the scheme is only binding and hiding
// as far as this reference construction goes: it offers no discrete-log
// hardness.
package pedersen

import (
	"fmt"

	"github.com/vocdoni/davinci-anonvote/crypto/field"
	"github.com/vocdoni/davinci-anonvote/crypto/hash"
)

// Generator labels appended to the domain when deriving a key.
var (
	labelG = []byte("G")
	labelH = []byte("H")
)

// CommitmentKey holds the public generators shared by all commitments made
// under the same domain.
type CommitmentKey struct {
	G field.Scalar `json:"g"`
	H field.Scalar `json:"h"`
}

// DeriveKey computes g = H(domain || "G") and h = H(domain || "H"), each
// mapped to a Scalar with the top bit cleared. The same domain always yields
// the same key.
func DeriveKey(domain []byte) CommitmentKey {
	return CommitmentKey{
		G: field.FromDigest(hash.Sum(domain, labelG)),
		H: field.FromDigest(hash.Sum(domain, labelH)),
	}
}

// Commit returns v·g + b·h.
func (k CommitmentKey) Commit(value, blinding field.Scalar) Commitment {
	return Commitment{c: value.Mul(k.G).Add(blinding.Mul(k.H))}
}

// CommitUint64 commits to a small integer value.
func (k CommitmentKey) CommitUint64(value uint64, blinding field.Scalar) Commitment {
	return k.Commit(field.FromUint64(value), blinding)
}

// Verify reports whether c opens to (value, blinding) under k. The check is
// exact equality.
func (k CommitmentKey) Verify(c Commitment, value, blinding field.Scalar) bool {
	return k.Commit(value, blinding).Equal(c)
}

// Equal reports whether both keys hold the same generators.
func (k CommitmentKey) Equal(other CommitmentKey) bool {
	return k.G.Equal(other.G) && k.H.Equal(other.H)
}

// Commitment is a single field element hiding a committed value.
type Commitment struct {
	c field.Scalar
}

// Zero returns the commitment to value 0 with blinding 0, the identity of
// Add.
func Zero() Commitment {
	return Commitment{}
}

// Scalar returns the underlying field element.
func (c Commitment) Scalar() field.Scalar {
	return c.c
}

// Add returns the homomorphic sum: Commit(v1,b1).Add(Commit(v2,b2)) equals
// Commit(v1+v2, b1+b2).
func (c Commitment) Add(other Commitment) Commitment {
	return Commitment{c: c.c.Add(other.c)}
}

// Sub returns the homomorphic difference of two commitments.
func (c Commitment) Sub(other Commitment) Commitment {
	return Commitment{c: c.c.Sub(other.c)}
}

// Equal reports whether both commitments are the same field element.
func (c Commitment) Equal(other Commitment) bool {
	return c.c.Equal(other.c)
}

// Bytes returns the canonical 32-byte encoding of the commitment.
func (c Commitment) Bytes() []byte {
	return c.c.Bytes()
}

// String implements fmt.Stringer.
func (c Commitment) String() string {
	return c.c.Hex()
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (c Commitment) MarshalBinary() ([]byte, error) {
	return c.c.MarshalBinary()
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (c *Commitment) UnmarshalBinary(data []byte) error {
	if err := c.c.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("invalid commitment: %w", err)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Commitment) MarshalText() ([]byte, error) {
	return c.c.MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Commitment) UnmarshalText(text []byte) error {
	if err := c.c.UnmarshalText(text); err != nil {
		return fmt.Errorf("invalid commitment: %w", err)
	}
	return nil
}
