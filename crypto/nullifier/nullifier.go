// Package nullifier derives the per-election tags that reveal a repeated
// vote by the same voter without linking the voter across elections.
package nullifier

import (
	"encoding/hex"
	"fmt"

	"github.com/vocdoni/davinci-anonvote/crypto/field"
	"github.com/vocdoni/davinci-anonvote/crypto/hash"
)

// Size is the length of a Nullifier in bytes.
const Size = hash.Size

var (
	nullifierPrefix = []byte("nullifier:")
	separator       = []byte(":")
)

// Secret is the voter's private nullifier key.
type Secret = field.Scalar

// Nullifier is H("nullifier:" || secret || ":" || electionID).
type Nullifier [Size]byte

// Derive computes the nullifier of secret for the given election. The same
// pair always yields the same nullifier; a different election id yields an
// unrelated one.
func Derive(secret Secret, electionID []byte) Nullifier {
	return Nullifier(hash.Sum(nullifierPrefix, secret.Bytes(), separator, electionID))
}

// FromHex parses the 64-character lowercase hex form returned by Hex.
func FromHex(s string) (Nullifier, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Nullifier{}, fmt.Errorf("invalid nullifier hex: %w", err)
	}
	if len(b) != Size {
		return Nullifier{}, fmt.Errorf("invalid nullifier length: got %d bytes, expected %d bytes", len(b), Size)
	}
	return Nullifier(b), nil
}

// Bytes returns a copy of the raw 32 bytes.
func (n Nullifier) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, n[:])
	return out
}

// Hex returns the 64-character lowercase hex representation.
func (n Nullifier) Hex() string {
	return hex.EncodeToString(n[:])
}

// String implements fmt.Stringer.
func (n Nullifier) String() string {
	return n.Hex()
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (n Nullifier) MarshalBinary() ([]byte, error) {
	return n.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. Only exactly Size
// bytes are accepted.
func (n *Nullifier) UnmarshalBinary(data []byte) error {
	if len(data) != Size {
		return fmt.Errorf("invalid nullifier length: got %d bytes, expected %d bytes", len(data), Size)
	}
	*n = Nullifier(data)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (n Nullifier) MarshalText() ([]byte, error) {
	return []byte(n.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Nullifier) UnmarshalText(text []byte) error {
	parsed, err := FromHex(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
