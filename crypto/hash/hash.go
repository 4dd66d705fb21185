// Package hash wraps the 256-bit hash function shared by every derivation in
// the module: Merkle nodes, nullifiers, commitment generators and the
// Fiat-Shamir transcript. BLAKE3 is used underneath.
package hash

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Size is the digest length in bytes.
const Size = 32

// Digest is a 32-byte hash output.
type Digest [Size]byte

// Sum hashes the concatenation of parts.
func Sum(parts ...[]byte) Digest {
	h := New()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum()
}

// Hex returns the lowercase hexadecimal form of d, without prefix.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// String implements fmt.Stringer.
func (d Digest) String() string {
	return d.Hex()
}

// Bytes returns a copy of d as a slice.
func (d Digest) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, d[:])
	return out
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (d Digest) MarshalBinary() ([]byte, error) {
	return d.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. Only exactly Size
// bytes are accepted.
func (d *Digest) UnmarshalBinary(data []byte) error {
	if len(data) != Size {
		return fmt.Errorf("invalid digest length: got %d bytes, expected %d bytes", len(data), Size)
	}
	*d = Digest(data)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := DigestFromHex(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DigestFromHex parses a 64-character hex string, with or without 0x prefix.
func DigestFromHex(s string) (Digest, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Digest{}, fmt.Errorf("invalid digest hex %q: %w", s, err)
	}
	if len(b) != Size {
		return Digest{}, fmt.Errorf("invalid digest length: got %d bytes, expected %d bytes", len(b), Size)
	}
	var d Digest
	copy(d[:], b)
	return d, nil
}

// Hasher is an incremental hash whose state can be forked.
type Hasher struct {
	h *blake3.Hasher
}

// New returns an empty Hasher.
func New() *Hasher {
	return &Hasher{h: blake3.New()}
}

// Write absorbs p. It never fails.
func (h *Hasher) Write(p []byte) {
	// blake3.Hasher.Write is documented to never return an error
	_, _ = h.h.Write(p)
}

// WriteString absorbs s.
func (h *Hasher) WriteString(s string) {
	_, _ = h.h.Write([]byte(s))
}

// Clone returns an independent copy of the current state. Writes to either
// copy do not affect the other.
func (h *Hasher) Clone() *Hasher {
	return &Hasher{h: h.h.Clone()}
}

// Sum returns the digest of everything written so far. The state is left
// untouched and can keep absorbing data.
func (h *Hasher) Sum() Digest {
	var d Digest
	copy(d[:], h.h.Sum(nil))
	return d
}
