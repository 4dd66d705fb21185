// Package field implements arithmetic over the prime field of order
// p = 2^256 - 189. Elements are stored as four little-endian 64-bit limbs and
// every value produced by an operation is the canonical representative in
// [0, p).
//
// The arithmetic is not constant time.
package field

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math/bits"

	"github.com/holiman/uint256"
)

// ScalarSize is the length in bytes of the canonical encoding of a Scalar.
const ScalarSize = 32

// reductionFactor is 2^256 mod p.
const reductionFactor = 189

// modulus is p = 2^256 - 189 in little-endian limb order.
var modulus = uint256.Int{0xffffffffffffff43, 0xffffffffffffffff, 0xffffffffffffffff, 0xffffffffffffffff}

// Scalar is an element of the prime field. The zero value is the field
// element 0. Scalars are values: every operation returns a new Scalar and
// never modifies its operands.
type Scalar struct {
	v uint256.Int
}

// Zero returns the additive identity.
func Zero() Scalar {
	return Scalar{}
}

// One returns the multiplicative identity.
func One() Scalar {
	return FromUint64(1)
}

// Modulus returns a copy of p as a uint256.Int.
func Modulus() *uint256.Int {
	return new(uint256.Int).Set(&modulus)
}

// FromUint64 returns x as a field element.
func FromUint64(x uint64) Scalar {
	var s Scalar
	s.v.SetUint64(x)
	return s
}

// FromBytes interprets b as a little-endian 256-bit integer and reduces it
// modulo p. Every input, including all-0xff, is accepted.
func FromBytes(b [ScalarSize]byte) Scalar {
	var v uint256.Int
	for i := range v {
		v[i] = binary.LittleEndian.Uint64(b[8*i:])
	}
	return Scalar{v: reduceOnce(v)}
}

// FromCanonicalBytes decodes a 32-byte little-endian encoding, rejecting
// values that are not lower than p.
func FromCanonicalBytes(b []byte) (Scalar, error) {
	if len(b) != ScalarSize {
		return Scalar{}, fmt.Errorf("invalid scalar length: got %d bytes, expected %d bytes", len(b), ScalarSize)
	}
	var s Scalar
	for i := range s.v {
		s.v[i] = binary.LittleEndian.Uint64(b[8*i:])
	}
	if !s.v.Lt(&modulus) {
		return Scalar{}, fmt.Errorf("non-canonical scalar encoding")
	}
	return s, nil
}

// FromDigest maps a 32-byte hash output to a Scalar by clearing the top bit
// of its little-endian interpretation. The result is below 2^255 and thus
// already reduced. This is not a uniform hash-to-field map.
func FromDigest(d [ScalarSize]byte) Scalar {
	d[ScalarSize-1] &= 0x7f
	return FromBytes(d)
}

// Random draws a uniformly distributed Scalar from r by rejection sampling.
func Random(r io.Reader) (Scalar, error) {
	var buf [ScalarSize]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return Scalar{}, fmt.Errorf("failed to read random scalar: %w", err)
		}
		if s, err := FromCanonicalBytes(buf[:]); err == nil {
			return s, nil
		}
	}
}

// Add returns a + b mod p.
func (a Scalar) Add(b Scalar) Scalar {
	var s uint256.Int
	if _, carry := s.AddOverflow(&a.v, &b.v); carry {
		// a+b-2^256 < p-189, so folding 2^256 back in as 189 stays reduced
		s.AddUint64(&s, reductionFactor)
		return Scalar{v: s}
	}
	return Scalar{v: reduceOnce(s)}
}

// Sub returns a - b mod p. When a < b it computes a + (p - b).
func (a Scalar) Sub(b Scalar) Scalar {
	var d uint256.Int
	if !a.v.Lt(&b.v) {
		d.Sub(&a.v, &b.v)
		return Scalar{v: d}
	}
	d.Sub(&modulus, &b.v)
	d.Add(&d, &a.v)
	return Scalar{v: d}
}

// Neg returns -a mod p.
func (a Scalar) Neg() Scalar {
	return Zero().Sub(a)
}

// Mul returns a * b mod p. The 512-bit schoolbook product is reduced using
// 2^256 = 189 (mod p).
func (a Scalar) Mul(b Scalar) Scalar {
	var t [8]uint64
	for i := 0; i < 4; i++ {
		var carry uint64
		for j := 0; j < 4; j++ {
			hi, lo := bits.Mul64(a.v[i], b.v[j])
			var c uint64
			lo, c = bits.Add64(lo, t[i+j], 0)
			hi += c
			lo, c = bits.Add64(lo, carry, 0)
			hi += c
			t[i+j] = lo
			carry = hi
		}
		t[i+4] = carry
	}
	return Scalar{v: reduceWide(t)}
}

// MulUint64 returns a * x mod p.
func (a Scalar) MulUint64(x uint64) Scalar {
	return a.Mul(FromUint64(x))
}

// Equal reports whether a and b are the same field element.
func (a Scalar) Equal(b Scalar) bool {
	return a.v.Eq(&b.v)
}

// IsZero reports whether a is the field element 0.
func (a Scalar) IsZero() bool {
	return a.v.IsZero()
}

// Cmp compares the canonical representatives of a and b and returns -1, 0
// or +1.
func (a Scalar) Cmp(b Scalar) int {
	return a.v.Cmp(&b.v)
}

// Uint64 returns the lowest limb and whether the value fits in it.
func (a Scalar) Uint64() (uint64, bool) {
	return a.v.Uint64(), a.v.IsUint64()
}

// Bytes32 returns the canonical 32-byte little-endian encoding.
func (a Scalar) Bytes32() [ScalarSize]byte {
	var b [ScalarSize]byte
	for i := range a.v {
		binary.LittleEndian.PutUint64(b[8*i:], a.v[i])
	}
	return b
}

// Bytes returns the canonical 32-byte little-endian encoding as a slice.
func (a Scalar) Bytes() []byte {
	b := a.Bytes32()
	return b[:]
}

// Hex returns the lowercase hexadecimal form of the little-endian encoding.
func (a Scalar) Hex() string {
	return hex.EncodeToString(a.Bytes())
}

// String returns the decimal representation of the scalar.
func (a Scalar) String() string {
	return a.v.Dec()
}

// MarshalBinary implements encoding.BinaryMarshaler. CBOR encodes Scalars
// through it as 32-byte byte strings.
func (a Scalar) MarshalBinary() ([]byte, error) {
	return a.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (a *Scalar) UnmarshalBinary(data []byte) error {
	s, err := FromCanonicalBytes(data)
	if err != nil {
		return err
	}
	*a = s
	return nil
}

// MarshalText encodes the scalar as the hex string returned by Hex.
func (a Scalar) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText decodes the hex string produced by MarshalText.
func (a *Scalar) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("invalid scalar hex %q: %w", text, err)
	}
	return a.UnmarshalBinary(b)
}

// reduceOnce maps any v < 2p into [0, p). Every 256-bit value qualifies.
func reduceOnce(v uint256.Int) uint256.Int {
	if !v.Lt(&modulus) {
		v.Sub(&v, &modulus)
	}
	return v
}

// reduceWide reduces a 512-bit little-endian product modulo p.
func reduceWide(t [8]uint64) uint256.Int {
	// r = lo + hi*189, at most 256+9 bits
	var r [5]uint64
	var carry uint64
	for i := 0; i < 4; i++ {
		hi, lo := bits.Mul64(t[i+4], reductionFactor)
		var c uint64
		lo, c = bits.Add64(lo, t[i], 0)
		hi += c
		lo, c = bits.Add64(lo, carry, 0)
		hi += c
		r[i] = lo
		carry = hi
	}
	r[4] = carry

	// fold the few remaining high bits the same way
	var out uint256.Int
	var c uint64
	out[0], c = bits.Add64(r[0], r[4]*reductionFactor, 0)
	out[1], c = bits.Add64(r[1], 0, c)
	out[2], c = bits.Add64(r[2], 0, c)
	out[3], c = bits.Add64(r[3], 0, c)
	if c != 0 {
		// the sum wrapped, so out is tiny and adding 189 cannot carry
		out.AddUint64(&out, reductionFactor)
	}
	return reduceOnce(out)
}
