package nullifier

import (
	"encoding/json"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/davinci-anonvote/crypto/field"
)

func TestDeriveDeterministic(t *testing.T) {
	c := qt.New(t)
	s := field.FromUint64(42)
	c.Assert(Derive(s, []byte("election-1")), qt.Equals, Derive(s, []byte("election-1")))
}

func TestDeriveSeparatesElections(t *testing.T) {
	c := qt.New(t)
	s := field.FromUint64(42)
	c.Assert(Derive(s, []byte("election-1")), qt.Not(qt.Equals), Derive(s, []byte("election-2")))
	c.Assert(Derive(s, nil), qt.Not(qt.Equals), Derive(s, []byte("election-1")))
}

func TestDeriveSeparatesSecrets(t *testing.T) {
	c := qt.New(t)
	id := []byte("election-1")
	c.Assert(Derive(field.FromUint64(1), id), qt.Not(qt.Equals), Derive(field.FromUint64(2), id))
}

func TestHexEncoding(t *testing.T) {
	c := qt.New(t)
	n := Derive(field.FromUint64(7), []byte("e"))

	h := n.Hex()
	c.Assert(len(h), qt.Equals, 64)
	c.Assert(h, qt.Equals, strings.ToLower(h))

	back, err := FromHex(h)
	c.Assert(err, qt.IsNil)
	c.Assert(back, qt.Equals, n)

	_, err = FromHex("00")
	c.Assert(err, qt.ErrorMatches, "invalid nullifier length.*")
	_, err = FromHex("xyz")
	c.Assert(err, qt.ErrorMatches, "invalid nullifier hex.*")

	data, err := json.Marshal(n)
	c.Assert(err, qt.IsNil)
	var decoded Nullifier
	c.Assert(json.Unmarshal(data, &decoded), qt.IsNil)
	c.Assert(decoded, qt.Equals, n)
}

func TestBinaryEncoding(t *testing.T) {
	c := qt.New(t)
	n := Derive(field.FromUint64(9), []byte("e"))

	data, err := n.MarshalBinary()
	c.Assert(err, qt.IsNil)
	var back Nullifier
	c.Assert(back.UnmarshalBinary(data), qt.IsNil)
	c.Assert(back, qt.Equals, n)

	for _, size := range []int{0, 3, Size - 1, Size + 1, 40} {
		err := back.UnmarshalBinary(make([]byte, size))
		c.Assert(err, qt.ErrorMatches, "invalid nullifier length.*", qt.Commentf("size=%d", size))
	}
	c.Assert(back, qt.Equals, n, qt.Commentf("a rejected input must not modify the nullifier"))
}
