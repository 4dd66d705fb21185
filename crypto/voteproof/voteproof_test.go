package voteproof

import (
	"crypto/rand"
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/davinci-anonvote/crypto/field"
	"github.com/vocdoni/davinci-anonvote/crypto/pedersen"
)

var (
	testKey   = pedersen.DeriveKey([]byte("anonvote/test/voteproof"))
	testLabel = []byte("election-test")
)

func randomScalar(c *qt.C) field.Scalar {
	s, err := field.Random(rand.Reader)
	c.Assert(err, qt.IsNil)
	return s
}

func proveVote(c *qt.C, vote uint64) (pedersen.Commitment, field.Scalar, *VoteProof) {
	b := randomScalar(c)
	cm := testKey.CommitUint64(vote, b)
	p, err := Prove(testKey, cm, vote, b, testLabel)
	c.Assert(err, qt.IsNil)
	return cm, b, p
}

func TestProveVerifyBothBits(t *testing.T) {
	c := qt.New(t)
	for _, vote := range []uint64{0, 1} {
		for range 20 {
			cm, _, p := proveVote(c, vote)
			c.Assert(p.Verify(testKey, cm, testLabel), qt.IsTrue, qt.Commentf("vote=%d", vote))
		}
	}
}

func TestProveRejectsNonBit(t *testing.T) {
	c := qt.New(t)
	b := randomScalar(c)
	p, err := Prove(testKey, testKey.CommitUint64(2, b), 2, b, testLabel)
	c.Assert(p, qt.IsNil)
	c.Assert(errors.Is(err, ErrInvalidVoteValue), qt.IsTrue)
}

func TestCommitmentToTwoDoesNotVerify(t *testing.T) {
	c := qt.New(t)
	b := randomScalar(c)
	// a dishonest prover claims vote 1 for a commitment to 2
	cm := testKey.CommitUint64(2, b)
	p, err := Prove(testKey, cm, 1, b, testLabel)
	c.Assert(err, qt.IsNil)
	c.Assert(p.Verify(testKey, cm, testLabel), qt.IsFalse)
}

func TestTamperedFieldsFail(t *testing.T) {
	c := qt.New(t)
	for _, vote := range []uint64{0, 1} {
		cm, _, p := proveVote(c, vote)
		for i := range 6 {
			bad := *p
			s := bad.scalarPtrs()[i]
			*s = s.Add(field.One())
			c.Assert(bad.Verify(testKey, cm, testLabel), qt.IsFalse, qt.Commentf("vote=%d field=%d", vote, i))
		}
	}
}

func TestWrongLabelFails(t *testing.T) {
	c := qt.New(t)
	cm, _, p := proveVote(c, 1)
	c.Assert(p.Verify(testKey, cm, []byte("another-election")), qt.IsFalse)
}

func TestWrongCommitmentFails(t *testing.T) {
	c := qt.New(t)
	cm, _, p := proveVote(c, 0)
	other := cm.Add(testKey.CommitUint64(0, field.One()))
	c.Assert(p.Verify(testKey, other, testLabel), qt.IsFalse)

	otherCm, _, _ := proveVote(c, 0)
	c.Assert(p.Verify(testKey, otherCm, testLabel), qt.IsFalse)
}

func TestWrongKeyFails(t *testing.T) {
	c := qt.New(t)
	cm, _, p := proveVote(c, 1)
	c.Assert(p.Verify(pedersen.DeriveKey([]byte("other")), cm, testLabel), qt.IsFalse)
}

func TestNilProof(t *testing.T) {
	c := qt.New(t)
	var p *VoteProof
	c.Assert(p.Verify(testKey, pedersen.Zero(), testLabel), qt.IsFalse)
}

func TestDeterministicNonces(t *testing.T) {
	c := qt.New(t)
	b := randomScalar(c)
	cm := testKey.CommitUint64(1, b)
	p1, err := Prove(testKey, cm, 1, b, testLabel)
	c.Assert(err, qt.IsNil)
	p2, err := Prove(testKey, cm, 1, b, testLabel)
	c.Assert(err, qt.IsNil)
	c.Assert(*p1, qt.Equals, *p2)
}

func TestEncoding(t *testing.T) {
	c := qt.New(t)
	cm, _, p := proveVote(c, 1)

	data := p.Bytes()
	c.Assert(len(data), qt.Equals, Size)

	back, err := FromBytes(data)
	c.Assert(err, qt.IsNil)
	c.Assert(*back, qt.Equals, *p)
	c.Assert(back.Verify(testKey, cm, testLabel), qt.IsTrue)

	_, err = FromBytes(data[:10])
	c.Assert(err, qt.ErrorMatches, "invalid proof length.*")

	bad := append([]byte{}, data...)
	for i := range field.ScalarSize {
		bad[i] = 0xff
	}
	_, err = FromBytes(bad)
	c.Assert(err, qt.ErrorMatches, "invalid proof scalar 0: .*")
}
