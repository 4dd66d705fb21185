// -----------------------------------------------------------------------------
//  Disjunctive Σ-proof that a Pedersen commitment hides a bit
//
//  Context (refs):
//   – R. Cramer, I. Damgård, B. Schoenmakers, "Proofs of Partial Knowledge and
//     Simplified Design of Witness Hiding Protocols" (CRYPTO '94)
//
//  Goal: prove NON-interactively that C = v·g + b·h with v ∈ {0, 1}, without
//  revealing v or b. Both statements reduce to knowledge of b such that
//
//        C − v·g  =  b·h
//
//  The prover runs the honest Σ-protocol for the true branch and the
//  simulator for the false branch. Fiat–Shamir fixes the sum of both
//  challenges, so only one of them can be chosen freely.
// -----------------------------------------------------------------------------
//
//  Prover (Prove), vote v, blinding b, other branch s = 1 − v:
//    1.  Derive r, c_s, z_s from the transcript and b.
//    2.  a_s = z_s·h − c_s·(C − s·g)           (simulated)
//    3.  a_v = r·h                             (real)
//    4.  c   = H(label, C, a0, a1)             (Fiat-Shamir)
//    5.  c_v = c − c_s,  z_v = r + c_v·b
//
//  Proof is (a0, z0, c0, a1, z1, c1).
//
//  Verifier (Verify):
//        c0 + c1 == H(label, C, a0, a1)
//        z0·h    == a0 + c0·C
//        z1·h    == a1 + c1·(C − g)
// -----------------------------------------------------------------------------
//
//  WARNING: r, c_s and z_s are derived deterministically from public context
//  and the blinding factor instead of being sampled at random. This keeps
//  proofs reproducible but makes the nonces predictable to anyone who learns
//  b, and two proofs for the same (C, label, b) reuse them. Do not use this
//  construction in a production proof system.
// -----------------------------------------------------------------------------

package voteproof

import (
	"errors"
	"fmt"

	"github.com/vocdoni/davinci-anonvote/crypto/field"
	"github.com/vocdoni/davinci-anonvote/crypto/pedersen"
	"github.com/vocdoni/davinci-anonvote/crypto/transcript"
)

// ErrInvalidVoteValue is returned by Prove when the vote is neither 0 nor 1.
var ErrInvalidVoteValue = errors.New("invalid vote value")

// Size is the length of the encoding returned by Bytes.
const Size = 6 * field.ScalarSize

// transcript labels
const (
	labelCommitment = "commitment"
	labelA0         = "a0"
	labelA1         = "a1"
	labelBlinding   = "blinding"
	labelChallenge  = "c"
	labelNonceR     = "r_real"
	labelNonceC     = "c_sim"
	labelNonceZ     = "z_sim"
)

// VoteProof holds one (first message, response, challenge) triple per
// branch: index 0 proves "value is 0", index 1 proves "value is 1". The
// layout does not depend on which branch is real.
type VoteProof struct {
	A0 field.Scalar `json:"a0" cbor:"1,keyasint"`
	Z0 field.Scalar `json:"z0" cbor:"2,keyasint"`
	C0 field.Scalar `json:"c0" cbor:"3,keyasint"`
	A1 field.Scalar `json:"a1" cbor:"4,keyasint"`
	Z1 field.Scalar `json:"z1" cbor:"5,keyasint"`
	C1 field.Scalar `json:"c1" cbor:"6,keyasint"`
}

// branch is a single Σ-protocol triple.
type branch struct {
	a, z, c field.Scalar
}

// newTranscript binds the label and the commitment, the common prefix of
// proving and verifying.
func newTranscript(commitment pedersen.Commitment, label []byte) *transcript.Transcript {
	t := transcript.New(label)
	t.AppendScalar(labelCommitment, commitment.Scalar())
	return t
}

// statement returns C − v·g, the element that must equal b·h in branch v.
func statement(key pedersen.CommitmentKey, commitment pedersen.Commitment, v uint64) field.Scalar {
	return commitment.Scalar().Sub(key.G.MulUint64(v))
}

// Prove builds a proof that commitment = vote·g + blinding·h with vote in
// {0, 1}. The label is the Fiat-Shamir domain and must be reused when
// verifying.
func Prove(
	key pedersen.CommitmentKey,
	commitment pedersen.Commitment,
	vote uint64,
	blinding field.Scalar,
	label []byte,
) (*VoteProof, error) {
	if vote > 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVoteValue, vote)
	}
	t := newTranscript(commitment, label)

	// nonces come from a fork that also absorbs the secret blinding
	nonces := t.Clone()
	nonces.AppendScalar(labelBlinding, blinding)
	rReal := nonces.ChallengeScalar(labelNonceR)
	cSim := nonces.ChallengeScalar(labelNonceC)
	zSim := nonces.ChallengeScalar(labelNonceZ)

	sim := branch{
		a: zSim.Mul(key.H).Sub(cSim.Mul(statement(key, commitment, 1-vote))),
		z: zSim,
		c: cSim,
	}
	genuine := branch{a: rReal.Mul(key.H)}

	var b0, b1 *branch
	if vote == 0 {
		b0, b1 = &genuine, &sim
	} else {
		b0, b1 = &sim, &genuine
	}
	t.AppendScalar(labelA0, b0.a)
	t.AppendScalar(labelA1, b1.a)
	cTotal := t.ChallengeScalar(labelChallenge)

	genuine.c = cTotal.Sub(cSim)
	genuine.z = rReal.Add(genuine.c.Mul(blinding))

	return &VoteProof{
		A0: b0.a, Z0: b0.z, C0: b0.c,
		A1: b1.a, Z1: b1.z, C1: b1.c,
	}, nil
}

// Verify reports whether p proves that commitment hides 0 or 1 under key,
// for the given Fiat-Shamir label. Any mismatch yields false.
func (p *VoteProof) Verify(key pedersen.CommitmentKey, commitment pedersen.Commitment, label []byte) bool {
	if p == nil {
		return false
	}
	t := newTranscript(commitment, label)
	t.AppendScalar(labelA0, p.A0)
	t.AppendScalar(labelA1, p.A1)
	cTotal := t.ChallengeScalar(labelChallenge)

	if !p.C0.Add(p.C1).Equal(cTotal) {
		return false
	}
	// branch 0: C − 0·g = C
	if !p.Z0.Mul(key.H).Equal(p.A0.Add(p.C0.Mul(commitment.Scalar()))) {
		return false
	}
	// branch 1: C − g
	return p.Z1.Mul(key.H).Equal(p.A1.Add(p.C1.Mul(statement(key, commitment, 1))))
}

// Bytes returns the 192-byte encoding a0 || z0 || c0 || a1 || z1 || c1.
func (p *VoteProof) Bytes() []byte {
	out := make([]byte, 0, Size)
	for _, s := range p.scalars() {
		out = append(out, s.Bytes()...)
	}
	return out
}

// FromBytes decodes the encoding produced by Bytes.
func FromBytes(data []byte) (*VoteProof, error) {
	if len(data) != Size {
		return nil, fmt.Errorf("invalid proof length: got %d bytes, expected %d bytes", len(data), Size)
	}
	p := &VoteProof{}
	for i, s := range p.scalarPtrs() {
		v, err := field.FromCanonicalBytes(data[i*field.ScalarSize : (i+1)*field.ScalarSize])
		if err != nil {
			return nil, fmt.Errorf("invalid proof scalar %d: %w", i, err)
		}
		*s = v
	}
	return p, nil
}

func (p *VoteProof) scalars() [6]field.Scalar {
	return [6]field.Scalar{p.A0, p.Z0, p.C0, p.A1, p.Z1, p.C1}
}

func (p *VoteProof) scalarPtrs() [6]*field.Scalar {
	return [6]*field.Scalar{&p.A0, &p.Z0, &p.C0, &p.A1, &p.Z1, &p.C1}
}
