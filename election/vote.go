package election

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/vocdoni/davinci-anonvote/crypto/field"
	"github.com/vocdoni/davinci-anonvote/crypto/hash"
	"github.com/vocdoni/davinci-anonvote/crypto/merkle"
	"github.com/vocdoni/davinci-anonvote/crypto/nullifier"
	"github.com/vocdoni/davinci-anonvote/crypto/pedersen"
	"github.com/vocdoni/davinci-anonvote/crypto/voteproof"
)

// Vote is the bundle a voter submits: a commitment to a bit, the proof that
// it hides 0 or 1, the election nullifier and the eligibility proof.
type Vote struct {
	Commitment  pedersen.Commitment  `json:"commitment" cbor:"1,keyasint"`
	Proof       *voteproof.VoteProof `json:"proof" cbor:"2,keyasint"`
	Nullifier   nullifier.Nullifier  `json:"nullifier" cbor:"3,keyasint"`
	Eligibility *merkle.Proof        `json:"eligibility" cbor:"4,keyasint"`
}

// NewVote assembles a vote for value (0 or 1) in the election electionID: it
// commits with blinding, proves the committed value is a bit and derives the
// nullifier of secret. It touches no election state, so ballots can be built
// concurrently.
func NewVote(
	key pedersen.CommitmentKey,
	electionID []byte,
	value uint64,
	blinding field.Scalar,
	secret nullifier.Secret,
	eligibility *merkle.Proof,
) (*Vote, error) {
	commitment := key.CommitUint64(value, blinding)
	proof, err := voteproof.Prove(key, commitment, value, blinding, electionID)
	if err != nil {
		return nil, fmt.Errorf("cannot build vote: %w", err)
	}
	return &Vote{
		Commitment:  commitment,
		Proof:       proof,
		Nullifier:   nullifier.Derive(secret, electionID),
		Eligibility: eligibility,
	}, nil
}

// Clone returns a deep copy of v.
func (v *Vote) Clone() *Vote {
	if v == nil {
		return nil
	}
	out := &Vote{
		Commitment: v.Commitment,
		Nullifier:  v.Nullifier,
	}
	if v.Proof != nil {
		p := *v.Proof
		out.Proof = &p
	}
	if v.Eligibility != nil {
		out.Eligibility = &merkle.Proof{
			Leaf:     v.Eligibility.Leaf,
			Index:    v.Eligibility.Index,
			Siblings: append([]hash.Digest(nil), v.Eligibility.Siblings...),
		}
	}
	return out
}

// String implements fmt.Stringer.
func (v *Vote) String() string {
	return fmt.Sprintf("{nullifier: %s, commitment: %s, eligibility: %s}", v.Nullifier, v.Commitment, v.Eligibility)
}

// EncodeVote serializes v with deterministic CBOR.
func EncodeVote(v *Vote) ([]byte, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("encode vote: %w", err)
	}
	data, err := em.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode vote: %w", err)
	}
	return data, nil
}

// DecodeVote parses the output of EncodeVote. The proof and eligibility
// fields are mandatory.
func DecodeVote(data []byte) (*Vote, error) {
	v := &Vote{}
	if err := cbor.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("decode vote: %w", err)
	}
	if v.Proof == nil {
		return nil, fmt.Errorf("decode vote: missing proof")
	}
	if v.Eligibility == nil {
		return nil, fmt.Errorf("decode vote: missing eligibility proof")
	}
	return v, nil
}
