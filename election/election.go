// Package election composes commitments, eligibility proofs, nullifiers and
// bit proofs into a vote acceptance pipeline with a homomorphic running
// tally.
//
// The eligibility proof is not bound to the nullifier secret: anyone holding
// a roster inclusion proof can vote once per secret they choose.
//
// An Election is not safe for concurrent use: SubmitVote checks and then
// mutates, so callers must serialize access to each instance. Registry does
// that for a set of elections.
package election

import (
	"errors"

	"github.com/vocdoni/davinci-anonvote/crypto/field"
	"github.com/vocdoni/davinci-anonvote/crypto/hash"
	"github.com/vocdoni/davinci-anonvote/crypto/merkle"
	"github.com/vocdoni/davinci-anonvote/crypto/nullifier"
	"github.com/vocdoni/davinci-anonvote/crypto/pedersen"
	"github.com/vocdoni/davinci-anonvote/log"
	"github.com/vocdoni/davinci-anonvote/types"
)

// Election holds the state of a single election. The eligibility root is
// fixed at construction. Nullifiers, the tally and the accepted vote log only
// change together, when a vote passes every check.
type Election struct {
	id              types.HexBytes
	key             pedersen.CommitmentKey
	roster          *merkle.Tree
	eligibilityRoot hash.Digest

	nullifiers map[nullifier.Nullifier]struct{}
	tally      pedersen.Commitment
	votes      []*Vote
	closed     bool
}

// New creates an open election over the given voter roster. The id is also
// the Fiat-Shamir label of every vote proof, and the nullifier domain.
func New(id []byte, key pedersen.CommitmentKey, roster [][]byte) *Election {
	tree := merkle.New(roster)
	return &Election{
		id:              types.HexBytes(id).Clone(),
		key:             key,
		roster:          tree,
		eligibilityRoot: tree.Root(),
		nullifiers:      make(map[nullifier.Nullifier]struct{}),
		tally:           pedersen.Zero(),
	}
}

// ID returns a copy of the election identifier.
func (e *Election) ID() types.HexBytes {
	return e.id.Clone()
}

// Key returns the commitment key of the election.
func (e *Election) Key() pedersen.CommitmentKey {
	return e.key
}

// EligibilityRoot returns the Merkle root of the voter roster.
func (e *Election) EligibilityRoot() hash.Digest {
	return e.eligibilityRoot
}

// RosterSize returns the number of eligible voters.
func (e *Election) RosterSize() int {
	return e.roster.Len()
}

// EligibilityProof returns the inclusion proof of the voter at index in the
// roster, or nil if the index is out of range.
func (e *Election) EligibilityProof(index uint64) *merkle.Proof {
	return e.roster.Proof(index)
}

// BuildVote assembles a vote for this election, see NewVote.
func (e *Election) BuildVote(
	value uint64,
	blinding field.Scalar,
	secret nullifier.Secret,
	eligibility *merkle.Proof,
) (*Vote, error) {
	return NewVote(e.key, e.id, value, blinding, secret, eligibility)
}

// SubmitVote validates v and, only if every check passes, records its
// nullifier, adds its commitment to the tally and appends it to the
// accepted log. Checks run cheapest first: closed election, duplicate
// nullifier, eligibility proof, bit proof.
func (e *Election) SubmitVote(v *Vote) error {
	if err := e.check(v); err != nil {
		log.Debugw("vote rejected", "election", e.id.String(), "reason", err.Error())
		return err
	}
	accepted := v.Clone()
	e.nullifiers[accepted.Nullifier] = struct{}{}
	e.tally = e.tally.Add(accepted.Commitment)
	e.votes = append(e.votes, accepted)
	log.Debugw("vote accepted",
		"election", e.id.String(),
		"nullifier", accepted.Nullifier.String(),
		"accepted", len(e.votes))
	return nil
}

func (e *Election) check(v *Vote) error {
	if e.closed {
		return ErrElectionClosed
	}
	if v == nil {
		return ErrInvalidProof
	}
	if _, seen := e.nullifiers[v.Nullifier]; seen {
		return ErrDuplicateNullifier
	}
	if !merkle.Verify(e.eligibilityRoot, v.Eligibility) {
		return ErrInvalidEligibility
	}
	if !v.Proof.Verify(e.key, v.Commitment, e.id) {
		return ErrInvalidProof
	}
	return nil
}

// Close stops accepting votes. Closing is permanent.
func (e *Election) Close() {
	if e.closed {
		return
	}
	e.closed = true
	log.Infow("election closed", "election", e.id.String(), "accepted", len(e.votes))
}

// IsClosed reports whether the election stopped accepting votes.
func (e *Election) IsClosed() bool {
	return e.closed
}

// NumAccepted returns the number of accepted votes.
func (e *Election) NumAccepted() int {
	return len(e.votes)
}

// HasNullifier reports whether a vote with nullifier n was accepted.
func (e *Election) HasNullifier(n nullifier.Nullifier) bool {
	_, ok := e.nullifiers[n]
	return ok
}

// Tally returns the homomorphic sum of all accepted commitments.
func (e *Election) Tally() pedersen.Commitment {
	return e.tally
}

// Votes returns copies of the accepted votes, in acceptance order.
func (e *Election) Votes() []*Vote {
	out := make([]*Vote, len(e.votes))
	for i, v := range e.votes {
		out[i] = v.Clone()
	}
	return out
}

// OpenTally recovers the number of yes votes given the sum of the blinding
// factors of every accepted vote. It tries each candidate in
// [0, NumAccepted()] and returns false if none opens the tally. The search
// is linear in the number of votes.
func (e *Election) OpenTally(sumBlinding field.Scalar) (uint64, bool) {
	n := uint64(len(e.votes))
	for candidate := uint64(0); candidate <= n; candidate++ {
		if e.key.Verify(e.tally, field.FromUint64(candidate), sumBlinding) {
			log.Infow("tally opened", "election", e.id.String(), "result", candidate, "votes", n)
			return candidate, true
		}
	}
	log.Warnw("tally could not be opened", "election", e.id.String(), "votes", n)
	return 0, false
}

// IsRejection reports whether err is one of the vote submission errors.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidProof) ||
		errors.Is(err, ErrInvalidEligibility) ||
		errors.Is(err, ErrDuplicateNullifier) ||
		errors.Is(err, ErrInvalidVoteValue) ||
		errors.Is(err, ErrElectionClosed)
}
