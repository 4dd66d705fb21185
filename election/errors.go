package election

import (
	"errors"

	"github.com/vocdoni/davinci-anonvote/crypto/voteproof"
)

// Vote submission errors. A rejected vote leaves the election untouched.
var (
	ErrInvalidProof       = errors.New("invalid vote proof")
	ErrInvalidEligibility = errors.New("invalid eligibility proof")
	ErrDuplicateNullifier = errors.New("duplicate nullifier")
	ErrElectionClosed     = errors.New("election closed")
	// ErrInvalidVoteValue is propagated from proof construction.
	ErrInvalidVoteValue = voteproof.ErrInvalidVoteValue
)

// Registry errors.
var (
	ErrUnknownElection = errors.New("unknown election")
	ErrElectionExists  = errors.New("election already exists")
)
