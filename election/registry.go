package election

import (
	"fmt"
	"slices"
	"sync"

	"github.com/vocdoni/davinci-anonvote/crypto/field"
	"github.com/vocdoni/davinci-anonvote/crypto/hash"
	"github.com/vocdoni/davinci-anonvote/crypto/merkle"
	"github.com/vocdoni/davinci-anonvote/crypto/nullifier"
	"github.com/vocdoni/davinci-anonvote/crypto/pedersen"
	"github.com/vocdoni/davinci-anonvote/log"
	"github.com/vocdoni/davinci-anonvote/types"
)

// DefaultKeyDomain is the commitment key domain used by a Registry when
// neither the registry nor the election names one.
const DefaultKeyDomain = "davinci-anonvote/pedersen/v1"

// Registry owns a set of elections and serializes every operation on them,
// so it can be shared by concurrent callers.
type Registry struct {
	mu        sync.Mutex
	elections map[string]*Election
	keys      *pedersen.KeyCache
	domain    []byte
}

// NewRegistry returns an empty registry whose elections derive their
// commitment key from domain unless Create is given another one. An empty
// domain selects DefaultKeyDomain.
func NewRegistry(domain []byte) (*Registry, error) {
	keys, err := pedersen.NewKeyCache(0)
	if err != nil {
		return nil, err
	}
	if len(domain) == 0 {
		domain = []byte(DefaultKeyDomain)
	}
	return &Registry{
		elections: make(map[string]*Election),
		keys:      keys,
		domain:    slices.Clone(domain),
	}, nil
}

// Create registers a new election over roster and returns its id and
// eligibility root. An empty id is replaced by a random one and an empty
// keyDomain by the registry domain.
func (r *Registry) Create(id, keyDomain []byte, roster [][]byte) (types.HexBytes, hash.Digest, error) {
	if len(id) == 0 {
		id = types.NewElectionID()
	}
	if len(keyDomain) == 0 {
		keyDomain = r.domain
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.elections[string(id)]; ok {
		return nil, hash.Digest{}, fmt.Errorf("%w: %s", ErrElectionExists, types.HexBytes(id))
	}
	e := New(id, r.keys.Key(keyDomain), roster)
	r.elections[string(id)] = e
	log.Infow("election created",
		"election", e.id.String(),
		"voters", e.RosterSize(),
		"root", e.EligibilityRoot().String())
	return e.ID(), e.EligibilityRoot(), nil
}

// with runs fn on the election id while holding the registry lock.
func (r *Registry) with(id []byte, fn func(e *Election) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.elections[string(id)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownElection, types.HexBytes(id))
	}
	return fn(e)
}

// IDs returns the identifiers of every registered election.
func (r *Registry) IDs() []types.HexBytes {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]types.HexBytes, 0, len(r.elections))
	for _, e := range r.elections {
		ids = append(ids, e.ID())
	}
	slices.SortFunc(ids, func(a, b types.HexBytes) int { return slices.Compare(a, b) })
	return ids
}

// Key returns the commitment key of an election.
func (r *Registry) Key(id []byte) (pedersen.CommitmentKey, error) {
	var key pedersen.CommitmentKey
	err := r.with(id, func(e *Election) error {
		key = e.Key()
		return nil
	})
	return key, err
}

// EligibilityProof returns the roster inclusion proof of the voter at index.
func (r *Registry) EligibilityProof(id []byte, index uint64) (*merkle.Proof, error) {
	var proof *merkle.Proof
	err := r.with(id, func(e *Election) error {
		proof = e.EligibilityProof(index)
		if proof == nil {
			return fmt.Errorf("voter index %d out of range", index)
		}
		return nil
	})
	return proof, err
}

// BuildVote builds a vote for the election id, see Election.BuildVote.
func (r *Registry) BuildVote(id []byte, value uint64, blinding field.Scalar, secret nullifier.Secret, eligibility *merkle.Proof) (*Vote, error) {
	var vote *Vote
	err := r.with(id, func(e *Election) (err error) {
		vote, err = e.BuildVote(value, blinding, secret, eligibility)
		return err
	})
	return vote, err
}

// Submit submits a vote to the election id.
func (r *Registry) Submit(id []byte, v *Vote) error {
	return r.with(id, func(e *Election) error {
		return e.SubmitVote(v)
	})
}

// SubmitEncoded decodes a CBOR vote produced by EncodeVote and submits it.
func (r *Registry) SubmitEncoded(id []byte, data []byte) error {
	v, err := DecodeVote(data)
	if err != nil {
		return err
	}
	return r.Submit(id, v)
}

// NumAccepted returns the number of votes accepted by the election id.
func (r *Registry) NumAccepted(id []byte) (int, error) {
	var n int
	err := r.with(id, func(e *Election) error {
		n = e.NumAccepted()
		return nil
	})
	return n, err
}

// Close closes the election id.
func (r *Registry) Close(id []byte) error {
	return r.with(id, func(e *Election) error {
		e.Close()
		return nil
	})
}

// OpenTally opens the tally of the election id, see Election.OpenTally.
func (r *Registry) OpenTally(id []byte, sumBlinding field.Scalar) (uint64, bool, error) {
	var (
		result uint64
		ok     bool
	)
	err := r.with(id, func(e *Election) error {
		result, ok = e.OpenTally(sumBlinding)
		return nil
	})
	return result, ok, err
}
