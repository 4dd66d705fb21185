package election

import (
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/davinci-anonvote/crypto/merkle"
	"github.com/vocdoni/davinci-anonvote/crypto/pedersen"
	"github.com/vocdoni/davinci-anonvote/internal/testutil"
)

func TestRegistryLifecycle(t *testing.T) {
	c := qt.New(t)
	r, err := NewRegistry(nil)
	c.Assert(err, qt.IsNil)

	roster := testutil.Roster(5)
	id, root, err := r.Create(testutil.FixedElectionID, nil, roster)
	c.Assert(err, qt.IsNil)
	c.Assert(id.Equal(testutil.FixedElectionID), qt.IsTrue)
	c.Assert(root, qt.Equals, merkle.New(roster).Root())

	key, err := r.Key(id)
	c.Assert(err, qt.IsNil)
	c.Assert(key.Equal(pedersen.DeriveKey([]byte(DefaultKeyDomain))), qt.IsTrue)

	voters := testutil.Voters(1, 1, 0, 1, 0)
	for _, v := range voters {
		proof, err := r.EligibilityProof(id, v.Index)
		c.Assert(err, qt.IsNil)
		vote, err := r.BuildVote(id, v.Value, v.Blinding, v.Secret, proof)
		c.Assert(err, qt.IsNil)
		data, err := EncodeVote(vote)
		c.Assert(err, qt.IsNil)
		c.Assert(r.SubmitEncoded(id, data), qt.IsNil)
	}
	n, err := r.NumAccepted(id)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, 5)

	// replaying the first voter is caught through the registry too
	proof, err := r.EligibilityProof(id, 0)
	c.Assert(err, qt.IsNil)
	replay, err := r.BuildVote(id, 0, testutil.RandomScalar(), voters[0].Secret, proof)
	c.Assert(err, qt.IsNil)
	c.Assert(r.Submit(id, replay), qt.ErrorIs, ErrDuplicateNullifier)

	c.Assert(r.Close(id), qt.IsNil)
	c.Assert(r.Submit(id, replay), qt.ErrorIs, ErrElectionClosed)

	result, ok, err := r.OpenTally(id, testutil.SumBlindings(voters))
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(result, qt.Equals, uint64(3))
}

func TestRegistryErrors(t *testing.T) {
	c := qt.New(t)
	r, err := NewRegistry([]byte("registry-domain"))
	c.Assert(err, qt.IsNil)

	_, _, err = r.Create([]byte("e1"), nil, testutil.Roster(2))
	c.Assert(err, qt.IsNil)
	_, _, err = r.Create([]byte("e1"), nil, testutil.Roster(3))
	c.Assert(err, qt.ErrorIs, ErrElectionExists)

	unknown := []byte("nope")
	_, err = r.Key(unknown)
	c.Assert(err, qt.ErrorIs, ErrUnknownElection)
	_, err = r.NumAccepted(unknown)
	c.Assert(err, qt.ErrorIs, ErrUnknownElection)
	c.Assert(r.Close(unknown), qt.ErrorIs, ErrUnknownElection)
	_, _, err = r.OpenTally(unknown, testutil.RandomScalar())
	c.Assert(err, qt.ErrorIs, ErrUnknownElection)
	c.Assert(IsRejection(err), qt.IsFalse)

	_, err = r.EligibilityProof([]byte("e1"), 2)
	c.Assert(err, qt.ErrorMatches, "voter index 2 out of range")

	c.Assert(r.SubmitEncoded([]byte("e1"), []byte{0xff}), qt.ErrorMatches, "decode vote: .*")
}

func TestRegistryKeyDomains(t *testing.T) {
	c := qt.New(t)
	r, err := NewRegistry([]byte("registry-domain"))
	c.Assert(err, qt.IsNil)

	a, _, err := r.Create(nil, nil, testutil.Roster(1))
	c.Assert(err, qt.IsNil)
	b, _, err := r.Create(nil, []byte("custom-domain"), testutil.Roster(1))
	c.Assert(err, qt.IsNil)
	c.Assert(a.Equal(b), qt.IsFalse, qt.Commentf("generated ids must differ"))
	c.Assert(len(a), qt.Equals, 16)

	keyA, err := r.Key(a)
	c.Assert(err, qt.IsNil)
	keyB, err := r.Key(b)
	c.Assert(err, qt.IsNil)
	c.Assert(keyA.Equal(pedersen.DeriveKey([]byte("registry-domain"))), qt.IsTrue)
	c.Assert(keyB.Equal(pedersen.DeriveKey([]byte("custom-domain"))), qt.IsTrue)

	ids := r.IDs()
	c.Assert(ids, qt.HasLen, 2)
	c.Assert(ids[0].Hex() < ids[1].Hex(), qt.IsTrue)
}

func TestRegistryConcurrentSubmit(t *testing.T) {
	c := qt.New(t)
	r, err := NewRegistry(nil)
	c.Assert(err, qt.IsNil)
	const n = 16
	id, _, err := r.Create(nil, nil, testutil.Roster(n))
	c.Assert(err, qt.IsNil)

	values := make([]uint64, n)
	for i := range values {
		values[i] = uint64(i % 2)
	}
	voters := testutil.Voters(values...)

	// every voter submits twice from two goroutines, only one must win
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for _, v := range voters {
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				proof, err := r.EligibilityProof(id, v.Index)
				if err != nil {
					errs <- err
					return
				}
				vote, err := r.BuildVote(id, v.Value, v.Blinding, v.Secret, proof)
				if err != nil {
					errs <- err
					return
				}
				errs <- r.Submit(id, vote)
			}()
		}
	}
	wg.Wait()
	close(errs)

	accepted, duplicated := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			accepted++
		case IsRejection(err):
			c.Assert(err, qt.ErrorIs, ErrDuplicateNullifier)
			duplicated++
		default:
			c.Fatalf("unexpected error: %v", err)
		}
	}
	c.Assert(accepted, qt.Equals, n)
	c.Assert(duplicated, qt.Equals, n)

	result, ok, err := r.OpenTally(id, testutil.SumBlindings(voters))
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(result, qt.Equals, uint64(n/2))
}
