package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"

	"github.com/vocdoni/davinci-anonvote/crypto/field"
	"github.com/vocdoni/davinci-anonvote/crypto/merkle"
	"github.com/vocdoni/davinci-anonvote/election"
	"github.com/vocdoni/davinci-anonvote/log"
	"github.com/vocdoni/davinci-anonvote/types"
	"github.com/vocdoni/davinci-anonvote/util"
	"golang.org/x/sync/errgroup"
)

// voterIDSize is the length of the random identifiers placed in the roster.
const voterIDSize = 32

// result is the outcome of a simulated election.
type result struct {
	ElectionID types.HexBytes
	Accepted   int
	Yes        uint64
}

// ballot is a built vote together with the private opening of its
// commitment, which the simulation keeps to open the tally.
type ballot struct {
	encoded  []byte
	blinding field.Scalar
	secret   field.Scalar
}

// runSimulation creates an election with cfg.Election.Voters voters, builds
// every ballot in parallel, submits them in roster order, checks that a
// replayed nullifier is rejected, closes the election and opens the tally.
func runSimulation(ctx context.Context, cfg *Config) (*result, error) {
	var id []byte
	if cfg.Election.ID != "" {
		var err error
		if id, err = types.HexStringToHexBytes(cfg.Election.ID); err != nil {
			return nil, fmt.Errorf("invalid election id: %w", err)
		}
	}

	registry, err := election.NewRegistry([]byte(cfg.Election.Domain))
	if err != nil {
		return nil, err
	}
	roster := make([][]byte, cfg.Election.Voters)
	for i := range roster {
		roster[i] = util.RandomBytes(voterIDSize)
	}
	electionID, root, err := registry.Create(id, nil, roster)
	if err != nil {
		return nil, err
	}
	log.Infow("election ready", "election", electionID.String(), "root", root.String())

	key, err := registry.Key(electionID)
	if err != nil {
		return nil, err
	}

	proofs, err := eligibilityProofs(registry, electionID, len(roster))
	if err != nil {
		return nil, err
	}

	yes := int(math.Round(cfg.Election.Yes * float64(len(roster))))
	ballots := make([]ballot, len(roster))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, proof := range proofs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var value uint64
			if i < yes {
				value = 1
			}
			blinding, err := field.Random(rand.Reader)
			if err != nil {
				return err
			}
			secret, err := field.Random(rand.Reader)
			if err != nil {
				return err
			}
			vote, err := election.NewVote(key, electionID, value, blinding, secret, proof)
			if err != nil {
				return fmt.Errorf("voter %d: %w", i, err)
			}
			encoded, err := election.EncodeVote(vote)
			if err != nil {
				return fmt.Errorf("voter %d: %w", i, err)
			}
			ballots[i] = ballot{encoded: encoded, blinding: blinding, secret: secret}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("cannot build ballots: %w", err)
	}
	log.Infow("ballots built", "count", len(ballots))

	sumBlinding := field.Zero()
	for i, b := range ballots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := registry.SubmitEncoded(electionID, b.encoded); err != nil {
			return nil, fmt.Errorf("voter %d rejected: %w", i, err)
		}
		sumBlinding = sumBlinding.Add(b.blinding)
	}

	if err := replay(registry, electionID, ballots[0]); err != nil {
		return nil, err
	}

	if err := registry.Close(electionID); err != nil {
		return nil, err
	}
	accepted, err := registry.NumAccepted(electionID)
	if err != nil {
		return nil, err
	}
	tally, ok, err := registry.OpenTally(electionID, sumBlinding)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("tally could not be opened")
	}
	if tally != uint64(yes) {
		return nil, fmt.Errorf("tally mismatch: opened %d, expected %d", tally, yes)
	}
	return &result{ElectionID: electionID, Accepted: accepted, Yes: tally}, nil
}

// eligibilityProofs fetches the roster proofs of the first n voters.
func eligibilityProofs(registry *election.Registry, electionID types.HexBytes, n int) ([]*merkle.Proof, error) {
	proofs := make([]*merkle.Proof, n)
	for i := range proofs {
		proof, err := registry.EligibilityProof(electionID, uint64(i))
		if err != nil {
			return nil, err
		}
		proofs[i] = proof
	}
	return proofs, nil
}

// replay submits a second vote with the secret of b and expects it to be
// rejected as a duplicate.
func replay(registry *election.Registry, electionID types.HexBytes, b ballot) error {
	proof, err := registry.EligibilityProof(electionID, 0)
	if err != nil {
		return err
	}
	blinding, err := field.Random(rand.Reader)
	if err != nil {
		return err
	}
	vote, err := registry.BuildVote(electionID, 1, blinding, b.secret, proof)
	if err != nil {
		return err
	}
	err = registry.Submit(electionID, vote)
	if !errors.Is(err, election.ErrDuplicateNullifier) {
		return fmt.Errorf("replayed vote not rejected as duplicate: %v", err)
	}
	log.Infow("replayed vote rejected", "election", electionID.String(), "nullifier", vote.Nullifier.String())
	return nil
}
