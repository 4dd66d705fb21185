// Package transcript implements a Fiat-Shamir transcript: an append-only log
// of labelled messages absorbed into an incremental hash, from which
// challenges are derived.
package transcript

import (
	"encoding/binary"

	"github.com/vocdoni/davinci-anonvote/crypto/field"
	"github.com/vocdoni/davinci-anonvote/crypto/hash"
)

var (
	transcriptPrefix = []byte("transcript:")
	challengePrefix  = []byte("challenge:")
)

// Transcript is the running hash state of a proof. It is not safe for
// concurrent use.
type Transcript struct {
	h *hash.Hasher
}

// New starts a transcript seeded with "transcript:" || label.
func New(label []byte) *Transcript {
	h := hash.New()
	h.Write(transcriptPrefix)
	h.Write(label)
	return &Transcript{h: h}
}

// AppendMessage absorbs label || len(data) || data, the length encoded as 8
// little-endian bytes.
func (t *Transcript) AppendMessage(label string, data []byte) {
	var l [8]byte
	binary.LittleEndian.PutUint64(l[:], uint64(len(data)))
	t.h.WriteString(label)
	t.h.Write(l[:])
	t.h.Write(data)
}

// AppendScalar absorbs the canonical encoding of s.
func (t *Transcript) AppendScalar(label string, s field.Scalar) {
	t.AppendMessage(label, s.Bytes())
}

// ChallengeScalar derives a challenge from a fork of the current state
// extended with "challenge:" || label. The transcript itself is left
// unchanged and can keep growing.
func (t *Transcript) ChallengeScalar(label string) field.Scalar {
	fork := t.h.Clone()
	fork.Write(challengePrefix)
	fork.WriteString(label)
	return field.FromDigest(fork.Sum())
}

// Clone returns an independent copy of the transcript.
func (t *Transcript) Clone() *Transcript {
	return &Transcript{h: t.h.Clone()}
}
