package transcript

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/davinci-anonvote/crypto/field"
)

func build(label string, msgs ...[2]string) *Transcript {
	t := New([]byte(label))
	for _, m := range msgs {
		t.AppendMessage(m[0], []byte(m[1]))
	}
	return t
}

func TestDeterministic(t *testing.T) {
	c := qt.New(t)
	a := build("proto", [2]string{"x", "hello"}, [2]string{"y", "world"})
	b := build("proto", [2]string{"x", "hello"}, [2]string{"y", "world"})
	c.Assert(a.ChallengeScalar("c").Equal(b.ChallengeScalar("c")), qt.IsTrue)
}

func TestDifferentInputsDiverge(t *testing.T) {
	c := qt.New(t)
	base := build("proto", [2]string{"x", "hello"}).ChallengeScalar("c")

	c.Assert(build("other", [2]string{"x", "hello"}).ChallengeScalar("c").Equal(base), qt.IsFalse,
		qt.Commentf("seed label must matter"))
	c.Assert(build("proto", [2]string{"x", "hellO"}).ChallengeScalar("c").Equal(base), qt.IsFalse,
		qt.Commentf("message must matter"))
	c.Assert(build("proto", [2]string{"z", "hello"}).ChallengeScalar("c").Equal(base), qt.IsFalse,
		qt.Commentf("message label must matter"))
	c.Assert(build("proto", [2]string{"x", "hello"}).ChallengeScalar("d").Equal(base), qt.IsFalse,
		qt.Commentf("challenge label must matter"))
}

func TestLengthPrefixPreventsSplitCollisions(t *testing.T) {
	c := qt.New(t)
	ab := build("proto", [2]string{"ab", "c"}).ChallengeScalar("c")
	bc := build("proto", [2]string{"a", "bc"}).ChallengeScalar("c")
	c.Assert(ab.Equal(bc), qt.IsFalse)

	split := build("proto", [2]string{"m", "ab"}, [2]string{"m", "c"}).ChallengeScalar("c")
	joined := build("proto", [2]string{"m", "abc"}).ChallengeScalar("c")
	c.Assert(split.Equal(joined), qt.IsFalse)
}

func TestChallengeDoesNotConsumeState(t *testing.T) {
	c := qt.New(t)
	tr := build("proto", [2]string{"x", "hello"})
	first := tr.ChallengeScalar("c")
	c.Assert(tr.ChallengeScalar("c").Equal(first), qt.IsTrue, qt.Commentf("reading twice must give the same challenge"))

	tr.AppendMessage("y", []byte("more"))
	second := tr.ChallengeScalar("c")
	c.Assert(second.Equal(first), qt.IsFalse)

	c.Assert(second.Equal(build("proto", [2]string{"x", "hello"}, [2]string{"y", "more"}).ChallengeScalar("c")), qt.IsTrue)
}

func TestAppendScalarAndClone(t *testing.T) {
	c := qt.New(t)
	s := field.FromUint64(99)

	a := New([]byte("proto"))
	a.AppendScalar("s", s)
	b := New([]byte("proto"))
	b.AppendMessage("s", s.Bytes())
	c.Assert(a.ChallengeScalar("c").Equal(b.ChallengeScalar("c")), qt.IsTrue)

	fork := a.Clone()
	fork.AppendMessage("extra", nil)
	c.Assert(fork.ChallengeScalar("c").Equal(a.ChallengeScalar("c")), qt.IsFalse)
	c.Assert(a.ChallengeScalar("c").Equal(b.ChallengeScalar("c")), qt.IsTrue, qt.Commentf("clone must not share state"))
}

func TestChallengeTopBitCleared(t *testing.T) {
	c := qt.New(t)
	for i := range 32 {
		tr := New([]byte("proto"))
		tr.AppendScalar("i", field.FromUint64(uint64(i)))
		b := tr.ChallengeScalar("c").Bytes32()
		c.Assert(b[31]&0x80, qt.Equals, byte(0))
	}
}
