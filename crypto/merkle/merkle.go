// Package merkle builds binary hash trees over an ordered eligibility set and
// produces inclusion proofs for its members.
//
// Leaves are hashed as H("leaf:" || data) and inner nodes as
// H("node:" || left || right). A layer with an odd number of nodes pairs its
// last node with itself. An empty input produces a tree with a single leaf
// over empty data, so every tree has a root.
package merkle

import (
	"fmt"

	"github.com/vocdoni/davinci-anonvote/crypto/hash"
)

var (
	leafPrefix = []byte("leaf:")
	nodePrefix = []byte("node:")
)

// HashLeaf returns the leaf hash of data.
func HashLeaf(data []byte) hash.Digest {
	return hash.Sum(leafPrefix, data)
}

// HashNode returns the parent hash of an ordered (left, right) pair.
func HashNode(left, right hash.Digest) hash.Digest {
	return hash.Sum(nodePrefix, left[:], right[:])
}

// Tree is an immutable Merkle tree. layers[0] holds the leaf hashes and the
// last layer holds only the root.
type Tree struct {
	layers [][]hash.Digest
}

// New builds the tree over leaves, in the given order. Reordering the leaves
// changes the root.
func New(leaves [][]byte) *Tree {
	level := make([]hash.Digest, 0, max(len(leaves), 1))
	for _, l := range leaves {
		level = append(level, HashLeaf(l))
	}
	if len(level) == 0 {
		level = append(level, HashLeaf(nil))
	}

	layers := [][]hash.Digest{level}
	for len(level) > 1 {
		next := make([]hash.Digest, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			right := level[i]
			if i+1 < len(level) {
				right = level[i+1]
			}
			next = append(next, HashNode(level[i], right))
		}
		layers = append(layers, next)
		level = next
	}
	return &Tree{layers: layers}
}

// Root returns the root hash.
func (t *Tree) Root() hash.Digest {
	return t.layers[len(t.layers)-1][0]
}

// Len returns the number of leaves. An empty input counts as one leaf.
func (t *Tree) Len() int {
	return len(t.layers[0])
}

// Depth returns the number of sibling hashes in every proof of this tree.
func (t *Tree) Depth() int {
	return len(t.layers) - 1
}

// Leaf returns the hash of the leaf at index, or false if out of range.
func (t *Tree) Leaf(index uint64) (hash.Digest, bool) {
	if index >= uint64(t.Len()) {
		return hash.Digest{}, false
	}
	return t.layers[0][index], true
}

// Proof returns the inclusion proof of the leaf at index, or nil if index
// is out of range.
func (t *Tree) Proof(index uint64) *Proof {
	leaf, ok := t.Leaf(index)
	if !ok {
		return nil
	}
	siblings := make([]hash.Digest, 0, t.Depth())
	idx := index
	for _, layer := range t.layers[:len(t.layers)-1] {
		sibling := idx ^ 1
		if sibling < uint64(len(layer)) {
			siblings = append(siblings, layer[sibling])
		} else {
			// odd layer: the last node was paired with itself
			siblings = append(siblings, layer[idx])
		}
		idx >>= 1
	}
	return &Proof{Leaf: leaf, Index: index, Siblings: siblings}
}

// Proof is an inclusion proof: the leaf hash, its position, and the sibling
// hashes ordered from the leaf layer up to the layer below the root.
type Proof struct {
	Leaf     hash.Digest   `json:"leaf" cbor:"1,keyasint"`
	Index    uint64        `json:"index" cbor:"2,keyasint"`
	Siblings []hash.Digest `json:"siblings" cbor:"3,keyasint"`
}

// Verify reports whether p proves inclusion under root.
func (p *Proof) Verify(root hash.Digest) bool {
	return Verify(root, p)
}

// String implements fmt.Stringer.
func (p *Proof) String() string {
	return fmt.Sprintf("{leaf: %s, index: %d, depth: %d}", p.Leaf, p.Index, len(p.Siblings))
}

// Verify recomputes the path of proof and compares it with root. At each
// level the parity of the index decides whether the running hash is the left
// or the right input. Index bits beyond the path length are rejected.
func Verify(root hash.Digest, proof *Proof) bool {
	if proof == nil {
		return false
	}
	current := proof.Leaf
	idx := proof.Index
	for _, sibling := range proof.Siblings {
		if idx&1 == 0 {
			current = HashNode(current, sibling)
		} else {
			current = HashNode(sibling, current)
		}
		idx >>= 1
	}
	return idx == 0 && current == root
}
