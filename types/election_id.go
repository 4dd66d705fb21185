package types

import "github.com/google/uuid"

// ElectionIDSize is the length of identifiers produced by NewElectionID.
const ElectionIDSize = 16

// NewElectionID returns a fresh random identifier built from a version 4
// UUID. Election identifiers are arbitrary byte strings; this is only a
// convenient default.
func NewElectionID() HexBytes {
	id := uuid.New()
	return HexBytes(id[:]).Clone()
}
