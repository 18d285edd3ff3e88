package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates ULID entry IDs. ULIDs sort by creation time,
// which keeps same-day entries in insertion order under the date+id sort.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
