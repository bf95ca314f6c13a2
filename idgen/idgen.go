// Package idgen produces random identifiers.
//
// Full identifiers are version 4 UUIDs in canonical 8-4-4-4-12 form. Short
// identifiers are the first 12 hex digits of a full one, about 48 bits of
// entropy; callers that need collision resistance should use Full.
package idgen

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/xid"
)

const (
	// FullLength is the length of a canonical UUID string.
	FullLength = 36
	// ShortLength is the number of hex digits kept by Short.
	ShortLength = 12
)

// Source draws a random UUID.
type Source func() uuid.UUID

// Generator produces identifiers from a Source.
type Generator struct {
	source Source
}

// New returns a generator drawing version 4 UUIDs from crypto/rand.
// A nil source selects that default.
func New(source Source) *Generator {
	if source == nil {
		source = uuid.New
	}
	return &Generator{source: source}
}

// Full returns a new canonical, lowercase UUID string.
func (g *Generator) Full() string {
	return g.source().String()
}

// Short returns the first 12 hex digits of a fresh Full identifier.
func (g *Generator) Short() string {
	return ShortFrom(g.Full())
}

// Sortable returns a 20 character, time ordered xid.
func (g *Generator) Sortable() string {
	return xid.New().String()
}

// ShortFrom strips dashes from full and keeps the first 12 characters.
// Shorter inputs are returned without dashes, untruncated.
func ShortFrom(full string) string {
	compact := strings.ReplaceAll(full, "-", "")
	if len(compact) <= ShortLength {
		return compact
	}
	return compact[:ShortLength]
}

var defaultGenerator = New(nil)

// NewFull returns a new Full identifier from the default generator.
func NewFull() string {
	return defaultGenerator.Full()
}

// NewShort returns a new Short identifier from the default generator.
func NewShort() string {
	return defaultGenerator.Short()
}

// NewSortable returns a new Sortable identifier from the default generator.
func NewSortable() string {
	return defaultGenerator.Sortable()
}
