package oid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Generator interface {
	New() OID
}

/*
 * UniqueGenerator
 */

// UniqueGenerator is a production-grade Generator returning random tokens.
type UniqueGenerator struct{}

func NewUniqueGenerator() *UniqueGenerator {
	return &UniqueGenerator{}
}

// New generates a token from the random bits of a UUIDv4.
// Ex (UUIDv4): 123e4567-e89b-42d3-a456-426655440000 => 123e45
func (g *UniqueGenerator) New() OID {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return OID(raw[0:TokenLength])
}

/*
 * SuiteGenerator
 */

// SuiteGenerator returns a predefined suite of tokens.
type SuiteGenerator struct {
	next []string
}

func NewSuiteGenerator(tokens ...string) *SuiteGenerator {
	return &SuiteGenerator{next: tokens}
}

func (g *SuiteGenerator) New() OID {
	if len(g.next) == 0 {
		panic("No more OIDs")
	}
	token := g.next[0]
	g.next = g.next[1:]
	return OID(token)
}

/*
 * FixedGenerator
 */

// FixedGenerator returns always the same token.
type FixedGenerator struct {
	oid OID
}

func NewFixedGenerator(oid OID) *FixedGenerator {
	return &FixedGenerator{oid: oid}
}

func (g *FixedGenerator) New() OID {
	return g.oid
}

/*
 * SequenceGenerator
 */

// SequenceGenerator returns numbered tokens (000001, 000002, ...).
type SequenceGenerator struct {
	count int
}

func NewSequenceGenerator() *SequenceGenerator {
	return &SequenceGenerator{}
}

func (g *SequenceGenerator) New() OID {
	g.count++
	return OID(fmt.Sprintf("%0*d", TokenLength, g.count))
}
