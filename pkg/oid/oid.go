// Package oid generates the short random tokens spliced into exported
// attachment names when renaming is enabled.
package oid

import "sync"

// TokenLength is the number of hexadecimal characters in a token.
const TokenLength = 6

// OID is a short hexadecimal identifier.
type OID string

const Nil = OID("")

func (o OID) IsNil() bool {
	return string(o) == ""
}

func (o OID) String() string {
	return string(o)
}

var (
	mu        sync.Mutex
	generator Generator = &UniqueGenerator{}
)

// New returns the next token of the current generator.
// Safe for concurrent use by export workers.
func New() OID {
	mu.Lock()
	defer mu.Unlock()
	return generator.New()
}

// Use replaces the current generator.
func Use(g Generator) {
	mu.Lock()
	defer mu.Unlock()
	generator = g
}

// Reset restores the random generator.
// Useful in tests with a defer after overriding the default generator.
func Reset() {
	Use(&UniqueGenerator{})
}
