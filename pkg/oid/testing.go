package oid

import "testing"

// UseNext configures a predefined list of tokens
func UseNext(t *testing.T, oids ...string) {
	Use(NewSuiteGenerator(oids...))
	t.Cleanup(Reset)
}

// UseFixed configures a fixed token
func UseFixed(t *testing.T, value OID) {
	Use(NewFixedGenerator(value))
	t.Cleanup(Reset)
}

// UseSequence configures a predictable sequence
func UseSequence(t *testing.T) {
	Use(NewSequenceGenerator())
	t.Cleanup(Reset)
}
