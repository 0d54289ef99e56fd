package oid_test

import (
	"testing"

	"github.com/julien-sobczak/the-noteexporter/pkg/oid"
	"github.com/stretchr/testify/assert"
)

func TestUniqueGenerator(t *testing.T) {
	gen := oid.NewUniqueGenerator()

	oid1 := gen.New()
	oid2 := gen.New()

	assert.NotEqual(t, oid1, oid2)
	assert.Len(t, oid1, oid.TokenLength)
	assert.Regexp(t, `^[0-9a-f]{6}$`, oid1)
}

func TestSuiteGenerator(t *testing.T) {
	gen := oid.NewSuiteGenerator("aaaaaa", "bbbbbb")
	assert.Equal(t, oid.OID("aaaaaa"), gen.New())
	assert.Equal(t, oid.OID("bbbbbb"), gen.New())
	assert.Panics(t, func() { gen.New() })
}

func TestFixedGenerator(t *testing.T) {
	gen := oid.NewFixedGenerator("cafe00")
	assert.Equal(t, oid.OID("cafe00"), gen.New())
	assert.Equal(t, oid.OID("cafe00"), gen.New())
}

func TestSequenceGenerator(t *testing.T) {
	gen := oid.NewSequenceGenerator()
	assert.Equal(t, oid.OID("000001"), gen.New())
	assert.Equal(t, oid.OID("000002"), gen.New())
}
