package oid_test

import (
	"testing"

	"github.com/julien-sobczak/the-noteexporter/pkg/oid"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	oid1 := oid.New()
	oid2 := oid.New()
	assert.NotEqual(t, oid1, oid2)
	assert.False(t, oid1.IsNil())
}

func TestUseSequence(t *testing.T) {
	oid.UseSequence(t)
	assert.Equal(t, "000001", oid.New().String())
	assert.Equal(t, "000002", oid.New().String())
}

func TestUseNext(t *testing.T) {
	oid.UseNext(t, "abcdef")
	assert.Equal(t, oid.OID("abcdef"), oid.New())
}
