package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileStack(t *testing.T) {
	var empty *FileStack
	assert.Equal(t, "", empty.Current())
	assert.Equal(t, 0, empty.Depth())
	assert.False(t, empty.Contains("A.md"))

	root := NewFileStack("A.md")
	child := root.Push("B.md")
	grandChild := child.Push("C.md")

	assert.Equal(t, "C.md", grandChild.Current())
	assert.Equal(t, 3, grandChild.Depth())
	assert.True(t, grandChild.Contains("A.md"))
	assert.Equal(t, []string{"A.md", "B.md", "C.md"}, grandChild.Paths())

	// Parents are left untouched
	assert.Equal(t, "B.md", child.Current())
	assert.False(t, child.Contains("C.md"))
	assert.Equal(t, []string{"A.md"}, root.Paths())

	assert.Equal(t, "D.md", empty.Push("D.md").Current())
}

func TestFileStackSections(t *testing.T) {
	root := NewFileStack("A.md")
	section := root.PushSection("A.md", "Intro")
	assert.Equal(t, "A.md", section.Current())

	assert.False(t, root.ContainsSection("A.md", "Intro"))
	assert.True(t, root.ContainsSection("A.md", ""))
	assert.True(t, section.ContainsSection("A.md", "Intro"))
	assert.False(t, section.ContainsSection("A.md", "^block"))
	assert.True(t, section.Contains("A.md"))
	assert.False(t, section.ContainsSection("B.md", "Intro"))
}

func TestUnresolved(t *testing.T) {
	link := Unresolved("Go#Concurrency|300|The Go language|ignored", true)
	assert.Equal(t, LinkNote, link.Kind)
	assert.True(t, link.Embedded)
	assert.Equal(t, "Go", link.Target)
	assert.Equal(t, "Concurrency", link.Section)
	assert.Equal(t, 300, link.Width)
	assert.Equal(t, "The Go language", link.Alias)
	assert.Equal(t, "", link.Source())

	assert.Equal(t, "Go > Concurrency", Unresolved("Go#Concurrency", false).Text())
	assert.Equal(t, "Intro", Unresolved("#^Intro", false).Text())
}
