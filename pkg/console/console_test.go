package console_test

import (
	"bytes"
	"testing"

	"github.com/julien-sobczak/the-noteexporter/pkg/console"
	"gotest.tools/assert"
)

func TestProgressLog(t *testing.T) {
	var out bytes.Buffer

	l := console.NewProgressLog(2,
		// Override options for unit-testing purposes
		console.ToWriter(&out),
		console.LineLength(30))

	l.Done("a.md")
	l.Done("b.md")
	l.Clear("Done!!!!!!!!!!!!!!!!!!!!!!!!!!")

	expected := "" +
		"#####      (1/2) a.md         \r" +
		"########## (2/2) b.md         \r" +
		"Done!!!!!!!!!!!!!!!!!!!!!!!!!!\n"
	assert.Equal(t, out.String(), expected)
}

func TestProgressLog_failures(t *testing.T) {
	var out bytes.Buffer

	l := console.NewProgressLog(3,
		console.HideBar(),
		console.ToWriter(&out),
		console.LineLength(25))

	l.Done("a.md")
	l.Fail("b.md")
	l.Done("c.md")
	l.Clear("")

	expected := "" +
		"(1/3) a.md               \r" +
		"(2/3) failed: b.md       \r" +
		"(3/3) c.md               \r" +
		"                         \r"
	assert.Equal(t, out.String(), expected)
	assert.DeepEqual(t, l.Failures(), []string{"b.md"})
}
