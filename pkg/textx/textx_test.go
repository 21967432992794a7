package textx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "hello world", SanitizeText("hello\x00 world"))
	assert.Equal(t, "tab\tand\nnewline", SanitizeText("tab\tand\nnewline"))
}

func TestLines(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"a", "b", "c"}, Lines("a\r\nb\nc"))
}

func TestFirstNonEmptyLine(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Jane Doe", FirstNonEmptyLine("\n  \nJane Doe\nPune"))
	assert.Equal(t, "", FirstNonEmptyLine("  \n\t\n"))
}
