package cli

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestShorten(t *testing.T) {
	assert.Equal(t, "Talk to Varré", shorten("Talk to Varré", 80))

	long := strings.Repeat("Varré ", 20)
	got := shorten(long, 80)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, ansi.StringWidth(got), 80)
	assert.True(t, strings.HasSuffix(got, "..."))
}
