package messages

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel", Truncate("hello", 3))
	assert.Equal(t, "hello", Truncate("hello", 0), "zero limit means no limit")
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	// Cyrillic runes are two bytes each, so an odd byte limit lands
	// mid-rune and has to back off.
	s := "привет"
	got := Truncate(s, 5)
	assert.Equal(t, "пр", got)
	assert.True(t, utf8.ValidString(got))

	got = Truncate("👍👍", 5)
	assert.Equal(t, "👍", got)
	assert.True(t, utf8.ValidString(got))
}
