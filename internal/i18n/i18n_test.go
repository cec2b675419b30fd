package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromLanguageCode(t *testing.T) {
	assert.Equal(t, RU, FromLanguageCode("ru"))
	assert.Equal(t, RU, FromLanguageCode("ru-RU"))
	assert.Equal(t, RU, FromLanguageCode(" RU "))
	assert.Equal(t, EN, FromLanguageCode("en"))
	assert.Equal(t, EN, FromLanguageCode("de"))
	assert.Equal(t, EN, FromLanguageCode(""))
}

func TestParse(t *testing.T) {
	assert.Equal(t, RU, Parse("ru"))
	assert.Equal(t, EN, Parse("en"))
	assert.Equal(t, EN, Parse("ru-RU"), "stored values are already normalized")
	assert.Equal(t, EN, Parse(""))
}
