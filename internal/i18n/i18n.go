package i18n

import "strings"

type Lang string

const (
	EN Lang = "en"
	RU Lang = "ru"
)

// FromLanguageCode maps a Telegram IETF language code onto one of the
// supported languages.
func FromLanguageCode(code string) Lang {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(code)), "ru") {
		return RU
	}
	return EN
}

func Parse(s string) Lang {
	if strings.ToLower(strings.TrimSpace(s)) == "ru" {
		return RU
	}
	return EN
}
