// Package i18n resolves user-visible message templates per language.
package i18n

import "strings"

// Default is used whenever a language or a key is missing.
const Default = "en-US"

type Language struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

var languages = []Language{
	{Code: "en-US", Label: "English"},
	{Code: "hi-IN", Label: "Hindi"},
	{Code: "mr-IN", Label: "Marathi"},
	{Code: "ta-IN", Label: "Tamil"},
	{Code: "bn-IN", Label: "Bengali"},
}

// Languages lists the supported languages in display order.
func Languages() []Language {
	return append([]Language(nil), languages...)
}

func Supported(code string) bool {
	for _, l := range languages {
		if l.Code == code {
			return true
		}
	}
	return false
}

// Label returns the English name of a language, or the code itself.
func Label(code string) string {
	for _, l := range languages {
		if l.Code == code {
			return l.Label
		}
	}
	return code
}

// Base strips the region from a code: "hi-IN" becomes "hi".
func Base(code string) string {
	base, _, _ := strings.Cut(code, "-")
	return base
}

// Normalize returns code when supported and Default otherwise.
func Normalize(code string) string {
	if Supported(code) {
		return code
	}
	return Default
}

// T resolves key in lang, falling back to Default and finally to the key
// itself, then substitutes every {placeholder} from replacements.
func T(lang string, key Key, replacements map[string]string) string {
	text, ok := translations[lang][key]
	if !ok {
		text, ok = translations[Default][key]
	}
	if !ok {
		text = string(key)
	}
	for placeholder, value := range replacements {
		text = strings.ReplaceAll(text, "{"+placeholder+"}", value)
	}
	return text
}
