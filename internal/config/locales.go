package config

import "strings"

const (
	LangEN = "en"
	LangES = "es"
)

// SupportedLanguage reduces a locale such as "es_AR.UTF-8" or "es-AR" to
// one of the bundled languages.
func SupportedLanguage(locale string) (string, bool) {
	lang := strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(lang, "_-."); i >= 0 {
		lang = lang[:i]
	}
	switch lang {
	case LangEN, LangES:
		return lang, true
	default:
		return "", false
	}
}
