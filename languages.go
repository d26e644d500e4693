package gotmemo

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// CanonicalLang converts a language code to its canonical BCP 47 form
// (e.g., "es_es" → "es-ES"). Unparseable codes are returned trimmed but unchanged.
func CanonicalLang(langCode string) string {
	langCode = strings.TrimSpace(langCode)
	if langCode == "" {
		return ""
	}
	tag, err := language.Parse(ToHTMLLang(langCode))
	if err != nil {
		return langCode
	}
	return tag.String()
}

// BaseLang extracts the base language (e.g., "es" from "es_ES" or "es-MX").
func BaseLang(langCode string) string {
	langCode = strings.TrimSpace(langCode)
	if langCode == "" {
		return ""
	}
	if tag, err := language.Parse(ToHTMLLang(langCode)); err == nil {
		base, _ := tag.Base()
		return base.String()
	}
	fields := strings.FieldsFunc(langCode, isLangSeparator)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// SameLang reports whether two language codes share a base language.
// Empty codes never match.
func SameLang(a, b string) bool {
	baseA := BaseLang(a)
	return baseA != "" && baseA == BaseLang(b)
}

// GetLanguageName returns the English name for a language code.
// Falls back to the code itself if it cannot be resolved.
func GetLanguageName(langCode string) string {
	tag, err := language.Parse(ToHTMLLang(langCode))
	if err != nil {
		return langCode
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return langCode
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(langCode string) string {
	if RTLLanguages[BaseLang(langCode)] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(langCode string) bool {
	return GetDirection(langCode) == "rtl"
}

// NormalizeLocale converts a language code to the underscore format (e.g., "es-ES" → "es_ES").
func NormalizeLocale(langCode string) string {
	return strings.ReplaceAll(langCode, "-", "_")
}

// ToHTMLLang converts a locale code to HTML lang attribute format (e.g., "es_ES" → "es-ES").
func ToHTMLLang(langCode string) string {
	return strings.ReplaceAll(langCode, "_", "-")
}

func isLangSeparator(r rune) bool {
	return r == '_' || r == '-'
}
