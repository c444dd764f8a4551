package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage is used when nothing better is known.
const DefaultLanguage = "en"

// SupportedLanguages lists every language with a dictionary, in menu order.
var SupportedLanguages = []string{"ko", "en", "zh", "hi", "ru", "ja", "es", "pt", "id", "tr", "de", "fr"}

var languageNames = map[string]string{
	"ko": "한국어",
	"en": "English",
	"zh": "中文",
	"hi": "हिन्दी",
	"ru": "Русский",
	"ja": "日本語",
	"es": "Español",
	"pt": "Português",
	"id": "Bahasa Indonesia",
	"tr": "Türkçe",
	"de": "Deutsch",
	"fr": "Français",
}

// IsSupported reports whether code is one of SupportedLanguages.
func IsSupported(code string) bool {
	for _, l := range SupportedLanguages {
		if l == code {
			return true
		}
	}
	return false
}

// LanguageName returns the native name of code, or code itself if unknown.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// MatchLanguage picks the first supported base language out of an
// Accept-Language header or a locale such as "pt_BR.UTF-8". It returns ""
// when nothing matches.
func MatchLanguage(preferences string) string {
	preferences = strings.TrimSpace(preferences)
	if preferences == "" {
		return ""
	}

	tags, _, err := language.ParseAcceptLanguage(normalizeLocale(preferences))
	if err != nil {
		return ""
	}
	for _, tag := range tags {
		base, _ := tag.Base()
		if code := base.String(); IsSupported(code) {
			return code
		}
	}
	return ""
}

// normalizeLocale turns POSIX locales ("ko_KR.UTF-8") into BCP 47 ("ko-KR").
func normalizeLocale(s string) string {
	if strings.ContainsAny(s, ",;") {
		return s
	}
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	return strings.ReplaceAll(s, "_", "-")
}
