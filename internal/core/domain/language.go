package domain

import "fmt"

// Language identifies the language a document text or configuration is
// scoped to. Only Italian and English taggers are shipped.
type Language string

const (
	LanguageItalian Language = "it"
	LanguageEnglish Language = "en"
)

func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case LanguageItalian, LanguageEnglish:
		return Language(s), nil
	default:
		return "", WrapError(ErrInvalidInput, "parse language", fmt.Errorf("unsupported language %q", s))
	}
}

func Languages() []Language {
	return []Language{LanguageItalian, LanguageEnglish}
}
