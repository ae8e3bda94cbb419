package site

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ParseLanguages builds the language list from codes such as "en,de-AT".
// The first code becomes the default language and gets no URL prefix.
func ParseLanguages(codes []string) ([]Language, error) {
	languages := make([]Language, 0, len(codes))
	seen := make(map[string]bool, len(codes))

	for _, raw := range codes {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}

			code, err := CanonicalLanguageCode(part)
			if err != nil {
				return nil, err
			}
			if seen[code] {
				continue
			}
			seen[code] = true

			lang := Language{Code: code, URLPrefix: strings.ToLower(code)}
			if len(languages) == 0 {
				lang.Default = true
				lang.URLPrefix = ""
			}
			languages = append(languages, lang)
		}
	}

	if len(languages) == 0 {
		return nil, fmt.Errorf("at least one language is required")
	}

	return languages, nil
}

func CanonicalLanguageCode(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("invalid language code %q: %w", code, err)
	}
	return tag.String(), nil
}

// isLanguageCode is used to tell "article.en.txt" apart from "my.notes.txt".
func isLanguageCode(s string) bool {
	if len(s) < 2 || len(s) > 8 {
		return false
	}
	_, err := language.Parse(s)
	return err == nil
}

func DefaultLanguage(languages []Language) (Language, bool) {
	for _, lang := range languages {
		if lang.Default {
			return lang, true
		}
	}
	if len(languages) > 0 {
		return languages[0], true
	}
	return Language{}, false
}
