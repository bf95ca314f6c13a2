package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Normalize returns the canonical BCP 47 form of code, for example "en_us" becomes "en-US".
func Normalize(code string) (string, bool) {
	code = strings.TrimSpace(strings.ReplaceAll(code, "_", "-"))
	if code == "" {
		return "", false
	}

	tag, err := language.Parse(code)
	if err != nil {
		return "", false
	}
	return tag.String(), true
}

// Negotiate picks the supported locale that best matches an Accept-Language
// header, falling back to the first supported entry. It returns "" when
// supported is empty.
func Negotiate(acceptLanguage string, supported []string) string {
	if len(supported) == 0 {
		return ""
	}

	tags := make([]language.Tag, 0, len(supported))
	for _, code := range supported {
		tags = append(tags, language.Make(code))
	}

	requested, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(requested) == 0 {
		return supported[0]
	}

	_, idx, confidence := language.NewMatcher(tags).Match(requested...)
	if confidence == language.No {
		return supported[0]
	}
	return supported[idx]
}
