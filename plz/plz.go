// Package plz extracts German postal codes (Postleitzahlen) from free text.
package plz

import "regexp"

var pattern = regexp.MustCompile(`\d{5}`)

// Extract returns the first run of five consecutive decimal digits in text.
// The second result is false when text holds no such run.
func Extract(text string) (string, bool) {
	match := pattern.FindString(text)
	if match == "" {
		return "", false
	}
	return match, true
}
