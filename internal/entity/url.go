package entity

import (
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>]+`)

// ExtractURL returns the first http(s) URL found in the text, or "" when none.
// Trailing punctuation that commonly follows a pasted link is stripped; a
// closing paren is kept while the URL itself contains a matching open paren,
// so wiki-style links that end in ")" survive.
func ExtractURL(text string) string {
	match := urlPattern.FindString(text)
	for len(match) > 0 {
		switch match[len(match)-1] {
		case '.', ',', ';', '!', '?', ']', '"', '\'':
			match = match[:len(match)-1]
		case ')':
			if strings.Count(match, "(") >= strings.Count(match, ")") {
				return match
			}
			match = match[:len(match)-1]
		default:
			return match
		}
	}
	return match
}
