package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName lowercases name and drops all whitespace.
func NormalizeName(name string) string {
	return whitespaceRegex.ReplaceAllString(strings.ToLower(name), "")
}

// Resembles reports whether query names the same thing as name, allowing
// partial names and small typos.
func Resembles(name, query string) bool {
	name = NormalizeName(name)
	query = NormalizeName(query)
	if query == "" || strings.Contains(name, query) {
		return true
	}
	return matchr.JaroWinkler(name, query, false) >= 0.85
}
