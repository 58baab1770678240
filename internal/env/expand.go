// Package env expands ${env.KEY} expressions in configuration text.
package env

import (
	"os"
	"strings"
	"unicode"
)

const prefix = "${env."

// Expand replaces ${env.KEY} with the KEY environment variable, unset
// variables expand to empty text. ${env.KEY:fallback} expands to fallback
// when KEY is unset.
func Expand(value string) string {
	return ExpandWith(value, os.LookupEnv)
}

// ExpandWith expands expressions using lookup
func ExpandWith(value string, lookup func(key string) (string, bool)) string {
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(value[i:], prefix)
		if idx < 0 {
			b.WriteString(value[i:])
			return b.String()
		}
		b.WriteString(value[i : i+idx])
		start := i + idx + len(prefix)
		end := strings.IndexByte(value[start:], '}')
		if end < 0 {
			b.WriteString(value[i+idx:])
			return b.String()
		}
		key, fallback, hasFallback := strings.Cut(value[start:start+end], ":")
		if !isKey(key) {
			// keep the prefix literal and rescan the rest for nested expressions
			b.WriteString(value[i+idx : start])
			i = start
			continue
		}
		if actual, ok := lookup(key); ok && key != "" {
			b.WriteString(actual)
		} else if hasFallback {
			b.WriteString(fallback)
		}
		i = start + end + 1
	}
}

func isKey(key string) bool {
	for _, r := range key {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return false
		}
	}
	return true
}
