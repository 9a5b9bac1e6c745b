// Package envexpr expands ${env.KEY} references in configuration documents.
package envexpr

import (
	"os"
	"strings"
	"unicode"
)

const prefix = "${env."

// LookupFunc resolves an environment variable. Override in tests.
var LookupFunc = os.LookupEnv

// Expand replaces every ${env.KEY} with the value of KEY.  A reference may
// carry a fallback as ${env.KEY:-fallback}, used when KEY is unset or empty.
// Malformed references are kept verbatim.
func Expand(value string) string {
	if !strings.Contains(value, prefix) {
		return value
	}
	var b strings.Builder
	for {
		idx := strings.Index(value, prefix)
		if idx < 0 {
			b.WriteString(value)
			return b.String()
		}
		b.WriteString(value[:idx])
		rest := value[idx+len(prefix):]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			b.WriteString(value[idx:])
			return b.String()
		}
		key, fallback, _ := strings.Cut(rest[:end], ":-")
		if !isKey(key) {
			b.WriteString(prefix)
			value = rest
			continue
		}
		if v, ok := LookupFunc(key); ok && v != "" {
			b.WriteString(v)
		} else {
			b.WriteString(fallback)
		}
		value = rest[end+1:]
	}
}

// ExpandBytes is Expand for raw documents
func ExpandBytes(data []byte) []byte {
	return []byte(Expand(string(data)))
}

func isKey(key string) bool {
	for _, r := range key {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return false
		}
	}
	return true
}
