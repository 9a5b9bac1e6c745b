package envexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	env := map[string]string{"SAFE": "80", "EMPTY": "", "NAME": "grid"}
	previous := LookupFunc
	LookupFunc = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	t.Cleanup(func() { LookupFunc = previous })

	testCases := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "plain", input: "safeCapacity: 92", expect: "safeCapacity: 92"},
		{name: "single", input: "safeCapacity: ${env.SAFE}", expect: "safeCapacity: 80"},
		{name: "repeated", input: "${env.NAME}-${env.SAFE}-${env.NAME}", expect: "grid-80-grid"},
		{name: "unset", input: "x=${env.MISSING}.", expect: "x=."},
		{name: "fallback when unset", input: "${env.MISSING:-92}", expect: "92"},
		{name: "fallback when empty", input: "${env.EMPTY:-40}", expect: "40"},
		{name: "fallback ignored when set", input: "${env.SAFE:-92}", expect: "80"},
		{name: "unterminated", input: "a ${env.SAFE and ${env.NAME", expect: "a ${env.SAFE and ${env.NAME"},
		{name: "invalid key keeps nested reference", input: "${env.a b ${env.NAME}}", expect: "${env.a b grid}"},
		{name: "empty key", input: "[${env.}]", expect: "[]"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, Expand(tc.input))
		})
	}
}
