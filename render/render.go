package render

import (
	"sort"
	"strings"
)

/* Render substitutes {key} placeholders in a message template
 * The template is scanned once, left to right. Text that comes from a value is
 * never scanned again, so a value holding "{other}" stays verbatim.
 */
func Render(template string, dict map[string]string) string {
	if len(dict) == 0 {
		return template
	}

	keys := make([]string, 0, len(dict))
	for key := range dict {
		keys = append(keys, key)
	}
	// Longest placeholder first, so the replacer picks the same match on every run
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	pairs := make([]string, 0, len(keys)*2)
	for _, key := range keys {
		pairs = append(pairs, "{"+key+"}", dict[key])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
