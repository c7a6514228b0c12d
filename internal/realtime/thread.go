package realtime

import "strings"

// ThreadKey derives the deterministic conversation key for two user ids.
// The pair is sorted before joining, so both directions of a conversation
// resolve to the same thread.
func ThreadKey(a, b string) string {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}
