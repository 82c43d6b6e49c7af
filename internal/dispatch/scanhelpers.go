package dispatch

import (
	"strings"

	"github.com/edirooss/rediskv-server/internal/glob"
)

// scanModifiers parses the MATCH/COUNT/NOVALUES options shared by
// HSCAN/SSCAN/ZSCAN. COUNT is accepted but has no effect: these scans
// operate over a single in-memory collection already held under the
// shard lock, so there is no benefit to paginating the reply the way
// the top-level keyspace SCAN must.
func scanModifiers(rest [][]byte) (pattern string, novalues bool) {
	for i := 0; i < len(rest); i++ {
		switch strings.ToUpper(string(rest[i])) {
		case "MATCH":
			i++
			if i < len(rest) {
				pattern = string(rest[i])
			}
		case "COUNT":
			i++ // accepted, ignored — see doc comment
		case "NOVALUES":
			novalues = true
		}
	}
	return pattern, novalues
}

func globMatchOrFalse(pattern, s string) bool {
	if pattern == "" {
		return true
	}
	return glob.Match(pattern, s)
}
