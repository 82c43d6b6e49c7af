// Package glob implements the byte-wise glob matching used by
// KEYS/SCAN MATCH/PSUBSCRIBE (spec.md §4.2): '*', '?', '[abc]',
// '[a-z]', '[^abc]', and '\' escaping. No pack example or ecosystem
// library implements Redis's exact glob dialect (character classes with
// negation plus backslash escaping blended with '*'/'?'), so this is a
// small hand-rolled backtracking matcher — the standard approach real
// Redis-compatible servers take for this exact dialect.
package glob

// Match reports whether s matches the glob pattern pat, both treated as
// raw bytes (no Unicode awareness, per spec.md §4.2 and §9).
func Match(pat, s string) bool {
	return matchHere([]byte(pat), []byte(s))
}

func matchHere(pat, s []byte) bool {
	for len(pat) > 0 {
		switch pat[0] {
		case '*':
			// Collapse consecutive '*'.
			for len(pat) > 1 && pat[1] == '*' {
				pat = pat[1:]
			}
			if len(pat) == 1 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if matchHere(pat[1:], s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
			pat = pat[1:]
			s = s[1:]
		case '[':
			end, neg, set := parseClass(pat)
			if end < 0 {
				// Unterminated class: match '[' literally.
				if len(s) == 0 || s[0] != '[' {
					return false
				}
				pat = pat[1:]
				s = s[1:]
				continue
			}
			if len(s) == 0 {
				return false
			}
			if classMatch(set, s[0]) == neg {
				return false
			}
			pat = pat[end+1:]
			s = s[1:]
		case '\\':
			if len(pat) > 1 {
				pat = pat[1:]
			}
			if len(s) == 0 || s[0] != pat[0] {
				return false
			}
			pat = pat[1:]
			s = s[1:]
		default:
			if len(s) == 0 || s[0] != pat[0] {
				return false
			}
			pat = pat[1:]
			s = s[1:]
		}
	}
	return len(s) == 0
}

// parseClass parses a '[...]' character class starting at pat[0]=='['.
// Returns the index of the closing ']' within pat, whether the class is
// negated, and the literal byte set/ranges encoded as a simple byte
// membership list (ranges expanded inline via classMatch scanning).
func parseClass(pat []byte) (end int, neg bool, body []byte) {
	i := 1
	if i < len(pat) && pat[i] == '^' {
		neg = true
		i++
	}
	start := i
	for i < len(pat) {
		if pat[i] == ']' && i > start {
			return i, neg, pat[start:i]
		}
		i++
	}
	return -1, false, nil
}

func classMatch(body []byte, c byte) bool {
	for i := 0; i < len(body); i++ {
		if i+2 < len(body) && body[i+1] == '-' {
			lo, hi := body[i], body[i+2]
			if lo > hi {
				lo, hi = hi, lo
			}
			if c >= lo && c <= hi {
				return true
			}
			i += 2
			continue
		}
		if body[i] == c {
			return true
		}
	}
	return false
}
