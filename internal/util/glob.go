package util

// MatchGlob reports whether s matches a Redis-style glob pattern:
// '*' matches any sequence (including separators), '?' any single byte,
// [abc] / [^abc] / [a-z] character classes, '\' escapes the next byte.
//
// Port of the server-side matcher so that a full listing filtered locally
// agrees byte-for-byte with a MATCH-filtered cursor sweep. path.Match is not
// a substitute: its '*' stops at separators and its escaping differs.
func MatchGlob(pattern, s string) bool {
	p, sp := 0, 0
	for p < len(pattern) {
		switch pattern[p] {
		case '*':
			for p+1 < len(pattern) && pattern[p+1] == '*' {
				p++
			}
			if p+1 == len(pattern) {
				return true
			}
			for i := sp; i <= len(s); i++ {
				if MatchGlob(pattern[p+1:], s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if sp >= len(s) {
				return false
			}
			sp++
			p++
		case '[':
			if sp >= len(s) {
				return false
			}
			p++
			not := p < len(pattern) && pattern[p] == '^'
			if not {
				p++
			}
			ch := s[sp]
			matched := false
			for p < len(pattern) && pattern[p] != ']' {
				switch {
				case pattern[p] == '\\' && p+1 < len(pattern):
					p++
					if pattern[p] == ch {
						matched = true
					}
					p++
				case p+2 < len(pattern) && pattern[p+1] == '-' && pattern[p+2] != ']':
					lo, hi := pattern[p], pattern[p+2]
					if lo > hi {
						lo, hi = hi, lo
					}
					if ch >= lo && ch <= hi {
						matched = true
					}
					p += 3
				default:
					if pattern[p] == ch {
						matched = true
					}
					p++
				}
			}
			if p < len(pattern) {
				p++ // consume ']'
			}
			if not {
				matched = !matched
			}
			if !matched {
				return false
			}
			sp++
		case '\\':
			if p+1 < len(pattern) {
				p++
			}
			fallthrough
		default:
			if sp >= len(s) || pattern[p] != s[sp] {
				return false
			}
			sp++
			p++
		}
	}
	return sp == len(s)
}
