package lookup

import "strings"

const (
	MinID = 1
	MaxID = 10
)

// ParseID reads the leading integer of raw the way a browser's parseInt
// does ("7abc" is 7, "3.9" is 3) and reports whether it is a searchable id.
func ParseID(raw string) (int, bool) {
	s := strings.TrimSpace(raw)

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for ; digits < len(s) && s[digits] >= '0' && s[digits] <= '9'; digits++ {
		if n > MaxID {
			// already out of range, keep consuming without overflowing
			continue
		}
		n = n*10 + int(s[digits]-'0')
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, n >= MinID && n <= MaxID
}
