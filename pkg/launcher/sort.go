package launcher

import (
	"sort"
	"strings"
	"unicode"
)

// SortEntries orders display names naturally: embedded numbers
// compare by value and a leading article is ignored, so
// "The Legend of Zelda" sorts under L and "Game 2" before "Game 10".
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return NaturalLess(sortKey(entries[i].Display()), sortKey(entries[j].Display()))
	})
}

var articles = []string{"the ", "a ", "an "}

func sortKey(name string) string {
	lower := strings.ToLower(name)
	for _, a := range articles {
		if strings.HasPrefix(lower, a) {
			return lower[len(a):]
		}
	}
	return lower
}

// NaturalLess compares alphanumerically, digit runs by numeric value.
func NaturalLess(a, b string) bool {
	for len(a) > 0 && len(b) > 0 {
		if isDigit(a[0]) && isDigit(b[0]) {
			na, ra := splitNum(a)
			nb, rb := splitNum(b)
			if na != nb {
				return numLess(na, nb)
			}
			a, b = ra, rb
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return unicode.IsDigit(rune(c)) }

// splitNum peels the leading digit run off, without leading zeros.
func splitNum(s string) (string, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	num := strings.TrimLeft(s[:i], "0")
	if num == "" {
		num = "0"
	}
	return num, s[i:]
}

// numLess compares two digit strings by value: shorter is smaller,
// equal lengths compare lexically.
func numLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
