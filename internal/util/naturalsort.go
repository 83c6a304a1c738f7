package util

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var tokenizer = regexp.MustCompile(`(\d+|\D+)`)

type naturalSortToken struct {
	str   string
	num   int
	isNum bool
}

func tokenize(s string) []naturalSortToken {
	parts := tokenizer.FindAllString(s, -1)
	tokens := make([]naturalSortToken, len(parts))
	for i, p := range parts {
		if num, err := strconv.Atoi(p); err == nil {
			tokens[i] = naturalSortToken{num: num, isNum: true}
			continue
		}
		tokens[i] = naturalSortToken{str: strings.ToLower(p)}
	}
	return tokens
}

// NaturalSortLess orders scan names the way people number them, so
// "page 2.jpg" sorts before "page 10.jpg".
func NaturalSortLess(s1, s2 string) bool {
	t1, t2 := tokenize(s1), tokenize(s2)
	for i := 0; i < min(len(t1), len(t2)); i++ {
		a, b := t1[i], t2[i]
		switch {
		case a.isNum && !b.isNum:
			return true
		case !a.isNum && b.isNum:
			return false
		case a.isNum && a.num != b.num:
			return a.num < b.num
		case !a.isNum && a.str != b.str:
			return a.str < b.str
		}
	}
	return len(t1) < len(t2)
}

// SortNatural sorts names in place with NaturalSortLess. Equal names keep
// their relative order.
func SortNatural(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return NaturalSortLess(names[i], names[j])
	})
}
