package util

import (
	"regexp"
	"strings"
)

var chunks = regexp.MustCompile(`\d+|\D+`)

// NaturalLess orders strings so that embedded numbers compare by value:
// "note 2.md" sorts before "note 10.md". Letters compare case-insensitively.
func NaturalLess(a, b string) bool {
	ca := chunks.FindAllString(a, -1)
	cb := chunks.FindAllString(b, -1)

	for i := 0; i < len(ca) && i < len(cb); i++ {
		x, y := ca[i], cb[i]
		xNum, yNum := isDigits(x), isDigits(y)
		switch {
		case xNum && !yNum:
			return true
		case !xNum && yNum:
			return false
		case xNum:
			if c := compareNumbers(x, y); c != 0 {
				return c < 0
			}
		default:
			if lx, ly := strings.ToLower(x), strings.ToLower(y); lx != ly {
				return lx < ly
			}
		}
	}
	return len(ca) < len(cb)
}

// compareNumbers compares digit strings of any length without parsing them.
func compareNumbers(x, y string) int {
	x = strings.TrimLeft(x, "0")
	y = strings.TrimLeft(y, "0")
	if len(x) != len(y) {
		if len(x) < len(y) {
			return -1
		}
		return 1
	}
	return strings.Compare(x, y)
}

func isDigits(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
