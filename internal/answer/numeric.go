package answer

import (
	"strconv"

	"github.com/dlclark/regexp2"
)

// DefaultNumber replaces a numeric response that carries no digits.
const DefaultNumber = 1

var digits = regexp2.MustCompile(`[0-9]+`, regexp2.None)

// ParseNumber returns the first run of digits in response.
func ParseNumber(response string) (int, bool) {
	m, err := digits.FindStringMatch(response)
	if err != nil || m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m.String())
	if err != nil {
		return 0, false
	}
	return n, true
}
