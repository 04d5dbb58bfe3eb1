package podcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	cases := map[string]int{
		"1:02:03":  3723,
		"5:30":     330,
		"330":      330,
		"12.5":     12,
		"00:00:59": 59,
		" 1:00 ":   60,
		"abc":      0,
		"":         0,
		"1:2:3:4":  0,
		"-5":       0,
		"1::3":     0,
		"1.5:30":   0,

		"9223372036854775807:00": 0,
		"3000000:00:00":          0,
		"1e300":                  0,
		"999:59:59":              3599999,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseDuration(in), "input %q", in)
	}
}
