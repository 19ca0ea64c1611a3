package intent

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseChineseNumeral(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"一百", 100},
		{"一百二十", 120},
		{"一千二百", 1200},
		{"两千五百", 2500},
		{"一万三千", 13000},
		{"三万", 30000},
		{"十二", 12},
		{"二十五", 25},
		{"一万零五", 10005},
		{"一千零一十", 1010},
		{"五百", 500},
		// additive sub-unit shorthand
		{"千二", 1200},
		{"万三", 13000},
		{"百二", 120},
		{"两千五", 2500},
		{"一千二", 1200},
		{"两万五", 25000},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseChineseNumeral(tt.input))
		})
	}
}

func TestFormatChineseNumeral(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "零"},
		{12, "十二"},
		{100, "一百"},
		{110, "一百一十"},
		{120, "一百二十"},
		{1200, "一千二百"},
		{2500, "两千五百"},
		{10005, "一万零五"},
		{13000, "一万三千"},
		{30000, "三万"},
		{120000000, "一亿两千万"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			assert.Equal(t, tt.want, FormatChineseNumeral(tt.n))
		})
	}
}

func TestChineseNumeral_RoundTrip(t *testing.T) {
	for _, n := range []int64{100, 120, 1200, 2500, 13000, 30000} {
		assert.Equal(t, n, ParseChineseNumeral(FormatChineseNumeral(n)), "n=%d", n)
	}

	for n := int64(0); n <= 20000; n++ {
		if got := ParseChineseNumeral(FormatChineseNumeral(n)); got != n {
			t.Fatalf("round trip of %d gave %d (%s)", n, got, FormatChineseNumeral(n))
		}
	}

	for _, n := range []int64{100010000, 120000000, 987654321, 1000000001} {
		assert.Equal(t, n, ParseChineseNumeral(FormatChineseNumeral(n)), "n=%d", n)
	}
}
