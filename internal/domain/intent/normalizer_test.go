package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDigits(t *testing.T) {
	assert.Equal(t, "随礼800元", NormalizeDigits("随礼８００元"))
	assert.Equal(t, "2024-06-01", NormalizeDigits("２０２４-０６-０１"))
	// only digits are folded
	assert.Equal(t, "ＡＢ，一千二", NormalizeDigits("ＡＢ，一千二"))
	assert.Equal(t, "", NormalizeDigits(""))
}

func TestNormalizeDate(t *testing.T) {
	ref := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"2024/6/1", "2024-06-01", true},
		{"2024年6月1日", "2024-06-01", true},
		{"2023-12-31", "2023-12-31", true},
		{"6-1", "2024-06-01", true},
		{"2024-02-29", "2024-02-29", true},
		{"2023-02-29", "", false},
		{"2024-13-01", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := normalizeDate(tt.raw, ref)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
