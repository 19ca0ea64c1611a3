package intent

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/width"
)

// fullWidthDigits covers ０ through ９ (U+FF10..U+FF19).
var fullWidthDigits = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0xFF10, Hi: 0xFF19, Stride: 1}},
}

// dateSeparators rewrites the separators accepted in absolute dates to '-'.
var dateSeparators = strings.NewReplacer("/", "-", "年", "-", "月", "-", "日", "")

// NormalizeDigits maps full-width decimal digits to their ASCII form and
// leaves every other rune untouched.
func NormalizeDigits(s string) string {
	// A fresh transformer per call: transform.Transformer values carry state.
	t := runes.If(runes.In(fullWidthDigits), width.Narrow, nil)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// normalizeDate turns a matched raw date ("2024/6/1", "2024年6月1日", "6-1")
// into YYYY-MM-DD. Two-part dates take the reference year. It reports false
// when the parts do not form a real calendar day.
func normalizeDate(raw string, ref time.Time) (string, bool) {
	parts := strings.FieldsFunc(dateSeparators.Replace(raw), func(r rune) bool { return r == '-' })

	var y, m, d int
	var err error
	switch len(parts) {
	case 3:
		if y, err = strconv.Atoi(parts[0]); err != nil {
			return "", false
		}
		parts = parts[1:]
	case 2:
		y = ref.Year()
	default:
		return formatDay(ref), true
	}
	if m, err = strconv.Atoi(parts[0]); err != nil {
		return "", false
	}
	if d, err = strconv.Atoi(parts[1]); err != nil {
		return "", false
	}

	day := time.Date(y, time.Month(m), d, 0, 0, 0, 0, ref.Location())
	if day.Year() != y || int(day.Month()) != m || day.Day() != d {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d), true
}

func formatDay(t time.Time) string {
	return t.Format("2006-01-02")
}
