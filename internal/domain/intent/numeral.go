package intent

import "strings"

var numeralValues = map[rune]int64{
	'零': 0, '一': 1, '二': 2, '两': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
	'十': 10, '百': 100, '千': 1000, '万': 10000, '亿': 100000000,
}

// ParseChineseNumeral converts a run of Chinese numeral characters into an
// integer. Characters outside the numeral set are ignored.
//
//	两千五 -> 2500   一万三千 -> 13000   千二 -> 1200   万三 -> 13000
//
// The reduce keeps three registers: number (pending digit), section (value
// below the current 万/亿 group) and total (closed groups). A single digit
// trailing 百/千/万 is read as the next lower unit, the way people say
// "千二" for 1200.
func ParseChineseNumeral(s string) int64 {
	var total, section, number int64
	for _, r := range s {
		v, ok := numeralValues[r]
		if !ok {
			continue
		}
		switch {
		case v >= 10000:
			section += number
			if section == 0 {
				section = 1
			}
			total += section * v
			section, number = 0, 0
		case v >= 10:
			if number == 0 {
				number = 1
			}
			section += number * v
			number = 0
		default:
			number = v
		}
	}

	if digit, unit, ok := trailingSubUnit(s); ok {
		return total + section + digit*unit/10
	}
	return total + section + number
}

// trailingSubUnit detects the "千二" shape: the last rune is a digit 1-9 and
// the rune before it is 百, 千 or 万.
func trailingSubUnit(s string) (digit, unit int64, ok bool) {
	rs := []rune(s)
	if len(rs) < 2 {
		return 0, 0, false
	}
	last, prev := rs[len(rs)-1], rs[len(rs)-2]
	digit, isNumeral := numeralValues[last]
	if !isNumeral || digit < 1 || digit > 9 {
		return 0, 0, false
	}
	switch prev {
	case '百', '千', '万':
		return digit, numeralValues[prev], true
	}
	return 0, 0, false
}

var numeralDigits = []rune("零一二三四五六七八九")

// FormatChineseNumeral renders n the way it would be written in a ledger
// (2500 -> 两千五百). It is the inverse of ParseChineseNumeral for
// non-negative values.
func FormatChineseNumeral(n int64) string {
	switch {
	case n < 0:
		return "负" + FormatChineseNumeral(-n)
	case n == 0:
		return "零"
	case n >= 100000000:
		return FormatChineseNumeral(n/100000000) + "亿" + formatRemainder(n%100000000, 10000000)
	case n >= 10000:
		return formatSection(n/10000) + "万" + formatRemainder(n%10000, 1000)
	default:
		return formatSection(n)
	}
}

// formatRemainder writes the low part of a number, inserting 零 when the
// next unit down is skipped (10005 -> 一万零五).
func formatRemainder(rest, threshold int64) string {
	if rest == 0 {
		return ""
	}
	if rest < threshold {
		return "零" + FormatChineseNumeral(rest)
	}
	return FormatChineseNumeral(rest)
}

// formatSection renders 1..9999.
func formatSection(n int64) string {
	places := []struct {
		value int64
		unit  string
	}{
		{1000, "千"}, {100, "百"}, {10, "十"}, {1, ""},
	}

	var b strings.Builder
	pendingZero := false
	for _, p := range places {
		d := n / p.value % 10
		if d == 0 {
			if b.Len() > 0 {
				pendingZero = true
			}
			continue
		}
		if pendingZero {
			b.WriteRune('零')
			pendingZero = false
		}
		switch {
		case p.value == 1000 && d == 2:
			b.WriteRune('两')
		case p.value == 10 && d == 1 && b.Len() == 0:
			// 十二, not 一十二
		default:
			b.WriteRune(numeralDigits[d])
		}
		b.WriteString(p.unit)
	}
	return b.String()
}
