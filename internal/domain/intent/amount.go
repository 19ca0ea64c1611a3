package intent

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// amountTriggers are the words a casual sentence puts next to the figure.
// List order decides which trigger anchors the search window.
var amountTriggers = []string{"随礼", "回礼", "礼金", "红包", "份子", "随份子"}

const (
	windowBefore = 20
	windowAfter  = 30
)

var (
	// ￥800, 800元, 3k, 2.5万, 5 百
	arabicAmountRe = regexp.MustCompile(`[￥¥]?(\d+(?:\.\d{1,2})?)\s*(?:元|块)?\s*(k|K|w|W|千|万|百)?`)
	bareArabicRe   = regexp.MustCompile(`[￥¥]?(\d+(?:\.\d{1,2})?)`)
	chineseRunRe   = regexp.MustCompile(`[零一二两三四五六七八九十百千万亿]+`)
)

var unitScale = map[string]decimal.Decimal{
	"k": decimal.NewFromInt(1000),
	"K": decimal.NewFromInt(1000),
	"千": decimal.NewFromInt(1000),
	"w": decimal.NewFromInt(10000),
	"W": decimal.NewFromInt(10000),
	"万": decimal.NewFromInt(10000),
	"百": decimal.NewFromInt(100),
}

// ExtractAmount finds the gift amount in text. It reports false when no
// figure can be recognised anywhere.
func ExtractAmount(text string) (decimal.Decimal, bool) {
	t := NormalizeDigits(text)
	scope := amountWindow(t)

	if m := arabicAmountRe.FindStringSubmatch(scope); m != nil {
		n, err := decimal.NewFromString(m[1])
		if err == nil {
			if scale, ok := unitScale[m[2]]; ok {
				n = n.Mul(scale)
			}
			return n.Round(0), true
		}
	}

	if run := pickChineseRun(chineseRunRe.FindAllString(scope, -1)); run != "" {
		return decimal.NewFromInt(ParseChineseNumeral(run)), true
	}

	if m := bareArabicRe.FindStringSubmatch(t); m != nil {
		if n, err := decimal.NewFromString(m[1]); err == nil {
			return n, true
		}
	}

	if run := chineseRunRe.FindString(t); run != "" {
		return decimal.NewFromInt(ParseChineseNumeral(run)), true
	}

	return decimal.Zero, false
}

// amountWindow narrows t to the runes around the last occurrence of the
// first trigger word present, so unrelated numbers elsewhere in a long
// message are not picked up.
func amountWindow(t string) string {
	idx := -1
	for _, w := range amountTriggers {
		if i := strings.LastIndex(t, w); i != -1 {
			idx = utf8.RuneCountInString(t[:i])
			break
		}
	}
	if idx == -1 {
		return t
	}

	rs := []rune(t)
	start := max(0, idx-windowBefore)
	end := min(len(rs), idx+windowAfter)
	return string(rs[start:end])
}

// pickChineseRun prefers the first run that carries a magnitude word or is
// longer than a single rune; "上周六...两千五" should yield 两千五, not 六.
func pickChineseRun(runs []string) string {
	if len(runs) == 0 {
		return ""
	}
	for _, r := range runs {
		if strings.ContainsAny(r, "百千万亿") || utf8.RuneCountInString(r) > 1 {
			return r
		}
	}
	return runs[0]
}
