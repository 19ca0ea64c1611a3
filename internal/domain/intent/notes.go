package intent

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var chineseAmountRe = regexp.MustCompile(`[零一二两三四五六七八九十百千万亿]+(?:\s*元|块)?`)

// extractNotes returns what is left of text once the extracted fields are
// taken out. Only the first amount and date expressions are removed.
func extractNotes(text string, p *ParsedIntent) string {
	s := removeFirst(arabicAmountRe, NormalizeDigits(text))
	s = removeChineseAmount(s, p.Amount)
	s = removeFirst(absoluteDateRe, s)
	s = removeFirst(absoluteCJKDateRe, s)
	s = removeFirst(monthDayRe, s)

	for _, picked := range []string{p.EventName, p.PaymentMethod, p.ContactName} {
		if picked != "" {
			s = strings.ReplaceAll(s, picked, "")
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

func removeFirst(re *regexp.Regexp, s string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + s[loc[1]:]
}

// removeChineseAmount drops the first numeral run worth amount, leaving runs
// such as the 六 of 上周六 alone.
func removeChineseAmount(s string, amount decimal.Decimal) string {
	for _, loc := range chineseAmountRe.FindAllStringIndex(s, -1) {
		if decimal.NewFromInt(ParseChineseNumeral(s[loc[0]:loc[1]])).Equal(amount) {
			return s[:loc[0]] + s[loc[1]:]
		}
	}
	return s
}
