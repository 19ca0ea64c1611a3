package intent

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	absoluteDateRe    = regexp.MustCompile(`\d{4}[/-]\d{1,2}[/-]\d{1,2}`)
	absoluteCJKDateRe = regexp.MustCompile(`\d{4}年\d{1,2}月\d{1,2}日`)
	monthDayRe        = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}`)
	lastWeekRe        = regexp.MustCompile(`上周([一二三四五六日天])`)
	thisWeekRe        = regexp.MustCompile(`本周([一二三四五六日天])`)
)

// weekdayNumbers uses ISO numbering, Monday=1 .. Sunday=7.
var weekdayNumbers = map[string]int{
	"一": 1, "二": 2, "三": 3, "四": 4, "五": 5, "六": 6, "日": 7, "天": 7,
}

// ResolveDate returns the YYYY-MM-DD day text refers to, relative to ref.
// It never fails: text without a recognisable date resolves to ref.
func ResolveDate(text string, ref time.Time) string {
	t := NormalizeDigits(text)

	for _, re := range []*regexp.Regexp{absoluteDateRe, absoluteCJKDateRe, monthDayRe} {
		if raw := re.FindString(t); raw != "" {
			if day, ok := normalizeDate(raw, ref); ok {
				return day
			}
		}
	}

	switch {
	case strings.Contains(t, "今天"):
		return formatDay(ref)
	case strings.Contains(t, "昨天"), strings.Contains(t, "昨日"):
		return formatDay(ref.AddDate(0, 0, -1))
	case strings.Contains(t, "前天"):
		return formatDay(ref.AddDate(0, 0, -2))
	}

	cur := isoWeekday(ref)
	if m := lastWeekRe.FindStringSubmatch(t); m != nil {
		offset := cur + (7 - weekdayNumbers[m[1]])
		return formatDay(ref.AddDate(0, 0, -offset))
	}
	if m := thisWeekRe.FindStringSubmatch(t); m != nil {
		return formatDay(ref.AddDate(0, 0, weekdayNumbers[m[1]]-cur))
	}
	if strings.Contains(t, "周末") {
		return formatDay(ref.AddDate(0, 0, 6-cur))
	}

	if strings.Contains(t, "国庆") {
		return fmt.Sprintf("%04d-10-01", ref.Year())
	}

	return formatDay(ref)
}

func isoWeekday(t time.Time) int {
	if wd := t.Weekday(); wd != time.Sunday {
		return int(wd)
	}
	return 7
}
