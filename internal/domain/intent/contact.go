package intent

import (
	"regexp"
	"strings"
)

// relationWords are stripped from a name span before the name is taken.
// Order matters: 表哥 has to go before 哥.
var relationWords = []string{
	"同事", "朋友", "同学", "领导", "老师", "师兄", "师姐", "亲戚", "邻居",
	"哥哥", "姐姐", "叔叔", "阿姨", "伯伯", "婶婶", "舅舅", "舅妈", "姑姑", "姑父",
	"堂哥", "堂姐", "堂妹", "表哥", "表姐", "表弟", "表妹",
	"老", "小", "大", "哥", "姐", "孩子", "家", "参加",
}

// boundaryWords end the name span.
var boundaryWords = []string{
	"随礼", "回礼", "婚礼", "满月", "酒", "宴", "红包", "微信", "支付宝", "银行卡",
	"元", "￥", "礼金", "份子", "份子钱", "随份子", "开业", "乔迁", "升学",
}

var (
	digitOrCurrencyRe = regexp.MustCompile(`[0-9￥¥]`)
	nameRunRe         = regexp.MustCompile(`[\x{4e00}-\x{9fa5}]{1,4}`)
	inlineNameRe      = regexp.MustCompile(`([\x{4e00}-\x{9fa5}]{1,4}?)的?(?:婚礼|结婚|满月|满月酒|寿宴|生日|乔迁|升学|开业)`)
)

// ExtractContact returns the best-effort counterparty name, or "" when none
// can be found. The anchor matching the direction is tried first: for a
// received gift the name after 收到 wins over the one after 给.
func ExtractContact(text string, dir Direction) string {
	give := nameAfter(text, "给")
	recv := nameAfter(text, "收到")
	inline := inlineName(text)

	candidates := []string{give, recv, inline}
	if dir == GiftReceived {
		candidates = []string{recv, give, inline}
	}
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

// nameAfter reads the name following anchor, up to the first boundary word,
// digit or currency sign.
func nameAfter(text, anchor string) string {
	i := strings.Index(text, anchor)
	if i == -1 {
		return ""
	}
	start := i + len(anchor)
	rest := text[start:]

	end := len(rest)
	for _, w := range boundaryWords {
		if j := strings.Index(rest, w); j != -1 && j < end {
			end = j
		}
	}
	if loc := digitOrCurrencyRe.FindStringIndex(rest); loc != nil && loc[0] < end {
		end = loc[0]
	}

	return nameRunRe.FindString(stripRelations(rest[:end]))
}

// inlineName handles "老王的婚礼" style mentions where the name sits right
// before the event keyword.
func inlineName(text string) string {
	m := inlineNameRe.FindStringSubmatch(text)
	if m == nil || containsFestival(m[1]) {
		return ""
	}
	return nameRunRe.FindString(stripRelations(m[1]))
}

func stripRelations(s string) string {
	for _, w := range relationWords {
		s = strings.ReplaceAll(s, w, "")
	}
	for _, f := range festivalNames {
		s = strings.ReplaceAll(s, f, "")
	}
	return s
}

func containsFestival(s string) bool {
	for _, f := range festivalNames {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
