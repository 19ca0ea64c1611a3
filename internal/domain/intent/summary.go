package intent

import "strings"

// Summarize rebuilds a short sentence from p, e.g.
// "给张伟随礼800元 婚礼 微信 2024-06-10". Feeding the summary back through
// Parse yields the same amount and direction.
func Summarize(p *ParsedIntent) string {
	if p == nil {
		return ""
	}

	var b strings.Builder
	verb := "随礼"
	if p.Type == GiftReceived {
		b.WriteString("收到")
		verb = "回礼"
	} else {
		b.WriteString("给")
	}
	b.WriteString(p.ContactName)
	b.WriteString(verb)
	b.WriteString(p.Amount.String())
	b.WriteString("元")

	for _, part := range []string{p.EventName, p.PaymentMethod, p.RecordDate} {
		if part != "" {
			b.WriteString(" ")
			b.WriteString(part)
		}
	}
	return b.String()
}
