package assistant

import "strings"

// FormatDisplay renders the confirmation card shown after a message is
// understood:
//
//	📌 新支出记录
//	联系人：张伟
//	事由：婚礼
//	金额：¥800
//	日期：2024-06-10
//	支付：红包
func FormatDisplay(in Intent) string {
	kind := "新支出记录"
	if in.Type == "gift_received" {
		kind = "新收入记录"
	}

	name := in.ContactName
	if name == "" {
		name = "未知"
	}

	amount := ""
	if !in.Amount.IsZero() {
		amount = in.Amount.String()
	}

	payment := in.PaymentMethod
	if payment == "" {
		payment = "—"
	}

	return strings.Join([]string{
		"📌 " + kind,
		"联系人：" + name,
		"事由：" + in.EventName,
		"金额：¥" + amount,
		"日期：" + in.RecordDate,
		"支付：" + payment,
	}, "\n")
}
