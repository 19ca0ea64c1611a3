package intent

import "strings"

// Canonical event categories.
const (
	EventWedding      = "婚礼"
	EventFullMonth    = "满月宴"
	EventLongevity    = "寿宴"
	EventHousewarming = "乔迁宴"
	EventAdmission    = "升学宴"
	EventOpening      = "开业庆典"
	EventFestival     = "节日红包"
	EventGeneral      = "人情往来"
)

// Canonical payment channels.
const (
	PaymentWeChatRedPacket = "微信红包"
	PaymentWeChatTransfer  = "微信转账"
	PaymentAlipayTransfer  = "支付宝转账"
	PaymentBankCard        = "银行卡"
	PaymentCash            = "现金"
	PaymentRedPacket       = "红包"
	PaymentAlipay          = "支付宝"
	PaymentWeChat          = "微信"
)

var festivalNames = []string{"国庆", "中秋", "春节", "端午", "清明"}

var eventTable = NewKeywordTable([]KeywordRule{
	{EventWedding, []string{"婚礼", "结婚", "婚宴", "喜酒", "办喜事", "摆酒"}},
	{EventFullMonth, []string{"满月", "满月酒", "百日", "百天"}},
	{EventLongevity, []string{"寿宴", "生日", "生辰", "过寿"}},
	{EventHousewarming, []string{"乔迁", "搬家宴", "入宅"}},
	{EventAdmission, []string{"升学", "升学宴", "考上", "录取通知"}},
	{EventOpening, []string{"开业", "开张", "开业庆典"}},
	{EventFestival, []string{"春节", "清明", "端午", "中秋", "国庆"}},
}, EventGeneral)

var paymentTable = NewKeywordTable([]KeywordRule{
	{PaymentWeChatRedPacket, []string{"微信红包"}},
	{PaymentWeChatTransfer, []string{"微信转账"}},
	{PaymentAlipayTransfer, []string{"支付宝转账"}},
	{PaymentBankCard, []string{"银行卡转账", "银行转账"}},
	{PaymentCash, []string{"现金"}},
	{PaymentRedPacket, []string{"红包"}},
	{PaymentAlipay, []string{"支付宝"}},
	{PaymentWeChat, []string{"微信"}},
}, PaymentWeChat)

// ClassifyDirection reports gift_received when the text mentions a return
// gift (回礼) or receiving a gift (收礼).
func ClassifyDirection(text string) Direction {
	if strings.Contains(text, "回礼") || strings.Contains(text, "收礼") {
		return GiftReceived
	}
	return GiftGiven
}

// ClassifyEvent maps text to a canonical event category, 人情往来 when
// nothing matches.
func ClassifyEvent(text string) string {
	return eventTable.Classify(text)
}

// EventCategories lists every canonical event category.
func EventCategories() []string {
	return eventTable.Labels()
}

// ClassifyPayment maps text to a canonical payment channel, 微信 when
// nothing matches.
func ClassifyPayment(text string) string {
	return paymentTable.Classify(text)
}
