package assistant

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatDisplay(t *testing.T) {
	tests := []struct {
		name string
		in   Intent
		want string
	}{
		{
			name: "given",
			in: Intent{
				Type:          "gift_given",
				ContactName:   "张伟",
				EventName:     "婚礼",
				Amount:        decimal.NewFromInt(800),
				RecordDate:    "2024-06-10",
				PaymentMethod: "红包",
			},
			want: "📌 新支出记录\n联系人：张伟\n事由：婚礼\n金额：¥800\n日期：2024-06-10\n支付：红包",
		},
		{
			name: "received with defaults",
			in: Intent{
				Type:       "gift_received",
				EventName:  "节日红包",
				Amount:     decimal.NewFromInt(500),
				RecordDate: "2024-06-10",
			},
			want: "📌 新收入记录\n联系人：未知\n事由：节日红包\n金额：¥500\n日期：2024-06-10\n支付：—",
		},
		{
			name: "missing amount",
			in:   Intent{Type: "expense"},
			want: "📌 新支出记录\n联系人：未知\n事由：\n金额：¥\n日期：\n支付：—",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDisplay(tt.in))
		})
	}
}
