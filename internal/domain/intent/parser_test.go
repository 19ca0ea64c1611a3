package intent

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser() *Parser {
	return NewParser(WithClock(FixedClock(monday)))
}

func TestParser_Parse(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name  string
		input string
		want  ParsedIntent
	}{
		{
			name:  "wedding gift to a colleague",
			input: "刚给同事张伟随礼800结婚红包",
			want: ParsedIntent{
				Type:          GiftGiven,
				ContactName:   "张伟",
				EventName:     EventWedding,
				Amount:        decimal.NewFromInt(800),
				RecordDate:    "2024-06-10",
				PaymentMethod: PaymentRedPacket,
				Notes:         "刚给同事随礼结婚",
			},
		},
		{
			name:  "return gift received",
			input: "收到李娜回礼1200",
			want: ParsedIntent{
				Type:          GiftReceived,
				ContactName:   "李娜",
				EventName:     EventGeneral,
				Amount:        decimal.NewFromInt(1200),
				RecordDate:    "2024-06-10",
				PaymentMethod: PaymentWeChat,
				Notes:         "收到回礼",
			},
		},
		{
			name:  "full month banquet last saturday",
			input: "上周六给王哥孩子满月随份子两千五",
			want: ParsedIntent{
				Type:          GiftGiven,
				ContactName:   "王",
				EventName:     EventFullMonth,
				Amount:        decimal.NewFromInt(2500),
				RecordDate:    "2024-06-08",
				PaymentMethod: PaymentWeChat,
				Notes:         "上周六给哥孩子满月随份子",
			},
		},
		{
			name:  "national day transfer",
			input: "国庆给表弟礼金3k 微信转账",
			want: ParsedIntent{
				Type:          GiftGiven,
				EventName:     EventFestival,
				Amount:        decimal.NewFromInt(3000),
				RecordDate:    "2024-10-01",
				PaymentMethod: PaymentWeChatTransfer,
				Notes:         "国庆给表弟礼金",
			},
		},
		{
			name:  "housewarming yesterday",
			input: "昨天参加老李乔迁，随礼一千二",
			want: ParsedIntent{
				Type:          GiftGiven,
				ContactName:   "李",
				EventName:     EventHousewarming,
				Amount:        decimal.NewFromInt(1200),
				RecordDate:    "2024-06-09",
				PaymentMethod: PaymentWeChat,
				Notes:         "昨天参加老乔迁，随礼",
			},
		},
		{
			name:  "festival return gift",
			input: "中秋收阿姨回礼500红包",
			want: ParsedIntent{
				Type:          GiftReceived,
				EventName:     EventFestival,
				Amount:        decimal.NewFromInt(500),
				RecordDate:    "2024-06-10",
				PaymentMethod: PaymentRedPacket,
				Notes:         "中秋收阿姨回礼",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.input)
			require.NoError(t, err)
			require.NotNil(t, got)

			assert.Equal(t, tt.want.Type, got.Type)
			assert.Equal(t, tt.want.ContactName, got.ContactName)
			assert.Equal(t, tt.want.EventName, got.EventName)
			assert.True(t, tt.want.Amount.Equal(got.Amount), "amount %s", got.Amount)
			assert.Equal(t, tt.want.RecordDate, got.RecordDate)
			assert.Equal(t, tt.want.PaymentMethod, got.PaymentMethod)
			assert.Equal(t, tt.want.Notes, got.Notes)
		})
	}
}

func TestParser_Parse_Failures(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", ErrEmptyInput},
		{"whitespace only", "   \t\n", ErrEmptyInput},
		{"no amount", "随便聊聊天气", ErrAmountNotFound},
		{"zero amount", "随礼0元", ErrAmountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.input)
			assert.Nil(t, got)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.True(t, errors.Is(err, ErrNoIntent))
		})
	}
}

func TestParser_DirectionProperty(t *testing.T) {
	p := newTestParser()

	for _, text := range []string{"收到回礼600", "今天收礼1000", "回礼两千"} {
		got, err := p.Parse(text)
		require.NoError(t, err, text)
		assert.Equal(t, GiftReceived, got.Type, text)
	}
	for _, text := range []string{"随礼600", "给老王礼金1000", "红包两千"} {
		got, err := p.Parse(text)
		require.NoError(t, err, text)
		assert.Equal(t, GiftGiven, got.Type, text)
	}
}

func TestParser_UsesInjectedClock(t *testing.T) {
	ref := time.Date(2025, time.January, 1, 8, 0, 0, 0, time.UTC)
	p := NewParser(WithClock(FixedClock(ref)))

	got, err := p.Parse("昨天随礼500")
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31", got.RecordDate)
}

func TestParser_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := NewParser(WithClock(FixedClock(monday)), WithLogger(logger))

	_, err := p.Parse("随礼800")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "parsed gift intent")

	_, err = p.Parse("随便聊聊")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "no amount in message")
}

func TestParser_Concurrent(t *testing.T) {
	p := newTestParser()
	want, err := p.Parse("刚给同事张伟随礼800结婚红包")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got, err := p.Parse("刚给同事张伟随礼800结婚红包")
				if assert.NoError(t, err) {
					assert.Equal(t, want, got)
				}
			}
		}()
	}
	wg.Wait()
}

func TestParsedIntent_JSON(t *testing.T) {
	got, err := newTestParser().Parse("刚给同事张伟随礼800结婚红包")
	require.NoError(t, err)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "gift_given",
		"contact_name": "张伟",
		"event_name": "婚礼",
		"amount": 800,
		"record_date": "2024-06-10",
		"payment_method": "红包",
		"notes": "刚给同事随礼结婚"
	}`, string(data))

	var decoded ParsedIntent
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, got.Amount.Equal(decoded.Amount))
	assert.Equal(t, got.ContactName, decoded.ContactName)

	err = json.Unmarshal([]byte(`{"amount": "lots"}`), &decoded)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	p := &ParsedIntent{
		Type:          GiftGiven,
		ContactName:   "张伟",
		EventName:     EventWedding,
		Amount:        decimal.NewFromInt(800),
		RecordDate:    "2024-06-10",
		PaymentMethod: PaymentWeChat,
	}
	assert.Equal(t, "给张伟随礼800元 婚礼 微信 2024-06-10", Summarize(p))

	p.Type = GiftReceived
	assert.Equal(t, "收到张伟回礼800元 婚礼 微信 2024-06-10", Summarize(p))

	assert.Empty(t, Summarize(nil))
}

func TestSummarize_RoundTrip(t *testing.T) {
	faker := gofakeit.New(20240610)
	parser := newTestParser()

	names := []string{"张伟", "李娜", "王芳", "刘洋", "陈静", "赵磊"}
	events := []string{
		EventWedding, EventFullMonth, EventLongevity, EventHousewarming,
		EventAdmission, EventOpening, EventFestival, EventGeneral,
	}
	payments := []string{
		PaymentWeChatRedPacket, PaymentWeChatTransfer, PaymentAlipayTransfer,
		PaymentBankCard, PaymentCash, PaymentRedPacket, PaymentAlipay, PaymentWeChat,
	}
	start := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 200; i++ {
		dir := GiftGiven
		if faker.Bool() {
			dir = GiftReceived
		}
		original := &ParsedIntent{
			Type:          dir,
			ContactName:   faker.RandomString(names),
			EventName:     faker.RandomString(events),
			Amount:        decimal.NewFromInt(int64(faker.Number(1, 99999))),
			RecordDate:    faker.DateRange(start, end).Format("2006-01-02"),
			PaymentMethod: faker.RandomString(payments),
		}

		summary := Summarize(original)
		reparsed, err := parser.Parse(summary)
		require.NoError(t, err, summary)
		assert.Equal(t, original.Type, reparsed.Type, summary)
		assert.True(t, original.Amount.Equal(reparsed.Amount), "%s -> %s", summary, reparsed.Amount)
	}
}
