// Package intent turns a casual Chinese sentence about gift money
// ("刚给同事张伟随礼800结婚红包") into a structured ledger record without any
// external NLP service.
package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction says whether the gift money went out or came in.
type Direction string

const (
	GiftGiven    Direction = "gift_given"
	GiftReceived Direction = "gift_received"
)

var (
	// ErrNoIntent is wrapped by every parse failure.
	ErrNoIntent = errors.New("no gift intent recognised")
	// ErrEmptyInput is returned for blank input.
	ErrEmptyInput = fmt.Errorf("%w: empty input", ErrNoIntent)
	// ErrAmountNotFound is returned when no amount can be read from the text.
	ErrAmountNotFound = fmt.Errorf("%w: amount not found", ErrNoIntent)
)

// ParsedIntent is the record extracted from one sentence.
type ParsedIntent struct {
	Type          Direction       `json:"type"`
	ContactName   string          `json:"contact_name,omitempty"`
	EventName     string          `json:"event_name"`
	Amount        decimal.Decimal `json:"amount"`
	RecordDate    string          `json:"record_date"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

type parsedIntentJSON struct {
	Type          Direction   `json:"type"`
	ContactName   string      `json:"contact_name,omitempty"`
	EventName     string      `json:"event_name"`
	Amount        json.Number `json:"amount"`
	RecordDate    string      `json:"record_date"`
	PaymentMethod string      `json:"payment_method,omitempty"`
	Notes         string      `json:"notes,omitempty"`
}

// MarshalJSON writes amount as a JSON number rather than decimal's default
// quoted string.
func (p ParsedIntent) MarshalJSON() ([]byte, error) {
	return json.Marshal(parsedIntentJSON{
		Type:          p.Type,
		ContactName:   p.ContactName,
		EventName:     p.EventName,
		Amount:        json.Number(p.Amount.String()),
		RecordDate:    p.RecordDate,
		PaymentMethod: p.PaymentMethod,
		Notes:         p.Notes,
	})
}

func (p *ParsedIntent) UnmarshalJSON(data []byte) error {
	var v parsedIntentJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(v.Amount.String())
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", v.Amount, err)
	}
	*p = ParsedIntent{
		Type:          v.Type,
		ContactName:   v.ContactName,
		EventName:     v.EventName,
		Amount:        amount,
		RecordDate:    v.RecordDate,
		PaymentMethod: v.PaymentMethod,
		Notes:         v.Notes,
	}
	return nil
}

// Clock supplies the reference instant relative dates resolve against.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// SystemClock reads the wall clock in loc (time.Local when nil).
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return ClockFunc(func() time.Time { return time.Now().In(loc) })
}

// Parser extracts gift intents. It holds no mutable state and is safe for
// concurrent use.
type Parser struct {
	clock  Clock
	logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock pins the reference instant.
func WithClock(c Clock) Option {
	return func(p *Parser) { p.clock = c }
}

// WithLogger sets the logger used for debug traces of each parse.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

// NewParser creates a parser reading the system clock unless WithClock is
// given.
func NewParser(opts ...Option) *Parser {
	p := &Parser{clock: SystemClock(nil)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser()

// Parse parses text against the system clock.
func Parse(text string) (*ParsedIntent, error) {
	return defaultParser.Parse(text)
}

// Parse extracts a ParsedIntent from text. Only a missing amount (or empty
// input) fails; every other field falls back to a default.
func (p *Parser) Parse(text string) (*ParsedIntent, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	dir := ClassifyDirection(text)

	amount, ok := ExtractAmount(text)
	if !ok || !amount.IsPositive() {
		p.debug("no amount in message", slog.String("text", text))
		return nil, ErrAmountNotFound
	}

	result := &ParsedIntent{
		Type:          dir,
		Amount:        amount,
		RecordDate:    ResolveDate(text, p.clock.Now()),
		EventName:     ClassifyEvent(text),
		PaymentMethod: ClassifyPayment(text),
	}
	result.ContactName = ExtractContact(text, dir)
	result.Notes = extractNotes(text, result)

	p.debug("parsed gift intent",
		slog.String("type", string(result.Type)),
		slog.String("amount", result.Amount.String()),
		slog.String("event", result.EventName),
		slog.String("date", result.RecordDate),
		slog.String("contact", result.ContactName),
	)
	return result, nil
}

func (p *Parser) debug(msg string, attrs ...slog.Attr) {
	if p.logger == nil {
		return
	}
	p.logger.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
}
