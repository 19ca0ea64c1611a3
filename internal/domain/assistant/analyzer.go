// Package assistant is the chat front-end over the intent parser. It asks an
// optional remote analyzer first and falls back to offline parsing.
package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/gift-ledger/internal/domain/intent"
)

// ErrAmountNotRecognized is returned when neither the remote analyzer nor the
// offline parser produced a record. Its message is shown to the user as is.
var ErrAmountNotRecognized = errors.New("未识别到金额，请补充说明（示例：随礼 800 元或收到回礼 800 元）")

// Op is the ledger operation an analysis asks for.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpList   Op = "list"
)

// Source says which analyzer produced a result.
type Source string

const (
	SourceRemote  Source = "remote"
	SourceOffline Source = "offline"
)

// Hints are passed to the remote analyzer to bias extraction.
type Hints struct {
	Contacts   []string `json:"contacts"`
	Categories []string `json:"categories"`
}

// Intent is an analyzed request. Remote results may carry any Op; offline
// results are always OpCreate.
type Intent struct {
	Op            Op              `json:"op"`
	Type          string          `json:"type,omitempty"`
	ContactName   string          `json:"contact_name,omitempty"`
	EventName     string          `json:"event_name,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	RecordDate    string          `json:"record_date,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CategoryName  string          `json:"category_name,omitempty"`
	RecordID      string          `json:"record_id,omitempty"`
	StartDate     string          `json:"startDate,omitempty"`
	EndDate       string          `json:"endDate,omitempty"`
}

// Analysis is the outcome of Analyze.
type Analysis struct {
	Intent  Intent
	Display string
	Source  Source
	// MatchedContact is the known contact closest to Intent.ContactName, if
	// any cleared the threshold.
	MatchedContact string
	// Parsed is set for offline results.
	Parsed *intent.ParsedIntent
}

// RemoteResponse is the envelope returned by a remote analyzer.
type RemoteResponse struct {
	OK      bool    `json:"ok"`
	Data    *Intent `json:"data,omitempty"`
	Display string  `json:"display,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// RemoteAnalyzer is an external extraction service.
type RemoteAnalyzer interface {
	Analyze(ctx context.Context, text string, hints Hints) (*RemoteResponse, error)
}

// Analyzer resolves chat messages into ledger intents.
type Analyzer struct {
	parser           *intent.Parser
	remote           RemoteAnalyzer
	metrics          *Metrics
	tracer           trace.Tracer
	logger           *slog.Logger
	contactThreshold int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithRemote enables the remote analyzer.
func WithRemote(r RemoteAnalyzer) Option {
	return func(a *Analyzer) { a.remote = r }
}

func WithMetrics(m *Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(a *Analyzer) { a.tracer = t }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// WithContactThreshold sets the minimum score (0-100) for MatchedContact.
func WithContactThreshold(score int) Option {
	return func(a *Analyzer) { a.contactThreshold = score }
}

// NewAnalyzer creates an analyzer over parser.
func NewAnalyzer(parser *intent.Parser, opts ...Option) *Analyzer {
	a := &Analyzer{
		parser:           parser,
		tracer:           otel.Tracer("github.com/FACorreiaa/gift-ledger/internal/domain/assistant"),
		logger:           slog.Default(),
		contactThreshold: DefaultContactThreshold,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze turns text into an Analysis. A usable remote answer wins; any
// remote failure falls through to the offline parser.
func (a *Analyzer) Analyze(ctx context.Context, text string, hints Hints) (*Analysis, error) {
	ctx, span := a.tracer.Start(ctx, "assistant.Analyze")
	defer span.End()

	start := time.Now()
	msg := strings.TrimSpace(text)
	span.SetAttributes(attribute.Int("message.runes", len([]rune(msg))))

	if msg == "" {
		a.metrics.observe(SourceOffline, outcomeRejected, time.Since(start))
		span.SetStatus(codes.Error, "empty message")
		return nil, ErrAmountNotRecognized
	}

	if a.remote != nil {
		if res, ok := a.analyzeRemote(ctx, msg, hints); ok {
			a.metrics.observe(SourceRemote, outcomeOK, time.Since(start))
			span.SetAttributes(attribute.String("analysis.source", string(SourceRemote)))
			return res, nil
		}
		a.metrics.observe(SourceRemote, outcomeFallback, time.Since(start))
	}

	parsed, err := a.parser.Parse(msg)
	if err != nil {
		a.metrics.observe(SourceOffline, outcomeRejected, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "no amount")
		return nil, ErrAmountNotRecognized
	}

	data := fromParsed(parsed)
	res := &Analysis{
		Intent:  data,
		Display: FormatDisplay(data),
		Source:  SourceOffline,
		Parsed:  parsed,
	}
	if parsed.ContactName != "" {
		if m := NewContactResolver(hints.Contacts).Resolve(parsed.ContactName, a.contactThreshold); m != nil {
			res.MatchedContact = m.Name
		}
	}

	a.metrics.observe(SourceOffline, outcomeOK, time.Since(start))
	span.SetAttributes(attribute.String("analysis.source", string(SourceOffline)))
	return res, nil
}

func (a *Analyzer) analyzeRemote(ctx context.Context, msg string, hints Hints) (*Analysis, bool) {
	resp, err := a.remote.Analyze(ctx, msg, hints)
	if err != nil {
		a.logger.Warn("remote analyzer failed, using offline parser", slog.Any("error", err))
		return nil, false
	}
	if resp == nil {
		return nil, false
	}
	if !resp.OK || resp.Data == nil {
		if resp.Error != "" {
			a.logger.Info("remote analyzer declined message", slog.String("reason", resp.Error))
		}
		return nil, false
	}

	display := resp.Display
	if display == "" && resp.Data.Op == OpCreate && resp.Data.Type != "" {
		display = FormatDisplay(*resp.Data)
	}
	return &Analysis{
		Intent:  *resp.Data,
		Display: display,
		Source:  SourceRemote,
	}, true
}

func fromParsed(p *intent.ParsedIntent) Intent {
	return Intent{
		Op:            OpCreate,
		Type:          string(p.Type),
		ContactName:   p.ContactName,
		EventName:     p.EventName,
		Amount:        p.Amount,
		RecordDate:    p.RecordDate,
		PaymentMethod: p.PaymentMethod,
		Notes:         p.Notes,
	}
}
