// Package service turns parsed gift intents into stored ledger records.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/gift-ledger/internal/domain/intent"
	"github.com/FACorreiaa/gift-ledger/internal/domain/ledger/repository"
	"github.com/FACorreiaa/gift-ledger/pkg/money"
)

// Service provides ledger business logic
type Service struct {
	repo   repository.RecordRepository
	logger *slog.Logger
}

// NewService creates a new ledger service
func NewService(repo repository.RecordRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// SaveIntent persists p for ownerID. The counterparty, when named, is
// looked up or created first; source is the sentence p was parsed from.
func (s *Service) SaveIntent(ctx context.Context, ownerID uuid.UUID, p *intent.ParsedIntent, source string) (*repository.Record, error) {
	if p == nil {
		return nil, fmt.Errorf("nothing to save")
	}

	eventDate, err := time.Parse("2006-01-02", p.RecordDate)
	if err != nil {
		return nil, fmt.Errorf("invalid record date %q: %w", p.RecordDate, err)
	}

	amount, err := money.Yuan(p.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	var contactID *uuid.UUID
	if p.ContactName != "" {
		contact, err := s.repo.FindOrCreateContact(ctx, ownerID, p.ContactName)
		if err != nil {
			return nil, err
		}
		contactID = &contact.ID
	}

	rec, err := s.repo.CreateRecord(ctx, ownerID, repository.NewRecord{
		ContactID:     contactID,
		Type:          recordType(p.Type),
		EventName:     p.EventName,
		EventDate:     eventDate,
		AmountMinor:   amount.Amount(),
		CurrencyCode:  amount.Currency(),
		PaymentMethod: p.PaymentMethod,
		Notes:         p.Notes,
		SourceText:    source,
	})
	if err != nil {
		return nil, err
	}
	rec.ContactName = p.ContactName

	s.logger.Info("ledger record saved",
		slog.String("record_id", rec.ID.String()),
		slog.String("type", string(rec.Type)),
		slog.String("amount", amount.Display()),
	)
	return rec, nil
}

// ContactNames lists the owner's known contact names, used as hints for the
// remote analyzer and for fuzzy contact matching.
func (s *Service) ContactNames(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	contacts, err := s.repo.ListContacts(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(contacts))
	for _, c := range contacts {
		names = append(names, c.Name)
	}
	return names, nil
}

// Records lists the owner's stored records matching filter, newest first.
func (s *Service) Records(ctx context.Context, ownerID uuid.UUID, filter repository.Filter) ([]*repository.Record, error) {
	recs, err := s.repo.ListRecords(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return recs, nil
}

// YearStats returns the totals of the calendar year containing day.
func (s *Service) YearStats(ctx context.Context, ownerID uuid.UUID, day time.Time) (*repository.Stats, error) {
	from := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, day.Location())
	to := time.Date(day.Year(), time.December, 31, 0, 0, 0, 0, day.Location())
	return s.repo.Stats(ctx, ownerID, from, to)
}

func recordType(d intent.Direction) repository.RecordType {
	if d == intent.GiftReceived {
		return repository.RecordReceived
	}
	return repository.RecordGiven
}
