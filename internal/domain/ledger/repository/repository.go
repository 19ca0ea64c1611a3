// Package repository provides database operations for the gift ledger.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/gift-ledger/pkg/money"
)

// ErrNotFound is returned when a record or contact does not exist for the
// owner.
var ErrNotFound = errors.New("not found")

// RecordType is the money direction of a record.
type RecordType string

const (
	RecordGiven    RecordType = "gift_given"
	RecordReceived RecordType = "gift_received"
)

// Contact is a person the owner exchanges gifts with.
type Contact struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	Name         string
	Phone        *string
	Relationship *string
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewRecord carries the fields of a record insert.
type NewRecord struct {
	ContactID     *uuid.UUID
	Type          RecordType
	EventName     string
	EventDate     time.Time
	AmountMinor   int64
	CurrencyCode  string
	PaymentMethod string
	Notes         string
	SourceText    string
}

// Record is a stored ledger line.
type Record struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	ContactID     *uuid.UUID
	ContactName   string
	Type          RecordType
	EventName     string
	EventDate     time.Time
	AmountMinor   int64
	CurrencyCode  string
	PaymentMethod string
	Notes         string
	SourceText    string
	CreatedAt     time.Time
}

// Amount returns the record amount as Money.
func (r *Record) Amount() *money.Money {
	return money.New(r.AmountMinor, r.CurrencyCode)
}

// Filter narrows ListRecords. Zero values mean no constraint.
type Filter struct {
	Type        RecordType
	From        *time.Time
	To          *time.Time
	ContactName string
	Limit       int
}

// Stats are the totals of a date range.
type Stats struct {
	GivenMinor    int64
	ReceivedMinor int64
	Count         int64
	CurrencyCode  string
}

// Given returns the total given as Money.
func (s Stats) Given() *money.Money { return money.New(s.GivenMinor, s.CurrencyCode) }

// Received returns the total received as Money.
func (s Stats) Received() *money.Money { return money.New(s.ReceivedMinor, s.CurrencyCode) }

// Balance is received minus given; negative means more went out.
func (s Stats) Balance() (*money.Money, error) {
	balance, err := s.Received().Subtract(s.Given())
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance: %w", err)
	}
	return balance, nil
}

// RecordRepository defines the interface for ledger persistence operations
type RecordRepository interface {
	FindOrCreateContact(ctx context.Context, ownerID uuid.UUID, name string) (*Contact, error)
	ListContacts(ctx context.Context, ownerID uuid.UUID) ([]*Contact, error)

	CreateRecord(ctx context.Context, ownerID uuid.UUID, rec NewRecord) (*Record, error)
	GetRecord(ctx context.Context, ownerID, id uuid.UUID) (*Record, error)
	DeleteRecord(ctx context.Context, ownerID, id uuid.UUID) error
	ListRecords(ctx context.Context, ownerID uuid.UUID, filter Filter) ([]*Record, error)

	Stats(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (*Stats, error)
}

// DBTX is the subset of *pgxpool.Pool the repository needs; pgxmock pools
// satisfy it too.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
