package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/FACorreiaa/gift-ledger/pkg/money"
)

// PostgresRecordRepository implements RecordRepository using PostgreSQL
type PostgresRecordRepository struct {
	db DBTX
}

// NewPostgresRecordRepository creates a new PostgreSQL ledger repository
func NewPostgresRecordRepository(db DBTX) *PostgresRecordRepository {
	return &PostgresRecordRepository{db: db}
}

const contactColumns = `id, owner_id, name, phone, relationship, notes, created_at, updated_at`

// FindOrCreateContact returns the owner's contact called name, creating it
// on first use.
func (r *PostgresRecordRepository) FindOrCreateContact(ctx context.Context, ownerID uuid.UUID, name string) (*Contact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("contact name is required")
	}

	query := `
		INSERT INTO contacts (id, owner_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id, name) DO UPDATE SET updated_at = now()
		RETURNING ` + contactColumns

	c := &Contact{}
	err := r.db.QueryRow(ctx, query, uuid.New(), ownerID, name).Scan(
		&c.ID,
		&c.OwnerID,
		&c.Name,
		&c.Phone,
		&c.Relationship,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find or create contact: %w", err)
	}
	return c, nil
}

// ListContacts returns the owner's contacts by name.
func (r *PostgresRecordRepository) ListContacts(ctx context.Context, ownerID uuid.UUID) ([]*Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE owner_id = $1 ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*Contact
	for rows.Next() {
		c := &Contact{}
		if err := rows.Scan(
			&c.ID,
			&c.OwnerID,
			&c.Name,
			&c.Phone,
			&c.Relationship,
			&c.Notes,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}
	return contacts, nil
}

// CreateRecord inserts a ledger line.
func (r *PostgresRecordRepository) CreateRecord(ctx context.Context, ownerID uuid.UUID, rec NewRecord) (*Record, error) {
	if rec.AmountMinor <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", rec.AmountMinor)
	}
	if rec.Type != RecordGiven && rec.Type != RecordReceived {
		return nil, fmt.Errorf("unknown record type %q", rec.Type)
	}
	if rec.CurrencyCode == "" {
		rec.CurrencyCode = money.DefaultCurrency
	}

	query := `
		INSERT INTO records (id, owner_id, contact_id, type, event_name, event_date, amount_minor, currency_code, payment_method, notes, source_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`

	out := &Record{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		ContactID:     rec.ContactID,
		Type:          rec.Type,
		EventName:     rec.EventName,
		EventDate:     rec.EventDate,
		AmountMinor:   rec.AmountMinor,
		CurrencyCode:  rec.CurrencyCode,
		PaymentMethod: rec.PaymentMethod,
		Notes:         rec.Notes,
		SourceText:    rec.SourceText,
	}

	err := r.db.QueryRow(ctx, query,
		out.ID,
		out.OwnerID,
		out.ContactID,
		string(out.Type),
		out.EventName,
		out.EventDate,
		out.AmountMinor,
		out.CurrencyCode,
		out.PaymentMethod,
		out.Notes,
		out.SourceText,
	).Scan(&out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}
	return out, nil
}

const recordSelect = `
		SELECT r.id, r.owner_id, r.contact_id, COALESCE(c.name, ''), r.type, r.event_name, r.event_date,
		       r.amount_minor, r.currency_code, r.payment_method, r.notes, r.source_text, r.created_at
		FROM records r
		LEFT JOIN contacts c ON c.id = r.contact_id`

func scanRecord(row pgx.Row) (*Record, error) {
	rec := &Record{}
	var amount money.Money
	err := row.Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.ContactID,
		&rec.ContactName,
		&rec.Type,
		&rec.EventName,
		&rec.EventDate,
		&amount,
		&rec.CurrencyCode,
		&rec.PaymentMethod,
		&rec.Notes,
		&rec.SourceText,
		&rec.CreatedAt,
	)
	rec.AmountMinor = amount.Amount()
	return rec, err
}

// GetRecord retrieves a record by ID
func (r *PostgresRecordRepository) GetRecord(ctx context.Context, ownerID, id uuid.UUID) (*Record, error) {
	query := recordSelect + `
		WHERE r.owner_id = $1 AND r.id = $2`

	rec, err := scanRecord(r.db.QueryRow(ctx, query, ownerID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

// DeleteRecord removes a record
func (r *PostgresRecordRepository) DeleteRecord(ctx context.Context, ownerID, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM records WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRecords returns the owner's records, newest event first.
func (r *PostgresRecordRepository) ListRecords(ctx context.Context, ownerID uuid.UUID, filter Filter) ([]*Record, error) {
	query := recordSelect + `
		WHERE r.owner_id = $1`
	args := []interface{}{ownerID}

	if filter.Type != "" {
		args = append(args, string(filter.Type))
		query += fmt.Sprintf(` AND r.type = $%d`, len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(` AND r.event_date >= $%d`, len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(` AND r.event_date <= $%d`, len(args))
	}
	if filter.ContactName != "" {
		args = append(args, filter.ContactName)
		query += fmt.Sprintf(` AND c.name = $%d`, len(args))
	}
	query += ` ORDER BY r.event_date DESC, r.created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}

// Stats sums given and received amounts with event dates in [from, to].
func (r *PostgresRecordRepository) Stats(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (*Stats, error) {
	query := `
		SELECT
			COALESCE(SUM(amount_minor) FILTER (WHERE type = 'gift_given'), 0),
			COALESCE(SUM(amount_minor) FILTER (WHERE type = 'gift_received'), 0),
			COUNT(*)
		FROM records
		WHERE owner_id = $1 AND event_date BETWEEN $2 AND $3`

	s := &Stats{CurrencyCode: money.DefaultCurrency}
	err := r.db.QueryRow(ctx, query, ownerID, from, to).Scan(&s.GivenMinor, &s.ReceivedMinor, &s.Count)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return s, nil
}

var _ RecordRepository = (*PostgresRecordRepository)(nil)
