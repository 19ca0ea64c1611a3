package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/gift-ledger/internal/domain/intent"
	"github.com/FACorreiaa/gift-ledger/internal/domain/ledger/repository"
	"github.com/FACorreiaa/gift-ledger/pkg/money"
)

// MockRecordRepository records calls in memory
type MockRecordRepository struct {
	contacts   map[string]*repository.Contact
	created    []repository.NewRecord
	records    []*repository.Record
	filter     repository.Filter
	listErr    error
	statsFrom  time.Time
	statsTo    time.Time
	stats      *repository.Stats
	contactErr error
	createErr  error
}

func newMockRepo() *MockRecordRepository {
	return &MockRecordRepository{contacts: map[string]*repository.Contact{}}
}

func (m *MockRecordRepository) FindOrCreateContact(ctx context.Context, ownerID uuid.UUID, name string) (*repository.Contact, error) {
	if m.contactErr != nil {
		return nil, m.contactErr
	}
	if c, ok := m.contacts[name]; ok {
		return c, nil
	}
	c := &repository.Contact{ID: uuid.New(), OwnerID: ownerID, Name: name}
	m.contacts[name] = c
	return c, nil
}

func (m *MockRecordRepository) ListContacts(ctx context.Context, ownerID uuid.UUID) ([]*repository.Contact, error) {
	var out []*repository.Contact
	for _, c := range m.contacts {
		out = append(out, c)
	}
	return out, nil
}

func (m *MockRecordRepository) CreateRecord(ctx context.Context, ownerID uuid.UUID, rec repository.NewRecord) (*repository.Record, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, rec)
	stored := &repository.Record{
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
	m.records = append(m.records, stored)
	return stored, nil
}

func (m *MockRecordRepository) GetRecord(ctx context.Context, ownerID, id uuid.UUID) (*repository.Record, error) {
	return nil, repository.ErrNotFound
}

func (m *MockRecordRepository) DeleteRecord(ctx context.Context, ownerID, id uuid.UUID) error {
	return repository.ErrNotFound
}

func (m *MockRecordRepository) ListRecords(ctx context.Context, ownerID uuid.UUID, filter repository.Filter) ([]*repository.Record, error) {
	m.filter = filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*repository.Record
	for _, r := range m.records {
		if filter.Type != "" && r.Type != filter.Type {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *MockRecordRepository) Stats(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (*repository.Stats, error) {
	m.statsFrom, m.statsTo = from, to
	return m.stats, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSaveIntent(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, discardLogger())
	ownerID := uuid.New()

	p := &intent.ParsedIntent{
		Type:          intent.GiftGiven,
		ContactName:   "张伟",
		EventName:     "婚礼",
		Amount:        decimal.NewFromInt(800),
		RecordDate:    "2024-06-10",
		PaymentMethod: "红包",
		Notes:         "刚给同事随礼结婚",
	}

	rec, err := svc.SaveIntent(context.Background(), ownerID, p, "刚给同事张伟随礼800结婚红包")
	require.NoError(t, err)
	require.Len(t, repo.created, 1)

	saved := repo.created[0]
	assert.Equal(t, repository.RecordGiven, saved.Type)
	assert.Equal(t, int64(80000), saved.AmountMinor)
	assert.Equal(t, "CNY", saved.CurrencyCode)
	assert.Equal(t, time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC), saved.EventDate)
	assert.Equal(t, "刚给同事张伟随礼800结婚红包", saved.SourceText)
	require.NotNil(t, saved.ContactID)
	assert.Equal(t, repo.contacts["张伟"].ID, *saved.ContactID)

	assert.Equal(t, "张伟", rec.ContactName)
	assert.Equal(t, "800", rec.Amount().String())
}

func TestSaveIntent_NoContact(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, discardLogger())

	p := &intent.ParsedIntent{
		Type:       intent.GiftReceived,
		EventName:  "节日红包",
		Amount:     decimal.NewFromInt(500),
		RecordDate: "2024-06-10",
	}

	_, err := svc.SaveIntent(context.Background(), uuid.New(), p, "中秋收阿姨回礼500红包")
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Nil(t, repo.created[0].ContactID)
	assert.Equal(t, repository.RecordReceived, repo.created[0].Type)
	assert.Empty(t, repo.contacts)
}

func TestSaveIntent_Errors(t *testing.T) {
	ctx := context.Background()
	valid := func() *intent.ParsedIntent {
		return &intent.ParsedIntent{
			Type:        intent.GiftGiven,
			ContactName: "李娜",
			Amount:      decimal.NewFromInt(1200),
			RecordDate:  "2024-06-10",
		}
	}

	t.Run("nil intent", func(t *testing.T) {
		svc := NewService(newMockRepo(), discardLogger())
		_, err := svc.SaveIntent(ctx, uuid.New(), nil, "")
		assert.Error(t, err)
	})

	t.Run("bad date", func(t *testing.T) {
		svc := NewService(newMockRepo(), discardLogger())
		p := valid()
		p.RecordDate = "June 10"
		_, err := svc.SaveIntent(ctx, uuid.New(), p, "")
		assert.Error(t, err)
	})

	t.Run("contact failure", func(t *testing.T) {
		repo := newMockRepo()
		repo.contactErr = errors.New("boom")
		svc := NewService(repo, discardLogger())
		_, err := svc.SaveIntent(ctx, uuid.New(), valid(), "")
		assert.ErrorIs(t, err, repo.contactErr)
		assert.Empty(t, repo.created)
	})

	t.Run("amount overflows fen", func(t *testing.T) {
		for _, amount := range []string{"99999999999999999999999", "184467440737095516"} {
			repo := newMockRepo()
			svc := NewService(repo, discardLogger())
			p := valid()
			p.Amount = decimal.RequireFromString(amount)

			_, err := svc.SaveIntent(ctx, uuid.New(), p, "随礼"+amount)
			require.Error(t, err)
			assert.ErrorIs(t, err, money.ErrOutOfRange)
			assert.Empty(t, repo.created)
			assert.Empty(t, repo.contacts)
		}
	})

	t.Run("create failure", func(t *testing.T) {
		repo := newMockRepo()
		repo.createErr = errors.New("insert failed")
		svc := NewService(repo, discardLogger())
		_, err := svc.SaveIntent(ctx, uuid.New(), valid(), "")
		assert.ErrorIs(t, err, repo.createErr)
	})
}

func TestContactNames(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, discardLogger())
	ownerID := uuid.New()

	_, _ = repo.FindOrCreateContact(context.Background(), ownerID, "张伟")

	names, err := svc.ContactNames(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Equal(t, []string{"张伟"}, names)
}

func TestYearStats(t *testing.T) {
	repo := newMockRepo()
	repo.stats = &repository.Stats{GivenMinor: 100, CurrencyCode: "CNY"}
	svc := NewService(repo, discardLogger())

	day := time.Date(2024, time.June, 10, 9, 30, 0, 0, time.UTC)
	stats, err := svc.YearStats(context.Background(), uuid.New(), day)
	require.NoError(t, err)
	assert.Equal(t, int64(100), stats.GivenMinor)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), repo.statsFrom)
	assert.Equal(t, time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), repo.statsTo)
}

func TestRecords(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, discardLogger())
	ownerID := uuid.New()
	ctx := context.Background()

	given := &intent.ParsedIntent{Type: intent.GiftGiven, Amount: decimal.NewFromInt(800), RecordDate: "2024-06-10", EventName: "婚礼"}
	received := &intent.ParsedIntent{Type: intent.GiftReceived, Amount: decimal.NewFromInt(2000), RecordDate: "2024-06-09", EventName: "满月酒"}
	_, err := svc.SaveIntent(ctx, ownerID, given, "随礼800")
	require.NoError(t, err)
	_, err = svc.SaveIntent(ctx, ownerID, received, "收到2000")
	require.NoError(t, err)

	all, err := svc.Records(ctx, ownerID, repository.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	in, err := svc.Records(ctx, ownerID, repository.Filter{Type: repository.RecordReceived, Limit: 10})
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, int64(200000), in[0].AmountMinor)
	assert.Equal(t, 10, repo.filter.Limit)

	repo.listErr = errors.New("connection reset")
	_, err = svc.Records(ctx, ownerID, repository.Filter{})
	assert.ErrorIs(t, err, repo.listErr)
}
