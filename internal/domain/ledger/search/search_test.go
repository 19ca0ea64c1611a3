package search

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/gift-ledger/internal/domain/intent"
	"github.com/FACorreiaa/gift-ledger/internal/domain/ledger/repository"
)

var samples = []string{
	"刚给同事张伟随礼800结婚红包",
	"收到李娜回礼1200",
	"上周六给王哥孩子满月随份子两千五",
	"国庆给表弟礼金3k 微信转账",
	"昨天参加老李乔迁，随礼一千二",
	"中秋收阿姨回礼500红包",
}

func newSampleIndex(t *testing.T) *Index {
	t.Helper()

	ix, err := NewIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })

	parser := intent.NewParser(intent.WithClock(intent.FixedClock(time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC))))
	docs := make([]Document, 0, len(samples))
	for i, s := range samples {
		p, err := parser.Parse(s)
		require.NoError(t, err)
		docs = append(docs, DocumentFromIntent(fmt.Sprintf("s%d", i), s, p))
	}
	require.NoError(t, ix.Add(docs...))
	return ix
}

func ids(hits []Hit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.Document.ID)
	}
	return out
}

func TestIndex_Count(t *testing.T) {
	ix := newSampleIndex(t)
	n, err := ix.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(6), n)
}

func TestIndex_Search(t *testing.T) {
	ix := newSampleIndex(t)

	hits, err := ix.Search("回礼", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s5"}, ids(hits))

	hits, err = ix.Search("乔迁", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "s4", hits[0].Document.ID)
	assert.Equal(t, "乔迁宴", hits[0].Document.Event)
	assert.Equal(t, 1200.0, hits[0].Document.Amount)
	assert.Equal(t, "2024-06-09", hits[0].Document.Date)
}

func TestIndex_ByContactAndEvent(t *testing.T) {
	ix := newSampleIndex(t)

	hits, err := ix.ByContact("张伟", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"s0"}, ids(hits))

	hits, err = ix.ByContact("张", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = ix.ByEvent("节日红包", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s3", "s5"}, ids(hits))
}

func TestIndex_AmountBetween(t *testing.T) {
	ix := newSampleIndex(t)

	hits, err := ix.AmountBetween(1000, 2500, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2", "s4"}, ids(hits))
}

func TestIndex_ReplaceByID(t *testing.T) {
	ix := newSampleIndex(t)

	rec := &repository.Record{
		ID:           uuid.New(),
		ContactName:  "李娜",
		Type:         repository.RecordReceived,
		EventName:    "寿宴",
		EventDate:    time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
		AmountMinor:  66600,
		CurrencyCode: "CNY",
		SourceText:   "收到李娜过寿回礼666",
	}
	doc := DocumentFromRecord(rec)
	assert.Equal(t, 666.0, doc.Amount)
	assert.Equal(t, "2024-05-01", doc.Date)

	require.NoError(t, ix.Add(doc))
	require.NoError(t, ix.Add(doc))

	n, err := ix.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)

	hits, err := ix.ByContact("李娜", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", rec.ID.String()}, ids(hits))
}

func TestJoinText(t *testing.T) {
	assert.Equal(t, "a", joinText("a", ""))
	assert.Equal(t, "a", joinText("a", "a"))
	assert.Equal(t, "a b", joinText("a", "b"))
}
