package export

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/gift-ledger/pkg/storage"
)

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"json", "csv", "xlsx"} {
		f, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, Format(name), f)
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)

	assert.Equal(t, storage.ContentTypeCSV, FormatCSV.ContentType())
	assert.Equal(t, storage.ContentTypeXLSX, FormatXLSX.ContentType())
	assert.Equal(t, storage.ContentTypeJSON, FormatJSON.ContentType())
}

func TestParseScope(t *testing.T) {
	for _, name := range []string{"all", "given", "received"} {
		sc, err := ParseScope(name)
		require.NoError(t, err)
		assert.Equal(t, Scope(name), sc)
	}

	_, err := ParseScope("both")
	assert.Error(t, err)
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleRows()[:1]))

	assert.JSONEq(t, `[{"type":"送礼","contact":"张伟","event":"婚礼","amount":"800","date":"2024-06-10","payment":"红包","notes":"刚给同事随礼结婚"}]`, buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, FormatJSON, nil))
	var rows []Row
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	assert.Empty(t, rows)

	assert.Error(t, Write(&buf, Format("pdf"), nil))
}

func TestArchiver(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ownerID := uuid.New()
	a := NewArchiver(store, ownerID, slog.New(slog.NewTextHandler(io.Discard, nil)))
	a.now = func() time.Time { return time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	info, err := a.Archive(ctx, sampleRows(), ScopeAll, FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "礼簿记录_2024-06-10_全部.xlsx", info.Name)
	assert.Equal(t, storage.ContentTypeXLSX, info.ContentType)
	assert.Positive(t, info.Size)

	rc, _, err := store.Download(ctx, ownerID, info.ID)
	require.NoError(t, err)
	defer rc.Close()

	back, err := ReadExcel(rc)
	require.NoError(t, err)
	assert.Equal(t, sampleRows(), back)

	_, err = a.Archive(ctx, Select(sampleRows(), ScopeReceived, "", ""), ScopeReceived, FormatCSV)
	require.NoError(t, err)

	history, err := a.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestArchiver_FiltersByScope(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ownerID := uuid.New()
	a := NewArchiver(store, ownerID, slog.New(slog.NewTextHandler(io.Discard, nil)))
	a.now = func() time.Time { return time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	mixed := []Row{
		{Type: "送礼", Contact: "张伟", Event: "婚礼", Amount: "800", Date: "2024-06-10"},
		{Type: "收礼", Contact: "李娜", Event: "人情往来", Amount: "1200", Date: "2024-06-10"},
	}

	tests := []struct {
		scope    Scope
		wantName string
		want     []Row
	}{
		{ScopeGiven, "礼簿记录_2024-06-10_送礼.csv", mixed[:1]},
		{ScopeReceived, "礼簿记录_2024-06-10_收礼.csv", mixed[1:]},
		{ScopeAll, "礼簿记录_2024-06-10_全部.csv", mixed},
	}

	for _, tt := range tests {
		t.Run(string(tt.scope), func(t *testing.T) {
			info, err := a.Archive(ctx, mixed, tt.scope, FormatCSV)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, info.Name)

			rc, _, err := store.Download(ctx, ownerID, info.ID)
			require.NoError(t, err)
			defer rc.Close()

			back, err := ReadCSV(rc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, back)
		})
	}
}
