package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/gift-ledger/pkg/storage"
)

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want json, csv or xlsx)", s)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return storage.ContentTypeCSV
	case FormatXLSX:
		return storage.ContentTypeXLSX
	default:
		return storage.ContentTypeJSON
	}
}

// Write writes rows in format f.
func Write(w io.Writer, f Format, rows []Row) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatXLSX:
		return WriteExcel(w, rows)
	case FormatJSON:
		if rows == nil {
			rows = []Row{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("failed to write json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

// Archiver stores every export in the owner's archive.
type Archiver struct {
	store   storage.Storage
	ownerID uuid.UUID
	now     func() time.Time
	logger  *slog.Logger
}

// NewArchiver creates an archiver writing to store under ownerID.
func NewArchiver(store storage.Storage, ownerID uuid.UUID, logger *slog.Logger) *Archiver {
	return &Archiver{store: store, ownerID: ownerID, now: time.Now, logger: logger}
}

// Archive uploads the rows in scope as one file. Rows of the other
// direction are dropped so the file name never lies about its content.
func (a *Archiver) Archive(ctx context.Context, rows []Row, scope Scope, f Format) (*storage.FileInfo, error) {
	rows = Select(rows, scope, "", "")

	var buf bytes.Buffer
	if err := Write(&buf, f, rows); err != nil {
		return nil, err
	}

	name := FileName(scope, a.now(), string(f))
	info, err := a.store.Upload(ctx, a.ownerID, name, f.ContentType(), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to archive export: %w", err)
	}

	a.logger.Info("export archived",
		slog.String("file_id", info.ID.String()),
		slog.String("name", info.Name),
		slog.Int("rows", len(rows)),
		slog.Int64("size", info.Size),
	)
	return info, nil
}

// History lists archived exports, oldest first.
func (a *Archiver) History(ctx context.Context) ([]*storage.FileInfo, error) {
	return a.store.List(ctx, a.ownerID)
}
