// Package export writes ledger lines as CSV or XLSX sheets and reads them
// back.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/gift-ledger/internal/domain/intent"
	"github.com/FACorreiaa/gift-ledger/internal/domain/ledger/repository"
)

// SheetName is the worksheet every XLSX export is written to.
const SheetName = "礼簿记录"

const (
	labelGiven    = "送礼"
	labelReceived = "收礼"

	unknownContact = "未知联系人"
)

// Row is one exported ledger line. Column headers come from the csv tags.
type Row struct {
	Type    string `csv:"类型" json:"type"`
	Contact string `csv:"联系人" json:"contact"`
	Event   string `csv:"事由" json:"event"`
	Amount  string `csv:"金额" json:"amount"`
	Date    string `csv:"日期" json:"date"`
	Payment string `csv:"支付方式" json:"payment,omitempty"`
	Notes   string `csv:"备注" json:"notes,omitempty"`
}

// Headers returns the column headers in sheet order.
func Headers() []string {
	return []string{"类型", "联系人", "事由", "金额", "日期", "支付方式", "备注"}
}

func (r Row) cells() []string {
	return []string{r.Type, r.Contact, r.Event, r.Amount, r.Date, r.Payment, r.Notes}
}

// FromIntent converts a freshly parsed sentence.
func FromIntent(p *intent.ParsedIntent) Row {
	return Row{
		Type:    typeLabel(string(p.Type)),
		Contact: contactLabel(p.ContactName),
		Event:   p.EventName,
		Amount:  p.Amount.Round(2).String(),
		Date:    p.RecordDate,
		Payment: p.PaymentMethod,
		Notes:   p.Notes,
	}
}

// FromRecord converts a stored record.
func FromRecord(r *repository.Record) Row {
	return Row{
		Type:    typeLabel(string(r.Type)),
		Contact: contactLabel(r.ContactName),
		Event:   r.EventName,
		Amount:  r.Amount().String(),
		Date:    r.EventDate.Format("2006-01-02"),
		Payment: r.PaymentMethod,
		Notes:   r.Notes,
	}
}

func typeLabel(t string) string {
	if t == string(intent.GiftReceived) {
		return labelReceived
	}
	return labelGiven
}

func contactLabel(name string) string {
	if name == "" {
		return unknownContact
	}
	return name
}

// Scope selects which records an export covers.
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeGiven    Scope = "given"
	ScopeReceived Scope = "received"
)

// ParseScope validates a scope name.
func ParseScope(s string) (Scope, error) {
	switch sc := Scope(s); sc {
	case ScopeAll, ScopeGiven, ScopeReceived:
		return sc, nil
	default:
		return "", fmt.Errorf("unknown export scope %q (want all, given or received)", s)
	}
}

// In reports whether r is in scope with a date in [from, to]. Empty bounds
// are open.
func (r Row) In(scope Scope, from, to string) bool {
	if scope == ScopeGiven && r.Type != labelGiven {
		return false
	}
	if scope == ScopeReceived && r.Type != labelReceived {
		return false
	}
	if from != "" && r.Date < from {
		return false
	}
	return to == "" || r.Date <= to
}

// Select keeps the rows In scope and [from, to].
func Select(rows []Row, scope Scope, from, to string) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.In(scope, from, to) {
			out = append(out, r)
		}
	}
	return out
}

// FileName names an export, e.g. 礼簿记录_2024-06-10_全部.xlsx.
func FileName(scope Scope, day time.Time, ext string) string {
	label := "全部"
	switch scope {
	case ScopeGiven:
		label = labelGiven
	case ScopeReceived:
		label = labelReceived
	}
	return fmt.Sprintf("%s_%s_%s.%s", SheetName, day.Format("2006-01-02"), label, strings.TrimPrefix(ext, "."))
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// ReadCSV reads rows written by WriteCSV.
func ReadCSV(r io.Reader) ([]Row, error) {
	var rows []Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

var colWidths = []float64{8, 12, 15, 10, 12, 10, 20}

// WriteExcel writes rows to a single-sheet workbook. Amounts are numeric
// cells.
func WriteExcel(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := make([]interface{}, 0, len(Headers()))
	for _, h := range Headers() {
		headers = append(headers, h)
	}
	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, width := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, r := range rows {
		values := make([]interface{}, 0, len(colWidths))
		for j, v := range r.cells() {
			if j == 3 {
				if d, err := decimal.NewFromString(v); err == nil {
					values = append(values, d.InexactFloat64())
					continue
				}
			}
			values = append(values, v)
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ReadExcel reads rows from the 礼簿记录 sheet (or the first sheet).
func ReadExcel(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := SheetName
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetName(0)
	}

	grid, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(grid) == 0 {
		return nil, nil
	}

	rows := make([]Row, 0, len(grid)-1)
	for _, line := range grid[1:] {
		cells := make([]string, len(colWidths))
		copy(cells, line)
		rows = append(rows, Row{
			Type:    cells[0],
			Contact: cells[1],
			Event:   cells[2],
			Amount:  cells[3],
			Date:    cells[4],
			Payment: cells[5],
			Notes:   cells[6],
		})
	}
	return rows, nil
}
