package batch

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

// ErrNoTextColumn is returned for CSV input without a "text" column.
var ErrNoTextColumn = errors.New(`csv input has no "text" column`)

// ReadLines reads one sentence per line. Blank lines and lines starting
// with # are skipped.
func ReadLines(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lines: %w", err)
	}
	return out, nil
}

type sentenceRow struct {
	Text string `csv:"text"`
}

// ReadCSV reads the "text" column of a CSV file. The header decides
// whether the column exists; blank cells are skipped.
func ReadCSV(r io.Reader) ([]string, error) {
	um, err := gocsv.NewUnmarshaller(csv.NewReader(r), sentenceRow{})
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(um.MismatchedStructFields) > 0 {
		return nil, ErrNoTextColumn
	}

	var out []string
	for {
		v, err := um.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		if s := strings.TrimSpace(v.(sentenceRow).Text); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// ReadExcel reads column A of the first sheet. A header cell "text" in A1
// is skipped.
func ReadExcel(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in workbook")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	var out []string
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell := strings.TrimSpace(row[0])
		if cell == "" || (i == 0 && strings.EqualFold(cell, "text")) {
			continue
		}
		out = append(out, cell)
	}
	return out, nil
}

// ReadFile picks a reader by file extension: .csv, .xlsx, anything else is
// read as lines.
func ReadFile(name string, r io.Reader) ([]string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return ReadCSV(r)
	case ".xlsx":
		return ReadExcel(r)
	default:
		return ReadLines(r)
	}
}
