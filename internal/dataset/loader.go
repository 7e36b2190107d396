package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one data row keyed by header name. CSV cells are always strings;
// spreadsheet cells in serialColumns that hold numbers arrive as float64.
type Row map[string]any

var ErrUnsupportedFile = errors.New("unsupported file type")

// Columns whose numeric spreadsheet values are date serials.
var serialColumns = map[string]bool{"CallDateTime": true}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadRows reads the first sheet of an .xlsx/.xlsm workbook or a .csv file
// and returns its rows keyed by the header row.
func ReadRows(path string) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		defer f.Close()
		return ReadCSV(f)
	case ".xlsx", ".xlsm":
		return readWorkbook(path)
	}
	return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFile)
}

// ReadCSV reads header-keyed rows from r. Short rows leave missing columns
// absent; a leading UTF-8 BOM is ignored.
func ReadCSV(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	header := trimHeader(records[0])
	out := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row := make(Row, len(header))
		for i, h := range header {
			if h == "" || i >= len(rec) {
				continue
			}
			row[h] = rec[i]
		}
		out = append(out, row)
	}
	return out, nil
}

func readWorkbook(path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := trimHeader(rows[0])
	out := make([]Row, 0, len(rows)-1)
	for _, r := range rows[1:] {
		if blank(r) {
			continue
		}
		row := make(Row, len(header))
		for i, h := range header {
			if h == "" || i >= len(r) {
				continue
			}
			v := r[i]
			if serialColumns[h] {
				if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
					row[h] = n
					continue
				}
			}
			row[h] = v
		}
		out = append(out, row)
	}
	return out, nil
}

func trimHeader(h []string) []string {
	out := make([]string, len(h))
	for i, v := range h {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
