package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"empleoformal/internal/logger"
	"empleoformal/internal/models"
)

var (
	// ErrEmpty is returned when a source has no header or no data rows
	ErrEmpty = errors.New("dataset is empty")
	// ErrMissingColumn is returned when a required header column is absent
	ErrMissingColumn = errors.New("missing required column")
)

const utf8BOM = "\ufeff"

// Format is the on-disk format of a data source
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the format from the source extension; anything but .xlsx is CSV
func DetectFormat(source string) Format {
	// strip query strings of http sources
	if i := strings.IndexAny(source, "?#"); i >= 0 {
		source = source[:i]
	}
	if strings.EqualFold(path.Ext(source), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// ParseError locates a bad cell. Row is the 1-based line of the source, header included.
type ParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d, column %q: invalid value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Fetcher returns the raw bytes of a source
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// Loader fetches and parses data sources into Datasets
type Loader struct {
	fetcher   Fetcher
	delimiter rune
	log       *logger.Logger
}

// NewLoader creates a loader; delimiter 0 means comma
func NewLoader(fetcher Fetcher, delimiter rune) *Loader {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Loader{
		fetcher:   fetcher,
		delimiter: delimiter,
		log:       logger.Component("dataset"),
	}
}

// Load fetches source and parses it
func (l *Loader) Load(ctx context.Context, source string) (*models.Dataset, error) {
	start := time.Now()

	data, err := l.fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", source, err)
	}

	ds, err := Parse(source, data, l.delimiter)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", source, err)
	}

	l.log.Info("Dataset loaded", logger.Fields{
		"source":      source,
		"rows":        ds.Len(),
		"departments": len(ds.Departments()),
		"categories":  len(ds.Categories()),
		"duration":    time.Since(start).String(),
	})
	return ds, nil
}

// Parse decodes data according to the format of source
func Parse(source string, data []byte, delimiter rune) (*models.Dataset, error) {
	var (
		records []models.Record
		err     error
	)
	switch DetectFormat(source) {
	case FormatXLSX:
		records, err = ParseXLSX(bytes.NewReader(data))
	default:
		records, err = ParseCSV(bytes.NewReader(data), delimiter)
	}
	if err != nil {
		return nil, err
	}
	return models.NewDataset(source, records), nil
}

// ParseCSV reads records from a delimited stream
func ParseCSV(r io.Reader, delimiter rune) ([]models.Record, error) {
	rows, err := readCSV(r, delimiter)
	if err != nil {
		return nil, err
	}
	return buildRecords(rows)
}

// ParseXLSX reads records from the first sheet of a workbook
func ParseXLSX(r io.Reader) ([]models.Record, error) {
	rows, err := readXLSX(r)
	if err != nil {
		return nil, err
	}
	return buildRecords(rows)
}

type row struct {
	line  int
	cells []string
}

func readCSV(r io.Reader, delimiter rune) ([]row, error) {
	if delimiter == 0 {
		delimiter = ','
	}
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []row
	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, row{line: line, cells: cells})
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([]row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmpty
	}

	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	rows := make([]row, 0, len(cells))
	for i, c := range cells {
		if isBlank(c) {
			continue
		}
		rows = append(rows, row{line: i + 1, cells: c})
	}
	return rows, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// columnIndex maps each required column to its position in the header
func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range models.RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return index, nil
}

func buildRecords(rows []row) ([]models.Record, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrEmpty)
	}

	index, err := columnIndex(rows[0].cells)
	if err != nil {
		return nil, err
	}
	if len(rows) == 1 {
		return nil, fmt.Errorf("%w: header only", ErrEmpty)
	}

	records := make([]models.Record, 0, len(rows)-1)
	for _, r := range rows[1:] {
		rec, err := parseRow(r, index)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(r row, index map[string]int) (models.Record, error) {
	cell := func(col string) string {
		i := index[col]
		if i >= len(r.cells) {
			return ""
		}
		return strings.TrimSpace(r.cells[i])
	}
	text := func(col string) (string, error) {
		v := cell(col)
		if v == "" {
			return "", &ParseError{Row: r.line, Column: col, Value: v, Err: errors.New("empty value")}
		}
		return v, nil
	}
	number := func(col string) (float64, error) {
		v := cell(col)
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, &ParseError{Row: r.line, Column: col, Value: v, Err: errors.New("not a number")}
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, &ParseError{Row: r.line, Column: col, Value: v, Err: errors.New("not a finite number")}
		}
		return f, nil
	}

	var (
		rec models.Record
		err error
	)
	if rec.Department, err = text(models.ColumnDepartment); err != nil {
		return rec, err
	}
	if rec.Category, err = text(models.ColumnCategory); err != nil {
		return rec, err
	}
	if rec.Value, err = number(models.ColumnValue); err != nil {
		return rec, err
	}
	if rec.Latitude, err = number(models.ColumnLatitude); err != nil {
		return rec, err
	}
	if rec.Longitude, err = number(models.ColumnLongitude); err != nil {
		return rec, err
	}
	return rec, nil
}
