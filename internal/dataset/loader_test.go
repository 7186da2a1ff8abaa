package dataset

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"empleoformal/internal/models"
)

const validCSV = `Departamento,Categoría,Valor,Latitud,Longitud
Antioquia,Industria,10,6.25,-75.56
Antioquia,Comercio,20,6.25,-75.56
Bogotá,Industria,5,4.71,-74.07
`

type stubFetcher struct {
	data []byte
	err  error
	got  string
}

func (s *stubFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	s.got = source
	return s.data, s.err
}

func TestParseCSV(t *testing.T) {
	records, err := ParseCSV(strings.NewReader(validCSV), ',')
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	want := models.Record{Department: "Bogotá", Category: "Industria", Value: 5, Latitude: 4.71, Longitude: -74.07}
	if records[2] != want {
		t.Errorf("records[2] = %+v, want %+v", records[2], want)
	}
}

func TestParseCSVHeaderVariants(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		delimiter rune
	}{
		{
			name:      "byte order mark",
			input:     "\ufeffDepartamento,Categoría,Valor,Latitud,Longitud\nMeta,Agro,3,4.1,-73.6\n",
			delimiter: ',',
		},
		{
			name:      "reordered and extra columns",
			input:     "Año,Valor,Longitud,Latitud,Categoría,Departamento\n2023,3,-73.6,4.1,Agro,Meta\n",
			delimiter: ',',
		},
		{
			name:      "semicolon delimiter",
			input:     "Departamento;Categoría;Valor;Latitud;Longitud\nMeta;Agro;3;4.1;-73.6\n",
			delimiter: ';',
		},
		{
			name:      "padded cells",
			input:     "Departamento, Categoría, Valor, Latitud, Longitud\nMeta, Agro, 3 , 4.1, -73.6\n",
			delimiter: ',',
		},
	}

	want := models.Record{Department: "Meta", Category: "Agro", Value: 3, Latitude: 4.1, Longitude: -73.6}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ParseCSV(strings.NewReader(tt.input), tt.delimiter)
			if err != nil {
				t.Fatalf("ParseCSV() error = %v", err)
			}
			if len(records) != 1 || records[0] != want {
				t.Errorf("ParseCSV() = %+v, want [%+v]", records, want)
			}
		})
	}
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantIs     error
		wantRow    int
		wantColumn string
	}{
		{
			name:   "empty input",
			input:  "",
			wantIs: ErrEmpty,
		},
		{
			name:   "header only",
			input:  "Departamento,Categoría,Valor,Latitud,Longitud\n",
			wantIs: ErrEmpty,
		},
		{
			name:   "missing column",
			input:  "Departamento,Categoria,Valor,Latitud,Longitud\nMeta,Agro,3,4.1,-73.6\n",
			wantIs: ErrMissingColumn,
		},
		{
			name:       "non numeric value",
			input:      "Departamento,Categoría,Valor,Latitud,Longitud\nMeta,Agro,3,4.1,-73.6\nMeta,Agro,tres,4.1,-73.6\n",
			wantRow:    3,
			wantColumn: models.ColumnValue,
		},
		{
			name:       "empty latitude",
			input:      "Departamento,Categoría,Valor,Latitud,Longitud\nMeta,Agro,3,,-73.6\n",
			wantRow:    2,
			wantColumn: models.ColumnLatitude,
		},
		{
			name:       "short row",
			input:      "Departamento,Categoría,Valor,Latitud,Longitud\nMeta,Agro,3,4.1\n",
			wantRow:    2,
			wantColumn: models.ColumnLongitude,
		},
		{
			name:       "empty department",
			input:      "Departamento,Categoría,Valor,Latitud,Longitud\n,Agro,3,4.1,-73.6\n",
			wantRow:    2,
			wantColumn: models.ColumnDepartment,
		},
		{
			name:       "not finite",
			input:      "Departamento,Categoría,Valor,Latitud,Longitud\nMeta,Agro,NaN,4.1,-73.6\n",
			wantRow:    2,
			wantColumn: models.ColumnValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input), ',')
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("Expected errors.Is(%v), got %v", tt.wantIs, err)
			}
			if tt.wantColumn != "" {
				var perr *ParseError
				if !errors.As(err, &perr) {
					t.Fatalf("Expected *ParseError, got %T: %v", err, err)
				}
				if perr.Row != tt.wantRow || perr.Column != tt.wantColumn {
					t.Errorf("ParseError at row %d column %q, want row %d column %q", perr.Row, perr.Column, tt.wantRow, tt.wantColumn)
				}
			}
		})
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"Departamento", "Categoría", "Valor", "Latitud", "Longitud"},
		{"Antioquia", "Industria", 10, 6.25, -75.56},
		{},
		{"Bogotá", "Comercio", 5.5, 4.71, -74.07},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		values := r
		if err := f.SetSheetRow("Sheet1", cell, &values); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	records, err := ParseXLSX(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ParseXLSX() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records (blank row skipped), got %d", len(records))
	}
	if records[1].Department != "Bogotá" || records[1].Value != 5.5 {
		t.Errorf("records[1] = %+v", records[1])
	}

	if _, err := ParseXLSX(strings.NewReader("not a zip")); err == nil {
		t.Error("Expected error for invalid workbook")
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		source string
		want   Format
	}{
		{"empleo_formal.csv", FormatCSV},
		{"data/EMPLEO.XLSX", FormatXLSX},
		{"gs://bucket/empleo.xlsx", FormatXLSX},
		{"https://example.com/empleo.xlsx?alt=media", FormatXLSX},
		{"https://example.com/export", FormatCSV},
	}

	for _, tt := range tests {
		if got := DetectFormat(tt.source); got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestLoader(t *testing.T) {
	fetcher := &stubFetcher{data: []byte(validCSV)}
	loader := NewLoader(fetcher, 0)

	ds, err := loader.Load(context.Background(), "empleo_formal.csv")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if fetcher.got != "empleo_formal.csv" {
		t.Errorf("Fetcher called with %q", fetcher.got)
	}
	if ds.Len() != 3 || ds.Source() != "empleo_formal.csv" {
		t.Errorf("Unexpected dataset: len=%d source=%q", ds.Len(), ds.Source())
	}

	fetcher.err = errors.New("no such file")
	if _, err := loader.Load(context.Background(), "missing.csv"); err == nil {
		t.Error("Expected fetch error to propagate")
	}

	fetcher.err = nil
	fetcher.data = []byte("a,b\n1,2\n")
	if _, err := loader.Load(context.Background(), "bad.csv"); !errors.Is(err, ErrMissingColumn) {
		t.Errorf("Expected ErrMissingColumn, got %v", err)
	}
}
