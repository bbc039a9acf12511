package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RowSource yields raw records from one of the supported payload formats.
// Every variant produces the same RawRecord sequence, so the rest of the
// pipeline does not care where the rows came from.
type RowSource interface {
	Rows() ([]RawRecord, error)
}

// Sniff chooses a source for a raw request body: JSON when the content type
// says so or the body starts with '[', delimited text otherwise.
func Sniff(body []byte, contentType string) RowSource {
	trimmed := bytes.TrimSpace(body)
	if strings.Contains(strings.ToLower(contentType), "application/json") || bytes.HasPrefix(trimmed, []byte("[")) {
		return NewJSONSource(body)
	}
	return NewCSVSource(bytes.NewReader(body))
}

// ForUpload selects a source for an uploaded file by extension.
func ForUpload(filename string, r io.Reader) (RowSource, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return NewCSVSource(r), nil
	case ".xlsx":
		return NewXLSXSource(r), nil
	default:
		return nil, ValidationError{Field: "file", Message: "unsupported file type, upload a .csv or .xlsx file"}
	}
}

// CSVSource reads header-labelled delimited text.
type CSVSource struct {
	r io.Reader
}

func NewCSVSource(r io.Reader) *CSVSource {
	return &CSVSource{r: r}
}

func (s *CSVSource) Rows() ([]RawRecord, error) {
	reader := csv.NewReader(s.r)
	reader.TrimLeadingSpace = true

	all, err := reader.ReadAll()
	if err != nil {
		return nil, ValidationError{Field: "body", Message: "invalid CSV: " + err.Error()}
	}
	if len(all) == 0 {
		return nil, ValidationError{Field: "body", Message: "CSV body has no header row"}
	}

	header := all[0]
	rows := make([]RawRecord, 0, len(all)-1)
	for _, fields := range all[1:] {
		row := make(RawRecord, len(header))
		for i, name := range header {
			if i < len(fields) {
				row[strings.TrimSpace(name)] = fields[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// JSONSource reads a JSON array of row objects.
type JSONSource struct {
	data []byte
}

func NewJSONSource(data []byte) *JSONSource {
	return &JSONSource{data: data}
}

func (s *JSONSource) Rows() ([]RawRecord, error) {
	var parsed any
	if err := json.Unmarshal(s.data, &parsed); err != nil {
		return nil, ValidationError{Field: "body", Message: "invalid JSON: " + err.Error()}
	}

	items, ok := parsed.([]any)
	if !ok {
		return nil, ValidationError{Field: "body", Message: "JSON body must be an array of rows"}
	}

	rows := make([]RawRecord, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, ValidationError{Field: "body", Message: "JSON array elements must be objects"}
		}
		rows = append(rows, RawRecord(obj))
	}
	return rows, nil
}

// XLSXSource reads the first sheet of an uploaded workbook. The first row is
// treated as the header.
type XLSXSource struct {
	r io.Reader
}

func NewXLSXSource(r io.Reader) *XLSXSource {
	return &XLSXSource{r: r}
}

func (s *XLSXSource) Rows() ([]RawRecord, error) {
	f, err := excelize.OpenReader(s.r)
	if err != nil {
		return nil, ValidationError{Field: "file", Message: "invalid workbook: " + err.Error()}
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ValidationError{Field: "file", Message: "workbook has no sheets"}
	}

	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, ValidationError{Field: "file", Message: "could not read sheet: " + err.Error()}
	}
	if len(all) == 0 {
		return nil, ValidationError{Field: "file", Message: "sheet has no header row"}
	}

	header := all[0]
	rows := make([]RawRecord, 0, len(all)-1)
	for _, fields := range all[1:] {
		row := make(RawRecord, len(header))
		for i, name := range header {
			if i < len(fields) {
				row[strings.TrimSpace(name)] = fields[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
