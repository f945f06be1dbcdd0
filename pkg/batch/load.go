package batch

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/prodaudit/prodaudit/pkg/audit"
	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported batch file format")
	ErrEmptyFile         = errors.New("batch file has no header row")
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

// FormatFromPath picks the batch format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case FormatCSV, FormatXLSX, FormatJSON:
		return ext, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadFile reads the batch file at path.
func LoadFile(path string) ([]audit.Item, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	items, err := Load(f, format)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return items, nil
}

// Load reads a batch file of the given format from r.
func Load(r io.Reader, format string) ([]audit.Item, error) {
	var (
		headers []string
		rows    [][]string
		err     error
	)
	switch format {
	case FormatCSV:
		headers, rows, err = readCSV(r)
	case FormatXLSX:
		headers, rows, err = readXLSX(r)
	case FormatJSON:
		headers, rows, err = readJSON(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		return nil, ErrEmptyFile
	}
	return ItemsFromRows(headers, rows), nil
}

func readCSV(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}
	return headers, records[1:], nil
}

// readXLSX reads the first sheet of a workbook.
func readXLSX(r io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	return rows[0], rows[1:], nil
}

// readJSON reads an array of flat objects. Headers are the keys of all
// objects in order of first appearance.
func readJSON(r io.Reader) ([]string, [][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	data = bytes.TrimSpace(data)
	if !gjson.ValidBytes(data) {
		return nil, nil, errors.New("invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return nil, nil, errors.New("JSON batch must be an array of objects")
	}

	var headers []string
	index := make(map[string]int)
	var objects []gjson.Result
	for _, obj := range doc.Array() {
		if !obj.IsObject() {
			continue
		}
		obj.ForEach(func(key, _ gjson.Result) bool {
			if _, ok := index[key.String()]; !ok {
				index[key.String()] = len(headers)
				headers = append(headers, key.String())
			}
			return true
		})
		objects = append(objects, obj)
	}

	rows := make([][]string, 0, len(objects))
	for _, obj := range objects {
		row := make([]string, len(headers))
		obj.ForEach(func(key, value gjson.Result) bool {
			if value.Type != gjson.Null {
				row[index[key.String()]] = value.String()
			}
			return true
		})
		rows = append(rows, row)
	}
	return headers, rows, nil
}
