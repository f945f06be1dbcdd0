package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/prodaudit/prodaudit/pkg/audit"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/xuri/excelize/v2"
)

const (
	FormatXLSX     = "xlsx"
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatMarkdown = "md"
	FormatHTML     = "html"

	// SheetName is the worksheet written to xlsx reports.
	SheetName = "Audit"
	// DefaultFilename is used when no output path is given.
	DefaultFilename = "master_audit_report.xlsx"
)

var ErrUnknownFormat = errors.New("unknown report format")

// FormatFromPath picks a report format from a file extension, defaulting to
// xlsx when the extension is missing.
func FormatFromPath(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "":
		return FormatXLSX, nil
	case "markdown":
		return FormatMarkdown, nil
	case "htm":
		return FormatHTML, nil
	}
	return ParseFormat(ext)
}

// ParseFormat validates a format name.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case FormatXLSX, FormatCSV, FormatJSON, FormatMarkdown, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Write exports records to w in the given format.
func Write(w io.Writer, format string, records []audit.Record) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, records)
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatJSON:
		return WriteJSON(w, records)
	case FormatMarkdown:
		return WriteMarkdown(w, records)
	case FormatHTML:
		return WriteHTML(w, records)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func WriteCSV(w io.Writer, records []audit.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(Row(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a workbook with a single sheet. Images Found is stored as
// a number.
func WriteXLSX(w io.Writer, records []audit.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}

	cols := columns()
	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c.name
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	for r, rec := range records {
		row := make([]interface{}, len(cols))
		for i, c := range cols {
			v, ok := c.value(rec)
			switch {
			case !ok:
				row[i] = nil
			case c.numeric:
				n, err := strconv.Atoi(v)
				if err != nil {
					row[i] = v
				} else {
					row[i] = n
				}
			default:
				row[i] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// WriteJSON writes an array of objects whose keys follow Header order.
// Absent values are omitted.
func WriteJSON(w io.Writer, records []audit.Record) error {
	cols := columns()
	out := "[]"
	for _, rec := range records {
		obj := "{}"
		for _, c := range cols {
			v, ok := c.value(rec)
			if !ok {
				continue
			}
			var err error
			if c.numeric {
				obj, err = sjson.SetRaw(obj, escapePath(c.name), v)
			} else {
				obj, err = sjson.Set(obj, escapePath(c.name), v)
			}
			if err != nil {
				return fmt.Errorf("encoding %q: %w", c.name, err)
			}
		}
		var err error
		if out, err = sjson.SetRaw(out, "-1", obj); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, gjson.Get(out, "@pretty").Raw)
	return err
}

// escapePath escapes the characters gjson/sjson treat as path syntax.
func escapePath(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// WriteHTML renders the markdown table as a standalone HTML page. Cell text
// comes from third-party pages, so it is escaped and raw HTML is dropped.
func WriteHTML(w io.Writer, records []audit.Record) error {
	var md strings.Builder
	md.WriteString("# Master Data Audit\n\n")
	for _, line := range markdownTable(records, htmlCell) {
		md.WriteString(line)
		md.WriteString("\n")
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.SkipHTML | mdhtml.HrefTargetBlank})
	body := markdown.ToHTML([]byte(md.String()), p, r)

	if _, err := io.WriteString(w, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Master Data Audit</title></head><body>\n"); err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</body></html>\n")
	return err
}
