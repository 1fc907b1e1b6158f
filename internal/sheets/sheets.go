// Package sheets reads name columns out of spreadsheet ranges.
//
// Two modes are supported: "export" fetches a published Google Sheets CSV
// export over HTTP, "local" reads a CSV file from disk. Both satisfy
// RangeReader so callers never care which one they got.
package sheets

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alianza/evidence-copier/internal/compare"
)

// RangeReader reads a rectangular cell range as rows of strings.
type RangeReader interface {
	ReadRange(ctx context.Context, spreadsheetID, rangeExpr string) ([][]string, error)
	Close() error
}

var (
	ErrInvalidReaderMode  = errors.New("invalid sheets reader mode")
	ErrMalformedSheetRef  = errors.New("spreadsheet reference has no recognizable id")
	ErrMalformedRangeExpr = errors.New("malformed range expression")

	spreadsheetIDPattern  = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)
	rawSpreadsheetPattern = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)
)

type ReaderConfig struct {
	Mode       string
	HTTPClient *http.Client
	// ExportURL overrides the CSV export endpoint in export mode.
	ExportURL string
	// LocalDir maps spreadsheet ids to <LocalDir>/<id>.csv in local mode.
	LocalDir string
}

// NewRangeReader constructs a reader based on the configured mode.
func NewRangeReader(cfg ReaderConfig) (RangeReader, error) {
	switch cfg.Mode {
	case "export":
		client := cfg.HTTPClient
		if client == nil {
			client = &http.Client{Timeout: 30 * time.Second}
		}
		return &exportReader{client: client, baseURL: cfg.ExportURL}, nil
	case "local":
		return &localReader{dir: cfg.LocalDir}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidReaderMode, cfg.Mode)
	}
}

// ExtractSpreadsheetID accepts either a full spreadsheet URL or a bare id.
func ExtractSpreadsheetID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrMalformedSheetRef
	}
	if m := spreadsheetIDPattern.FindStringSubmatch(ref); m != nil {
		return m[1], nil
	}
	if rawSpreadsheetPattern.MatchString(ref) {
		return ref, nil
	}
	return "", fmt.Errorf("%w: %q", ErrMalformedSheetRef, ref)
}

// ReadColumn reads a range and flattens the first cell of every row,
// dropping blanks. This is the common shape for name lists.
func ReadColumn(ctx context.Context, r RangeReader, spreadsheetID, rangeExpr string) ([]string, error) {
	rows, err := r.ReadRange(ctx, spreadsheetID, rangeExpr)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if cell := strings.TrimSpace(row[0]); cell != "" {
			names = append(names, cell)
		}
	}
	return names, nil
}

// rangeRef is the parsed form of an A1 range expression like "Sheet1!A2:A".
type rangeRef struct {
	Sheet    string
	StartCol int // zero-based
	StartRow int // zero-based, -1 means unbounded
	EndCol   int
	EndRow   int // -1 means unbounded
}

func parseRange(expr string) (rangeRef, error) {
	ref := rangeRef{StartRow: -1, EndRow: -1}
	rest := expr
	if i := strings.IndexByte(expr, '!'); i >= 0 {
		ref.Sheet = expr[:i]
		rest = expr[i+1:]
	}
	if rest == "" {
		return ref, fmt.Errorf("%w: %q", ErrMalformedRangeExpr, expr)
	}
	start, end := rest, rest
	if i := strings.IndexByte(rest, ':'); i >= 0 {
		start, end = rest[:i], rest[i+1:]
	}
	var err error
	if ref.StartCol, ref.StartRow, err = parseCell(start); err != nil {
		return ref, fmt.Errorf("%w: %q", ErrMalformedRangeExpr, expr)
	}
	if ref.EndCol, ref.EndRow, err = parseCell(end); err != nil {
		return ref, fmt.Errorf("%w: %q", ErrMalformedRangeExpr, expr)
	}
	return ref, nil
}

// parseCell splits "A2" into column index 0 and row index 1. A bare column
// like "A" yields row -1 (unbounded).
func parseCell(cell string) (col, row int, err error) {
	i := 0
	for i < len(cell) && cell[i] >= 'A' && cell[i] <= 'Z' {
		col = col*26 + int(cell[i]-'A'+1)
		i++
	}
	if col == 0 {
		return 0, 0, fmt.Errorf("no column letters in %q", cell)
	}
	col--
	if i == len(cell) {
		return col, -1, nil
	}
	n, convErr := strconv.Atoi(cell[i:])
	if convErr != nil || n < 1 {
		return 0, 0, fmt.Errorf("bad row number in %q", cell)
	}
	return col, n - 1, nil
}

// slice applies a parsed range to raw CSV rows.
func (r rangeRef) slice(rows [][]string) [][]string {
	startRow := r.StartRow
	if startRow < 0 {
		startRow = 0
	}
	out := make([][]string, 0, len(rows))
	for i := startRow; i < len(rows); i++ {
		if r.EndRow >= 0 && i > r.EndRow {
			break
		}
		row := rows[i]
		cells := make([]string, 0, r.EndCol-r.StartCol+1)
		for c := r.StartCol; c <= r.EndCol && c < len(row); c++ {
			cells = append(cells, row[c])
		}
		out = append(out, cells)
	}
	return out
}

type exportReader struct {
	client  *http.Client
	baseURL string
}

func (e *exportReader) ReadRange(ctx context.Context, spreadsheetID, rangeExpr string) ([][]string, error) {
	ref, err := parseRange(rangeExpr)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.exportURL(spreadsheetID, ref.Sheet), nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sheet export %s: %w", spreadsheetID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheet export %s: unexpected status %d", spreadsheetID, resp.StatusCode)
	}
	rows, err := readCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse sheet export %s: %w", spreadsheetID, err)
	}
	return ref.slice(rows), nil
}

func (e *exportReader) Close() error { return nil }

type localReader struct {
	dir string
}

func (l *localReader) ReadRange(ctx context.Context, spreadsheetID, rangeExpr string) ([][]string, error) {
	ref, err := parseRange(rangeExpr)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(l.dir, spreadsheetID+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open local sheet %s: %w", spreadsheetID, err)
	}
	defer f.Close()
	rows, err := readCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse local sheet %s: %w", spreadsheetID, err)
	}
	return ref.slice(rows), nil
}

func (l *localReader) Close() error { return nil }

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", compare.ErrInvalidRange, err)
	}
	return rows, nil
}

func (e *exportReader) exportURL(spreadsheetID, sheet string) string {
	base := e.baseURL
	if base == "" {
		base = "https://docs.google.com"
	}
	u := base + "/spreadsheets/d/" + spreadsheetID + "/export?format=csv"
	if sheet != "" {
		u += "&sheet=" + url.QueryEscape(sheet)
	}
	return u
}
