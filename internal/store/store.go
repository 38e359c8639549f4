package store

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"PriceHistorian/internal/model"

	"github.com/shopspring/decimal"
)

// ErrNotFound reports that the history record does not exist. A run cannot
// establish a baseline without one, so callers treat this as fatal.
var ErrNotFound = errors.New("history record not found")

// ParseError reports a malformed row in the history record.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("history row %d: %v", e.Line, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// Store persists the series in two representations: the canonical CSV
// record and the derived JSON snapshot read by downstream consumers.
type Store struct {
	CSVPath  string
	JSONPath string
}

// NewStore creates a Store for the given artifact paths.
func NewStore(csvPath, jsonPath string) *Store {
	return &Store{CSVPath: csvPath, JSONPath: jsonPath}
}

// Load reads and parses the CSV record. An absent file yields ErrNotFound;
// an empty-but-present file yields an empty series.
func (s *Store) Load() (model.Series, error) {
	f, err := os.Open(s.CSVPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.CSVPath)
		}
		return nil, fmt.Errorf("open %s: %w", s.CSVPath, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2

	rows, err := r.ReadAll()
	if err != nil {
		return nil, &ParseError{Line: 0, Err: err}
	}
	if len(rows) == 0 {
		return model.Series{}, nil
	}
	if rows[0][0] != "date" || rows[0][1] != "price" {
		return nil, &ParseError{Line: 1, Err: fmt.Errorf("unexpected header %v, want [date price]", rows[0])}
	}

	series := make(model.Series, 0, len(rows)-1)
	for i, row := range rows[1:] {
		day, err := time.Parse(model.DateFormat, row[0])
		if err != nil {
			return nil, &ParseError{Line: i + 2, Err: fmt.Errorf("invalid date %q: %w", row[0], err)}
		}
		price, err := decimal.NewFromString(row[1])
		if err != nil {
			return nil, &ParseError{Line: i + 2, Err: fmt.Errorf("invalid price %q: %w", row[1], err)}
		}
		series = append(series, model.PricePoint{Day: model.Midnight(day), Price: price})
	}
	return series, nil
}

// Rewrite replaces the CSV record with the full series, date ascending.
// Callers invoke it only on runs that produced new points.
func (s *Store) Rewrite(series model.Series) error {
	f, err := os.Create(s.CSVPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", s.CSVPath, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"date", "price"}); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", s.CSVPath, err)
	}
	for _, p := range series {
		if err := w.Write([]string{p.Day.Format(model.DateFormat), p.PriceText()}); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", s.CSVPath, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", s.CSVPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", s.CSVPath, err)
	}
	return nil
}

// snapshotRow is one entry of the JSON snapshot. Price is emitted as a bare
// JSON number with the same digits the CSV record carries.
type snapshotRow struct {
	Date  string      `json:"date"`
	Price json.Number `json:"price"`
}

// WriteSnapshot regenerates the JSON snapshot from the full series. It is
// invoked on every run, data or not, so readers never see a snapshot older
// than the CSV record. Serialization is deterministic: identical input
// produces identical bytes.
func (s *Store) WriteSnapshot(series model.Series) error {
	rows := make([]snapshotRow, 0, len(series))
	for _, p := range series {
		rows = append(rows, snapshotRow{
			Date:  p.Day.Format(model.DateFormat),
			Price: json.Number(p.PriceText()),
		})
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(s.JSONPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", s.JSONPath, err)
	}
	return nil
}
