package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

var (
	// ErrUnsupportedInstitution is returned for an institution tag with no registered normalizer.
	ErrUnsupportedInstitution = errors.New("unsupported institution")
	// ErrMalformedAmount is returned when a numeric column cannot be turned into a debit/credit pair.
	ErrMalformedAmount = errors.New("malformed amount")
	// ErrMalformedRow is returned when a row has fewer columns than the institution's layout needs.
	ErrMalformedRow = errors.New("malformed row")
)

// Normalizer converts one raw statement row into a canonical Record.
type Normalizer interface {
	Normalize(row []string) (model.Record, error)
	Institution() model.Institution
	// IsHeader reports whether row is a column header rather than a transaction.
	IsHeader(row []string) bool
}

// Registry holds normalizers by institution tag.
type Registry struct {
	normalizers map[model.Institution]Normalizer
}

// NewRegistry creates an empty normalizer registry.
func NewRegistry() *Registry {
	return &Registry{normalizers: make(map[model.Institution]Normalizer)}
}

// Register adds a normalizer. Panics on duplicate institution.
func (r *Registry) Register(n Normalizer) {
	key := model.Institution(strings.ToLower(string(n.Institution())))
	if _, ok := r.normalizers[key]; ok {
		panic("duplicate normalizer: " + string(key))
	}
	r.normalizers[key] = n
}

// Get returns the normalizer for an institution tag.
func (r *Registry) Get(tag string) (Normalizer, error) {
	n, ok := r.normalizers[model.Institution(strings.ToLower(tag))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedInstitution, tag, strings.Join(r.Tags(), ", "))
	}
	return n, nil
}

// Tags returns the registered institution tags in sorted order.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.normalizers))
	for k := range r.normalizers {
		tags = append(tags, string(k))
	}
	sort.Strings(tags)
	return tags
}

// DefaultRegistry returns a registry with all built-in normalizers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&AmexNormalizer{})
	r.Register(&HalifaxNormalizer{})
	r.Register(&FirstDirectNormalizer{})
	return r
}

// ReadRecords reads a whole statement export and normalizes every row.
// The first failing row aborts the batch.
func ReadRecords(r io.Reader, n Normalizer) ([]model.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s CSV: %w", n.Institution(), err)
	}

	var records []model.Record
	first := true
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		// Only the leading row can be a header; some exports omit it.
		if first {
			first = false
			if n.IsHeader(row) {
				continue
			}
		}
		rec, err := n.Normalize(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// looksLikeHeader is true when the date column holds no digits and every
// non-empty amount column is non-numeric, e.g. "Date,Description,Amount".
func looksLikeHeader(row []string, dateCol int, amountCols ...int) bool {
	if dateCol >= len(row) || strings.ContainsAny(row[dateCol], "0123456789") {
		return false
	}
	for _, c := range amountCols {
		if c >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[c])
		if v == "" {
			continue
		}
		if _, err := decimal.NewFromString(strings.ReplaceAll(v, ",", "")); err == nil {
			return false
		}
	}
	return true
}

func requireColumns(row []string, n int) error {
	if len(row) < n {
		return fmt.Errorf("%w: expected at least %d fields, got %d", ErrMalformedRow, n, len(row))
	}
	return nil
}

// parseAmount parses a numeric column, treating an empty value as zero.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: parsing %q: %v", ErrMalformedAmount, s, err)
	}
	return d, nil
}

// splitSigned maps a single signed amount onto a debit/credit pair.
// positiveIsDebit selects the institution's sign convention.
func splitSigned(amount decimal.Decimal, positiveIsDebit bool) (debit, credit decimal.Decimal) {
	if amount.IsPositive() == positiveIsDebit {
		return amount.Abs(), decimal.Zero
	}
	return decimal.Zero, amount.Abs()
}

func finish(rec model.Record) (model.Record, error) {
	if err := rec.Validate(); err != nil {
		return model.Record{}, fmt.Errorf("%w: %v", ErrMalformedAmount, err)
	}
	return rec, nil
}
