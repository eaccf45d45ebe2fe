package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

// Columns is the fixed column order of an export row. Exports carry no header.
const Columns = "date,reference,category,debit,credit,institution"

const (
	numFields      = 6
	colDate        = 0
	colRef         = 1
	colCategory    = 2
	colDebit       = 3
	colCredit      = 4
	colInstitution = 5
)

// Assemble returns manually categorised records followed by auto-categorised ones.
// The two sets are disjoint, so nothing is deduplicated or re-sorted.
func Assemble(manual, auto []model.Record) []model.Record {
	out := make([]model.Record, 0, len(manual)+len(auto))
	out = append(out, manual...)
	return append(out, auto...)
}

// WriteRecords writes records as CSV rows in Columns order.
func WriteRecords(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)

	for i, rec := range records {
		if err := cw.Write(MarshalRecord(rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing export: %w", err)
	}
	return nil
}

// MarshalRecord converts a Record to a CSV row ([]string).
func MarshalRecord(rec model.Record) []string {
	row := make([]string, numFields)
	row[colDate] = rec.Date
	row[colRef] = rec.Reference
	row[colCategory] = string(rec.Category)

	if !rec.Debit.IsZero() {
		row[colDebit] = rec.Debit.StringFixed(2)
	}
	if !rec.Credit.IsZero() {
		row[colCredit] = rec.Credit.StringFixed(2)
	}

	row[colInstitution] = string(rec.Institution)
	return row
}

// Filename returns "{first_date}-{last_date}-{source}.csv" for a batch in input order,
// with "/" removed from the dates.
func Filename(batch []model.Record, source model.Institution) (string, error) {
	if len(batch) == 0 {
		return "", fmt.Errorf("no records to name export after")
	}
	first := strings.ReplaceAll(batch[0].Date, "/", "")
	last := strings.ReplaceAll(batch[len(batch)-1].Date, "/", "")
	return fmt.Sprintf("%s-%s-%s.csv", first, last, source), nil
}
