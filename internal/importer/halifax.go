package importer

import (
	"fmt"
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

// HalifaxNormalizer handles Halifax current account exports, which keep
// money out and money in in separate columns.
type HalifaxNormalizer struct{}

const (
	halifaxNumFields = 7
	halifaxColDate   = 0
	halifaxColRef    = 4
	halifaxColDebit  = 5
	halifaxColCredit = 6
)

// Institution returns the halifax tag.
func (n *HalifaxNormalizer) Institution() model.Institution { return model.InstitutionHalifax }

// IsHeader reports whether row is the "Transaction Date,..." header Halifax exports start with.
func (n *HalifaxNormalizer) IsHeader(row []string) bool {
	return looksLikeHeader(row, halifaxColDate, halifaxColDebit, halifaxColCredit)
}

// Normalize maps a Halifax row to a Record.
func (n *HalifaxNormalizer) Normalize(row []string) (model.Record, error) {
	if err := requireColumns(row, halifaxNumFields); err != nil {
		return model.Record{}, err
	}

	debit, err := parseAmount(row[halifaxColDebit])
	if err != nil {
		return model.Record{}, fmt.Errorf("debit: %w", err)
	}
	credit, err := parseAmount(row[halifaxColCredit])
	if err != nil {
		return model.Record{}, fmt.Errorf("credit: %w", err)
	}

	return finish(model.Record{
		Date:        strings.TrimSpace(row[halifaxColDate]),
		Reference:   strings.TrimSpace(row[halifaxColRef]),
		Institution: model.InstitutionHalifax,
		Debit:       debit,
		Credit:      credit,
	})
}
