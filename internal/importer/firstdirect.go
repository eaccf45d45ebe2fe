package importer

import (
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

// FirstDirectNormalizer handles first direct exports (Date, Description, Amount, Balance).
// Money out is negative.
type FirstDirectNormalizer struct{}

const (
	firstDirectNumFields = 3
	firstDirectColDate   = 0
	firstDirectColRef    = 1
	firstDirectColAmount = 2
)

// Institution returns the firstdirect tag.
func (n *FirstDirectNormalizer) Institution() model.Institution {
	return model.InstitutionFirstDirect
}

// IsHeader reports whether row is the "Date,Description,Amount,Balance" header.
func (n *FirstDirectNormalizer) IsHeader(row []string) bool {
	return looksLikeHeader(row, firstDirectColDate, firstDirectColAmount)
}

// Normalize maps a first direct row to a Record.
func (n *FirstDirectNormalizer) Normalize(row []string) (model.Record, error) {
	if err := requireColumns(row, firstDirectNumFields); err != nil {
		return model.Record{}, err
	}

	amount, err := parseAmount(row[firstDirectColAmount])
	if err != nil {
		return model.Record{}, err
	}
	debit, credit := splitSigned(amount, false)

	return finish(model.Record{
		Date:        strings.TrimSpace(row[firstDirectColDate]),
		Reference:   strings.TrimSpace(row[firstDirectColRef]),
		Institution: model.InstitutionFirstDirect,
		Debit:       debit,
		Credit:      credit,
	})
}
