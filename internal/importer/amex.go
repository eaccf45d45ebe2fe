package importer

import (
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

// AmexNormalizer handles American Express statement exports.
// Amounts are signed: charges are positive, refunds and payments negative.
type AmexNormalizer struct{}

const (
	amexNumFields = 4
	amexColDate   = 0
	amexColAmount = 2
	amexColRef    = 3
)

// Institution returns the amex tag.
func (n *AmexNormalizer) Institution() model.Institution { return model.InstitutionAmex }

// IsHeader reports whether row is a column header. Amex exports usually have none.
func (n *AmexNormalizer) IsHeader(row []string) bool {
	return looksLikeHeader(row, amexColDate, amexColAmount)
}

// Normalize maps an amex row to a Record.
func (n *AmexNormalizer) Normalize(row []string) (model.Record, error) {
	if err := requireColumns(row, amexNumFields); err != nil {
		return model.Record{}, err
	}

	amount, err := parseAmount(row[amexColAmount])
	if err != nil {
		return model.Record{}, err
	}
	debit, credit := splitSigned(amount, true)

	return finish(model.Record{
		Date:        strings.TrimSpace(row[amexColDate]),
		Reference:   strings.TrimSpace(row[amexColRef]),
		Institution: model.InstitutionAmex,
		Debit:       debit,
		Credit:      credit,
	})
}
