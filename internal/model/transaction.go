package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Institution tags the bank a statement row came from.
type Institution string

const (
	InstitutionAmex        Institution = "amex"
	InstitutionHalifax     Institution = "halifax"
	InstitutionFirstDirect Institution = "firstdirect"
)

// Record is a normalized statement row, independent of the institution's CSV layout.
type Record struct {
	Date        string // as presented by the institution
	Reference   string
	Institution Institution
	Debit       decimal.Decimal // zero if credit side
	Credit      decimal.Decimal // zero if debit side
	Category    Category        // empty until resolved
}

// Categorized reports whether a category has been assigned.
func (r Record) Categorized() bool {
	return r.Category != ""
}

// Fingerprint returns the key used to remember the record's category.
func (r Record) Fingerprint() Fingerprint {
	return Fingerprint{
		Reference:   r.Reference,
		Institution: r.Institution,
		Debit:       r.Debit,
		Credit:      r.Credit,
	}
}

// Validate checks that exactly one of Debit and Credit is non-zero and neither is negative.
func (r Record) Validate() error {
	if r.Debit.IsNegative() || r.Credit.IsNegative() {
		return fmt.Errorf("negative amount (debit %s, credit %s)", r.Debit.StringFixed(2), r.Credit.StringFixed(2))
	}
	if r.Debit.IsZero() == r.Credit.IsZero() {
		return fmt.Errorf("exactly one of debit (%s) and credit (%s) must be non-zero",
			r.Debit.StringFixed(2), r.Credit.StringFixed(2))
	}
	return nil
}

// Fingerprint identifies "the same kind of transaction" for auto-categorization.
// Amounts compare at two decimal places.
type Fingerprint struct {
	Reference   string
	Institution Institution
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// DebitKey returns the debit amount in its stored form.
func (f Fingerprint) DebitKey() string { return f.Debit.StringFixed(2) }

// CreditKey returns the credit amount in its stored form.
func (f Fingerprint) CreditKey() string { return f.Credit.StringFixed(2) }

// StoredTransaction is a remembered categorization.
type StoredTransaction struct {
	ID       string
	Date     string
	Category Category
	Fingerprint
}

// NewStoredTransaction builds the entry to remember for a categorized record.
func NewStoredTransaction(r Record) StoredTransaction {
	return StoredTransaction{
		Date:        r.Date,
		Category:    r.Category,
		Fingerprint: r.Fingerprint(),
	}
}
