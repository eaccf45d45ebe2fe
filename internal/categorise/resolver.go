// Package categorise assigns categories to normalized statement records, first from
// remembered fingerprints and then interactively.
package categorise

import (
	"context"

	"github.com/tally-dev/tally/internal/logger"
	"github.com/tally-dev/tally/internal/model"
)

// Store is the fingerprint store as seen by the resolver and the workflow.
type Store interface {
	Lookup(ctx context.Context, fp model.Fingerprint) (model.Category, bool, error)
	Insert(ctx context.Context, st model.StoredTransaction) error
}

// Partition splits a batch into records the store already knows and the rest.
// Both halves keep batch order.
type Partition struct {
	Auto        []model.Record
	NeedsManual []model.Record
}

// Resolve looks every record up once. A nil store, or a failed lookup, leaves the
// record for manual categorisation.
func Resolve(ctx context.Context, store Store, records []model.Record) Partition {
	log := logger.FromContext(ctx)

	var p Partition
	for _, rec := range records {
		if store != nil {
			cat, ok, err := store.Lookup(ctx, rec.Fingerprint())
			if err != nil {
				log.Warn().Err(err).Str("reference", rec.Reference).Msg("category lookup failed")
			} else if ok {
				rec.Category = cat
				p.Auto = append(p.Auto, rec)
				continue
			}
		}
		p.NeedsManual = append(p.NeedsManual, rec)
	}

	log.Info().
		Int("auto", len(p.Auto)).
		Int("manual", len(p.NeedsManual)).
		Msg("resolved remembered categories")
	return p
}
