package categorise

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/tally-dev/tally/internal/categories"
	"github.com/tally-dev/tally/internal/logger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

// ErrInputClosed is returned when input ends before every record is categorised.
var ErrInputClosed = errors.New("input closed before all records were categorised")

// DefaultLookAhead is the number of upcoming records shown after the current one.
const DefaultLookAhead = 14

// MaxLookAhead caps the look-ahead window.
const MaxLookAhead = 1000

// Workflow asks the operator for a category for each record, one at a time.
type Workflow struct {
	in         *bufio.Reader
	out        io.Writer
	categories *categories.Service
	store      Store
	lookAhead  int
}

// NewWorkflow creates a Workflow. store may be nil, in which case nothing is remembered.
func NewWorkflow(in io.Reader, out io.Writer, cats *categories.Service, st Store, lookAhead int) *Workflow {
	if lookAhead < 0 {
		lookAhead = DefaultLookAhead
	}
	lookAhead = min(lookAhead, MaxLookAhead)
	return &Workflow{
		in:         bufio.NewReader(in),
		out:        out,
		categories: cats,
		store:      st,
		lookAhead:  lookAhead,
	}
}

// Run categorises records in order and returns them with Category set.
// A choice given in upper case is also remembered in the store.
func (w *Workflow) Run(ctx context.Context, records []model.Record) ([]model.Record, error) {
	resolved := make([]model.Record, 0, len(records))
	for i := range records {
		w.present(records[i:], i+1, len(records))

		label, persist, err := w.awaitChoice()
		if err != nil {
			return nil, err
		}

		rec := records[i]
		rec.Category = label
		if persist {
			w.remember(ctx, rec)
		}
		resolved = append(resolved, rec)
	}
	return resolved, nil
}

// present shows the current record followed by up to lookAhead of the remaining ones.
func (w *Workflow) present(remaining []model.Record, n, total int) {
	end := min(len(remaining), w.lookAhead+1)

	fmt.Fprintf(w.out, "\n[%d/%d]\n", n, total)
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	for i, rec := range remaining[:end] {
		marker := " "
		if i == 0 {
			marker = ">"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", marker, rec.Date, rec.Reference, amountOrBlank(rec.Debit), amountOrBlank(rec.Credit))
	}
	_ = tw.Flush()
	fmt.Fprintf(w.out, "%s\n", w.categories.Legend())
}

// awaitChoice blocks until the operator enters a recognised key.
func (w *Workflow) awaitChoice() (model.Category, bool, error) {
	for {
		fmt.Fprint(w.out, "category (upper case to remember): ")
		line, err := w.in.ReadString('\n')
		if line != "" {
			if label, persist, ok := w.categories.Resolve(line); ok {
				return label, persist, nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", false, ErrInputClosed
			}
			return "", false, fmt.Errorf("reading choice: %w", err)
		}
		fmt.Fprintln(w.out, "unrecognised choice")
	}
}

func (w *Workflow) remember(ctx context.Context, rec model.Record) {
	log := logger.FromContext(ctx)
	if w.store == nil {
		log.Warn().Str("reference", rec.Reference).Msg("no store available, choice not remembered")
		return
	}

	err := w.store.Insert(ctx, model.NewStoredTransaction(rec))
	switch {
	case errors.Is(err, store.ErrDuplicateFingerprint):
		log.Warn().Err(err).Msg("fingerprint already remembered")
	case err != nil:
		log.Error().Err(err).Str("reference", rec.Reference).Msg("remembering category failed")
	default:
		log.Debug().Str("reference", rec.Reference).Str("category", string(rec.Category)).Msg("remembered")
	}
}
