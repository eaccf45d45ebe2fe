package categorise

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/categories"
	"github.com/tally-dev/tally/internal/logger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func record(ref, debit string) model.Record {
	return model.Record{
		Date:        "01/02/2023",
		Reference:   ref,
		Institution: model.InstitutionAmex,
		Debit:       dec(debit),
	}
}

// memStore is an in-memory Store keyed by fingerprint.
type memStore struct {
	entries   map[string]model.Category
	inserts   []model.StoredTransaction
	lookupErr error
	insertErr error
	lookups   int
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]model.Category)}
}

func key(fp model.Fingerprint) string {
	return fmt.Sprintf("%s|%s|%s|%s", fp.Reference, fp.Institution, fp.DebitKey(), fp.CreditKey())
}

func (m *memStore) Lookup(_ context.Context, fp model.Fingerprint) (model.Category, bool, error) {
	m.lookups++
	if m.lookupErr != nil {
		return "", false, m.lookupErr
	}
	c, ok := m.entries[key(fp)]
	return c, ok, nil
}

func (m *memStore) Insert(_ context.Context, st model.StoredTransaction) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	k := key(st.Fingerprint)
	if _, ok := m.entries[k]; ok {
		return store.ErrDuplicateFingerprint
	}
	m.entries[k] = st.Category
	m.inserts = append(m.inserts, st)
	return nil
}

func newCategories(t *testing.T) *categories.Service {
	t.Helper()
	svc, err := categories.NewService(categories.DefaultChoices())
	require.NoError(t, err)
	return svc
}

func TestResolve_Partition(t *testing.T) {
	st := newMemStore()
	require.NoError(t, st.Insert(context.Background(), model.NewStoredTransaction(
		model.Record{Reference: "TESCO", Institution: model.InstitutionAmex, Debit: dec("5"), Category: "Groceries"})))

	recs := []model.Record{record("A", "1"), record("TESCO", "5.00"), record("B", "2"), record("TESCO", "6")}
	p := Resolve(context.Background(), st, recs)

	require.Len(t, p.Auto, 1)
	assert.Equal(t, "TESCO", p.Auto[0].Reference)
	assert.Equal(t, model.Category("Groceries"), p.Auto[0].Category)

	require.Len(t, p.NeedsManual, 3)
	assert.Equal(t, []string{"A", "B", "TESCO"}, []string{p.NeedsManual[0].Reference, p.NeedsManual[1].Reference, p.NeedsManual[2].Reference})
	for _, r := range p.NeedsManual {
		assert.False(t, r.Categorized())
	}
	assert.Equal(t, 4, st.lookups)
}

func TestResolve_NilStore(t *testing.T) {
	p := Resolve(context.Background(), nil, []model.Record{record("A", "1"), record("B", "2")})
	assert.Empty(t, p.Auto)
	assert.Len(t, p.NeedsManual, 2)
}

func TestResolve_LookupErrorDegradesToManual(t *testing.T) {
	var buf bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(&buf, "warn"))

	st := newMemStore()
	st.lookupErr = errors.New("disk I/O error")
	p := Resolve(ctx, st, []model.Record{record("A", "1")})

	assert.Empty(t, p.Auto)
	assert.Len(t, p.NeedsManual, 1)
	assert.Contains(t, buf.String(), "category lookup failed")
}

func TestWorkflow_UpperCaseRemembers(t *testing.T) {
	st := newMemStore()
	var out bytes.Buffer
	w := NewWorkflow(strings.NewReader("Q\nq\n"), &out, newCategories(t), st, DefaultLookAhead)

	got, err := w.Run(context.Background(), []model.Record{record("F", "10"), record("G", "20")})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.Category("Groceries"), got[0].Category)
	assert.Equal(t, model.Category("Groceries"), got[1].Category)

	require.Len(t, st.inserts, 1, "lower case must not be remembered")
	assert.Equal(t, "F", st.inserts[0].Reference)
	assert.Equal(t, model.Category("Groceries"), st.inserts[0].Category)
}

func TestWorkflow_RepromptsOnUnknownKey(t *testing.T) {
	st := newMemStore()
	var out bytes.Buffer
	w := NewWorkflow(strings.NewReader("z\n\nhello\nt\n"), &out, newCategories(t), st, DefaultLookAhead)

	got, err := w.Run(context.Background(), []model.Record{record("A", "1")})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.Category("Transport"), got[0].Category)
	assert.Equal(t, 3, strings.Count(out.String(), "unrecognised choice"))
	assert.Empty(t, st.inserts)
}

func TestWorkflow_LookAheadWindow(t *testing.T) {
	var recs []model.Record
	for i := 0; i < 20; i++ {
		recs = append(recs, record(fmt.Sprintf("REF%02d", i), "1"))
	}
	var out bytes.Buffer
	w := NewWorkflow(strings.NewReader("o\n"), &out, newCategories(t), nil, DefaultLookAhead)

	_, err := w.Run(context.Background(), recs)
	require.ErrorIs(t, err, ErrInputClosed)

	first := out.String()
	assert.Contains(t, first, "[1/20]")
	assert.Contains(t, first, "REF14", "current plus 14 upcoming")
	assert.NotContains(t, first[:strings.Index(first, "[2/20]")], "REF15")

	second := first[strings.Index(first, "[2/20]"):]
	assert.NotContains(t, second, "REF00", "window does not scroll back")
	assert.Contains(t, second, "REF15")
}

func TestWorkflow_InputClosed(t *testing.T) {
	w := NewWorkflow(strings.NewReader("q\n"), &bytes.Buffer{}, newCategories(t), nil, DefaultLookAhead)
	got, err := w.Run(context.Background(), []model.Record{record("A", "1"), record("B", "2")})
	assert.ErrorIs(t, err, ErrInputClosed)
	assert.Nil(t, got)
}

func TestWorkflow_LastLineWithoutNewline(t *testing.T) {
	w := NewWorkflow(strings.NewReader("e"), &bytes.Buffer{}, newCategories(t), nil, DefaultLookAhead)
	got, err := w.Run(context.Background(), []model.Record{record("A", "1")})
	require.NoError(t, err)
	assert.Equal(t, model.Category("Eating out"), got[0].Category)
}

func TestWorkflow_DuplicateIsSwallowed(t *testing.T) {
	var buf bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(&buf, "warn"))

	st := newMemStore()
	w := NewWorkflow(strings.NewReader("Q\nS\n"), &bytes.Buffer{}, newCategories(t), st, DefaultLookAhead)

	// Same fingerprint queued twice: the second save hits the uniqueness check.
	got, err := w.Run(ctx, []model.Record{record("F", "10"), record("F", "10")})
	require.NoError(t, err)
	assert.Equal(t, model.Category("Groceries"), got[0].Category)
	assert.Equal(t, model.Category("Shopping"), got[1].Category, "choice still applies in memory")
	assert.Len(t, st.inserts, 1)
	assert.Contains(t, buf.String(), "fingerprint already remembered")
}

func TestWorkflow_StoreErrorIsSwallowed(t *testing.T) {
	st := newMemStore()
	st.insertErr = errors.New("database is locked")
	w := NewWorkflow(strings.NewReader("B\n"), &bytes.Buffer{}, newCategories(t), st, DefaultLookAhead)

	got, err := w.Run(context.Background(), []model.Record{record("A", "1")})
	require.NoError(t, err)
	assert.Equal(t, model.Category("Bills"), got[0].Category)
}

func TestWorkflow_NoStore(t *testing.T) {
	w := NewWorkflow(strings.NewReader("B\n"), &bytes.Buffer{}, newCategories(t), nil, DefaultLookAhead)
	got, err := w.Run(context.Background(), []model.Record{record("A", "1")})
	require.NoError(t, err)
	assert.Equal(t, model.Category("Bills"), got[0].Category)
}

func TestWorkflow_PersistScenario_SQLite(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(filepath.Join(t.TempDir(), "tally.sqlite3"))
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Setup(ctx))

	f := record("F", "10")
	g := record("G", "20")
	w := NewWorkflow(strings.NewReader("Q\nq\n"), &bytes.Buffer{}, newCategories(t), st, DefaultLookAhead)
	got, err := w.Run(ctx, []model.Record{f, g})
	require.NoError(t, err)
	assert.Equal(t, model.Category("Groceries"), got[0].Category)
	assert.Equal(t, model.Category("Groceries"), got[1].Category)

	cat, ok, err := st.Lookup(ctx, f.Fingerprint())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.Category("Groceries"), cat)

	_, ok, err = st.Lookup(ctx, g.Fingerprint())
	require.NoError(t, err)
	assert.False(t, ok)

	// A later run picks F up automatically.
	p := Resolve(ctx, st, []model.Record{g, f})
	require.Len(t, p.Auto, 1)
	assert.Equal(t, "F", p.Auto[0].Reference)
	require.Len(t, p.NeedsManual, 1)
	assert.Equal(t, "G", p.NeedsManual[0].Reference)
}

func TestNewWorkflow_ClampsLookAhead(t *testing.T) {
	w := NewWorkflow(strings.NewReader("q\nq\n"), &bytes.Buffer{}, newCategories(t), nil, math.MaxInt)
	assert.Equal(t, MaxLookAhead, w.lookAhead)

	got, err := w.Run(context.Background(), []model.Record{record("A", "1"), record("B", "2")})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	assert.Equal(t, DefaultLookAhead, NewWorkflow(strings.NewReader(""), &bytes.Buffer{}, newCategories(t), nil, -1).lookAhead)
}
