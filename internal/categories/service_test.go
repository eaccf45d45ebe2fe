package categories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
)

func TestResolve(t *testing.T) {
	svc, err := NewService(DefaultChoices())
	require.NoError(t, err)

	tests := []struct {
		input       string
		wantLabel   model.Category
		wantPersist bool
		wantOK      bool
	}{
		{"q", "Groceries", false, true},
		{"Q", "Groceries", true, true},
		{" t\n", "Transport", false, true},
		{"T", "Transport", true, true},
		{"z", "", false, false},
		{"qq", "", false, false},
		{"", "", false, false},
		{"1", "", false, false},
	}
	for _, tt := range tests {
		label, persist, ok := svc.Resolve(tt.input)
		assert.Equal(t, tt.wantLabel, label, "Resolve(%q)", tt.input)
		assert.Equal(t, tt.wantPersist, persist, "Resolve(%q)", tt.input)
		assert.Equal(t, tt.wantOK, ok, "Resolve(%q)", tt.input)
	}
}

func TestDefaultChoices_Valid(t *testing.T) {
	svc, err := NewService(DefaultChoices())
	require.NoError(t, err)
	assert.Len(t, svc.All(), len(DefaultChoices()))
	assert.Contains(t, svc.Legend(), "q Groceries")
}

func TestNewService_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		choices []model.CategoryChoice
	}{
		{"empty", nil},
		{"digit key", []model.CategoryChoice{{Key: '1', Label: "Bills"}}},
		{"blank label", []model.CategoryChoice{{Key: 'a', Label: ""}}},
		{"case clash", []model.CategoryChoice{{Key: 'a', Label: "A"}, {Key: 'A', Label: "B"}}},
	}
	for _, tt := range tests {
		_, err := NewService(tt.choices)
		assert.Error(t, err, tt.name)
	}
}
