package categories

import "github.com/tally-dev/tally/internal/model"

// DefaultChoices returns the built-in keystroke to category map.
func DefaultChoices() []model.CategoryChoice {
	return []model.CategoryChoice{
		{Key: 'q', Label: "Groceries"},
		{Key: 'e', Label: "Eating out"},
		{Key: 't', Label: "Transport"},
		{Key: 'b', Label: "Bills"},
		{Key: 'r', Label: "Rent"},
		{Key: 'h', Label: "Household"},
		{Key: 's', Label: "Shopping"},
		{Key: 'f', Label: "Fun"},
		{Key: 'g', Label: "Gifts"},
		{Key: 'l', Label: "Health"},
		{Key: 'v', Label: "Travel"},
		{Key: 'i', Label: "Income"},
		{Key: 'x', Label: "Transfer"},
		{Key: 'o', Label: "Other"},
	}
}
