package config

import "github.com/tally-dev/tally/internal/categories"

func defaultCategories() []CategoryConfig {
	defaults := categories.DefaultChoices()
	out := make([]CategoryConfig, len(defaults))
	for i, c := range defaults {
		out[i] = CategoryConfig{Key: string(c.Key), Label: string(c.Label)}
	}
	return out
}
