package categories

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tally-dev/tally/internal/model"
)

// Service maps operator keystrokes onto category labels.
type Service struct {
	choices []model.CategoryChoice
	byKey   map[rune]model.Category
}

// NewService builds a Service. Keys must be distinct letters (compared case-insensitively)
// because upper case is reserved as the "remember this" signal.
func NewService(choices []model.CategoryChoice) (*Service, error) {
	if len(choices) == 0 {
		return nil, fmt.Errorf("no categories configured")
	}
	byKey := make(map[rune]model.Category, len(choices))
	for _, c := range choices {
		if !unicode.IsLetter(c.Key) {
			return nil, fmt.Errorf("category %q: key %q is not a letter", c.Label, c.Key)
		}
		if c.Label == "" {
			return nil, fmt.Errorf("key %q: empty category label", c.Key)
		}
		k := unicode.ToLower(c.Key)
		if prev, ok := byKey[k]; ok {
			return nil, fmt.Errorf("key %q used by both %q and %q", k, prev, c.Label)
		}
		byKey[k] = c.Label
	}
	return &Service{choices: choices, byKey: byKey}, nil
}

// All returns the configured choices in display order.
func (s *Service) All() []model.CategoryChoice {
	return s.choices
}

// Resolve interprets one line of operator input. ok is false unless the input is
// exactly one character bound to a category. persist is true when it was upper case.
func (s *Service) Resolve(input string) (label model.Category, persist, ok bool) {
	input = strings.TrimSpace(input)
	if utf8.RuneCountInString(input) != 1 {
		return "", false, false
	}
	r, _ := utf8.DecodeRuneInString(input)
	label, ok = s.byKey[unicode.ToLower(r)]
	if !ok {
		return "", false, false
	}
	return label, unicode.IsUpper(r), true
}

// Legend renders the choices as "q Groceries | e Eating out | ...".
func (s *Service) Legend() string {
	parts := make([]string, len(s.choices))
	for i, c := range s.choices {
		parts[i] = fmt.Sprintf("%c %s", unicode.ToLower(c.Key), c.Label)
	}
	return strings.Join(parts, " | ")
}
