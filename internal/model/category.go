package model

// Category is a spending label. The zero value means "not yet categorized".
type Category string

// CategoryChoice binds a single keystroke to a category label.
type CategoryChoice struct {
	Key   rune
	Label Category
}
