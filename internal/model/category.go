package model

import "strings"

// Category is one of the three ordinal SDQ answer values. The zero value
// (CategoryUnresolved) means the respondent's text could not be pinned to an
// option; callers must treat it as "needs interpretation", never as a default.
type Category string

const (
	CategoryUnresolved    Category = ""
	CategoryNotTrue       Category = "Not True"
	CategorySomewhatTrue  Category = "Somewhat True"
	CategoryCertainlyTrue Category = "Certainly True"
)

// Categories lists the three selectable options in scoring order.
var Categories = []Category{CategoryNotTrue, CategorySomewhatTrue, CategoryCertainlyTrue}

func (c Category) Valid() bool {
	return c == CategoryNotTrue || c == CategorySomewhatTrue || c == CategoryCertainlyTrue
}

// ParseCategory accepts an exact canonical phrase (case-insensitive) and
// returns the matching Category, or CategoryUnresolved.
func ParseCategory(s string) Category {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c
		}
	}
	return CategoryUnresolved
}
