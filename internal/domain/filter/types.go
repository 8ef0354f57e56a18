// Package filter describes ad-hoc list conditions sent by clients.
package filter

import "fmt"

// ComparisonType names a comparison operator.
type ComparisonType string

const (
	Equal          ComparisonType = "eq"
	NotEqual       ComparisonType = "neq"
	Less           ComparisonType = "lt"
	LessOrEqual    ComparisonType = "lte"
	Greater        ComparisonType = "gt"
	GreaterOrEqual ComparisonType = "gte"
	InList         ComparisonType = "in"
	NotInList      ComparisonType = "nin"
	Contains       ComparisonType = "contains"  // case-insensitive substring
	NotContains    ComparisonType = "ncontains" // case-insensitive substring absent

	IsNull    ComparisonType = "null"
	IsNotNull ComparisonType = "not_null"
)

// Item is one filter condition.
type Item struct {
	Field    string         `json:"field"` // column name (camelCase, as in JSON)
	Operator ComparisonType `json:"operator"`
	Value    any            `json:"value"`
}

// Validate checks that the operator is known.
func (i Item) Validate() error {
	switch i.Operator {
	case Equal, NotEqual, Less, LessOrEqual, Greater, GreaterOrEqual,
		InList, NotInList, Contains, NotContains, IsNull, IsNotNull:
		return nil
	default:
		return fmt.Errorf("unknown filter operator %q", i.Operator)
	}
}
