// Package filter describes advanced list filters passed from the API to readers.
package filter

import (
	"fmt"
	"strings"
)

// ComparisonType is a filter operator.
type ComparisonType string

const (
	Equal          ComparisonType = "eq"
	NotEqual       ComparisonType = "neq"
	Less           ComparisonType = "lt"
	LessOrEqual    ComparisonType = "lte"
	Greater        ComparisonType = "gt"
	GreaterOrEqual ComparisonType = "gte"
	InList         ComparisonType = "in"
	Contains       ComparisonType = "contains" // ILIKE %val%
	IsNull         ComparisonType = "null"
	IsNotNull      ComparisonType = "not_null"
)

var known = map[ComparisonType]bool{
	Equal: true, NotEqual: true, Less: true, LessOrEqual: true, Greater: true,
	GreaterOrEqual: true, InList: true, Contains: true, IsNull: true, IsNotNull: true,
}

// Item is one filter condition.
type Item struct {
	Field    string         `json:"field"` // column name (snake_case)
	Operator ComparisonType `json:"operator"`
	Value    any            `json:"value"`
}

// Parse reads "field:op:value" (value optional for null checks; "in" takes a
// comma-separated list).
func Parse(raw string) (Item, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) < 2 || parts[0] == "" {
		return Item{}, fmt.Errorf("filter %q: expected field:operator[:value]", raw)
	}
	item := Item{Field: parts[0], Operator: ComparisonType(parts[1])}
	if !known[item.Operator] {
		return Item{}, fmt.Errorf("filter %q: unknown operator %q", raw, parts[1])
	}

	switch item.Operator {
	case IsNull, IsNotNull:
		return item, nil
	}
	if len(parts) != 3 {
		return Item{}, fmt.Errorf("filter %q: operator %q needs a value", raw, parts[1])
	}
	if item.Operator == InList {
		item.Value = strings.Split(parts[2], ",")
	} else {
		item.Value = parts[2]
	}
	return item, nil
}
