package simulation

import (
	"errors"
	"fmt"
	"strings"
)

// Variable selects one column of the result table.
type Variable string

const (
	BeginOfDay Variable = "BegOfDay"
	EndOfDay   Variable = "EndOfDay"
	Missed     Variable = "Missed"
)

var ErrUnknownVariable = errors.New("unknown variable")

var variableLabels = map[Variable]string{
	BeginOfDay: "Beg. of Day",
	EndOfDay:   "End of Day",
	Missed:     "Missed",
}

// Variables returns the selectable columns in display order.
func Variables() []Variable {
	return []Variable{BeginOfDay, EndOfDay, Missed}
}

// Label returns the human-readable name of the variable.
func (v Variable) Label() string {
	if label, ok := variableLabels[v]; ok {
		return label
	}
	return string(v)
}

// ParseVariable accepts the column names case-insensitively, plus the
// snake_case JSON field names. Empty input selects BeginOfDay.
func ParseVariable(s string) (Variable, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "begofday", "begin_of_day", "beginofday":
		return BeginOfDay, nil
	case "endofday", "end_of_day":
		return EndOfDay, nil
	case "missed":
		return Missed, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariable, s)
}

// Series returns the selected column, one value per day.
func (r *Result) Series(v Variable) ([]int, error) {
	var pick func(DayRecord) int
	switch v {
	case BeginOfDay:
		pick = func(d DayRecord) int { return d.BeginOfDay }
	case EndOfDay:
		pick = func(d DayRecord) int { return d.EndOfDay }
	case Missed:
		pick = func(d DayRecord) int { return d.Missed }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, string(v))
	}

	values := make([]int, 0, len(r.Records))
	for _, rec := range r.Records {
		values = append(values, pick(rec))
	}
	return values, nil
}
