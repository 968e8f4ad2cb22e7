// Package planner orchestrates a generation request end to end: fetch
// upstream data, normalize it for the requested scope, build the three ICS
// artifacts and run them through the cache.
package planner

import (
	"fmt"
	"strings"
)

// Scope selects how much of the calendar a request covers.
type Scope string

const (
	ScopeDay   Scope = "day"
	ScopeMonth Scope = "month"
	ScopeYear  Scope = "year"
)

// ScopeError reports an unrecognized scope value.
type ScopeError struct {
	Value string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("unknown scope %q (want day, month or year)", e.Value)
}

// ParseScope parses a scope string. "today" is accepted as an alias of
// "day" for compatibility with older clients.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "today":
		return ScopeDay, nil
	case "month":
		return ScopeMonth, nil
	case "year":
		return ScopeYear, nil
	}
	return "", &ScopeError{Value: s}
}
