// Package naming provides the strategies used to combine group prefixes and a
// route's own name into the final route name.
package naming

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrUnknownStrategy is returned by Lookup for an unregistered strategy name.
var ErrUnknownStrategy = errors.New("unknown naming strategy")

// Strategy combines ordered name segments (root group prefix first, route
// name last) into a single route name.
type Strategy interface {
	Combine(segments []string) string
}

// StrategyFunc adapts a plain function to Strategy.
type StrategyFunc func(segments []string) string

// Combine calls f(segments).
func (f StrategyFunc) Combine(segments []string) string {
	return f(segments)
}

// Built-in strategies.
var (
	// SnakeCase joins segments with "_": ["one", "two", "name"] -> "one_two_name"
	SnakeCase Strategy = StrategyFunc(func(segments []string) string {
		return strings.Join(segments, "_")
	})

	// Dot joins segments with ".": ["one", "two", "name"] -> "one.two.name"
	Dot Strategy = StrategyFunc(func(segments []string) string {
		return strings.Join(segments, ".")
	})

	// CamelCase lower-cases the first segment and capitalizes the rest:
	// ["one", "two", "name"] -> "oneTwoName"
	CamelCase Strategy = StrategyFunc(camelCase)
)

var strategies = map[string]Strategy{
	"snake":      SnakeCase,
	"snake_case": SnakeCase,
	"dot":        Dot,
	"camel":      CamelCase,
	"camelcase":  CamelCase,
}

// Lookup returns a built-in strategy by name (case-insensitive).
func Lookup(name string) (Strategy, error) {
	s, ok := strategies[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return s, nil
}

func camelCase(segments []string) string {
	var b strings.Builder
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if i == 0 || b.Len() == 0 {
			b.WriteString(mapFirst(seg, unicode.ToLower))
			continue
		}
		b.WriteString(mapFirst(seg, unicode.ToUpper))
	}
	return b.String()
}

// mapFirst applies fn to the first rune of s.
func mapFirst(s string, fn func(rune) rune) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(fn(r)) + s[size:]
}
