package resolver

import (
	"errors"
	"regexp"
	"strings"
)

// DefaultAliases are the built-in placeholder aliases.
var DefaultAliases = map[string]string{
	"numeric": `\d+`,
	"alpha":   `[a-zA-Z]+`,
	"alnum":   `[a-zA-Z0-9]+`,
	"any":     `.+`,
}

// expressionDelimiter delimits placeholder expressions in definition files
// and may not appear unescaped inside one.
const expressionDelimiter = '~'

var (
	repeatedSlashRe = regexp.MustCompile(`/{2,}`)

	errUnescapedDelimiter = errors.New("unescaped '~' in expression")
)

// Placeholder is a "{name}" or "{name:expr}" token of a pattern.
type Placeholder struct {
	Name string
	Expr string
}

// token is a brace-delimited span of a pattern. start and end cover the braces.
type token struct {
	start int
	end   int
	body  string
}

func (t token) name() string {
	name, _, _ := strings.Cut(t.body, ":")
	return strings.TrimSpace(name)
}

func (t token) inline() bool {
	return strings.Contains(t.body, ":")
}

// scanTokens finds top-level "{...}" tokens. Nested braces (e.g. `\d{2}` in an
// expression) stay inside their token, and escaped characters are skipped.
func scanTokens(pattern string) []token {
	var tokens []token
	depth, start := 0, -1

	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			if depth > 0 {
				i++
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				tokens = append(tokens, token{start: start, end: i + 1, body: pattern[start+1 : i]})
			}
		}
	}

	return tokens
}

// unbalancedBrace returns the offset of the first brace without a partner, or
// -1 when every "{" is closed and no "}" appears outside a token.
func unbalancedBrace(pattern string) int {
	depth, open := 0, -1

	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			if depth > 0 {
				i++
			}
		case '{':
			if depth == 0 {
				open = i
			}
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}

	if depth > 0 {
		return open
	}
	return -1
}

// rewriteTokens rebuilds pattern, replacing each token with fn(token).
func rewriteTokens(pattern string, tokens []token, fn func(token) string) string {
	if len(tokens) == 0 {
		return pattern
	}

	var b strings.Builder
	b.Grow(len(pattern))
	last := 0
	for _, t := range tokens {
		b.WriteString(pattern[last:t.start])
		b.WriteString(fn(t))
		last = t.end
	}
	b.WriteString(pattern[last:])

	return b.String()
}

// joinFragments joins pattern fragments into a single absolute pattern.
// Each fragment is trimmed of slashes and empty fragments are skipped.
func joinFragments(fragments []string) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		f = strings.Trim(f, "/")
		if f == "" {
			continue
		}
		parts = append(parts, f)
	}

	return repeatedSlashRe.ReplaceAllString("/"+strings.Join(parts, "/"), "/")
}

// Placeholders returns the tokens of a pattern in order of appearance.
// Expr is empty for tokens without an expression.
func Placeholders(pattern string) []Placeholder {
	tokens := scanTokens(pattern)
	out := make([]Placeholder, 0, len(tokens))
	for _, t := range tokens {
		name, expr, _ := strings.Cut(t.body, ":")
		out = append(out, Placeholder{Name: strings.TrimSpace(name), Expr: expr})
	}
	return out
}

// NormalizePattern drops placeholder names from "{name:expr}" tokens, leaving
// "{expr}". Two patterns with the same normalized form match the same paths.
func NormalizePattern(pattern string) string {
	return rewriteTokens(pattern, scanTokens(pattern), func(t token) string {
		_, expr, ok := strings.Cut(t.body, ":")
		if !ok {
			return "{" + t.body + "}"
		}
		return "{" + expr + "}"
	})
}

// compileExpression checks that expr is usable as an anchored placeholder expression.
func compileExpression(expr string) error {
	if hasUnescaped(expr, expressionDelimiter) {
		return errUnescapedDelimiter
	}
	_, err := regexp.Compile("^(?:" + expr + ")$")
	return err
}

func hasUnescaped(s string, c byte) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case c:
			return true
		}
	}
	return false
}

// ReplacePlaceholders rebuilds pattern with every token replaced by fn's result.
// It stops at the first error.
func ReplacePlaceholders(pattern string, fn func(Placeholder) (string, error)) (string, error) {
	var firstErr error
	out := rewriteTokens(pattern, scanTokens(pattern), func(t token) string {
		if firstErr != nil {
			return ""
		}
		name, expr, _ := strings.Cut(t.body, ":")
		s, err := fn(Placeholder{Name: strings.TrimSpace(name), Expr: expr})
		if err != nil {
			firstErr = err
		}
		return s
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}
