// Package querysql builds the SQL statements issued by the model layer and
// rewrites ":name" parameters into backend placeholders.
//
// CRITICAL: Table and column names are interpolated into statements; they
// come from schema definitions, never from user input. Values are always
// bound as parameters.
package querysql

import (
	"fmt"
	"strconv"
	"strings"
)

// Placeholder renders the n-th (1-based) positional parameter.
type Placeholder func(n int) string

// Question renders "?" placeholders (sqlite3, mysql).
func Question(int) string { return "?" }

// Dollar renders "$n" placeholders (postgres).
func Dollar(n int) string { return "$" + strconv.Itoa(n) }

// Compiler rewrites named-parameter SQL for one backend.
type Compiler struct {
	Placeholder Placeholder
}

// NewCompiler creates a Compiler; a nil placeholder defaults to Question.
func NewCompiler(p Placeholder) *Compiler {
	if p == nil {
		p = Question
	}
	return &Compiler{Placeholder: p}
}

// Named rewrites every ":name" parameter in query and returns the values
// from params in placeholder order. A parameter may appear more than once.
// Returns an error if a parameter has no value in params.
func (c *Compiler) Named(query string, params map[string]any) (string, []any, error) {
	var missing []string
	var args []any

	sql := c.rewrite(query, func(name string) {
		v, ok := params[name]
		if !ok {
			missing = append(missing, name)
		}
		args = append(args, v)
	})

	if len(missing) > 0 {
		return "", nil, fmt.Errorf("no value bound for parameter(s) %s", strings.Join(missing, ", "))
	}
	return sql, args, nil
}

// Positional binds args to the ":name" parameters of query in order of
// appearance. The names themselves are ignored. A query with no named
// parameters is returned unchanged with args, so native placeholders still
// work.
func (c *Compiler) Positional(query string, args []any) (string, []any, error) {
	names := Parameters(query)
	if len(names) == 0 {
		return query, args, nil
	}
	if len(names) != len(args) {
		return "", nil, fmt.Errorf("query has %d parameter(s), %d argument(s) given", len(names), len(args))
	}
	return c.rewrite(query, func(string) {}), args, nil
}

// Parameters returns the ":name" parameters of query in order of appearance.
func Parameters(query string) []string {
	var names []string
	NewCompiler(nil).rewrite(query, func(name string) {
		names = append(names, name)
	})
	return names
}

// rewrite scans query, replacing each named parameter with the next
// positional placeholder. Quoted strings, quoted identifiers, line comments
// and postgres "::" casts are copied verbatim.
func (c *Compiler) rewrite(query string, visit func(name string)) string {
	var b strings.Builder
	b.Grow(len(query))

	n := 0
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'' || ch == '"' || ch == '`':
			end := closingQuote(query, i, ch)
			b.WriteString(query[i:end])
			i = end - 1
		case ch == '-' && i+1 < len(query) && query[i+1] == '-':
			end := strings.IndexByte(query[i:], '\n')
			if end < 0 {
				end = len(query) - i
			}
			b.WriteString(query[i : i+end])
			i += end - 1
		case ch == ':' && i+1 < len(query) && query[i+1] == ':':
			b.WriteString("::")
			i++
		case ch == ':' && i+1 < len(query) && isIdentStart(query[i+1]):
			j := i + 1
			for j < len(query) && isIdentPart(query[j]) {
				j++
			}
			n++
			visit(query[i+1 : j])
			b.WriteString(c.Placeholder(n))
			i = j - 1
		default:
			b.WriteByte(ch)
		}
	}

	return b.String()
}

// closingQuote returns the index just past the quote that closes the quoted
// run starting at start. Doubled quotes are treated as escapes.
func closingQuote(s string, start int, quote byte) int {
	for i := start + 1; i < len(s); i++ {
		if s[i] != quote {
			continue
		}
		if i+1 < len(s) && s[i+1] == quote {
			i++
			continue
		}
		return i + 1
	}
	return len(s)
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}
