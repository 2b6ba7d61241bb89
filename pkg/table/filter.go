package table

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// Op is a string comparison used by row filters.
type Op int

const (
	OpEquals Op = iota
	OpContains
	OpStartsWith
	OpEndsWith
	OpMatches
	OpGlob
)

var opNames = map[Op]string{
	OpEquals:     "equals",
	OpContains:   "contains",
	OpStartsWith: "startswith",
	OpEndsWith:   "endswith",
	OpMatches:    "matches",
	OpGlob:       "glob",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Filter selects rows by a cell value or a row attribute. Build filters with
// Column, Attr or the shorthands.
type Filter struct {
	column any
	attr   string
	op     Op
	value  string

	re   *regexp.Regexp
	glob glob.Glob
	err  error
}

func newFilter(f Filter) Filter {
	switch f.op {
	case OpMatches:
		f.re, f.err = regexp.Compile(f.value)
	case OpGlob:
		f.glob, f.err = glob.Compile(f.value)
	}
	if f.err != nil {
		f.err = fmt.Errorf("filter %s: %w", f, f.err)
	}
	return f
}

// Column filters on the value of the cell in col: its displayed column
// widget when it has one, otherwise its normalized text.
func Column(col any, op Op, value any) Filter {
	return newFilter(Filter{column: col, op: op, value: fmt.Sprint(value)})
}

// Attr filters on an attribute of the row element. Rows without the
// attribute never match.
func Attr(name string, op Op, value any) Filter {
	return newFilter(Filter{attr: name, op: op, value: fmt.Sprint(value)})
}

func Equals(col, value any) Filter        { return Column(col, OpEquals, value) }
func Contains(col any, s string) Filter   { return Column(col, OpContains, s) }
func StartsWith(col any, s string) Filter { return Column(col, OpStartsWith, s) }
func EndsWith(col any, s string) Filter   { return Column(col, OpEndsWith, s) }

// Matches filters with a regular expression; unanchored, like regexp.MatchString.
func Matches(col any, pattern string) Filter { return Column(col, OpMatches, pattern) }

// Glob filters with a shell-style pattern such as "inv-*-2024".
func Glob(col any, pattern string) Filter { return Column(col, OpGlob, pattern) }

func (f Filter) String() string {
	if f.attr != "" {
		return fmt.Sprintf("@%s %s %q", f.attr, f.op, f.value)
	}
	return fmt.Sprintf("%v %s %q", f.column, f.op, f.value)
}

func (f Filter) test(s string) bool {
	switch f.op {
	case OpEquals:
		return s == f.value
	case OpContains:
		return strings.Contains(s, f.value)
	case OpStartsWith:
		return strings.HasPrefix(s, f.value)
	case OpEndsWith:
		return strings.HasSuffix(s, f.value)
	case OpMatches:
		return f.re.MatchString(s)
	case OpGlob:
		return f.glob.Match(s)
	}
	return false
}

// filterGroup holds the filters sharing one target.
type filterGroup struct {
	column  int
	attr    string
	filters []Filter
}

func (g filterGroup) any(s string) bool {
	for _, f := range g.filters {
		if f.test(s) {
			return true
		}
	}
	return false
}

// group resolves filter columns and groups filters by target, keeping the
// order in which targets first appear.
func (t *Table) group(filters []Filter) ([]filterGroup, error) {
	var groups []filterGroup
	index := make(map[string]int)
	for _, f := range filters {
		if f.err != nil {
			return nil, f.err
		}
		g := filterGroup{attr: f.attr}
		key := "@" + f.attr
		if f.attr == "" {
			col, err := t.ColumnIndex(f.column)
			if err != nil {
				return nil, fmt.Errorf("filter %s: %w", f, err)
			}
			g.column = col
			key = fmt.Sprintf("#%d", col)
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, g)
		}
		groups[i].filters = append(groups[i].filters, f)
	}
	return groups, nil
}
