// Package locator normalizes the many shapes a caller can use to point at an
// element into a canonical (strategy, value) pair.
//
// Accepted inputs, tried in order:
//
//  1. A Locator, or anything implementing Locatable
//  2. A string that looks like a bare CSS id or class ("#login", ".btn")
//  3. A string with an XPath prefix ("/", "./", ".//", "..", "(")
//  4. A string with an explicit engine prefix ("text=Submit", "xpath=//a")
//  5. A map or two-element tuple naming an engine from the allow-list
//
// Any other string is treated as CSS verbatim.
package locator

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Strategy names a selector engine.
type Strategy string

const (
	CSS         Strategy = "css"
	XPath       Strategy = "xpath"
	Text        Strategy = "text"
	ID          Strategy = "id"
	Role        Strategy = "role"
	TestID      Strategy = "data-testid"
	Placeholder Strategy = "placeholder"
	Label       Strategy = "label"
	Alt         Strategy = "alt"
	Title       Strategy = "title"
)

var (
	// ErrUnresolvable is returned when a value cannot be turned into a locator.
	ErrUnresolvable = errors.New("unresolvable locator")

	// ErrUnsupportedEngine is returned for an explicit engine outside the allow-list.
	ErrUnsupportedEngine = errors.New("unsupported locator engine")
)

var supported = map[Strategy]bool{
	CSS:         true,
	XPath:       true,
	Text:        true,
	ID:          true,
	Role:        true,
	TestID:      true,
	Placeholder: true,
	Label:       true,
	Alt:         true,
	Title:       true,
}

var cssIDOrClass = regexp.MustCompile(`^[#.][A-Za-z_][\w-]*$`)

var xpathPrefixes = []string{"/", "./", ".//", "..", "("}

// Locator is a canonical, immutable element locator.
type Locator struct {
	Strategy Strategy
	Value    string
}

// Locatable is implemented by anything that can describe how to find itself.
type Locatable interface {
	Locator() (Locator, error)
}

// New builds a locator for an explicit engine.
func New(strategy Strategy, value string) (Locator, error) {
	if !supported[strategy] {
		return Locator{}, fmt.Errorf("%w: %q", ErrUnsupportedEngine, strategy)
	}
	return Locator{Strategy: strategy, Value: value}, nil
}

// By is the keyword form of New.
func By(engine, value string) (Locator, error) {
	return New(Strategy(engine), value)
}

// MustResolve is like Resolve but panics on error. Intended for package-level
// declarations.
func MustResolve(v any) Locator {
	loc, err := Resolve(v)
	if err != nil {
		panic(err)
	}
	return loc
}

// Resolve turns v into a Locator.
func Resolve(v any) (Locator, error) {
	switch t := v.(type) {
	case Locator:
		return t, nil
	case *Locator:
		if t == nil {
			return Locator{}, fmt.Errorf("%w: nil *Locator", ErrUnresolvable)
		}
		return *t, nil
	case Locatable:
		return resolveLocatable(t)
	case string:
		return fromString(t)
	case map[string]string:
		return fromMap(t)
	case [2]string:
		return By(t[0], t[1])
	case []string:
		if len(t) != 2 {
			return Locator{}, fmt.Errorf("%w: tuple needs exactly 2 elements, got %d", ErrUnresolvable, len(t))
		}
		return By(t[0], t[1])
	}
	return Locator{}, fmt.Errorf("%w: %v (%T)", ErrUnresolvable, v, v)
}

// resolveLocatable follows a single level of indirection: a Locatable whose
// locator is produced by another Locatable.
func resolveLocatable(l Locatable) (Locator, error) {
	loc, err := l.Locator()
	if err != nil {
		return Locator{}, err
	}
	if loc.Strategy == "" {
		return Locator{}, fmt.Errorf("%w: %T returned an empty locator", ErrUnresolvable, l)
	}
	return loc, nil
}

func fromString(s string) (Locator, error) {
	if s == "" {
		return Locator{}, fmt.Errorf("%w: empty string", ErrUnresolvable)
	}
	if cssIDOrClass.MatchString(s) {
		return Locator{Strategy: CSS, Value: s}, nil
	}
	for _, prefix := range xpathPrefixes {
		if strings.HasPrefix(s, prefix) {
			return Locator{Strategy: XPath, Value: s}, nil
		}
	}
	if engine, value, ok := strings.Cut(s, "="); ok {
		if supported[Strategy(engine)] {
			return Locator{Strategy: Strategy(engine), Value: unquote(value)}, nil
		}
	}
	return Locator{Strategy: CSS, Value: s}, nil
}

func fromMap(m map[string]string) (Locator, error) {
	if len(m) != 1 {
		return Locator{}, fmt.Errorf("%w: map must have exactly one engine key, got %d", ErrUnresolvable, len(m))
	}
	for engine, value := range m {
		return By(engine, value)
	}
	return Locator{}, nil
}

// unquote strips a single layer of double quotes from engine values written as
// text="Submit".
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if out, err := strconv.Unquote(s); err == nil {
			return out
		}
	}
	return s
}

// String renders the locator as a Playwright-style selector.
func (l Locator) String() string {
	switch l.Strategy {
	case CSS:
		return l.Value
	case XPath:
		return "xpath=" + l.Value
	default:
		return fmt.Sprintf("%s=%s", l.Strategy, strconv.Quote(l.Value))
	}
}

// IsZero reports whether the locator is unset.
func (l Locator) IsZero() bool {
	return l.Strategy == "" && l.Value == ""
}
