package widget

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/entrhq/widgetforge/pkg/locator"
)

// Resolvable is a deferred constructor argument evaluated against the widget
// that owns the declaration.
type Resolvable interface {
	Resolve(owner Widget) (any, error)
}

const maxResolveDepth = 8

// ResolveArg evaluates v against owner until it is no longer Resolvable.
func ResolveArg(owner Widget, v any) (any, error) {
	for i := 0; i < maxResolveDepth; i++ {
		r, ok := v.(Resolvable)
		if !ok {
			return v, nil
		}
		var err error
		if v, err = r.Resolve(owner); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("deferred argument nested deeper than %d levels", maxResolveDepth)
}

// VersionPick selects a value by product version. Keys are versions such as
// "5.11" or "v2.3.1"; the value of the highest key not above the product
// version wins. The "" key is the lowest version and the fallback for an
// unknown product version.
type VersionPick map[string]any

func canonicalVersion(v string) string {
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

func (p VersionPick) Resolve(owner Widget) (any, error) {
	current := canonicalVersion(owner.Browser().ProductVersion())
	if current == "" {
		if v, ok := p[""]; ok {
			return v, nil
		}
		return nil, fmt.Errorf("%w: product version unknown", ErrNoVersionMatch)
	}
	if !semver.IsValid(current) {
		return nil, fmt.Errorf("%w: invalid product version %q", ErrNoVersionMatch, current)
	}

	keys := make([]string, 0, len(p))
	for k := range p {
		if k != "" && !semver.IsValid(canonicalVersion(k)) {
			return nil, fmt.Errorf("invalid version key %q", k)
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return semver.Compare(canonicalVersion(keys[i]), canonicalVersion(keys[j])) < 0
	})

	for i := len(keys) - 1; i >= 0; i-- {
		k := keys[i]
		if k == "" || semver.Compare(canonicalVersion(k), current) <= 0 {
			return p[k], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoVersionMatch, current)
}

var placeholder = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)(?:\|(quote|lower|upper|string))?\}`)

// Render substitutes {name} placeholders from ctx. Supported filters:
// quote (XPath literal), lower, upper, string.
func Render(template string, ctx map[string]any) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(template, func(m string) string {
		sub := placeholder.FindStringSubmatch(m)
		v, ok := ctx[sub[1]]
		if !ok {
			missing = append(missing, sub[1])
			return m
		}
		s := fmt.Sprint(v)
		switch sub[2] {
		case "quote":
			return locator.QuoteXPath(s)
		case "lower":
			return strings.ToLower(s)
		case "upper":
			return strings.ToUpper(s)
		}
		return s
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s in %q", ErrMissingParameter, strings.Join(missing, ", "), template)
	}
	return out, nil
}

// ParametrizedString renders against the owner's context.
type ParametrizedString string

func (s ParametrizedString) Resolve(owner Widget) (any, error) {
	return Render(string(s), ContextOf(owner))
}

// ParametrizedLocator renders against the owner's context and resolves the
// result as a locator.
type ParametrizedLocator string

func (s ParametrizedLocator) Resolve(owner Widget) (any, error) {
	rendered, err := Render(string(s), ContextOf(owner))
	if err != nil {
		return nil, err
	}
	return locator.Resolve(rendered)
}

// Param resolves to a single context value.
type Param string

func (p Param) Resolve(owner Widget) (any, error) {
	v, ok := ContextOf(owner)[string(p)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingParameter, string(p))
	}
	return v, nil
}
