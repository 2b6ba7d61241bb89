package widget

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/entrhq/widgetforge/pkg/browser"
	"github.com/entrhq/widgetforge/pkg/logging"
)

// ParametrizedRequest stands between a parametrized view class and its
// concrete instances. It is returned when the class is accessed on an owner
// and must be called with parameters before use.
type ParametrizedRequest struct {
	class  *ViewClass
	owner  Widget
	name   string
	logger *logging.Logger
}

func newRequest(c *ViewClass, owner Widget, name string) *ParametrizedRequest {
	return &ParametrizedRequest{class: c, owner: owner, name: name}
}

func (r *ParametrizedRequest) Parent() Widget            { return r.owner }
func (r *ParametrizedRequest) Browser() *browser.Browser { return r.owner.Browser() }
func (r *ParametrizedRequest) Name() string              { return r.name }

func (r *ParametrizedRequest) Logger() *logging.Logger {
	if r.logger == nil {
		r.logger = r.owner.Logger().Named(r.name)
	}
	return r.logger
}

// IsDisplayed fails: only concrete instances have a root to check.
func (r *ParametrizedRequest) IsDisplayed() (bool, error) {
	return false, fmt.Errorf("%s: %w", r.name, ErrParametersRequired)
}

// Widget fails: children exist only on concrete instances.
func (r *ParametrizedRequest) Widget(name string) (Widget, error) {
	return nil, fmt.Errorf("%s.%s: %w", r.name, name, ErrParametersRequired)
}

// Parameters returns the declared parameter names.
func (r *ParametrizedRequest) Parameters() []string { return r.class.params }

// Call binds positional then named arguments and builds a concrete view.
// Arguments are validated before anything touches the browser.
func (r *ParametrizedRequest) Call(args []any, named map[string]any) (*View, error) {
	params := r.class.params
	if len(args) > len(params) {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrTooManyParameters, r.name, len(params), len(args))
	}

	bound := make(map[string]any, len(params))
	for i, a := range args {
		bound[params[i]] = a
	}
	for k, val := range named {
		idx := indexOf(params, k)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s has no parameter %q", ErrUnknownParameter, r.name, k)
		}
		if idx < len(args) {
			return nil, fmt.Errorf("%w: %q for %s", ErrDuplicateParameter, k, r.name)
		}
		bound[k] = val
	}
	for _, p := range params {
		if _, ok := bound[p]; !ok {
			return nil, fmt.Errorf("%w: %q for %s", ErrMissingParameter, p, r.name)
		}
	}

	return r.class.New(r.owner, WithName(r.name), WithContext(bound))
}

// With binds positional arguments only.
func (r *ParametrizedRequest) With(args ...any) (*View, error) {
	return r.Call(args, nil)
}

// Named binds keyword arguments only.
func (r *ParametrizedRequest) Named(named map[string]any) (*View, error) {
	return r.Call(nil, named)
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func (r *ParametrizedRequest) tuples() ([][]any, error) {
	if r.class.enumerate == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoEnumerator, r.name)
	}
	return r.class.enumerate(r.owner)
}

// Len returns the number of occurrences on the page.
func (r *ParametrizedRequest) Len() (int, error) {
	t, err := r.tuples()
	if err != nil {
		return 0, err
	}
	return len(t), nil
}

// Index returns the i-th occurrence. Negative indexes count from the end.
func (r *ParametrizedRequest) Index(i int) (*View, error) {
	t, err := r.tuples()
	if err != nil {
		return nil, err
	}
	if i < 0 {
		i += len(t)
	}
	if i < 0 || i >= len(t) {
		return nil, fmt.Errorf("%w: %s[%d] of %d", ErrIndexOutOfRange, r.name, i, len(t))
	}
	return r.Call(t[i], nil)
}

// Slice returns occurrences [i, j) with Go slice bounds; negative bounds
// count from the end.
func (r *ParametrizedRequest) Slice(i, j int) ([]*View, error) {
	t, err := r.tuples()
	if err != nil {
		return nil, err
	}
	n := len(t)
	if i < 0 {
		i += n
	}
	if j < 0 {
		j += n
	}
	if i < 0 || j > n || i > j {
		return nil, fmt.Errorf("%w: %s[%d:%d] of %d", ErrIndexOutOfRange, r.name, i, j, n)
	}
	return r.build(t[i:j])
}

// All returns every occurrence in enumeration order.
func (r *ParametrizedRequest) All() ([]*View, error) {
	t, err := r.tuples()
	if err != nil {
		return nil, err
	}
	return r.build(t)
}

func (r *ParametrizedRequest) build(tuples [][]any) ([]*View, error) {
	views := make([]*View, 0, len(tuples))
	for _, args := range tuples {
		v, err := r.Call(args, nil)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// TupleKey encodes a parameter tuple as a map key.
func TupleKey(values ...any) string {
	b, err := json.Marshal(values)
	if err != nil {
		return fmt.Sprintf("%v", values)
	}
	return string(b)
}

// ParseTupleKey decodes a TupleKey. JSON numbers come back as float64.
func ParseTupleKey(key string) ([]any, error) {
	var values []any
	if err := json.Unmarshal([]byte(key), &values); err != nil {
		return nil, fmt.Errorf("invalid tuple key %q: %w", key, err)
	}
	return values, nil
}

func (r *ParametrizedRequest) key(args []any) any {
	if len(r.class.params) == 1 {
		return args[0]
	}
	return TupleKey(args...)
}

// Read maps each occurrence's key to its read value. Single-parameter
// templates are keyed by the bare value, others by TupleKey.
func (r *ParametrizedRequest) Read() (any, error) {
	t, err := r.tuples()
	if err != nil {
		return nil, err
	}
	out := make(map[any]any, len(t))
	for _, args := range t {
		v, err := r.Call(args, nil)
		if err != nil {
			return nil, err
		}
		val, err := v.Read()
		if err != nil {
			return nil, err
		}
		out[r.key(args)] = val
	}
	return out, nil
}

// Fill accepts the mapping Read produces, as map[any]any or map[string]any.
func (r *ParametrizedRequest) Fill(value any) (bool, error) {
	var entries map[any]any
	switch m := value.(type) {
	case map[any]any:
		entries = m
	case map[string]any:
		entries = make(map[any]any, len(m))
		for k, v := range m {
			entries[k] = v
		}
	default:
		return false, fmt.Errorf("%s: parametrized fill needs a map, got %T", r.name, value)
	}

	keys := make([]any, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j]) })

	changed := false
	for _, k := range keys {
		val := entries[k]
		args, err := r.argsForKey(k)
		if err != nil {
			return false, err
		}
		v, err := r.Call(args, nil)
		if err != nil {
			return false, err
		}
		ch, err := v.Fill(val)
		if err != nil {
			return false, err
		}
		changed = changed || ch
	}
	return changed, nil
}

func (r *ParametrizedRequest) argsForKey(k any) ([]any, error) {
	if len(r.class.params) == 1 {
		return []any{k}, nil
	}
	s, ok := k.(string)
	if !ok {
		return nil, fmt.Errorf("%s: key %v is not a tuple key", r.name, k)
	}
	return ParseTupleKey(s)
}
