package widget

import (
	"fmt"
	"strings"
)

// Lookup walks a dotted path of child names from w. The segment "parent"
// ascends one level.
func Lookup(w Widget, path string) (Widget, error) {
	cur := w
	for _, seg := range strings.Split(path, ".") {
		if seg == "parent" {
			if cur.Parent() == nil {
				return nil, fmt.Errorf("%w: %q ascends past the root", ErrUnknownWidget, path)
			}
			cur = cur.Parent()
			continue
		}
		c, ok := cur.(Container)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no children (path %q)", ErrUnknownWidget, cur.Name(), path)
		}
		next, err := c.Widget(seg)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
