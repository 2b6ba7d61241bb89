package locator

import (
	"fmt"
	"strings"
)

// QuoteXPath renders s as an XPath 1.0 string literal. XPath has no escape
// sequences, so a value containing both quote kinds is split into concat().
func QuoteXPath(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if part != "" {
			quoted = append(quoted, "'"+part+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

// XPath translates the locator into an XPath expression evaluated relative to
// the context node. CSS locators have no XPath form and return false.
func (l Locator) XPath() (string, bool) {
	q := QuoteXPath(l.Value)
	switch l.Strategy {
	case XPath:
		return l.Value, true
	case Text:
		return fmt.Sprintf(".//*[normalize-space(.)=%s and not(.//*[normalize-space(.)=%s])]", q, q), true
	case ID:
		return fmt.Sprintf(".//*[@id=%s]", q), true
	case Role:
		return fmt.Sprintf(".//*[@role=%s]", q), true
	case TestID:
		return fmt.Sprintf(".//*[@data-testid=%s]", q), true
	case Placeholder:
		return fmt.Sprintf(".//*[@placeholder=%s]", q), true
	case Alt:
		return fmt.Sprintf(".//*[@alt=%s]", q), true
	case Title:
		return fmt.Sprintf(".//*[@title=%s]", q), true
	case Label:
		return fmt.Sprintf(".//*[@aria-label=%s or @id=//label[normalize-space(.)=%s]/@for]", q, q), true
	}
	return "", false
}
