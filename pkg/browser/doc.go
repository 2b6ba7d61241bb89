// Package browser defines the capability contract the widget layer consumes
// from a browser, and ships two drivers that satisfy it.
//
// # Architecture
//
// The package is built around three concepts:
//
//  1. Driver: element-level operations (find, text, click, fill, ...) on opaque
//     Element handles. Drivers are thin pass-throughs with no widget knowledge.
//  2. Browser: wraps a Driver with locator-level lookups, not-found and timeout
//     conditions, bounded waits and the product version under test.
//  3. SessionManager: launches Playwright browsers and hands out Sessions whose
//     pages are exposed as Browsers.
//
// # Drivers
//
//   - PlaywrightDriver: backed by playwright.Locator handles of a live page.
//   - DocumentDriver: an in-memory HTML document (golang.org/x/net/html) with
//     CSS (cascadia) and XPath (htmlquery) lookup. Fills and clicks mutate the
//     document, which makes it suitable for hermetic tests and offline parsing
//     of saved pages.
//
// # Example Usage
//
//	manager := browser.NewSessionManager()
//	if err := manager.Initialize(); err != nil {
//	    return err
//	}
//	defer manager.Shutdown()
//
//	session, err := manager.StartSession("ui", browser.SessionOptions{Headless: true})
//	if err != nil {
//	    return err
//	}
//	if err := session.Navigate("https://example.com", browser.NavigateOptions{}); err != nil {
//	    return err
//	}
//	b := session.Browser(browser.WithProductVersion("5.11"))
//	el, err := b.Element(locator.MustResolve("#login"), nil)
package browser
