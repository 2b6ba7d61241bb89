package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Navigate navigates the session's page to the specified URL.
func (s *Session) Navigate(url string, opts NavigateOptions) error {
	playwrightOpts := playwright.PageGotoOptions{}

	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		playwrightOpts.WaitUntil = &waitUntil
	}

	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	_, err := s.Page.Goto(url, playwrightOpts)
	if err != nil {
		return fmt.Errorf("navigation failed: %w", wrapPlaywright(err))
	}

	s.CurrentURL = s.Page.URL()
	return nil
}

// Browser exposes the session page to widget trees.
func (s *Session) Browser(opts ...Option) *Browser {
	return New(NewPlaywrightDriver(s.Page), opts...)
}

// Content returns the serialized DOM of the current page. Feeding it to
// ParseDocument gives an offline snapshot that widgets can read.
func (s *Session) Content() (string, error) {
	content, err := s.Page.Content()
	if err != nil {
		return "", fmt.Errorf("content extraction failed: %w", wrapPlaywright(err))
	}
	return content, nil
}

func (s *Session) close() []error {
	var errs []error
	if err := s.Page.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.Context.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.Instance.Close(); err != nil {
		errs = append(errs, err)
	}
	return errs
}
