package widget

import (
	"fmt"
	"time"

	"github.com/entrhq/widgetforge/pkg/browser"
	"github.com/entrhq/widgetforge/pkg/config"
)

// FillItem is one widget value, already filtered and in declaration order.
type FillItem struct {
	Name  string
	Value any
}

// FillStrategy decides how a view applies its FillItems.
type FillStrategy interface {
	Fill(v *View, items []FillItem) (bool, error)

	// RespectParent makes child views without their own strategy share
	// this instance.
	RespectParent() bool
}

// DefaultFillStrategy fills widgets one after another. Widgets that cannot be
// filled or are missing from the page are skipped with a warning.
type DefaultFillStrategy struct {
	Respect bool
}

func (s *DefaultFillStrategy) RespectParent() bool { return s.Respect }

func (s *DefaultFillStrategy) Fill(v *View, items []FillItem) (bool, error) {
	changed := false
	for _, item := range items {
		w, err := v.Widget(item.Name)
		if skippable(err) {
			v.Logger().Warnf("fill skipped %s: %v", item.Name, err)
			continue
		}
		if err != nil {
			return false, err
		}
		ch, err := fillOne(v, item, w)
		if err != nil {
			return false, err
		}
		changed = changed || ch
	}
	return changed, nil
}

func fillOne(v *View, item FillItem, w Widget) (bool, error) {
	ch, err := Fill(w, item.Value)
	if skippable(err) {
		v.Logger().Warnf("fill skipped %s: %v", item.Name, err)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: fill %s: %w", v.Name(), item.Name, err)
	}
	if ch {
		v.Logger().Debugf("filled %s", item.Name)
	}
	return ch, nil
}

// WaitFillStrategy waits for each widget to be displayed before filling it,
// for forms where filling one field reveals the next. Zero Timeout or
// Interval fall back to the configured fill settings.
type WaitFillStrategy struct {
	Timeout  time.Duration
	Interval time.Duration
	Respect  bool
}

// NewWaitFillStrategy uses the configured wait timeout and poll interval.
func NewWaitFillStrategy(respectParent bool) *WaitFillStrategy {
	cfg := config.Fill()
	return &WaitFillStrategy{
		Timeout:  cfg.WaitTimeout,
		Interval: cfg.PollInterval,
		Respect:  respectParent,
	}
}

func (s *WaitFillStrategy) RespectParent() bool { return s.Respect }

func (s *WaitFillStrategy) bounds() (time.Duration, time.Duration) {
	timeout, interval := s.Timeout, s.Interval
	cfg := config.Fill()
	if timeout <= 0 {
		timeout = cfg.WaitTimeout
	}
	if interval <= 0 {
		interval = cfg.PollInterval
	}
	return timeout, interval
}

func (s *WaitFillStrategy) Fill(v *View, items []FillItem) (bool, error) {
	timeout, interval := s.bounds()
	changed := false
	for _, item := range items {
		w, err := v.Widget(item.Name)
		if skippable(err) {
			v.Logger().Warnf("fill skipped %s: %v", item.Name, err)
			continue
		}
		if err != nil {
			return false, err
		}

		v.Logger().Debugf("waiting for %s", item.Name)
		err = browser.Poll(timeout, interval, func() (bool, error) {
			return w.IsDisplayed()
		})
		if err != nil {
			return false, fmt.Errorf("%s: wait for %s: %w", v.Name(), item.Name, err)
		}

		ch, err := fillOne(v, item, w)
		if err != nil {
			return false, err
		}
		changed = changed || ch
	}
	return changed, nil
}
