//go:build testing
// +build testing

package config

// ResetGlobal resets the global configuration.
// This is a test-only helper to ensure a clean state between tests.
func ResetGlobal() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = nil
}
