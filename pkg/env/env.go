// Package env holds one-off environment lookups that happen before the
// typed config is loaded (notably logger bootstrap).
package env

import "os"

// Get reads key from the environment, returning fallback when unset or empty.
func Get(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
