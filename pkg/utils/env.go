package utils

import "os"

// Getenv reads the environment variable named by key, falling back to
// the given default when the variable is unset or empty. Empty values
// count as unset so a blank entry in a .env file does not clobber the
// built-in default.
func Getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
