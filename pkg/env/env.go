package env

import "os"

// Get reads an environment variable, substituting fallback when the variable
// is unset or empty. Empty is treated as unset on purpose: compose files and
// CI templates often export blank values.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
