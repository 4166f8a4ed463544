package env

import (
	"os"
	"strings"
)

// Prefix namespaces the service environment.
const Prefix = "STOREFRONT_"

// Get returns STOREFRONT_<key> when set, then the bare key, then fallback.
// The bare name keeps platform variables such as PORT working.
func Get(key, fallback string) string {
	if !strings.HasPrefix(key, Prefix) {
		if val := strings.TrimSpace(os.Getenv(Prefix + key)); val != "" {
			return val
		}
	}
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}
