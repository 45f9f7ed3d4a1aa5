package instance

import "os"

// GetID returns the process instance identifier used in logs.
func GetID(fallback string) string {
	for _, key := range []string{"CATALOG_INSTANCE_ID", "DYNO"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallback
}
