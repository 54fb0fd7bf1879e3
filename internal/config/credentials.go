package config

import "strings"

// HasCredential reports whether key looks like a real credential. Empty
// values and the template placeholders shipped in sample configs
// (YOUR_KEY_HERE, gsk_YOUR_KEY_HERE, YOUR_ABUSEIPDB_KEY) count as unset.
func HasCredential(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	upper := strings.ToUpper(key)
	return !(strings.Contains(upper, "YOUR_") && strings.Contains(upper, "KEY"))
}
