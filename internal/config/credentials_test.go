package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCredential(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"", false},
		{"   ", false},
		{"YOUR_KEY_HERE", false},
		{"gsk_YOUR_KEY_HERE", false},
		{"YOUR_ABUSEIPDB_KEY", false},
		{"your_api_key", false},
		{"gsk_4f9a0c1d2e", true},
		{"0123456789abcdef", true},
		{"KEYSTONE", true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, HasCredential(tt.key))
		})
	}
}
