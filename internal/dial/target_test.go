package dial

import (
	"testing"

	"github.com/rileyhilliard/adbdial/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in       string
		host     string
		port     int
		endpoint string
	}{
		{"192.168.1.23", "192.168.1.23", 5555, "192.168.1.23:5555"},
		{"192.168.1.23:40123", "192.168.1.23", 40123, "192.168.1.23:40123"},
		{"  pixel.lan  ", "pixel.lan", 5555, "pixel.lan:5555"},
		{"fe80::1", "fe80::1", 5555, "[fe80::1]:5555"},
		{"[fe80::1]", "fe80::1", 5555, "[fe80::1]:5555"},
		{"[fe80::1]:7000", "fe80::1", 7000, "[fe80::1]:7000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTarget(tt.in, 5555)
			require.NoError(t, err)
			assert.Equal(t, tt.host, got.Host)
			assert.Equal(t, tt.port, got.Port)
			assert.Equal(t, tt.endpoint, got.Endpoint())
			assert.Equal(t, tt.endpoint, got.String())
		})
	}
}

func TestParseTarget_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", ":5555", "host:0", "host:70000", "host:adb"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseTarget(in, 5555)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig), "got %v", err)
		})
	}
}
