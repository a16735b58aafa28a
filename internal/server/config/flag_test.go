package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:8000", "-g", ":9090", "-d", "db", "-s", "secret", "-t", "30", "-l", "warn",
		}, expected: &Config{
			HTTPAddr:                "127.0.0.1:8000",
			GRPCAddr:                ":9090",
			DatabaseDSN:             "db",
			SecretKey:               "secret",
			SessionValidityDuration: 30 * time.Minute,
			LogLevel:                "warn",
		}},
		{name: "foreign flags are ignored", args: []string{"cmd",
			"-c", "cfg.json", "-env", ".env", "-a", ":1",
		}, expected: &Config{
			HTTPAddr: ":1",
		}},
		{name: "bad duration panics", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}

func TestParseFlags_KeepsSessionValidityWithoutT(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd", "-l", "debug"}

	config := &Config{SessionValidityDuration: 90 * time.Second}
	parseFlags(config)

	assert.Equal(t, 90*time.Second, config.SessionValidityDuration)
	assert.Equal(t, "debug", config.LogLevel)
}
