package powerflux_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/powerflux"
	"github.com/viant/powerflux/policy"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	testCases := []struct {
		name        string
		file        string
		content     string
		expectErr   bool
		expectSafe  float64
		expectMax   float64
		expectDup   string
		expectEvent bool
	}{
		{
			name: "yaml overrides",
			file: "config.yaml",
			content: `limits:
  maxCapacity: 200
  safeCapacity: 180
  deviceMax: 50
policy:
  duplicate: replace
events:
  enabled: false
`,
			expectSafe: 180,
			expectMax:  50,
			expectDup:  policy.DuplicateReplace,
		},
		{
			name:        "json partial keeps defaults",
			file:        "config.json",
			content:     `{"limits":{"safeCapacity":80}}`,
			expectSafe:  80,
			expectMax:   40,
			expectDup:   policy.DuplicateReject,
			expectEvent: true,
		},
		{
			name:      "invalid limits",
			file:      "invalid.yaml",
			content:   "limits:\n  safeCapacity: 120\n",
			expectErr: true,
		},
		{
			name:      "nan device max",
			file:      "nan.yaml",
			content:   "limits:\n  deviceMax: .nan\n",
			expectErr: true,
		},
		{
			name:      "infinite safe capacity",
			file:      "inf.yaml",
			content:   "limits:\n  maxCapacity: .inf\n  safeCapacity: .inf\n",
			expectErr: true,
		},
		{
			name:      "malformed document",
			file:      "malformed.json",
			content:   "{limits",
			expectErr: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			location := filepath.Join(dir, tc.file)
			require.NoError(t, os.WriteFile(location, []byte(tc.content), 0o644))
			config, err := powerflux.LoadConfig(context.Background(), location)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.EqualValues(t, tc.expectSafe, config.Limits.SafeCapacity)
			assert.EqualValues(t, tc.expectMax, config.Limits.DeviceMax)
			assert.Equal(t, tc.expectDup, config.Policy.Duplicate)
			assert.Equal(t, tc.expectEvent, config.Events.Enabled)
		})
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := powerflux.LoadConfig(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, powerflux.DefaultConfig().Validate())

	config := powerflux.DefaultConfig()
	config.Events.Buffer = -1
	config.Tracing.Enabled = true
	config.Tracing.ServiceName = ""
	err := config.Validate()
	assert.ErrorContains(t, err, "events.buffer")
	assert.ErrorContains(t, err, "tracing.serviceName")
}

func TestLoadConfig_EnvExpansion(t *testing.T) {
	t.Setenv("POWERFLUX_SAFE_CAPACITY", "70")
	location := filepath.Join(t.TempDir(), "config.yaml")
	content := "limits:\n  safeCapacity: ${env.POWERFLUX_SAFE_CAPACITY}\n  deviceMax: ${env.POWERFLUX_DEVICE_MAX:-30}\n"
	require.NoError(t, os.WriteFile(location, []byte(content), 0o644))

	config, err := powerflux.LoadConfig(context.Background(), location)
	require.NoError(t, err)
	assert.EqualValues(t, 70, config.Limits.SafeCapacity)
	assert.EqualValues(t, 30, config.Limits.DeviceMax)
}
