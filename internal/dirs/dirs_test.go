package dirs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDir(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name     string
		envVars  map[string]string
		expected string
	}{
		{
			name:     "default uses ~/.config/devcyclesim",
			envVars:  map[string]string{"XDG_CONFIG_HOME": ""},
			expected: filepath.Join(home, ".config", "devcyclesim"),
		},
		{
			name:     "respects XDG_CONFIG_HOME",
			envVars:  map[string]string{"XDG_CONFIG_HOME": "/custom/config"},
			expected: filepath.Join("/custom/config", "devcyclesim"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.envVars {
				t.Setenv(k, v)
			}
			assert.Equal(t, tc.expected, ConfigDir())
		})
	}
}

func TestStateAndLogsDir(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name      string
		envVars   map[string]string
		wantState string
	}{
		{
			name:      "default uses ~/.local/state/devcyclesim",
			envVars:   map[string]string{"XDG_STATE_HOME": "", "DEVCYCLESIM_STATE_DIR": ""},
			wantState: filepath.Join(home, ".local", "state", "devcyclesim"),
		},
		{
			name:      "respects XDG_STATE_HOME",
			envVars:   map[string]string{"XDG_STATE_HOME": "/custom/state", "DEVCYCLESIM_STATE_DIR": ""},
			wantState: filepath.Join("/custom/state", "devcyclesim"),
		},
		{
			name:      "DEVCYCLESIM_STATE_DIR wins",
			envVars:   map[string]string{"XDG_STATE_HOME": "/custom/state", "DEVCYCLESIM_STATE_DIR": "/override"},
			wantState: "/override",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.envVars {
				t.Setenv(k, v)
			}
			assert.Equal(t, tc.wantState, StateDir())
			assert.Equal(t, filepath.Join(tc.wantState, "logs"), LogsDir())
		})
	}
}

func TestLocalConfigDir(t *testing.T) {
	assert.Equal(t, filepath.Join("/work", ".devcyclesim"), LocalConfigDir("/work"))
}
