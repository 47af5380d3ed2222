package mirror

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCommandConfigurationSanitize(testInstance *testing.T) {
	testCases := []struct {
		name     string
		input    CommandConfiguration
		expected CommandConfiguration
	}{
		{
			name:     "blank_root_defaults_to_working_directory",
			input:    CommandConfiguration{Root: "   ", RemoteTimeout: time.Minute},
			expected: CommandConfiguration{Root: ".", RemoteTimeout: time.Minute},
		},
		{
			name:     "negative_timeout_restores_default",
			input:    CommandConfiguration{Root: "/srv/mirrors", RemoteTimeout: -time.Second},
			expected: CommandConfiguration{Root: "/srv/mirrors", RemoteTimeout: 10 * time.Minute},
		},
		{
			name:     "zero_timeout_is_kept",
			input:    CommandConfiguration{Root: " ~/mirrors ", MetricsFile: " /var/lib/node/branchmirror.prom ", Strict: true},
			expected: CommandConfiguration{Root: "~/mirrors", MetricsFile: "/var/lib/node/branchmirror.prom", Strict: true},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, testCase.input.sanitize())
		})
	}
}

func TestDefaultConfigurationValues(testInstance *testing.T) {
	require.Equal(testInstance, map[string]any{
		"tools.mirror.root":           ".",
		"tools.mirror.all_branches":   false,
		"tools.mirror.remote_timeout": 10 * time.Minute,
		"tools.mirror.strict":         false,
		"tools.mirror.metrics_file":   "",
	}, DefaultConfigurationValues("tools.mirror"))

	require.Contains(testInstance, DefaultConfigurationValues(""), "root")
}
