package mirror

import (
	"strings"
	"time"
)

const (
	defaultRootConstant                   = "."
	defaultRemoteTimeoutConstant          = 10 * time.Minute
	configurationKeySeparatorConstant     = "."
	rootConfigurationKeyConstant          = "root"
	allBranchesConfigurationKeyConstant   = "all_branches"
	remoteTimeoutConfigurationKeyConstant = "remote_timeout"
	strictConfigurationKeyConstant        = "strict"
	metricsFileConfigurationKeyConstant   = "metrics_file"
)

// CommandConfiguration captures the persisted settings of the mirror and branches commands.
type CommandConfiguration struct {
	Root          string        `mapstructure:"root"`
	AllBranches   bool          `mapstructure:"all_branches"`
	RemoteTimeout time.Duration `mapstructure:"remote_timeout"`
	Strict        bool          `mapstructure:"strict"`
	MetricsFile   string        `mapstructure:"metrics_file"`
}

// DefaultCommandConfiguration mirrors only the primary branch into the working directory with a ten minute remote timeout.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Root:          defaultRootConstant,
		AllBranches:   false,
		RemoteTimeout: defaultRemoteTimeoutConstant,
		Strict:        false,
		MetricsFile:   "",
	}
}

// DefaultConfigurationValues returns the defaults keyed for a Viper loader under configurationKeyPrefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKey(configurationKeyPrefix, rootConfigurationKeyConstant):          defaults.Root,
		configurationKey(configurationKeyPrefix, allBranchesConfigurationKeyConstant):   defaults.AllBranches,
		configurationKey(configurationKeyPrefix, remoteTimeoutConfigurationKeyConstant): defaults.RemoteTimeout,
		configurationKey(configurationKeyPrefix, strictConfigurationKeyConstant):        defaults.Strict,
		configurationKey(configurationKeyPrefix, metricsFileConfigurationKeyConstant):   defaults.MetricsFile,
	}
}

// sanitize trims text settings and restores defaults for blank roots and negative timeouts.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Root = strings.TrimSpace(configuration.Root)
	if len(sanitized.Root) == 0 {
		sanitized.Root = defaultRootConstant
	}
	if sanitized.RemoteTimeout < 0 {
		sanitized.RemoteTimeout = defaultRemoteTimeoutConstant
	}
	sanitized.MetricsFile = strings.TrimSpace(configuration.MetricsFile)
	return sanitized
}

func configurationKey(configurationKeyPrefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(configurationKeyPrefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}
