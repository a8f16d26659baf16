package engine

import (
	"github.com/spaghettifunk/oncue/engine/config"
)

type ApplicationConfig struct {
	// Path of the TOML configuration file. Empty runs on the defaults.
	ConfigPath string
	// Reload the configuration while running whenever the file changes.
	// Ignored without a ConfigPath.
	WatchConfig bool
	// Used instead of the file when set. Mostly for tests.
	Config *config.Config
}

// load resolves the configuration the engine starts with.
func (a *ApplicationConfig) load() (*config.Config, error) {
	if a.Config != nil {
		return a.Config, a.Config.Validate()
	}
	if a.ConfigPath == "" {
		return config.Default(), nil
	}
	return config.Load(a.ConfigPath)
}
