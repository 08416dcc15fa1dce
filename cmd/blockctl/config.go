package main

import (
	"fmt"

	"github.com/spf13/viper"
)

const (
	cfgKeyDatabase     = "database"
	cfgKeySnapshotDirs = "snapshot_dirs"
	cfgKeyNamespace    = "namespace"
	cfgKeyLogLevel     = "log.level"
	cfgKeyLogFormat    = "log.format"
)

const (
	defaultSnapshotDir = "blocks"
	defaultLogLevel    = "info"
	defaultLogFormat   = "console"
)

// loadConfig reads the optional config file with Viper. A missing file is
// not an error; flags and defaults cover everything.
func loadConfig(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeySnapshotDirs, []string{defaultSnapshotDir})
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyLogFormat, defaultLogFormat)
	v.SetEnvPrefix("BLOCKCTL")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("blockctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		if path == "" {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}
