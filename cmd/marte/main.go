// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the marte CLI: relativistic
// round-trip trajectory solving, branch search, single-phase integration,
// and the run catalog.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/marte/internal/physics"
	"github.com/pdiddy/marte/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the marte CLI.
var rootCmd = &cobra.Command{
	Use:   "marte",
	Short: "Relativistic round-trip trajectory engine",
	Long: `marte plans round trips under constant proper acceleration: leave a moving
target, turn around, and meet it again at a requested coordinate time after a
requested proper time has elapsed aboard.

Times accept a "y" suffix for Julian years (e.g. --tf 12y); bare numbers are
seconds. Solved runs can be saved to a local SQLite catalog and exported.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return physics.FromConfig(cfg.Physics).Validate()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./marte.yaml or ~/.config/marte/marte.yaml)")
	rootCmd.PersistentFlags().String("catalog-dir", "", "directory holding the run catalog (default from config: runs)")
	viper.BindPFlag("catalog.dir", rootCmd.PersistentFlags().Lookup("catalog-dir"))
}

func initConfig() {
	if err := setDefaults(types.DefaultEngineConfig()); err != nil {
		fmt.Fprintln(os.Stderr, "warning: loading defaults:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("marte")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "marte"))
		}
	}

	viper.SetEnvPrefix("MARTE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every field of cfg as a dotted viper default so
// that nested keys resolve from the environment (MARTE_SOLVER_WORKERS).
func setDefaults(cfg types.EngineConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	walkDefaults("", tree)
	return nil
}

func walkDefaults(prefix string, m map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			walkDefaults(key, sub)
			continue
		}
		viper.SetDefault(key, v)
	}
}

// loadConfig decodes the merged flag, environment, file, and default
// settings.
func loadConfig() (types.EngineConfig, error) {
	var cfg types.EngineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Catalog.Dir == "" {
		cfg.Catalog.Dir = types.DefaultEngineConfig().Catalog.Dir
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
