// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/insolar/timelock/configuration"
)

const (
	timelockEnvPrefix = "timelock"
	migrateEnvPrefix  = "migrate"
)

var (
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "timelock",
	Short: "Timelock releases custodial deposits to their recipients period by period.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(envFile)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.SetGlobalNormalizationFunc(wordSepNormalizeFunc)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file with environment variables, skipped when missing")
}

// wordSepNormalizeFunc lets --env_file and --env-file name the same flag.
func wordSepNormalizeFunc(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// Execute runs the command picked by the command line arguments.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return errors.Wrapf(godotenv.Load(path), "failed to load %s", path)
}

func loadTimelockConfig() (*configuration.Timelock, error) {
	cfg := &configuration.Timelock{}
	err := configuration.Load(configuration.Params{
		ConfigPath: pathOr("timelock.yaml"),
		EnvPrefix:  timelockEnvPrefix,
	}, cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func pathOr(def string) string {
	if configPath != "" {
		return configPath
	}
	return def
}
