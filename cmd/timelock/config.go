// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package main

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"

	"github.com/insolar/timelock/configuration"
)

var configDir string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write default config files",
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := writeConfigs(configDir)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return nil
	},
}

func init() {
	configCmd.Flags().StringVarP(&configDir, "dir", "d", ".", "directory for config files")
	rootCmd.AddCommand(configCmd)
}

func writeConfigs(dir string) ([]string, error) {
	cfgs := configuration.Configurations()
	names := make([]string, 0, len(cfgs))
	for name := range cfgs {
		names = append(names, name)
	}
	sort.Strings(names)

	written := make([]string, 0, len(names))
	for _, name := range names {
		out, err := yaml.Marshal(cfgs[name])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal %s", name)
		}
		filePath := filepath.Join(dir, name)
		if err := ioutil.WriteFile(filePath, out, 0644); err != nil {
			return nil, errors.Wrapf(err, "failed to write config file")
		}
		written = append(written, filePath)
	}
	return written, nil
}
