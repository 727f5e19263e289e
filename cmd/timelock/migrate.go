// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/insolar/timelock/configuration"
	"github.com/insolar/timelock/internal/dbconn"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := &configuration.Migrate{}
		err := configuration.Load(configuration.Params{
			ConfigPath: pathOr("migrate.yaml"),
			EnvPrefix:  migrateEnvPrefix,
		}, cfg)
		if err != nil {
			return err
		}
		log := logrus.New()

		db, err := dbconn.ConnectAndWait(cfg.DB, log)
		if err != nil {
			return err
		}
		defer db.Close()

		oldVersion, newVersion, err := dbconn.Migrate(db, cfg.Dir)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"old_version": oldVersion,
			"new_version": newVersion,
		}).Info("migrated successfully!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
