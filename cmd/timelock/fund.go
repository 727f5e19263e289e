// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package main

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/insolar/timelock/configuration"
	"github.com/insolar/timelock/observability"
)

var fundCmd = &cobra.Command{
	Use:   "fund <amount>",
	Short: "Credit the custody account of the postgres ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil || amount == 0 {
			return errors.Errorf("amount should be a positive integer, got %q", args[0])
		}

		cfg, err := loadTimelockConfig()
		if err != nil {
			return err
		}
		if cfg.Storage != configuration.StoragePostgres {
			return errors.New("fund needs postgres storage")
		}
		obs := observability.Make(cfg.Log)

		b, err := buildBackends(cfg, obs)
		if err != nil {
			return err
		}
		defer b.Close()
		return fund(context.Background(), cfg, b, amount, obs.Log())
	},
}

func init() {
	rootCmd.AddCommand(fundCmd)
}

func fund(ctx context.Context, cfg *configuration.Timelock, b *backends, amount uint64, log *logrus.Logger) error {
	_, custody, err := parseAccounts(cfg.Engine)
	if err != nil {
		return err
	}
	if err := b.ledger.Mint(ctx, custody, amount); err != nil {
		return errors.Wrap(err, "failed to fund custody")
	}
	balance, err := b.ledger.BalanceOf(ctx, custody)
	if err != nil {
		return errors.Wrap(err, "failed to get custody balance")
	}
	log.WithFields(logrus.Fields{
		"custody": cfg.Engine.Custody,
		"amount":  amount,
		"balance": balance,
	}).Info("custody funded")
	return nil
}
