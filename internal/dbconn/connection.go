// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package dbconn

import (
	"github.com/go-pg/pg"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/timelock/configuration"
	"github.com/insolar/timelock/internal/pkg/cycle"
)

func Connect(cfg configuration.DB) (*pg.DB, error) {
	opt, err := pg.ParseURL(cfg.URL)
	if err != nil {
		// pg.ParseURL uses standard url.Parse
		// witch fills url-string with password into error.
		// So we can't use errors.Wrap here and print error above in code.
		return nil, errors.New("failed to parse cfg.DB.URL")
	}
	opt.PoolSize = cfg.PoolSize
	return pg.Connect(opt), nil
}

// ConnectAndWait connects and waits until the database answers, retrying on
// connection errors as configured in cfg.
func ConnectAndWait(cfg configuration.DB, log *logrus.Logger) (*pg.DB, error) {
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	err = cycle.UntilConnectionError(func() error {
		_, err := db.Exec("select 1")
		return err
	}, cfg.AttemptInterval, cfg.Attempts, log)
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "database is not available")
	}
	return db, nil
}
