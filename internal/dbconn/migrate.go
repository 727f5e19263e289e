// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package dbconn

import (
	"github.com/go-pg/migrations"
	"github.com/go-pg/pg"
	"github.com/pkg/errors"
)

// Migrate creates the migrations table when missing and applies every migration
// found in dir. It returns the schema version before and after.
func Migrate(db *pg.DB, dir string) (int64, int64, error) {
	collection := migrations.NewCollection()

	if _, _, err := collection.Run(db, "init"); err != nil {
		return 0, 0, errors.Wrap(err, "could not init migrations")
	}
	if err := collection.DiscoverSQLMigrations(dir); err != nil {
		return 0, 0, errors.Wrap(err, "failed to read migrations")
	}
	oldVersion, newVersion, err := collection.Run(db, "up")
	if err != nil {
		return 0, 0, errors.Wrap(err, "could not apply migrations")
	}
	return oldVersion, newVersion, nil
}
