// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package testutils

import (
	"fmt"
	"log"
	"testing"

	"github.com/go-pg/pg"
	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/require"

	"github.com/insolar/timelock/internal/dbconn"
)

var pgOptions = &pg.Options{
	Addr:            "localhost",
	Database:        "timelock_test_db",
	User:            "postgres",
	Password:        "secret",
	ApplicationName: "timelock",
}

// SetupDB starts a throwaway postgres container and applies the migrations from
// migrationsDir. The returned func stops the database and removes the container.
func SetupDB(migrationsDir string) (*pg.DB, pg.Options, func()) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not connect to docker: %s", err)
	}

	resource, err := pool.Run(
		"postgres", "11",
		[]string{
			"POSTGRES_DB=" + pgOptions.Database,
			"POSTGRES_PASSWORD=" + pgOptions.Password,
		},
	)
	if err != nil {
		log.Panicf("Could not start resource: %s", err)
	}

	poolCleaner := func() {
		log.Printf("removing container")
		if err := pool.Purge(resource); err != nil {
			log.Printf("failed to purge docker pool: %s", err)
		}
	}

	options := *pgOptions
	options.Addr = fmt.Sprintf("%s:%s", options.Addr, resource.GetPort("5432/tcp"))

	var db *pg.DB
	err = pool.Retry(func() error {
		db = pg.Connect(&options)
		_, err := db.Exec("select 1")
		return err
	})
	if err != nil {
		poolCleaner()
		log.Panicf("Could not start postgres: %s", err)
	}

	cleaner := func() {
		log.Printf("shutting down db")
		if err := db.Close(); err != nil {
			log.Printf("failed to close db: %s", err)
		}
		poolCleaner()
	}

	if _, _, err := dbconn.Migrate(db, migrationsDir); err != nil {
		cleaner()
		log.Panicf("Could not migrate: %s", err)
	}
	return db, options, cleaner
}

// TruncateTables empties the tables of the given models between test cases.
func TruncateTables(t *testing.T, db *pg.DB, models []interface{}) {
	for _, m := range models {
		_, err := db.Model(m).Exec("TRUNCATE TABLE ?TableName CASCADE")
		require.NoError(t, err)
	}
}
