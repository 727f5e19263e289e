// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package dbconn

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/insolar/timelock/configuration"
)

func TestConnect(t *testing.T) {
	cfg := configuration.Timelock{}.Default()
	db, err := Connect(cfg.DB)
	require.NoError(t, err)
	require.NotNil(t, db)
	require.Equal(t, cfg.DB.PoolSize, db.Options().PoolSize)
	require.NoError(t, db.Close())
}

func TestConnect_BadURL(t *testing.T) {
	cfg := configuration.Timelock{}.Default().DB
	cfg.URL = "postgres://user:secret@%zz/db"
	_, err := Connect(cfg)
	require.Error(t, err)
	require.NotContains(t, err.Error(), "secret")
}
