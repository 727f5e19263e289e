// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package configuration

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_replacePassword(t *testing.T) {
	const password = "super_secret_password"
	const with = "postgresql://timelock:" + password + "@127.0.0.1:5432/dev-timelock?sslmode=disable"
	const without = "postgres://postgres@localhost/postgres?sslmode=disable"

	t.Run("replaced", func(t *testing.T) {
		require.Contains(t, with, password)
		require.NotContains(t, replacePassword(with), password)
	})

	t.Run("not_replaced", func(t *testing.T) {
		require.NotContains(t, without, password)
		require.NotContains(t, replacePassword(without), password)
		require.Equal(t, without, replacePassword(without))
	})
}

func TestLoad(t *testing.T) {
	const prefix = "timelocktest"

	t.Run("from file", func(t *testing.T) {
		cfg := &Timelock{}
		err := Load(Params{ConfigPath: "testdata/timelock.yaml", EnvPrefix: prefix}, cfg)
		require.NoError(t, err)

		require.Equal(t, "json", cfg.Log.Format)
		require.Equal(t, 5*time.Second, cfg.DB.AttemptInterval)
		require.Equal(t, uint32(10), cfg.Engine.PeriodLength)
		require.Equal(t, uint32(2), cfg.Engine.ReleaseRateBasisPoints)
		require.Equal(t, []string{"127.0.0.1:9092"}, cfg.Kafka.Brokers)
		require.Equal(t, StorageMemory, cfg.Storage)
		require.NoError(t, cfg.Validate())
	})

	t.Run("env override", func(t *testing.T) {
		require.NoError(t, os.Setenv("TIMELOCKTEST_ENGINE_PERIODLENGTH", "20"))
		defer os.Unsetenv("TIMELOCKTEST_ENGINE_PERIODLENGTH")

		cfg := &Timelock{}
		err := Load(Params{ConfigPath: "testdata/timelock.yaml", EnvPrefix: prefix}, cfg)
		require.NoError(t, err)
		require.Equal(t, uint32(20), cfg.Engine.PeriodLength)
	})

	t.Run("unknown env", func(t *testing.T) {
		require.NoError(t, os.Setenv("TIMELOCKTEST_ENGINE_UNKNOWN", "1"))
		defer os.Unsetenv("TIMELOCKTEST_ENGINE_UNKNOWN")

		err := Load(Params{ConfigPath: "testdata/timelock.yaml", EnvPrefix: prefix}, &Timelock{})
		require.Error(t, err)
	})

	t.Run("missing values", func(t *testing.T) {
		err := Load(Params{ConfigPath: "testdata/incomplete.yaml", EnvPrefix: prefix}, &Timelock{})
		require.Error(t, err)
	})

	t.Run("no prefix", func(t *testing.T) {
		err := Load(Params{ConfigPath: "testdata/timelock.yaml"}, &Timelock{})
		require.Error(t, err)
	})

	t.Run("not a pointer", func(t *testing.T) {
		err := Load(Params{ConfigPath: "testdata/timelock.yaml", EnvPrefix: prefix}, Timelock{})
		require.Error(t, err)
	})
}

func TestEngine_Validate(t *testing.T) {
	valid := Engine{
		PeriodLength:           10,
		ReleaseRateBasisPoints: 2,
		Owner:                  "owner",
		Custody:                "custody",
	}
	require.NoError(t, valid.Validate())

	zeroPeriod := valid
	zeroPeriod.PeriodLength = 0
	require.Error(t, zeroPeriod.Validate())

	bigRate := valid
	bigRate.ReleaseRateBasisPoints = 10001
	require.Error(t, bigRate.Validate())

	sameAccounts := valid
	sameAccounts.Custody = sameAccounts.Owner
	require.Error(t, sameAccounts.Validate())

	noOwner := valid
	noOwner.Owner = ""
	require.Error(t, noOwner.Validate())
}

func TestTimelock_ValidateStorage(t *testing.T) {
	cfg := Timelock{}.Default()
	cfg.Engine.Owner = "owner"
	cfg.Engine.Custody = "custody"
	require.NoError(t, cfg.Validate())

	cfg.Storage = "bolt"
	require.Error(t, cfg.Validate())
}
