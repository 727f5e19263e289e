// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

// +build slowtest

package postgres_test

import (
	"context"
	"math"
	"testing"

	"github.com/insolar/insolar/insolar/gen"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insolar/timelock/internal/app/timelock"
	"github.com/insolar/timelock/internal/app/timelock/postgres"
	"github.com/insolar/timelock/internal/testutils"
)

func TestRecordStorage(t *testing.T) {
	ctx := context.Background()
	storage := postgres.NewRecordStorage(makeObservability(), db)
	defer testutils.TruncateTables(t, db, []interface{}{&postgres.RecordSchema{}})

	t.Run("not found", func(t *testing.T) {
		_, err := storage.Record(ctx, gen.Reference())
		assert.Equal(t, timelock.ErrNotFound, errors.Cause(err))
	})

	t.Run("insert and update", func(t *testing.T) {
		record := timelock.VestingRecord{
			Recipient:       gen.Reference(),
			TotalDeposited:  math.MaxUint64,
			RemainingAmount: math.MaxUint64,
			Checkpoint:      0,
			CreatedAt:       gen.PulseNumber(),
		}
		require.NoError(t, storage.SetRecord(ctx, record))

		got, err := storage.Record(ctx, record.Recipient)
		require.NoError(t, err)
		assert.Equal(t, record, got)

		record.RemainingAmount = 10
		record.Checkpoint = record.CreatedAt + 100
		require.NoError(t, storage.SetRecord(ctx, record))

		got, err = storage.Record(ctx, record.Recipient)
		require.NoError(t, err)
		assert.Equal(t, record, got)
	})

	t.Run("outstanding", func(t *testing.T) {
		testutils.TruncateTables(t, db, []interface{}{&postgres.RecordSchema{}})

		outstanding, err := storage.Outstanding(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), outstanding)

		for _, remaining := range []uint64{100, 0, 23} {
			require.NoError(t, storage.SetRecord(ctx, timelock.VestingRecord{
				Recipient:       gen.Reference(),
				TotalDeposited:  100,
				RemainingAmount: remaining,
			}))
		}
		outstanding, err = storage.Outstanding(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(123), outstanding)
	})
}
