// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

// +build slowtest

package postgres_test

import (
	"context"
	"testing"

	"github.com/insolar/insolar/insolar"
	"github.com/insolar/insolar/insolar/gen"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insolar/timelock/configuration"
	"github.com/insolar/timelock/internal/app/timelock"
	"github.com/insolar/timelock/internal/app/timelock/memory"
	"github.com/insolar/timelock/internal/app/timelock/postgres"
	"github.com/insolar/timelock/internal/testutils"
	"github.com/insolar/timelock/observability"
)

func TestLedgerStorage(t *testing.T) {
	ctx := context.Background()
	ledger := postgres.NewLedgerStorage(makeObservability(), db)
	defer testutils.TruncateTables(t, db, []interface{}{&postgres.BalanceSchema{}, &postgres.EntrySchema{}})

	from, to := gen.Reference(), gen.Reference()
	balanceOf := func(account insolar.Reference) uint64 {
		balance, err := ledger.BalanceOf(ctx, account)
		require.NoError(t, err)
		return balance
	}

	assert.Equal(t, uint64(0), balanceOf(from))
	require.NoError(t, ledger.Mint(ctx, from, 100))
	require.NoError(t, ledger.Transfer(ctx, from, to, 40))
	assert.Equal(t, uint64(60), balanceOf(from))
	assert.Equal(t, uint64(40), balanceOf(to))

	err := ledger.Transfer(ctx, from, to, 61)
	assert.Equal(t, timelock.ErrInsufficientCustody, errors.Cause(err))
	assert.Equal(t, uint64(60), balanceOf(from))
	assert.Equal(t, uint64(40), balanceOf(to))

	var entries []postgres.EntrySchema
	require.NoError(t, db.Model(&entries).Where("account = ?", from.Bytes()).Order("id").Select())
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Credit)
	assert.Equal(t, "100", entries[0].Amount)
	assert.False(t, entries[1].Credit)
	assert.Equal(t, "40", entries[1].Amount)
}

func TestEngine_Postgres(t *testing.T) {
	ctx := context.Background()
	obs := observability.Make(configuration.Timelock{}.Default().Log)
	defer testutils.TruncateTables(t, db, []interface{}{
		&postgres.RecordSchema{},
		&postgres.EventSchema{},
		&postgres.BalanceSchema{},
		&postgres.EntrySchema{},
	})

	owner, custody, recipient := gen.Reference(), gen.Reference(), gen.Reference()
	ledger := postgres.NewLedgerStorage(obs, db)
	require.NoError(t, ledger.Mint(ctx, custody, 20000))

	events := postgres.NewEventStorage(obs, db)
	journal := memory.NewEventJournal()
	clock := timelock.NewManualClock(65537)
	engine, err := timelock.NewEngine(obs, timelock.Params{
		Config:  timelock.Config{PeriodLength: 10, ReleaseRateBasisPoints: 2},
		Owner:   owner,
		Custody: custody,
		Ledger:  ledger,
		Store:   postgres.NewRecordStorage(obs, db),
		Events:  timelock.MultiSink{events, journal},
		Clock:   clock,
	})
	require.NoError(t, err)

	require.NoError(t, engine.Deposit(ctx, owner, recipient, 5000, 0))
	clock.Advance(50)
	released, err := engine.Withdraw(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), released)

	balance, err := ledger.BalanceOf(ctx, custody)
	require.NoError(t, err)
	assert.Equal(t, uint64(19995), balance)
	balance, err = ledger.BalanceOf(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), balance)

	stored, err := events.EventsOf(ctx, recipient, 10)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, journal.Events()[1], stored[0])
}
