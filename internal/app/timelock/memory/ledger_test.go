// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package memory

import (
	"context"
	"math"
	"testing"

	"github.com/insolar/insolar/insolar"
	"github.com/insolar/insolar/insolar/gen"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insolar/timelock/internal/app/timelock"
)

func TestLedger_Transfer(t *testing.T) {
	ctx := context.Background()
	from, to := gen.Reference(), gen.Reference()

	l := NewLedger()
	require.NoError(t, l.Mint(ctx, from, 100))

	require.NoError(t, l.Transfer(ctx, from, to, 40))

	balance, err := l.BalanceOf(ctx, from)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), balance)
	balance, err = l.BalanceOf(ctx, to)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), balance)

	assert.Equal(t, []Entry{
		{Account: from, Amount: 100, Credit: true},
		{Account: from, Amount: 40},
	}, l.Entries(from))
	assert.Equal(t, []Entry{{Account: to, Amount: 40, Credit: true}}, l.Entries(to))
}

func TestLedger_TransferErrors(t *testing.T) {
	ctx := context.Background()
	from, to := gen.Reference(), gen.Reference()

	l := NewLedger()
	require.NoError(t, l.Mint(ctx, from, 10))

	t.Run("shortfall", func(t *testing.T) {
		err := l.Transfer(ctx, from, to, 11)
		require.Error(t, err)
		assert.Equal(t, timelock.ErrInsufficientCustody, errors.Cause(err))
	})

	t.Run("zero amount", func(t *testing.T) {
		require.Error(t, l.Transfer(ctx, from, to, 0))
	})

	t.Run("overflow", func(t *testing.T) {
		require.NoError(t, l.Mint(ctx, to, math.MaxUint64))
		require.Error(t, l.Transfer(ctx, from, to, 1))
		require.Error(t, l.Mint(ctx, to, 1))
	})

	balance, err := l.BalanceOf(ctx, from)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), balance)
}

func TestLedger_OnTransfer(t *testing.T) {
	ctx := context.Background()
	from, to := gen.Reference(), gen.Reference()

	l := NewLedger()
	require.NoError(t, l.Mint(ctx, from, 10))

	var seen uint64
	l.OnTransfer(func(ctx context.Context, _, account insolar.Reference, amount uint64) {
		// The ledger is unlocked while the hook runs.
		balance, err := l.BalanceOf(ctx, account)
		require.NoError(t, err)
		seen = balance + amount
	})
	require.NoError(t, l.Transfer(ctx, from, to, 3))
	assert.Equal(t, uint64(6), seen)
}
