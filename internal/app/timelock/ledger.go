// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package timelock

import (
	"context"

	"github.com/insolar/insolar/insolar"
)

//go:generate minimock -i github.com/insolar/timelock/internal/app/timelock.Ledger -o ./ -s _mock.go -g

// Ledger moves fungible units between accounts. Implementations report a
// shortfall on the source account as ErrInsufficientCustody.
type Ledger interface {
	Transfer(ctx context.Context, from, to insolar.Reference, amount uint64) error
	BalanceOf(ctx context.Context, account insolar.Reference) (uint64, error)
}
