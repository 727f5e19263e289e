// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package timelock

import (
	"context"

	"github.com/insolar/insolar/insolar"
)

// RecordStore keeps one vesting record per recipient.
type RecordStore interface {
	// Record returns ErrNotFound when the recipient never had a deposit.
	Record(ctx context.Context, recipient insolar.Reference) (VestingRecord, error)
	SetRecord(ctx context.Context, record VestingRecord) error
	// Outstanding is the sum of remaining amounts over all records.
	Outstanding(ctx context.Context) (uint64, error)
}
