// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package timelock

import (
	"github.com/insolar/insolar/insolar"
)

// VestingRecord is a single grant held in custody for a recipient.
type VestingRecord struct {
	Recipient       insolar.Reference
	TotalDeposited  uint64
	RemainingAmount uint64
	// Pulse from which unlocked periods are counted.
	Checkpoint insolar.PulseNumber
	CreatedAt  insolar.PulseNumber
}

// Active reports whether the record still holds units to release.
// A record with nothing remaining is exhausted and stays that way.
func (r VestingRecord) Active() bool {
	return r.RemainingAmount > 0
}

func (r VestingRecord) Released() uint64 {
	return r.TotalDeposited - r.RemainingAmount
}
