// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package timelock

import (
	"math/big"

	"github.com/insolar/insolar/insolar"
)

// Release is what a record may give out at a given pulse.
type Release struct {
	ElapsedPeriods uint32
	Amount         uint64
}

// ComputeRelease counts the whole periods elapsed since the record checkpoint and
// the amount they unlock, capped at what remains. It never touches the record.
func ComputeRelease(record VestingRecord, cfg Config, now insolar.PulseNumber) Release {
	if cfg.PeriodLength == 0 || now < record.Checkpoint {
		return Release{}
	}
	elapsed := uint32(now-record.Checkpoint) / cfg.PeriodLength
	if elapsed == 0 {
		return Release{}
	}

	raw := new(big.Int).SetUint64(record.TotalDeposited)
	raw.Mul(raw, new(big.Int).SetUint64(uint64(cfg.ReleaseRateBasisPoints)))
	raw.Mul(raw, new(big.Int).SetUint64(uint64(elapsed)))
	raw.Quo(raw, big.NewInt(BasisPointsDenominator))

	amount := record.RemainingAmount
	if raw.IsUint64() && raw.Uint64() < amount {
		amount = raw.Uint64()
	}
	return Release{ElapsedPeriods: elapsed, Amount: amount}
}

// Apply returns record with the consumed periods and released amount accounted.
// Periods are consumed even when the amount is capped to zero.
func (r Release) Apply(record VestingRecord, cfg Config) VestingRecord {
	if r.ElapsedPeriods == 0 {
		return record
	}
	record.Checkpoint += insolar.PulseNumber(r.ElapsedPeriods * cfg.PeriodLength)
	record.RemainingAmount -= r.Amount
	return record
}
