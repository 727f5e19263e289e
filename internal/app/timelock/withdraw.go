// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package timelock

import (
	"context"

	"github.com/insolar/insolar/insolar"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Withdraw releases to caller everything unlocked since its record checkpoint and
// returns the released amount. Withdrawing before a period has elapsed, or from an
// exhausted record, releases zero and is not an error.
//
// The record is committed before the ledger is called and the engine lock is not
// held during the transfer, so a call coming back from the ledger sees the periods
// as consumed whatever context it carries.
func (e *Engine) Withdraw(ctx context.Context, caller insolar.Reference) (uint64, error) {
	var (
		updated VestingRecord
		release Release
		now     insolar.PulseNumber
	)
	err := e.execute(ctx, func(ctx context.Context) error {
		var err error
		updated, release, now, err = e.commitWithdrawal(ctx, caller)
		return err
	})
	if err == nil && release.Amount > 0 {
		err = e.transfer(ctx, caller, release)
	}
	if err != nil {
		e.reject("withdraw", caller, err)
		return 0, err
	}

	e.metrics.Withdrawals.Inc()
	if release.Amount > 0 {
		e.metrics.Released.Add(float64(release.Amount))
		e.metrics.Outstanding.Sub(float64(release.Amount))
	}
	e.log.WithFields(logrus.Fields{
		"recipient": caller.String(),
		"periods":   release.ElapsedPeriods,
		"amount":    release.Amount,
		"remaining": updated.RemainingAmount,
	}).Info("deposit withdrawn")

	e.publish(ctx, NewDepositWithdrawn(caller, release.Amount, now))
	return release.Amount, nil
}

// commitWithdrawal consumes the elapsed periods of the caller's record and marks the
// released amount as in flight. An exhausted record is left untouched.
func (e *Engine) commitWithdrawal(
	ctx context.Context,
	caller insolar.Reference,
) (VestingRecord, Release, insolar.PulseNumber, error) {
	now := e.clock.Now()
	record, err := e.store.Record(ctx, caller)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return record, Release{}, now, errors.Wrapf(ErrUnauthorized, "caller %s has no vesting record", caller.String())
		}
		return record, Release{}, now, errors.Wrap(err, "failed to read vesting record")
	}
	if record.Recipient != caller {
		return record, Release{}, now, errors.Wrapf(ErrUnauthorized, "caller %s is not the recipient", caller.String())
	}
	if !record.Active() {
		return record, Release{}, now, nil
	}

	release := ComputeRelease(record, e.cfg, now)
	if release.ElapsedPeriods == 0 {
		return record, release, now, nil
	}
	updated := release.Apply(record, e.cfg)
	if err := e.store.SetRecord(ctx, updated); err != nil {
		return record, Release{}, now, errors.Wrap(err, "failed to save vesting record")
	}
	if release.Amount > 0 {
		e.inflight[caller] += release.Amount
		e.inflightTotal += release.Amount
	}
	return updated, release, now, nil
}

// transfer moves a committed release out of custody. On failure the release is
// given back to the record.
func (e *Engine) transfer(ctx context.Context, caller insolar.Reference, release Release) error {
	transferErr := e.ledger.Transfer(ctx, e.custody, caller, release.Amount)
	return e.execute(ctx, func(ctx context.Context) error {
		e.settle(caller, release.Amount)
		if transferErr == nil {
			return nil
		}
		return e.revertWithdrawal(ctx, caller, release, transferErr)
	})
}

func (e *Engine) settle(recipient insolar.Reference, amount uint64) {
	e.inflight[recipient] -= amount
	if e.inflight[recipient] == 0 {
		delete(e.inflight, recipient)
	}
	e.inflightTotal -= amount
}

// revertWithdrawal undoes a release on top of the current record, so steps that
// ran while the transfer was in flight are kept.
func (e *Engine) revertWithdrawal(ctx context.Context, caller insolar.Reference, release Release, transferErr error) error {
	record, err := e.store.Record(ctx, caller)
	if err == nil {
		record.RemainingAmount += release.Amount
		record.Checkpoint -= insolar.PulseNumber(release.ElapsedPeriods * e.cfg.PeriodLength)
		err = e.store.SetRecord(ctx, record)
	}
	if err != nil {
		e.log.WithField("recipient", caller.String()).
			Errorf("failed to restore vesting record after failed transfer: %+v", err)
		return errors.Wrapf(err, "failed to restore vesting record (transfer error: %v)", transferErr)
	}
	return errors.Wrap(transferErr, "failed to transfer released units")
}
