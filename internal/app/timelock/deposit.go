// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package timelock

import (
	"context"
	"math"

	"github.com/insolar/insolar/insolar"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Deposit commits amount of the custody balance to recipient. Period counting
// starts cliffOffset pulses after now. Only the owner may deposit, and a recipient
// holds at most one active record.
func (e *Engine) Deposit(
	ctx context.Context,
	caller, recipient insolar.Reference,
	amount uint64,
	cliffOffset uint32,
) error {
	err := e.execute(ctx, func(ctx context.Context) error {
		return e.deposit(ctx, caller, recipient, amount, cliffOffset)
	})
	if err != nil {
		e.reject("deposit", recipient, err)
		return err
	}
	return nil
}

func (e *Engine) deposit(
	ctx context.Context,
	caller, recipient insolar.Reference,
	amount uint64,
	cliffOffset uint32,
) error {
	if caller != e.owner {
		return errors.Wrapf(ErrUnauthorized, "caller %s is not the owner", caller.String())
	}
	if amount == 0 {
		return errors.Wrap(ErrValidation, "deposit amount should be positive")
	}
	if recipient == e.custody {
		return errors.Wrap(ErrValidation, "custody account can't be a recipient")
	}

	now := e.clock.Now()
	if uint64(now)+uint64(cliffOffset) > math.MaxUint32 {
		return errors.Wrapf(ErrValidation, "cliff offset %d from pulse %d is out of range", cliffOffset, now)
	}

	existing, err := e.store.Record(ctx, recipient)
	switch {
	case err == nil && existing.Active():
		return errors.Wrapf(ErrRecordActive, "recipient %s has %d units still vesting",
			recipient.String(), existing.RemainingAmount)
	case err != nil && errors.Cause(err) != ErrNotFound:
		return errors.Wrap(err, "failed to read vesting record")
	}

	if e.inflight[recipient] > 0 {
		return errors.Wrapf(ErrRecordActive, "recipient %s has a release transfer in flight", recipient.String())
	}

	outstanding, err := e.store.Outstanding(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to sum outstanding amounts")
	}
	// In flight releases left the records but not the custody balance yet.
	committed := outstanding + e.inflightTotal
	balance, err := e.ledger.BalanceOf(ctx, e.custody)
	if err != nil {
		return errors.Wrap(err, "failed to get custody balance")
	}
	if balance < committed || amount > balance-committed {
		return errors.Wrapf(ErrInsufficientCustody,
			"deposit of %d exceeds available custody (balance %d, committed %d)", amount, balance, committed)
	}

	record := VestingRecord{
		Recipient:       recipient,
		TotalDeposited:  amount,
		RemainingAmount: amount,
		Checkpoint:      now + insolar.PulseNumber(cliffOffset),
		CreatedAt:       now,
	}
	if err := e.store.SetRecord(ctx, record); err != nil {
		return errors.Wrap(err, "failed to save vesting record")
	}

	e.metrics.Deposits.Inc()
	e.metrics.Outstanding.Set(float64(outstanding + amount))
	e.log.WithFields(logrus.Fields{
		"recipient":  recipient.String(),
		"amount":     amount,
		"checkpoint": record.Checkpoint,
	}).Info("deposit placed")

	e.publish(ctx, NewDepositPlaced(caller, recipient, amount, now))
	return nil
}
