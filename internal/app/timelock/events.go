// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package timelock

import (
	"context"

	"github.com/google/uuid"
	"github.com/insolar/insolar/insolar"
	"github.com/pkg/errors"
)

type EventKind string

const (
	KindDepositPlaced    EventKind = "DepositPlaced"
	KindDepositWithdrawn EventKind = "DepositWithdrawn"
)

// Event is an audit record of a completed engine operation.
// From is set only for deposits.
type Event struct {
	ID        uuid.UUID
	Kind      EventKind
	From      insolar.Reference
	Recipient insolar.Reference
	Amount    uint64
	Pulse     insolar.PulseNumber
}

func NewDepositPlaced(from, recipient insolar.Reference, amount uint64, pn insolar.PulseNumber) Event {
	return Event{
		ID:        uuid.New(),
		Kind:      KindDepositPlaced,
		From:      from,
		Recipient: recipient,
		Amount:    amount,
		Pulse:     pn,
	}
}

func NewDepositWithdrawn(recipient insolar.Reference, amount uint64, pn insolar.PulseNumber) Event {
	return Event{
		ID:        uuid.New(),
		Kind:      KindDepositWithdrawn,
		Recipient: recipient,
		Amount:    amount,
		Pulse:     pn,
	}
}

type EventSink interface {
	Publish(ctx context.Context, event Event) error
}

type EventReader interface {
	// EventsOf returns up to limit latest events of recipient, newest first.
	EventsOf(ctx context.Context, recipient insolar.Reference, limit int) ([]Event, error)
}

// MultiSink hands every event to all sinks, even when some of them fail.
type MultiSink []EventSink

func (m MultiSink) Publish(ctx context.Context, event Event) error {
	var failed error
	for _, sink := range m {
		if err := sink.Publish(ctx, event); err != nil && failed == nil {
			failed = errors.Wrapf(err, "failed to publish event %s", event.ID.String())
		}
	}
	return failed
}
