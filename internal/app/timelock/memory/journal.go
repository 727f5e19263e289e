// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package memory

import (
	"context"
	"sync"

	"github.com/insolar/insolar/insolar"

	"github.com/insolar/timelock/internal/app/timelock"
)

// EventJournal keeps published events in order.
type EventJournal struct {
	mu     sync.Mutex
	events []timelock.Event
}

func NewEventJournal() *EventJournal {
	return &EventJournal{}
}

func (j *EventJournal) Publish(_ context.Context, event timelock.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, event)
	return nil
}

func (j *EventJournal) Events() []timelock.Event {
	j.mu.Lock()
	defer j.mu.Unlock()

	copied := make([]timelock.Event, len(j.events))
	copy(copied, j.events)
	return copied
}

// EventsOf returns up to limit latest events of recipient, newest first.
func (j *EventJournal) EventsOf(_ context.Context, recipient insolar.Reference, limit int) ([]timelock.Event, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var result []timelock.Event
	for i := len(j.events) - 1; i >= 0 && len(result) < limit; i-- {
		if j.events[i].Recipient == recipient {
			result = append(result, j.events[i])
		}
	}
	return result, nil
}

// Last returns the most recent event and false when the journal is empty.
func (j *EventJournal) Last() (timelock.Event, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.events) == 0 {
		return timelock.Event{}, false
	}
	return j.events[len(j.events)-1], true
}

var _ timelock.EventSink = (*EventJournal)(nil)
