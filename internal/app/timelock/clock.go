// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package timelock

import (
	"sync"

	"github.com/insolar/insolar/insolar"
	"github.com/insolar/insolar/pulse"
)

type Clock interface {
	Now() insolar.PulseNumber
}

// PulseClock derives the current pulse from wall time.
type PulseClock struct{}

func (PulseClock) Now() insolar.PulseNumber {
	return insolar.PulseNumber(pulse.OfNow())
}

// ManualClock only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now insolar.PulseNumber
}

func NewManualClock(start insolar.PulseNumber) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() insolar.PulseNumber {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Advance(pulses uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += insolar.PulseNumber(pulses)
}
