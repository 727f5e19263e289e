// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package timelock

import (
	"context"
	"math"
	"sync"

	"github.com/insolar/insolar/insolar"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/timelock/observability"
)

type Params struct {
	Config  Config
	Owner   insolar.Reference
	Custody insolar.Reference
	Ledger  Ledger
	Store   RecordStore
	// Optional.
	Events EventSink
	Clock  Clock
}

// Engine releases deposits held by the custody account to their recipients.
// Operations of one engine are applied in a strict total order.
type Engine struct {
	cfg     Config
	owner   insolar.Reference
	custody insolar.Reference
	ledger  Ledger
	store   RecordStore
	events  EventSink
	clock   Clock

	log     *logrus.Logger
	metrics *observability.EngineMetrics

	mu sync.Mutex
	// Released amounts whose transfer has not returned yet.
	inflight      map[insolar.Reference]uint64
	inflightTotal uint64
}

func NewEngine(obs *observability.Observability, p Params) (*Engine, error) {
	if err := p.Config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid engine config")
	}
	if p.Ledger == nil || p.Store == nil || p.Clock == nil {
		return nil, errors.New("ledger, store and clock are required")
	}
	if p.Owner == p.Custody {
		return nil, errors.Wrap(ErrValidation, "owner and custody should be different accounts")
	}
	outstanding, err := p.Store.Outstanding(context.Background())
	if err != nil {
		return nil, errors.Wrap(err, "failed to sum outstanding amounts")
	}

	e := &Engine{
		cfg:     p.Config,
		owner:   p.Owner,
		custody: p.Custody,
		ledger:  p.Ledger,
		store:   p.Store,
		events:  p.Events,
		clock:   p.Clock,
		log:     obs.Log(),
		metrics: observability.MakeEngineMetrics(obs),

		inflight: make(map[insolar.Reference]uint64),
	}
	e.metrics.Outstanding.Set(float64(outstanding))
	return e, nil
}

func (e *Engine) PeriodLength() uint32 {
	return e.cfg.PeriodLength
}

func (e *Engine) ReleaseRateBasisPoints() uint32 {
	return e.cfg.ReleaseRateBasisPoints
}

func (e *Engine) Owner() insolar.Reference {
	return e.owner
}

func (e *Engine) Custody() insolar.Reference {
	return e.custody
}

// Record returns the vesting record of recipient as of the last operation.
func (e *Engine) Record(ctx context.Context, recipient insolar.Reference) (VestingRecord, error) {
	return e.store.Record(ctx, recipient)
}

// Preview returns the record of recipient together with what a withdrawal would
// release right now. Nothing is changed.
func (e *Engine) Preview(ctx context.Context, recipient insolar.Reference) (VestingRecord, Release, error) {
	record, err := e.store.Record(ctx, recipient)
	if err != nil {
		return VestingRecord{}, Release{}, err
	}
	return record, ComputeRelease(record, e.cfg, e.clock.Now()), nil
}

// NextRelease is the first pulse at which record unlocks another period, or zero
// when no such pulse exists.
func (e *Engine) NextRelease(record VestingRecord) insolar.PulseNumber {
	if !record.Active() {
		return 0
	}
	now := uint64(e.clock.Now())
	checkpoint := uint64(record.Checkpoint)
	period := uint64(e.cfg.PeriodLength)

	next := checkpoint + period
	if now >= checkpoint {
		next = checkpoint + ((now-checkpoint)/period+1)*period
	}
	if next > math.MaxUint32 {
		return 0
	}
	return insolar.PulseNumber(next)
}

type executingKey struct{}

// execute runs op as one step of the engine's total order. A call made from
// inside a running step with the marked context runs inline. Ledger transfers
// are made outside of any step.
func (e *Engine) execute(ctx context.Context, op func(ctx context.Context) error) error {
	if ctx.Value(executingKey{}) == e {
		return op(ctx)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return op(context.WithValue(ctx, executingKey{}, e))
}

func (e *Engine) publish(ctx context.Context, event Event) {
	if e.events == nil {
		return
	}
	if err := e.events.Publish(ctx, event); err != nil {
		e.metrics.PublishErrors.Inc()
		e.log.WithFields(logrus.Fields{
			"event_id":   event.ID.String(),
			"event_kind": event.Kind,
		}).Errorf("failed to publish event: %+v", err)
	}
}

func (e *Engine) reject(op string, recipient insolar.Reference, err error) {
	e.metrics.Rejected.Inc()
	e.log.WithFields(logrus.Fields{
		"operation": op,
		"recipient": recipient.String(),
		"kind":      Kind(err),
	}).Warn(err.Error())
}
