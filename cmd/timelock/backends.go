// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package main

import (
	"context"

	"github.com/insolar/insolar/insolar"
	"github.com/pkg/errors"

	"github.com/insolar/timelock/configuration"
	"github.com/insolar/timelock/internal/app/timelock"
	"github.com/insolar/timelock/internal/app/timelock/kafka"
	"github.com/insolar/timelock/internal/app/timelock/memory"
	"github.com/insolar/timelock/internal/app/timelock/postgres"
	"github.com/insolar/timelock/internal/app/timelock/store"
	"github.com/insolar/timelock/internal/dbconn"
	"github.com/insolar/timelock/observability"
)

type minter interface {
	Mint(ctx context.Context, account insolar.Reference, amount uint64) error
}

type backends struct {
	ledger interface {
		timelock.Ledger
		minter
	}
	store  timelock.RecordStore
	events timelock.EventSink
	reader timelock.EventReader

	closers []func() error
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		_ = b.closers[i]()
	}
}

func buildBackends(cfg *configuration.Timelock, obs *observability.Observability) (*backends, error) {
	b := &backends{}

	switch cfg.Storage {
	case configuration.StorageMemory:
		journal := memory.NewEventJournal()
		b.ledger = memory.NewLedger()
		b.store = memory.NewRecordStore()
		b.events = journal
		b.reader = journal
	case configuration.StoragePostgres:
		db, err := dbconn.ConnectAndWait(cfg.DB, obs.Log())
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, db.Close)

		events := postgres.NewEventStorage(obs, db)
		b.ledger = postgres.NewLedgerStorage(obs, db)
		b.store = postgres.NewRecordStorage(obs, db)
		b.events = events
		b.reader = events
	default:
		return nil, errors.Errorf("unknown storage %q", cfg.Storage)
	}

	if cfg.Cache.Size > 0 {
		cached, err := store.NewCacheRecordStore(b.store, cfg.Cache.Size)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.store = cached
	}

	if cfg.Kafka.Enabled {
		publisher := kafka.NewPublisher(obs.Log(), cfg.Kafka)
		b.closers = append(b.closers, publisher.Close)
		b.events = timelock.MultiSink{b.events, publisher}
	}
	return b, nil
}

func parseAccounts(cfg configuration.Engine) (owner, custody insolar.Reference, err error) {
	ownerRef, err := insolar.NewReferenceFromString(cfg.Owner)
	if err != nil {
		return owner, custody, errors.Wrap(err, "failed to parse Engine.Owner")
	}
	custodyRef, err := insolar.NewReferenceFromString(cfg.Custody)
	if err != nil {
		return owner, custody, errors.Wrap(err, "failed to parse Engine.Custody")
	}
	return *ownerRef, *custodyRef, nil
}

func buildEngine(cfg *configuration.Timelock, obs *observability.Observability, b *backends, clock timelock.Clock) (*timelock.Engine, error) {
	owner, custody, err := parseAccounts(cfg.Engine)
	if err != nil {
		return nil, err
	}
	engineCfg, err := timelock.NewConfig(cfg.Engine.PeriodLength, cfg.Engine.ReleaseRateBasisPoints)
	if err != nil {
		return nil, err
	}
	return timelock.NewEngine(obs, timelock.Params{
		Config:  engineCfg,
		Owner:   owner,
		Custody: custody,
		Ledger:  b.ledger,
		Store:   b.store,
		Events:  b.events,
		Clock:   clock,
	})
}
