// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package configuration

import (
	"time"

	"github.com/pkg/errors"

	"github.com/insolar/timelock/internal/pkg/cycle"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Timelock struct {
	Log    Log
	DB     DB
	Engine Engine
	API    API
	Kafka  Kafka
	Cache  Cache
	// One of StoragePostgres or StorageMemory.
	Storage string
}

type Log struct {
	Level  string
	Format string
}

type DB struct {
	URL      string
	PoolSize int
	Attempts cycle.Limit
	// Interval between failed connection attempts
	AttemptInterval time.Duration
}

// Engine is the release schedule and the two privileged accounts.
// References are in their textual form.
type Engine struct {
	PeriodLength           uint32
	ReleaseRateBasisPoints uint32
	Owner                  string
	Custody                string
}

type API struct {
	Listen string
}

type Kafka struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// Cache is the number of vesting records kept in memory in front of the DB.
type Cache struct {
	Size int
}

func (Timelock) Default() *Timelock {
	return &Timelock{
		Log: Log{
			Level:  "debug",
			Format: "text",
		},
		DB: DB{
			URL:             "postgres://postgres@localhost/postgres?sslmode=disable",
			PoolSize:        20,
			Attempts:        5,
			AttemptInterval: 3 * time.Second,
		},
		Engine: Engine{
			PeriodLength:           10,
			ReleaseRateBasisPoints: 2,
		},
		API: API{
			Listen: ":8080",
		},
		Kafka: Kafka{
			Enabled: false,
			Brokers: []string{"127.0.0.1:9092"},
			Topic:   "timelock_events",
		},
		Cache: Cache{
			Size: 10000,
		},
		Storage: StoragePostgres,
	}
}

func (e Engine) Validate() error {
	if e.PeriodLength == 0 {
		return errors.New("Engine.PeriodLength should be positive")
	}
	if e.ReleaseRateBasisPoints == 0 || e.ReleaseRateBasisPoints > 10000 {
		return errors.Errorf("Engine.ReleaseRateBasisPoints should be in range [1, 10000], got %d", e.ReleaseRateBasisPoints)
	}
	if e.Owner == "" {
		return errors.New("Engine.Owner should be set")
	}
	if e.Custody == "" {
		return errors.New("Engine.Custody should be set")
	}
	if e.Owner == e.Custody {
		return errors.New("Engine.Owner and Engine.Custody should be different accounts")
	}
	return nil
}

func (t Timelock) Validate() error {
	if err := t.Engine.Validate(); err != nil {
		return err
	}
	switch t.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return errors.Errorf("unknown Storage %q", t.Storage)
	}
	if t.Kafka.Enabled && len(t.Kafka.Brokers) == 0 {
		return errors.New("Kafka.Brokers should be set when Kafka is enabled")
	}
	return nil
}
