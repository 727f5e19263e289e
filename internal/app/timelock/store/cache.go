// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package store

import (
	"context"

	"github.com/hashicorp/golang-lru"
	"github.com/insolar/insolar/insolar"
	"github.com/pkg/errors"

	"github.com/insolar/timelock/internal/app/timelock"
)

// CacheRecordStore keeps recently used vesting records in memory. Writes go to the
// backend first and are cached only when the backend accepts them.
type CacheRecordStore struct {
	backend timelock.RecordStore
	cache   *lru.Cache
}

func NewCacheRecordStore(backend timelock.RecordStore, size int) (*CacheRecordStore, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init cache")
	}
	store := &CacheRecordStore{
		backend: backend,
		cache:   cache,
	}
	return store, nil
}

func (c *CacheRecordStore) Record(ctx context.Context, recipient insolar.Reference) (timelock.VestingRecord, error) {
	rec, ok := c.getCache(recipient)
	if ok {
		return rec, nil
	}

	rec, err := c.backend.Record(ctx, recipient)
	if err != nil {
		return timelock.VestingRecord{}, err
	}
	c.cache.Add(recipient, rec)
	return rec, nil
}

func (c *CacheRecordStore) SetRecord(ctx context.Context, record timelock.VestingRecord) error {
	err := c.backend.SetRecord(ctx, record)
	if err != nil {
		c.cache.Remove(record.Recipient)
		return err
	}
	c.cache.Add(record.Recipient, record)
	return nil
}

// Outstanding is always read from the backend.
func (c *CacheRecordStore) Outstanding(ctx context.Context) (uint64, error) {
	return c.backend.Outstanding(ctx)
}

func (c *CacheRecordStore) getCache(recipient insolar.Reference) (timelock.VestingRecord, bool) {
	val, ok := c.cache.Get(recipient)
	if !ok {
		return timelock.VestingRecord{}, false
	}
	rec, ok := val.(timelock.VestingRecord)
	if !ok {
		return timelock.VestingRecord{}, false
	}
	return rec, true
}

var _ timelock.RecordStore = (*CacheRecordStore)(nil)
