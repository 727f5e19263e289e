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

// RecordStore keeps vesting records in a map guarded by a mutex.
type RecordStore struct {
	mu      sync.RWMutex
	records map[insolar.Reference]timelock.VestingRecord
}

func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[insolar.Reference]timelock.VestingRecord),
	}
}

func (s *RecordStore) Record(_ context.Context, recipient insolar.Reference) (timelock.VestingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[recipient]
	if !ok {
		return timelock.VestingRecord{}, timelock.ErrNotFound
	}
	return record, nil
}

func (s *RecordStore) SetRecord(_ context.Context, record timelock.VestingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.Recipient] = record
	return nil
}

func (s *RecordStore) Outstanding(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum uint64
	for _, r := range s.records {
		sum += r.RemainingAmount
	}
	return sum, nil
}

// Records returns a copy of every stored record.
func (s *RecordStore) Records() []timelock.VestingRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]timelock.VestingRecord, 0, len(s.records))
	for _, r := range s.records {
		result = append(result, r)
	}
	return result
}

var _ timelock.RecordStore = (*RecordStore)(nil)
