// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package timelock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gojuno/minimock/v3"
	"github.com/insolar/insolar/insolar"
)

// LedgerMock implements Ledger
type LedgerMock struct {
	t minimock.Tester

	TransferMock  mLedgerMockTransfer
	BalanceOfMock mLedgerMockBalanceOf

	afterTransferCounter  uint64
	afterBalanceOfCounter uint64
}

// NewLedgerMock returns a mock for Ledger
func NewLedgerMock(t minimock.Tester) *LedgerMock {
	m := &LedgerMock{t: t}
	if controller, ok := t.(*minimock.Controller); ok {
		controller.RegisterMocker(m)
	}
	m.TransferMock = mLedgerMockTransfer{mock: m}
	m.BalanceOfMock = mLedgerMockBalanceOf{mock: m}
	return m
}

type mLedgerMockTransfer struct {
	mock *LedgerMock

	mu      sync.Mutex
	set     bool
	err     error
	inspect func(ctx context.Context, from, to insolar.Reference, amount uint64)
	fn      func(ctx context.Context, from, to insolar.Reference, amount uint64) error
}

// Return sets up the result of every Ledger.Transfer call
func (mmTransfer *mLedgerMockTransfer) Return(err error) *LedgerMock {
	mmTransfer.mu.Lock()
	defer mmTransfer.mu.Unlock()
	mmTransfer.set = true
	mmTransfer.err = err
	mmTransfer.fn = nil
	return mmTransfer.mock
}

// Set uses f as Ledger.Transfer
func (mmTransfer *mLedgerMockTransfer) Set(f func(ctx context.Context, from, to insolar.Reference, amount uint64) error) *LedgerMock {
	mmTransfer.mu.Lock()
	defer mmTransfer.mu.Unlock()
	mmTransfer.set = true
	mmTransfer.fn = f
	return mmTransfer.mock
}

// Inspect accepts an inspector function that is called before the result is returned
func (mmTransfer *mLedgerMockTransfer) Inspect(f func(ctx context.Context, from, to insolar.Reference, amount uint64)) *mLedgerMockTransfer {
	mmTransfer.mu.Lock()
	defer mmTransfer.mu.Unlock()
	mmTransfer.inspect = f
	return mmTransfer
}

// Transfer implements Ledger
func (mmTransfer *LedgerMock) Transfer(ctx context.Context, from, to insolar.Reference, amount uint64) error {
	atomic.AddUint64(&mmTransfer.afterTransferCounter, 1)

	mm := &mmTransfer.TransferMock
	mm.mu.Lock()
	set, err, inspect, fn := mm.set, mm.err, mm.inspect, mm.fn
	mm.mu.Unlock()

	if inspect != nil {
		inspect(ctx, from, to, amount)
	}
	if !set {
		mmTransfer.t.Fatalf("Unexpected call to LedgerMock.Transfer. %v %v %v", from, to, amount)
		return nil
	}
	if fn != nil {
		return fn(ctx, from, to, amount)
	}
	return err
}

// TransferAfterCounter returns a count of finished LedgerMock.Transfer invocations
func (mmTransfer *LedgerMock) TransferAfterCounter() uint64 {
	return atomic.LoadUint64(&mmTransfer.afterTransferCounter)
}

type mLedgerMockBalanceOf struct {
	mock *LedgerMock

	mu      sync.Mutex
	set     bool
	balance uint64
	err     error
	fn      func(ctx context.Context, account insolar.Reference) (uint64, error)
}

// Return sets up the result of every Ledger.BalanceOf call
func (mmBalanceOf *mLedgerMockBalanceOf) Return(balance uint64, err error) *LedgerMock {
	mmBalanceOf.mu.Lock()
	defer mmBalanceOf.mu.Unlock()
	mmBalanceOf.set = true
	mmBalanceOf.balance = balance
	mmBalanceOf.err = err
	mmBalanceOf.fn = nil
	return mmBalanceOf.mock
}

// Set uses f as Ledger.BalanceOf
func (mmBalanceOf *mLedgerMockBalanceOf) Set(f func(ctx context.Context, account insolar.Reference) (uint64, error)) *LedgerMock {
	mmBalanceOf.mu.Lock()
	defer mmBalanceOf.mu.Unlock()
	mmBalanceOf.set = true
	mmBalanceOf.fn = f
	return mmBalanceOf.mock
}

// BalanceOf implements Ledger
func (mmBalanceOf *LedgerMock) BalanceOf(ctx context.Context, account insolar.Reference) (uint64, error) {
	atomic.AddUint64(&mmBalanceOf.afterBalanceOfCounter, 1)

	mm := &mmBalanceOf.BalanceOfMock
	mm.mu.Lock()
	set, balance, err, fn := mm.set, mm.balance, mm.err, mm.fn
	mm.mu.Unlock()

	if !set {
		mmBalanceOf.t.Fatalf("Unexpected call to LedgerMock.BalanceOf. %v", account)
		return 0, nil
	}
	if fn != nil {
		return fn(ctx, account)
	}
	return balance, err
}

// BalanceOfAfterCounter returns a count of finished LedgerMock.BalanceOf invocations
func (mmBalanceOf *LedgerMock) BalanceOfAfterCounter() uint64 {
	return atomic.LoadUint64(&mmBalanceOf.afterBalanceOfCounter)
}

// MinimockFinish checks that every mocked method was called at least once
func (m *LedgerMock) MinimockFinish() {
	if !m.minimockDone() {
		if m.TransferMock.set && m.TransferAfterCounter() < 1 {
			m.t.Error("Expected call to LedgerMock.Transfer")
		}
		if m.BalanceOfMock.set && m.BalanceOfAfterCounter() < 1 {
			m.t.Error("Expected call to LedgerMock.BalanceOf")
		}
	}
}

// MinimockWait waits for all mocked methods to be called the expected number of times
func (m *LedgerMock) MinimockWait(timeout time.Duration) {
	timeoutCh := time.After(timeout)
	for {
		if m.minimockDone() {
			return
		}
		select {
		case <-timeoutCh:
			m.MinimockFinish()
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (m *LedgerMock) minimockDone() bool {
	m.TransferMock.mu.Lock()
	transferSet := m.TransferMock.set
	m.TransferMock.mu.Unlock()
	m.BalanceOfMock.mu.Lock()
	balanceSet := m.BalanceOfMock.set
	m.BalanceOfMock.mu.Unlock()

	return (!transferSet || m.TransferAfterCounter() > 0) &&
		(!balanceSet || m.BalanceOfAfterCounter() > 0)
}
