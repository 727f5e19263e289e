// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package memory

import (
	"context"
	"sync"

	"github.com/insolar/insolar/insolar"
	"github.com/pkg/errors"

	"github.com/insolar/timelock/internal/app/timelock"
)

// Entry is one side of a ledger movement. Debits carry Credit == false.
type Entry struct {
	Account insolar.Reference
	Amount  uint64
	Credit  bool
}

// Ledger is an in-memory double-entry ledger. Every transfer is recorded as a
// debit of the source and a credit of the destination.
type Ledger struct {
	mu       sync.Mutex
	balances map[insolar.Reference]uint64
	entries  []Entry

	// Called after a transfer is applied, outside of the ledger lock.
	onTransfer func(ctx context.Context, from, to insolar.Reference, amount uint64)
}

func NewLedger() *Ledger {
	return &Ledger{
		balances: make(map[insolar.Reference]uint64),
	}
}

// OnTransfer installs a hook run after each successful transfer.
func (l *Ledger) OnTransfer(hook func(ctx context.Context, from, to insolar.Reference, amount uint64)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onTransfer = hook
}

// Mint credits account with amount units out of thin air.
func (l *Ledger) Mint(_ context.Context, account insolar.Reference, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[account]+amount < l.balances[account] {
		return errors.New("balance overflow")
	}
	l.balances[account] += amount
	l.entries = append(l.entries, Entry{Account: account, Amount: amount, Credit: true})
	return nil
}

func (l *Ledger) Transfer(ctx context.Context, from, to insolar.Reference, amount uint64) error {
	if amount == 0 {
		return errors.New("transfer amount should be positive")
	}

	l.mu.Lock()
	if l.balances[from] < amount {
		l.mu.Unlock()
		return errors.Wrapf(timelock.ErrInsufficientCustody, "balance %d is less than %d", l.balances[from], amount)
	}
	if l.balances[to]+amount < l.balances[to] {
		l.mu.Unlock()
		return errors.New("balance overflow")
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	l.entries = append(l.entries,
		Entry{Account: from, Amount: amount},
		Entry{Account: to, Amount: amount, Credit: true},
	)
	hook := l.onTransfer
	l.mu.Unlock()

	if hook != nil {
		hook(ctx, from, to, amount)
	}
	return nil
}

func (l *Ledger) BalanceOf(_ context.Context, account insolar.Reference) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account], nil
}

// Entries returns a copy of the ledger entries of account.
func (l *Ledger) Entries(account insolar.Reference) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var result []Entry
	for _, e := range l.entries {
		if e.Account == account {
			result = append(result, e)
		}
	}
	return result
}

var _ timelock.Ledger = (*Ledger)(nil)
