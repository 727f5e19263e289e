// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package postgres

import (
	"context"
	"math"
	"strconv"

	"github.com/go-pg/pg"
	"github.com/go-pg/pg/orm"
	"github.com/insolar/insolar/insolar"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/insolar/timelock/internal/app/timelock"
	"github.com/insolar/timelock/observability"
)

type BalanceSchema struct {
	tableName struct{} `sql:"ledger_balances"` //nolint: unused,structcheck

	Account []byte `sql:",pk"`
	Balance string `sql:",notnull"`
}

type EntrySchema struct {
	tableName struct{} `sql:"ledger_entries"` //nolint: unused,structcheck

	ID      int64  `sql:",pk"`
	Account []byte `sql:",notnull"`
	Amount  string `sql:",notnull"`
	Credit  bool   `sql:",notnull"`
}

// LedgerStorage is a double-entry ledger kept in the database. Every movement
// changes the balances and appends its entries in one transaction.
type LedgerStorage struct {
	log          *logrus.Logger
	errorCounter prometheus.Counter
	db           *pg.DB
}

func NewLedgerStorage(obs *observability.Observability, db *pg.DB) *LedgerStorage {
	return &LedgerStorage{
		log:          obs.Log(),
		errorCounter: observability.StorageErrors(obs, "ledger"),
		db:           db,
	}
}

func (s *LedgerStorage) Transfer(_ context.Context, from, to insolar.Reference, amount uint64) error {
	if amount == 0 {
		return errors.New("transfer amount should be positive")
	}

	err := s.db.RunInTransaction(func(tx *pg.Tx) error {
		fromBalance, err := lockBalance(tx, from)
		if err != nil {
			return err
		}
		if fromBalance < amount {
			return errors.Wrapf(timelock.ErrInsufficientCustody, "balance %d is less than %d", fromBalance, amount)
		}
		toBalance, err := lockBalance(tx, to)
		if err != nil {
			return err
		}
		if toBalance > math.MaxUint64-amount {
			return errors.New("balance overflow")
		}

		if err := setBalance(tx, from, fromBalance-amount); err != nil {
			return err
		}
		if err := setBalance(tx, to, toBalance+amount); err != nil {
			return err
		}
		return insertEntries(tx,
			entrySchema(from, amount, false),
			entrySchema(to, amount, true),
		)
	})
	if err != nil && errors.Cause(err) != timelock.ErrInsufficientCustody {
		s.errorCounter.Inc()
		s.log.WithFields(logrus.Fields{
			"from":   from.String(),
			"to":     to.String(),
			"amount": amount,
		}).Errorf("failed to transfer: %+v", err)
	}
	return err
}

// Mint credits account with amount units without a counterpart.
func (s *LedgerStorage) Mint(_ context.Context, account insolar.Reference, amount uint64) error {
	err := s.db.RunInTransaction(func(tx *pg.Tx) error {
		balance, err := lockBalance(tx, account)
		if err != nil {
			return err
		}
		if balance > math.MaxUint64-amount {
			return errors.New("balance overflow")
		}
		if err := setBalance(tx, account, balance+amount); err != nil {
			return err
		}
		return insertEntries(tx, entrySchema(account, amount, true))
	})
	if err != nil {
		s.errorCounter.Inc()
	}
	return err
}

func (s *LedgerStorage) BalanceOf(_ context.Context, account insolar.Reference) (uint64, error) {
	balance, err := readBalance(s.db, account, false)
	if err != nil {
		s.errorCounter.Inc()
	}
	return balance, err
}

func lockBalance(db orm.DB, account insolar.Reference) (uint64, error) {
	return readBalance(db, account, true)
}

func readBalance(db orm.DB, account insolar.Reference, forUpdate bool) (uint64, error) {
	query := `select balance::text from ledger_balances where account = ?`
	if forUpdate {
		query += ` for update`
	}
	var balance string
	_, err := db.QueryOne(pg.Scan(&balance), query, account.Bytes())
	if err == pg.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "failed to get balance of %s", account.String())
	}
	amount, err := strconv.ParseUint(balance, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "balance %s of %s is out of range", balance, account.String())
	}
	return amount, nil
}

func setBalance(db orm.DB, account insolar.Reference, balance uint64) error {
	_, err := db.Exec(`
		insert into ledger_balances (account, balance) values (?, ?)
		on conflict (account) do update set balance = excluded.balance`,
		account.Bytes(),
		strconv.FormatUint(balance, 10),
	)
	return errors.Wrapf(err, "failed to set balance of %s", account.String())
}

func insertEntries(db orm.DB, entries ...*EntrySchema) error {
	for _, e := range entries {
		_, err := db.Exec(`insert into ledger_entries (account, amount, credit) values (?, ?, ?)`,
			e.Account, e.Amount, e.Credit)
		if err != nil {
			return errors.Wrap(err, "failed to insert ledger entry")
		}
	}
	return nil
}

func entrySchema(account insolar.Reference, amount uint64, credit bool) *EntrySchema {
	return &EntrySchema{
		Account: account.Bytes(),
		Amount:  strconv.FormatUint(amount, 10),
		Credit:  credit,
	}
}

var _ timelock.Ledger = (*LedgerStorage)(nil)
