// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package postgres

import (
	"context"
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

type RecordSchema struct {
	tableName struct{} `sql:"vesting_records"` //nolint: unused,structcheck

	Recipient       []byte `sql:",pk"`
	TotalDeposited  string `sql:",notnull"`
	RemainingAmount string `sql:",notnull"`
	Checkpoint      int64  `sql:",notnull"`
	CreatedAt       int64  `sql:",notnull"`
}

type RecordStorage struct {
	log          *logrus.Logger
	errorCounter prometheus.Counter
	db           orm.DB
}

func NewRecordStorage(obs *observability.Observability, db orm.DB) *RecordStorage {
	return &RecordStorage{
		log:          obs.Log(),
		errorCounter: observability.StorageErrors(obs, "record"),
		db:           db,
	}
}

func (s *RecordStorage) Record(_ context.Context, recipient insolar.Reference) (timelock.VestingRecord, error) {
	row := &RecordSchema{}
	err := s.db.Model(row).Where("recipient = ?", recipient.Bytes()).Select()
	if err == pg.ErrNoRows {
		return timelock.VestingRecord{}, timelock.ErrNotFound
	}
	if err != nil {
		s.errorCounter.Inc()
		return timelock.VestingRecord{}, errors.Wrapf(err, "failed to select vesting record %s", recipient.String())
	}
	return recordModel(row)
}

func (s *RecordStorage) SetRecord(_ context.Context, record timelock.VestingRecord) error {
	row := recordSchema(record)
	res, err := s.db.Exec(`
		insert into vesting_records (
			recipient,
			total_deposited,
			remaining_amount,
			checkpoint,
			created_at
		) values (?, ?, ?, ?, ?)
		on conflict (recipient) do update set
			total_deposited = excluded.total_deposited,
			remaining_amount = excluded.remaining_amount,
			checkpoint = excluded.checkpoint,
			created_at = excluded.created_at`,
		row.Recipient,
		row.TotalDeposited,
		row.RemainingAmount,
		row.Checkpoint,
		row.CreatedAt,
	)
	if err != nil {
		s.errorCounter.Inc()
		return errors.Wrapf(err, "failed to save vesting record %s", record.Recipient.String())
	}

	if res.RowsAffected() == 0 {
		s.errorCounter.Inc()
		s.log.WithField("record_row", row).Errorf("failed to save vesting record")
		return errors.New("failed to save, affected is 0")
	}
	return nil
}

func (s *RecordStorage) Outstanding(_ context.Context) (uint64, error) {
	var sum string
	_, err := s.db.QueryOne(pg.Scan(&sum), `select coalesce(sum(remaining_amount), 0)::text from vesting_records`)
	if err != nil {
		s.errorCounter.Inc()
		return 0, errors.Wrap(err, "failed to sum remaining amounts")
	}
	outstanding, err := strconv.ParseUint(sum, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "outstanding amount %s is out of range", sum)
	}
	return outstanding, nil
}

func recordSchema(record timelock.VestingRecord) *RecordSchema {
	return &RecordSchema{
		Recipient:       record.Recipient.Bytes(),
		TotalDeposited:  strconv.FormatUint(record.TotalDeposited, 10),
		RemainingAmount: strconv.FormatUint(record.RemainingAmount, 10),
		Checkpoint:      int64(record.Checkpoint),
		CreatedAt:       int64(record.CreatedAt),
	}
}

func recordModel(row *RecordSchema) (timelock.VestingRecord, error) {
	total, err := strconv.ParseUint(row.TotalDeposited, 10, 64)
	if err != nil {
		return timelock.VestingRecord{}, errors.Wrap(err, "failed to parse total deposited")
	}
	remaining, err := strconv.ParseUint(row.RemainingAmount, 10, 64)
	if err != nil {
		return timelock.VestingRecord{}, errors.Wrap(err, "failed to parse remaining amount")
	}
	return timelock.VestingRecord{
		Recipient:       *insolar.NewReferenceFromBytes(row.Recipient),
		TotalDeposited:  total,
		RemainingAmount: remaining,
		Checkpoint:      insolar.PulseNumber(row.Checkpoint),
		CreatedAt:       insolar.PulseNumber(row.CreatedAt),
	}, nil
}

var _ timelock.RecordStore = (*RecordStorage)(nil)
