// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package postgres

import (
	"context"
	"strconv"

	"github.com/go-pg/pg/orm"
	"github.com/google/uuid"
	"github.com/insolar/insolar/insolar"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/insolar/timelock/internal/app/timelock"
	"github.com/insolar/timelock/observability"
)

type EventSchema struct {
	tableName struct{} `sql:"timelock_events"` //nolint: unused,structcheck

	ID          string `sql:",pk"`
	Kind        string `sql:",notnull"`
	FromRef     []byte
	Recipient   []byte `sql:",notnull"`
	Amount      string `sql:",notnull"`
	PulseNumber int64  `sql:",notnull"`
}

// EventStorage is an event sink keeping the audit trail in the database.
type EventStorage struct {
	log          *logrus.Logger
	errorCounter prometheus.Counter
	db           orm.DB
}

func NewEventStorage(obs *observability.Observability, db orm.DB) *EventStorage {
	return &EventStorage{
		log:          obs.Log(),
		errorCounter: observability.StorageErrors(obs, "event"),
		db:           db,
	}
}

func (s *EventStorage) Publish(_ context.Context, event timelock.Event) error {
	row := eventSchema(event)
	res, err := s.db.Exec(`
		insert into timelock_events (
			id,
			kind,
			from_ref,
			recipient,
			amount,
			pulse_number
		) values (?, ?, ?, ?, ?, ?)
		on conflict (id) do nothing`,
		row.ID,
		row.Kind,
		row.FromRef,
		row.Recipient,
		row.Amount,
		row.PulseNumber,
	)
	if err != nil {
		s.errorCounter.Inc()
		return errors.Wrapf(err, "failed to insert event %s", event.ID.String())
	}
	if res.RowsAffected() == 0 {
		s.log.WithField("event_id", event.ID.String()).Warn("event already stored")
	}
	return nil
}

// EventsOf returns up to limit latest events of recipient, newest first.
func (s *EventStorage) EventsOf(_ context.Context, recipient insolar.Reference, limit int) ([]timelock.Event, error) {
	var rows []EventSchema
	err := s.db.Model(&rows).
		Where("recipient = ?", recipient.Bytes()).
		Order("pulse_number DESC", "created DESC").
		Limit(limit).
		Select()
	if err != nil {
		s.errorCounter.Inc()
		return nil, errors.Wrapf(err, "failed to select events of %s", recipient.String())
	}

	events := make([]timelock.Event, 0, len(rows))
	for i := range rows {
		event, err := eventModel(&rows[i])
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func eventSchema(event timelock.Event) *EventSchema {
	row := &EventSchema{
		ID:          event.ID.String(),
		Kind:        string(event.Kind),
		Recipient:   event.Recipient.Bytes(),
		Amount:      strconv.FormatUint(event.Amount, 10),
		PulseNumber: int64(event.Pulse),
	}
	if event.Kind == timelock.KindDepositPlaced {
		row.FromRef = event.From.Bytes()
	}
	return row
}

func eventModel(row *EventSchema) (timelock.Event, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return timelock.Event{}, errors.Wrap(err, "failed to parse event id")
	}
	amount, err := strconv.ParseUint(row.Amount, 10, 64)
	if err != nil {
		return timelock.Event{}, errors.Wrap(err, "failed to parse event amount")
	}
	event := timelock.Event{
		ID:        id,
		Kind:      timelock.EventKind(row.Kind),
		Recipient: *insolar.NewReferenceFromBytes(row.Recipient),
		Amount:    amount,
		Pulse:     insolar.PulseNumber(row.PulseNumber),
	}
	if len(row.FromRef) > 0 {
		event.From = *insolar.NewReferenceFromBytes(row.FromRef)
	}
	return event, nil
}

var _ timelock.EventSink = (*EventStorage)(nil)
