// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package kafka

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/insolar/timelock/configuration"
	"github.com/insolar/timelock/internal/app/timelock"
)

// Message is the wire form of an engine event. Amounts are decimal strings.
type Message struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	From        string `json:"from,omitempty"`
	Recipient   string `json:"recipient"`
	Amount      string `json:"amount"`
	PulseNumber uint32 `json:"pulse_number"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher sends engine events to a kafka topic keyed by recipient, so events of
// one recipient keep their order.
type Publisher struct {
	log    *logrus.Logger
	writer messageWriter
}

func NewPublisher(log *logrus.Logger, cfg configuration.Kafka) *Publisher {
	return &Publisher{
		log: log,
		writer: &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Topic:    cfg.Topic,
			Balancer: &kafka.Hash{},
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, event timelock.Event) error {
	msg, err := NewMessage(event)
	if err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event")
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Recipient),
		Value: data,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to write event %s", msg.ID)
	}
	p.log.WithField("event_id", msg.ID).Debug("event sent to kafka")
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func NewMessage(event timelock.Event) (Message, error) {
	if event.Kind == "" {
		return Message{}, errors.New("event kind is empty")
	}
	msg := Message{
		ID:          event.ID.String(),
		Kind:        string(event.Kind),
		Recipient:   event.Recipient.String(),
		Amount:      strconv.FormatUint(event.Amount, 10),
		PulseNumber: uint32(event.Pulse),
	}
	if event.Kind == timelock.KindDepositPlaced {
		msg.From = event.From.String()
	}
	return msg, nil
}

var _ timelock.EventSink = (*Publisher)(nil)
