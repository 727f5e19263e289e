// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package api

import (
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/insolar/insolar/insolar"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/insolar/timelock/internal/app/timelock"
)

const (
	defaultEventsLimit = 20
	maxEventsLimit     = 1000
)

type TimelockServer struct {
	engine *timelock.Engine
	ledger timelock.Ledger
	// May be nil when events are not kept.
	events timelock.EventReader
	log    *logrus.Logger
}

func NewTimelockServer(engine *timelock.Engine, ledger timelock.Ledger, events timelock.EventReader, log *logrus.Logger) *TimelockServer {
	return &TimelockServer{engine: engine, ledger: ledger, events: events, log: log}
}

func (s *TimelockServer) Deposit(ctx echo.Context) error {
	caller, errMsg := s.caller(ctx)
	if errMsg != nil {
		return ctx.JSON(http.StatusUnauthorized, errMsg)
	}

	req := &DepositRequest{}
	if err := ctx.Bind(req); err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("wrong request body"))
	}
	recipient, err := insolar.NewReferenceFromString(req.Recipient)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("recipient wrong format"))
	}
	amount, err := strconv.ParseUint(req.Amount, 10, 64)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("amount wrong format"))
	}

	err = s.engine.Deposit(ctx.Request().Context(), caller, *recipient, amount, req.CliffOffset)
	if err != nil {
		return s.engineError(ctx, err)
	}
	return ctx.NoContent(http.StatusCreated)
}

func (s *TimelockServer) Withdraw(ctx echo.Context) error {
	caller, errMsg := s.caller(ctx)
	if errMsg != nil {
		return ctx.JSON(http.StatusUnauthorized, errMsg)
	}

	amount, err := s.engine.Withdraw(ctx.Request().Context(), caller)
	if err != nil {
		return s.engineError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, WithdrawResponse{Amount: strconv.FormatUint(amount, 10)})
}

func (s *TimelockServer) Config(ctx echo.Context) error {
	owner, custody := s.engine.Owner(), s.engine.Custody()
	return ctx.JSON(http.StatusOK, ConfigResponse{
		PeriodLength:           s.engine.PeriodLength(),
		ReleaseRateBasisPoints: s.engine.ReleaseRateBasisPoints(),
		ReleaseRatePercent:     basisPointsToPercent(s.engine.ReleaseRateBasisPoints()).String(),
		Owner:                  owner.String(),
		Custody:                custody.String(),
	})
}

func (s *TimelockServer) Record(ctx echo.Context, recipient string) error {
	ref, errMsg := checkReference(recipient)
	if errMsg != nil {
		return ctx.JSON(http.StatusBadRequest, errMsg)
	}

	record, release, err := s.engine.Preview(ctx.Request().Context(), *ref)
	if err != nil {
		return s.engineError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, RecordResponse{
		Recipient:        ref.String(),
		TotalDeposited:   strconv.FormatUint(record.TotalDeposited, 10),
		RemainingAmount:  strconv.FormatUint(record.RemainingAmount, 10),
		Released:         strconv.FormatUint(record.Released(), 10),
		ReleasedPercent:  share(record.Released(), record.TotalDeposited).StringFixed(2),
		Releasable:       strconv.FormatUint(release.Amount, 10),
		Checkpoint:       uint32(record.Checkpoint),
		CreatedAt:        uint32(record.CreatedAt),
		NextReleasePulse: uint32(s.engine.NextRelease(record)),
	})
}

func (s *TimelockServer) RecordEvents(ctx echo.Context, recipient string, params GetEventsParams) error {
	if s.events == nil {
		return ctx.JSON(http.StatusNotImplemented, NewSingleMessageError("events are not stored"))
	}
	ref, errMsg := checkReference(recipient)
	if errMsg != nil {
		return ctx.JSON(http.StatusBadRequest, errMsg)
	}
	limit := defaultEventsLimit
	if params.Limit != nil {
		limit = *params.Limit
	}
	if limit <= 0 || limit > maxEventsLimit {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("`limit` should be in range [1, 1000]"))
	}

	events, err := s.events.EventsOf(ctx.Request().Context(), *ref, limit)
	if err != nil {
		return s.engineError(ctx, errors.Wrap(err, "failed to read events"))
	}
	res := make([]EventResponse, 0, len(events))
	for _, e := range events {
		res = append(res, eventResponse(e))
	}
	return ctx.JSON(http.StatusOK, res)
}

func (s *TimelockServer) Balance(ctx echo.Context, account string) error {
	ref, errMsg := checkReference(account)
	if errMsg != nil {
		return ctx.JSON(http.StatusBadRequest, errMsg)
	}
	balance, err := s.ledger.BalanceOf(ctx.Request().Context(), *ref)
	if err != nil {
		return s.engineError(ctx, errors.Wrap(err, "failed to get balance"))
	}
	return ctx.JSON(http.StatusOK, BalanceResponse{
		Account: ref.String(),
		Balance: strconv.FormatUint(balance, 10),
	})
}

func (s *TimelockServer) caller(ctx echo.Context) (insolar.Reference, *ErrorMessage) {
	header := ctx.Request().Header.Get(CallerHeader)
	if header == "" {
		errMsg := NewSingleMessageError(CallerHeader + " header is required")
		return insolar.Reference{}, &errMsg
	}
	ref, err := insolar.NewReferenceFromString(header)
	if err != nil {
		errMsg := NewSingleMessageError("caller wrong format")
		return insolar.Reference{}, &errMsg
	}
	return *ref, nil
}

func (s *TimelockServer) engineError(ctx echo.Context, err error) error {
	status, msg := engineError(err)
	if status == http.StatusInternalServerError {
		s.log.Errorf("request %s %s failed: %+v", ctx.Request().Method, ctx.Path(), err)
	}
	return ctx.JSON(status, msg)
}

func checkReference(referenceRow string) (*insolar.Reference, *ErrorMessage) {
	referenceRow = strings.TrimSpace(referenceRow)
	var errMsg ErrorMessage

	if len(referenceRow) == 0 {
		errMsg = NewSingleMessageError("empty reference")
		return nil, &errMsg
	}

	reference, err := url.QueryUnescape(referenceRow)
	if err != nil {
		errMsg = NewSingleMessageError("error unescaping reference parameter")
		return nil, &errMsg
	}

	ref, err := insolar.NewReferenceFromString(reference)
	if err != nil {
		errMsg = NewSingleMessageError("reference wrong format")
		return nil, &errMsg
	}
	return ref, nil
}

func eventResponse(e timelock.Event) EventResponse {
	res := EventResponse{
		ID:          e.ID.String(),
		Kind:        string(e.Kind),
		Recipient:   e.Recipient.String(),
		Amount:      strconv.FormatUint(e.Amount, 10),
		PulseNumber: uint32(e.Pulse),
	}
	if e.Kind == timelock.KindDepositPlaced {
		res.From = e.From.String()
	}
	return res
}

func basisPointsToPercent(bp uint32) decimal.Decimal {
	return decimal.New(int64(bp), -2)
}

// share is part of whole in percent.
func share(part, whole uint64) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	p := decimal.NewFromBigInt(new(big.Int).SetUint64(part), 0)
	w := decimal.NewFromBigInt(new(big.Int).SetUint64(whole), 0)
	return p.Mul(decimal.New(100, 0)).Div(w)
}
