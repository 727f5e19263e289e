// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/insolar/insolar/insolar"
	"github.com/insolar/insolar/insolar/gen"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/insolar/timelock/configuration"
	"github.com/insolar/timelock/internal/app/timelock"
	"github.com/insolar/timelock/internal/app/timelock/memory"
	"github.com/insolar/timelock/observability"
)

type testAPI struct {
	server  *httptest.Server
	clock   *timelock.ManualClock
	ledger  *memory.Ledger
	owner   insolar.Reference
	custody insolar.Reference
}

func setupAPI(t *testing.T) *testAPI {
	obs := observability.Make(configuration.Timelock{}.Default().Log)
	a := &testAPI{
		clock:   timelock.NewManualClock(65537),
		ledger:  memory.NewLedger(),
		owner:   gen.Reference(),
		custody: gen.Reference(),
	}
	require.NoError(t, a.ledger.Mint(context.Background(), a.custody, 20000))

	journal := memory.NewEventJournal()
	engine, err := timelock.NewEngine(obs, timelock.Params{
		Config:  timelock.Config{PeriodLength: 10, ReleaseRateBasisPoints: 2},
		Owner:   a.owner,
		Custody: a.custody,
		Ledger:  a.ledger,
		Store:   memory.NewRecordStore(),
		Events:  journal,
		Clock:   a.clock,
	})
	require.NoError(t, err)

	e := echo.New()
	RegisterHandlers(e, NewTimelockServer(engine, a.ledger, journal, obs.Log()))
	a.server = httptest.NewServer(e)
	t.Cleanup(a.server.Close)
	return a
}

func (a *testAPI) post(t *testing.T, path string, caller *insolar.Reference, body interface{}) *http.Response {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req, err := http.NewRequest(http.MethodPost, a.server.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if caller != nil {
		req.Header.Set(CallerHeader, caller.String())
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (a *testAPI) get(t *testing.T, path string) *http.Response {
	resp, err := http.Get(a.server.URL + path)
	require.NoError(t, err)
	return resp
}

func requireEqualResponse(t *testing.T, resp *http.Response, received interface{}, expected interface{}) {
	defer resp.Body.Close()
	bodyBytes, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)

	err = json.Unmarshal(bodyBytes, received)
	require.NoError(t, err)
	require.Equal(t, expected, received)
}

func escape(ref insolar.Reference) string {
	return url.QueryEscape(ref.String())
}

func TestDepositAndWithdraw(t *testing.T) {
	a := setupAPI(t)
	recipient := gen.Reference()

	resp := a.post(t, "/api/deposit", &a.owner, DepositRequest{
		Recipient: recipient.String(),
		Amount:    "5000",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = a.post(t, "/api/withdraw", &recipient, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	requireEqualResponse(t, resp, &WithdrawResponse{}, &WithdrawResponse{Amount: "0"})

	a.clock.Advance(50)
	resp = a.post(t, "/api/withdraw", &recipient, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	requireEqualResponse(t, resp, &WithdrawResponse{}, &WithdrawResponse{Amount: "5"})

	resp = a.get(t, "/api/balance/"+escape(recipient))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	requireEqualResponse(t, resp, &BalanceResponse{}, &BalanceResponse{
		Account: recipient.String(),
		Balance: "5",
	})

	resp = a.get(t, "/api/balance/"+escape(a.custody))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	requireEqualResponse(t, resp, &BalanceResponse{}, &BalanceResponse{
		Account: a.custody.String(),
		Balance: "19995",
	})
}

func TestDeposit_Errors(t *testing.T) {
	a := setupAPI(t)
	recipient := gen.Reference()
	stranger := gen.Reference()

	t.Run("no caller", func(t *testing.T) {
		resp := a.post(t, "/api/deposit", nil, DepositRequest{Recipient: recipient.String(), Amount: "1"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		requireEqualResponse(t, resp, &ErrorMessage{}, &ErrorMessage{Error: []string{"X-Caller header is required"}})
	})

	t.Run("not owner", func(t *testing.T) {
		resp := a.post(t, "/api/deposit", &stranger, DepositRequest{Recipient: recipient.String(), Amount: "1"})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		received := &ErrorMessage{}
		requireEqualBody(t, resp, received)
		require.Equal(t, "AuthorizationError", received.Kind)
	})

	t.Run("wrong amount", func(t *testing.T) {
		resp := a.post(t, "/api/deposit", &a.owner, DepositRequest{Recipient: recipient.String(), Amount: "-1"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		requireEqualResponse(t, resp, &ErrorMessage{}, &ErrorMessage{Error: []string{"amount wrong format"}})
	})

	t.Run("wrong recipient", func(t *testing.T) {
		resp := a.post(t, "/api/deposit", &a.owner, DepositRequest{Recipient: "123", Amount: "1"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		requireEqualResponse(t, resp, &ErrorMessage{}, &ErrorMessage{Error: []string{"recipient wrong format"}})
	})

	t.Run("zero amount", func(t *testing.T) {
		resp := a.post(t, "/api/deposit", &a.owner, DepositRequest{Recipient: recipient.String(), Amount: "0"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		received := &ErrorMessage{}
		requireEqualBody(t, resp, received)
		require.Equal(t, "ValidationError", received.Kind)
	})

	t.Run("insufficient custody", func(t *testing.T) {
		resp := a.post(t, "/api/deposit", &a.owner, DepositRequest{Recipient: recipient.String(), Amount: "20001"})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		received := &ErrorMessage{}
		requireEqualBody(t, resp, received)
		require.Equal(t, "InsufficientCustodyError", received.Kind)
	})

	t.Run("active record", func(t *testing.T) {
		resp := a.post(t, "/api/deposit", &a.owner, DepositRequest{Recipient: recipient.String(), Amount: "10"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()

		resp = a.post(t, "/api/deposit", &a.owner, DepositRequest{Recipient: recipient.String(), Amount: "10"})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		received := &ErrorMessage{}
		requireEqualBody(t, resp, received)
		require.Equal(t, "RecordActiveError", received.Kind)
	})
}

func requireEqualBody(t *testing.T, resp *http.Response, received interface{}) {
	defer resp.Body.Close()
	bodyBytes, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(bodyBytes, received))
}

func TestWithdraw_Unauthorized(t *testing.T) {
	a := setupAPI(t)
	stranger := gen.Reference()

	resp := a.post(t, "/api/withdraw", &stranger, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	received := &ErrorMessage{}
	requireEqualBody(t, resp, received)
	require.Equal(t, "AuthorizationError", received.Kind)
}

func TestConfig(t *testing.T) {
	a := setupAPI(t)

	resp := a.get(t, "/api/config")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	requireEqualResponse(t, resp, &ConfigResponse{}, &ConfigResponse{
		PeriodLength:           10,
		ReleaseRateBasisPoints: 2,
		ReleaseRatePercent:     "0.02",
		Owner:                  a.owner.String(),
		Custody:                a.custody.String(),
	})
}

func TestRecord(t *testing.T) {
	a := setupAPI(t)
	recipient := gen.Reference()

	resp := a.get(t, "/api/record/"+escape(recipient))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = a.get(t, "/api/record/123")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	requireEqualResponse(t, resp, &ErrorMessage{}, &ErrorMessage{Error: []string{"reference wrong format"}})

	resp = a.post(t, "/api/deposit", &a.owner, DepositRequest{Recipient: recipient.String(), Amount: "5000", CliffOffset: 5})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	a.clock.Advance(55)
	resp = a.post(t, "/api/withdraw", &recipient, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	a.clock.Advance(23)
	resp = a.get(t, "/api/record/"+escape(recipient))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	requireEqualResponse(t, resp, &RecordResponse{}, &RecordResponse{
		Recipient:        recipient.String(),
		TotalDeposited:   "5000",
		RemainingAmount:  "4995",
		Released:         "5",
		ReleasedPercent:  "0.10",
		Releasable:       "2",
		Checkpoint:       65537 + 55,
		CreatedAt:        65537,
		NextReleasePulse: 65537 + 85,
	})
}

func TestRecordEvents(t *testing.T) {
	a := setupAPI(t)
	recipient := gen.Reference()

	resp := a.post(t, "/api/deposit", &a.owner, DepositRequest{Recipient: recipient.String(), Amount: "5000"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	a.clock.Advance(10)
	resp = a.post(t, "/api/withdraw", &recipient, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = a.get(t, "/api/record/"+escape(recipient)+"/events")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var events []EventResponse
	requireEqualBody(t, resp, &events)
	require.Len(t, events, 2)
	require.Equal(t, "DepositWithdrawn", events[0].Kind)
	require.Equal(t, "1", events[0].Amount)
	require.Empty(t, events[0].From)
	require.Equal(t, "DepositPlaced", events[1].Kind)
	require.Equal(t, a.owner.String(), events[1].From)
	require.Equal(t, uint32(65537), events[1].PulseNumber)

	resp = a.get(t, "/api/record/"+escape(recipient)+"/events?limit=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	requireEqualBody(t, resp, &events)
	require.Len(t, events, 1)

	resp = a.get(t, "/api/record/"+escape(recipient)+"/events?limit=0")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = a.get(t, "/api/record/"+escape(recipient)+"/events?limit=abc")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestShare(t *testing.T) {
	require.Equal(t, "0.00", share(0, 0).StringFixed(2))
	require.Equal(t, "33.33", share(1, 3).StringFixed(2))
	require.Equal(t, "100.00", share(18446744073709551615, 18446744073709551615).StringFixed(2))
	require.Equal(t, "100", basisPointsToPercent(10000).String())
}
