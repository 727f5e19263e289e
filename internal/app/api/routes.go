// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package api

import (
	"fmt"
	"net/http"

	"github.com/deepmap/oapi-codegen/pkg/runtime"
	"github.com/labstack/echo/v4"
)

// CallerHeader carries the reference of the account performing a call.
const CallerHeader = "X-Caller"

type ServerInterface interface {
	// (POST /api/deposit)
	Deposit(ctx echo.Context) error
	// (POST /api/withdraw)
	Withdraw(ctx echo.Context) error
	// (GET /api/config)
	Config(ctx echo.Context) error
	// (GET /api/record/{recipient})
	Record(ctx echo.Context, recipient string) error
	// (GET /api/record/{recipient}/events)
	RecordEvents(ctx echo.Context, recipient string, params GetEventsParams) error
	// (GET /api/balance/{account})
	Balance(ctx echo.Context, account string) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) Deposit(ctx echo.Context) error {
	return w.Handler.Deposit(ctx)
}

func (w *ServerInterfaceWrapper) Withdraw(ctx echo.Context) error {
	return w.Handler.Withdraw(ctx)
}

func (w *ServerInterfaceWrapper) Config(ctx echo.Context) error {
	return w.Handler.Config(ctx)
}

func (w *ServerInterfaceWrapper) Record(ctx echo.Context) error {
	var recipient string
	err := runtime.BindStyledParameter("simple", false, "recipient", ctx.Param("recipient"), &recipient)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter recipient: %s", err))
	}
	return w.Handler.Record(ctx, recipient)
}

func (w *ServerInterfaceWrapper) RecordEvents(ctx echo.Context) error {
	var recipient string
	err := runtime.BindStyledParameter("simple", false, "recipient", ctx.Param("recipient"), &recipient)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter recipient: %s", err))
	}

	var params GetEventsParams
	err = runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &params.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter limit: %s", err))
	}
	return w.Handler.RecordEvents(ctx, recipient, params)
}

func (w *ServerInterfaceWrapper) Balance(ctx echo.Context) error {
	var account string
	err := runtime.BindStyledParameter("simple", false, "account", ctx.Param("account"), &account)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter account: %s", err))
	}
	return w.Handler.Balance(ctx, account)
}

func RegisterHandlers(router runtime.EchoRouter, si ServerInterface) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.POST("/api/deposit", wrapper.Deposit)
	router.POST("/api/withdraw", wrapper.Withdraw)
	router.GET("/api/config", wrapper.Config)
	router.GET("/api/record/:recipient", wrapper.Record)
	router.GET("/api/record/:recipient/events", wrapper.RecordEvents)
	router.GET("/api/balance/:account", wrapper.Balance)
}
