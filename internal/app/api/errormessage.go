// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package api

import (
	"net/http"

	"github.com/insolar/timelock/internal/app/timelock"
)

type ErrorMessage struct {
	Error []string `json:"error"`
	Kind  string   `json:"kind,omitempty"`
}

func NewSingleMessageError(err string) ErrorMessage {
	return ErrorMessage{Error: []string{err}}
}

// engineError maps an engine error to the response status and body. Internal
// errors are reported without details.
func engineError(err error) (int, ErrorMessage) {
	kind := timelock.Kind(err)
	var status int
	switch kind {
	case "AuthorizationError":
		status = http.StatusForbidden
	case "ValidationError":
		status = http.StatusBadRequest
	case "InsufficientCustodyError", "RecordActiveError":
		status = http.StatusConflict
	case "NotFoundError":
		status = http.StatusNotFound
	default:
		return http.StatusInternalServerError, ErrorMessage{Error: []string{"internal error"}, Kind: kind}
	}
	return status, ErrorMessage{Error: []string{err.Error()}, Kind: kind}
}
