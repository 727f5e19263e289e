// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package timelock

import (
	"github.com/pkg/errors"
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrValidation          = errors.New("validation failed")
	ErrInsufficientCustody = errors.New("insufficient custody")
	ErrRecordActive        = errors.New("vesting record is still active")
	ErrNotFound            = errors.New("vesting record not found")
)

// Kind names the class of err for transports and logs.
func Kind(err error) string {
	switch errors.Cause(err) {
	case nil:
		return ""
	case ErrUnauthorized:
		return "AuthorizationError"
	case ErrValidation:
		return "ValidationError"
	case ErrInsufficientCustody:
		return "InsufficientCustodyError"
	case ErrRecordActive:
		return "RecordActiveError"
	case ErrNotFound:
		return "NotFoundError"
	default:
		return "InternalError"
	}
}
