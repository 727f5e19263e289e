// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package cycle

import (
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Limit int

const (
	INFINITY Limit = math.MaxInt32
)

// UntilConnectionError repeats f while it fails with a connection error, up to attempts times.
// Any other error, or running out of attempts, is returned to the caller.
func UntilConnectionError(f func() error, interval time.Duration, attempts Limit, log *logrus.Logger) error {
	counter := Limit(1)
	if attempts < 1 {
		attempts = 1
	}
	for {
		err := f()
		if err == nil {
			return nil
		}
		if !isConnectionError(err) {
			return err
		}
		if counter >= attempts {
			return errors.Wrapf(err, "gave up after %d attempts", counter)
		}
		log.Errorf("Connection error, try again (attempt %d, totalAttempts %d) %+v", counter, attempts, err)
		counter++
		time.Sleep(interval)
	}
}

func isConnectionError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection") || strings.Contains(msg, "EOF")
}
