// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package timelock

import (
	"github.com/pkg/errors"
)

// BasisPointsDenominator is the number of basis points in a whole.
const BasisPointsDenominator = 10000

// Config holds the release schedule shared by every record of an engine.
// It is fixed at construction.
type Config struct {
	// Number of pulses in one release period.
	PeriodLength uint32
	// Share of the original deposit released per period, out of BasisPointsDenominator.
	ReleaseRateBasisPoints uint32
}

func NewConfig(periodLength, releaseRateBasisPoints uint32) (Config, error) {
	cfg := Config{
		PeriodLength:           periodLength,
		ReleaseRateBasisPoints: releaseRateBasisPoints,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.PeriodLength == 0 {
		return errors.Wrap(ErrValidation, "period length should be positive")
	}
	if c.ReleaseRateBasisPoints == 0 || c.ReleaseRateBasisPoints > BasisPointsDenominator {
		return errors.Wrapf(ErrValidation, "release rate should be in range [1, %d] basis points, got %d",
			BasisPointsDenominator, c.ReleaseRateBasisPoints)
	}
	return nil
}
