// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package api

// Amounts are decimal strings, references are in their textual form.

type DepositRequest struct {
	Recipient   string `json:"recipient"`
	Amount      string `json:"amount"`
	CliffOffset uint32 `json:"cliff_offset"`
}

type WithdrawResponse struct {
	Amount string `json:"amount"`
}

type ConfigResponse struct {
	PeriodLength           uint32 `json:"period_length"`
	ReleaseRateBasisPoints uint32 `json:"release_rate_basis_points"`
	ReleaseRatePercent     string `json:"release_rate_percent"`
	Owner                  string `json:"owner"`
	Custody                string `json:"custody"`
}

type RecordResponse struct {
	Recipient        string `json:"recipient"`
	TotalDeposited   string `json:"total_deposited"`
	RemainingAmount  string `json:"remaining_amount"`
	Released         string `json:"released"`
	ReleasedPercent  string `json:"released_percent"`
	Releasable       string `json:"releasable"`
	Checkpoint       uint32 `json:"checkpoint"`
	CreatedAt        uint32 `json:"created_at"`
	NextReleasePulse uint32 `json:"next_release_pulse,omitempty"`
}

type BalanceResponse struct {
	Account string `json:"account"`
	Balance string `json:"balance"`
}

type EventResponse struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	From        string `json:"from,omitempty"`
	Recipient   string `json:"recipient"`
	Amount      string `json:"amount"`
	PulseNumber uint32 `json:"pulse_number"`
}

type GetEventsParams struct {
	Limit *int `json:"limit,omitempty"`
}
