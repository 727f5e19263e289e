// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package configuration

type Migrate struct {
	DB DB
	// Directory with sql migrations
	Dir string
}

func (Migrate) Default() *Migrate {
	return &Migrate{
		DB:  Timelock{}.Default().DB,
		Dir: "scripts/migrations",
	}
}
