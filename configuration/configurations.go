// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package configuration

// Configurations maps default config file names to their content.
func Configurations() map[string]interface{} {
	cfgs := make(map[string]interface{})
	cfgs["timelock.yaml"] = Timelock{}.Default()
	cfgs["migrate.yaml"] = Migrate{}.Default()

	return cfgs
}
