// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import "flag"

// parseCommandLineArgs defines and parses flags, returning the value of the "config" flag.
func parseCommandLineArgs() string {
	configFlag := flag.Lookup("config")
	if configFlag == nil {
		flag.String("config", "./config.yaml", "Path to a Pinmark configuration file in YAML format.")
		configFlag = flag.Lookup("config")
	}

	if !flag.Parsed() {
		flag.Parse()
	}

	return configFlag.Value.String()
}
