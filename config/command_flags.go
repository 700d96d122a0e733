// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import "flag"

// parseCommandLineArgs defines and parses flags, returning the value of the "config" flag.
//
// Commands that add flags of their own must define them before calling [Config.LoadConfig].
func parseCommandLineArgs() string {
	var configFilePath string

	if f := flag.Lookup("config"); f == nil {
		flag.StringVar(&configFilePath, "config", defaultConfigPath, "Path to an i18nguard configuration file in YAML format.")
	} else {
		configFilePath = f.Value.String()
	}

	if !flag.Parsed() {
		flag.Parse()
	}

	if f := flag.Lookup("config"); f != nil {
		configFilePath = f.Value.String()
	}

	return configFilePath
}
