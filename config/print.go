// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

func (cfg *Config) print() {
	log.Info().
		Str("version", BuildVersion).
		Str("revision", cfg.Build.Revision()).
		Str("started", cfg.Run.StartingTime).
		Msg("Starting i18nguard")

	configYAML, err := cfg.YAML()
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal config to YAML for printing")

		return
	}

	if event := log.Debug(); event.Enabled() {
		event.Msg("Pipeline configuration:")
		fmt.Fprintln(os.Stderr, string(configYAML))
	}
}

// YAML returns the configuration as YAML, in the same shape the
// configuration file is read in.
func (cfg *Config) YAML() ([]byte, error) {
	return yaml.MarshalWithOptions(cfg, yaml.IndentSequence(true))
}
