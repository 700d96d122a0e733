// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Command check_msg reports message keys that are used but not defined, and
// keys that are defined but never used. It is the same as running
// i18nguard -stage check.
package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"codeberg.org/twinkle/i18nguard/config"
	"codeberg.org/twinkle/i18nguard/core/audit"
	"codeberg.org/twinkle/i18nguard/core/pipeline"
)

func main() {
	audit.SetDefaultLogger()

	if err := config.Global.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := pipeline.Run(context.Background(), &config.Global, pipeline.StageCheck); err != nil {
		log.Fatal().Err(err).Msg("Message check failed")
	}
}
