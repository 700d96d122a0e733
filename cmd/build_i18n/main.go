// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Command build_i18n sanitizes the message catalogs and writes them to the
// output directory. It is the same as running i18nguard -stage build.
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

	if err := pipeline.Run(context.Background(), &config.Global, pipeline.StageBuild); err != nil {
		log.Fatal().Err(err).Msg("Catalog build failed")
	}

	log.Info().Msg("Internationalization files have been built successfully")
}
