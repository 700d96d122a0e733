// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
i18nguard prepares the translated interface strings of a wiki gadget for
production.

The build stage sanitizes every catalog in the source directory against a
fixed allowlist of tags and attributes, drops strings that still look
dangerous, and writes the result to the output directory. The check stage
reconciles the message keys used in the gadget source with the keys the
catalogs define.

Usage:

	i18nguard [-config i18nguard.yaml] [-stage build|check|all]
*/
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"

	"codeberg.org/twinkle/i18nguard/config"
	"codeberg.org/twinkle/i18nguard/core/audit"
	"codeberg.org/twinkle/i18nguard/core/pipeline"
)

// main is the entry point of the application.
func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("i18nguard failed")
	}
}

func run() error {
	stageName := flag.String("stage", string(pipeline.StageAll), "Pipeline stage to run: build, check or all.")

	audit.SetDefaultLogger()

	if err := config.Global.LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	stage, err := pipeline.ParseStage(*stageName)
	if err != nil {
		return err
	}

	return pipeline.Run(context.Background(), &config.Global, stage)
}
