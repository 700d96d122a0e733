// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package pipeline

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/twinkle/i18nguard/config"
	"codeberg.org/twinkle/i18nguard/core/report"
)

// Stage selects what [Run] does.
type Stage string

const (
	StageBuild Stage = "build"
	StageCheck Stage = "check"
	StageAll   Stage = "all"
)

var ErrUnknownStage = errors.New("unknown stage")

// ParseStage validates a stage name from the command line.
func ParseStage(name string) (Stage, error) {
	switch s := Stage(name); s {
	case StageBuild, StageCheck, StageAll:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStage, name)
	}
}

// Run executes the selected stage. With StageAll both stages run even if
// the build fails, and their errors are joined. The run report is written
// when report.path is set, whatever the outcome.
func Run(ctx context.Context, cfg *config.Config, stage Stage) error {
	setupLogger()

	rep := report.New(cfg.Run.ID, config.BuildVersion, cfg.Run.StartingTime)

	var errs []error

	if stage == StageBuild || stage == StageAll {
		errs = append(errs, Build(ctx, cfg, rep))
	}

	if stage == StageCheck || stage == StageAll {
		errs = append(errs, Check(ctx, cfg, rep))
	}

	if cfg.Report.Path != "" {
		if err := rep.Write(cfg.Report.Path); err != nil {
			errs = append(errs, err)
		} else {
			Logger.Info().
				Str("path", cfg.Report.Path).
				Msg("Run report written")
		}
	}

	return errors.Join(errs...)
}
