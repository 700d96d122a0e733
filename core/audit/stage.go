// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package audit

import (
	"context"
	"fmt"
	"runtime/trace"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Stage is one step of a pipeline run, such as building the catalogs.
type Stage struct {
	// only these fields are set automatically
	task     *trace.Task
	start    time.Time
	duration time.Duration

	Name  string
	RunID string
	// Items is the number of things processed, e.g. files.
	Items int
	// Bytes is the amount of output written.
	Bytes int
	Error error
}

// Begin starts the stage clock and a runtime/trace task named after it.
func (s *Stage) Begin(ctx context.Context) context.Context {
	s.start = time.Now()
	ctx, s.task = trace.NewTask(ctx, "stage."+s.Name)

	return ctx
}

// End stops the clock. Calling it again has no effect.
func (s *Stage) End() {
	if s.task != nil {
		s.duration = time.Since(s.start)
		s.task.End()
		s.task = nil
	}
}

// Duration returns the time between Begin and End.
func (s *Stage) Duration() time.Duration {
	return s.duration
}

// Log writes one line for the stage, at error level if it failed.
func (s *Stage) Log() {
	var event *zerolog.Event
	if s.Error != nil {
		event = log.Error().Err(s.Error)
	} else {
		event = log.Info()
	}

	event.
		Str("sys", "stage").
		Str("stage", s.Name).
		Str("run_id", s.RunID).
		Int("items", s.Items).
		Str("len", humanizeSize(s.Bytes)).
		Dur("dur", s.duration).
		Msg("Stage finished")
}

const (
	bytesInKB = 1024
	bytesInMB = bytesInKB * bytesInKB
	bytesInGB = bytesInMB * bytesInKB
)

func humanizeSize(x int) string {
	if x < bytesInKB {
		return strconv.Itoa(x)
	}

	if x < bytesInMB {
		return fmt.Sprintf("%.2fK", float64(x)/bytesInKB)
	}

	if x < bytesInGB {
		return fmt.Sprintf("%.2fM", float64(x)/bytesInMB)
	}

	return fmt.Sprintf("%.2fG", float64(x)/bytesInGB)
}
