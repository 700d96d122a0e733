// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeberg.org/twinkle/i18nguard/core/catalog"
	"codeberg.org/twinkle/i18nguard/core/msgcheck"
	"codeberg.org/twinkle/i18nguard/i18n"
)

const logFilePermissions = 0o666

// setupAudit configures the global logger from the Log section, then
// rebuilds the package loggers on top of it.
func (cfg *Config) setupAudit() {
	if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	useJSON := cfg.Log.Format == "json"
	writers := []io.Writer{}

	outputs := cfg.Log.Outputs
	if len(outputs) == 0 {
		outputs = []string{"/dev/stderr"}
	}

	for _, output := range outputs {
		var f *os.File

		switch output {
		case "/dev/stdout":
			f = os.Stdout
		case "/dev/stderr":
			f = os.Stderr
		default:
			file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermissions) // #nosec:G302,G304
			if err != nil {
				// The output is skipped; the others still work.
				fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v\n", output, err)

				continue
			}

			f = file
		}

		if useJSON {
			writers = append(writers, f)
		} else {
			writers = append(writers, ConsoleWriter(f))
		}
	}

	log.Logger = log.Output(zerolog.MultiLevelWriter(writers...)).
		With().
		Str("run_id", cfg.Run.ID).
		Logger()

	setupLoggers()
}

// setupLoggers re-derives the package loggers, which were created from the
// default global logger during package initialization.
func setupLoggers() {
	catalog.SetupLogger()
	msgcheck.SetupLogger()
	i18n.SetupLogger()
}

// isTerminal returns true if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ConsoleWriter returns a human-readable zerolog writer for f, colored only
// when f is a terminal.
func ConsoleWriter(f *os.File) io.Writer {
	noColor := !isTerminal(f)

	w := zerolog.ConsoleWriter{Out: f, NoColor: noColor, TimeFormat: time.TimeOnly}

	if !noColor {
		w.FormatPrepare = func(m map[string]any) error {
			// The run ID is the same on every line of an interactive run.
			delete(m, "run_id")

			if sys, ok := m["sys"].(string); ok {
				m["message"] = fmt.Sprintf("[%s] %v", sys, m["message"])
				delete(m, "sys")
			}

			return nil
		}
	}

	return w
}
