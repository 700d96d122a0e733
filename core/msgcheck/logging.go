// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package msgcheck

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the logger used by package msgcheck.
var Logger zerolog.Logger = log.With().Str("sys", "msgcheck").Logger()

// SetupLogger derives [Logger] from the global logger again. It must be
// called after the global logger has been replaced.
func SetupLogger() {
	Logger = log.With().Str("sys", "msgcheck").Logger()
}
