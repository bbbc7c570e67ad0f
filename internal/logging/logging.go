// SPDX-License-Identifier: AGPL-3.0-or-later
// Accord - a chat-and-voice platform server
// Copyright (C) 2026 The Accord Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// Package logging builds the process-wide slog.Logger from config.LogLevel
// using tint for colorized console output. It replaces an older
// file-backed custom logger that predates structured logging in this
// codebase; everything downstream takes a *slog.Logger or uses slog's
// default logger rather than a second logging API.
package logging

import (
	"log/slog"
	"os"

	"github.com/accordchat/accordserver/internal/config"
	"github.com/lmittmann/tint"
)

// New builds a *slog.Logger for the given level. A debug or info level
// writes every record to stdout; a warn or error level writes every
// record to stderr.
func New(level config.LogLevel) *slog.Logger {
	switch level {
	case config.LogLevelDebug:
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug}))
	case config.LogLevelWarn:
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))
	case config.LogLevelError:
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelError}))
	default:
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	}
}
