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

// Package sdk holds build-time version metadata, baked in via go:embed
// and ldflags rather than read back from a config file.
package sdk

import (
	// embed the commit.txt file into the binary.
	_ "embed"
)

var (
	//go:embed commit.txt
	GitCommit string

	// Version of the program, overridden at build time with -ldflags.
	Version = "0.1.0" //nolint:gochecknoglobals
)
