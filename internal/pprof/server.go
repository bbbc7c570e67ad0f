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

package pprof

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/accordchat/accordserver/internal/config"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const readTimeout = 3 * time.Second

// CreatePProfServer binds the debug pprof listener and serves it in the
// background, returning synchronously once the bind has either succeeded
// or failed so a busy port surfaces as a startup error instead of a panic.
func CreatePProfServer(cfg *config.Config) error {
	if !cfg.PProf.Enabled {
		return nil
	}

	r := gin.New()
	r.Use(gin.Recovery())

	if cfg.Metrics.OTLPEndpoint != "" {
		r.Use(otelgin.Middleware("pprof"))
	}

	if err := r.SetTrustedProxies(cfg.PProf.TrustedProxies); err != nil {
		slog.Error("failed setting pprof trusted proxies", "error", err)
	}

	pprof.Register(r)

	addr := fmt.Sprintf("%s:%d", cfg.PProf.Bind, cfg.PProf.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind pprof server on %s: %w", addr, err)
	}

	server := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: readTimeout,
	}

	go func() {
		slog.Info("pprof server listening", "address", addr)
		if serveErr := server.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("pprof server stopped", "error", serveErr)
		}
	}()

	return nil
}
