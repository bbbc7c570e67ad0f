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

package repository

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/accordchat/accordserver/internal/config"
	"github.com/glebarez/sqlite"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// gormRepository implements Repository on top of *gorm.DB.
type gormRepository struct {
	db *gorm.DB
}

// NewGormRepository opens the configured database, migrates the schema,
// and returns a ready-to-use Repository.
func NewGormRepository(cfg *config.Config) (Repository, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("acquire raw sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(runtime.GOMAXPROCS(0))
	const connsPerCPU = 10
	sqlDB.SetMaxOpenConns(runtime.GOMAXPROCS(0) * connsPerCPU)
	const maxIdleTime = 10 * time.Minute
	sqlDB.SetConnMaxIdleTime(maxIdleTime)

	return &gormRepository{db: db}, nil
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg.TestMode || cfg.Database.Driver == config.DatabaseDriverSQLite {
		slog.Info("using in-memory sqlite database")
		return gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Username,
		cfg.Database.Password, cfg.Database.Database, cfg.Database.SSLMode,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if cfg.Metrics.OTLPEndpoint != "" {
		if err := db.Use(otelgorm.NewPlugin()); err != nil {
			return nil, fmt.Errorf("trace database: %w", err)
		}
	}
	return db, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{}, &Application{}, &Token{},
		&Space{}, &Role{}, &Member{},
		&Channel{}, &DMParticipant{}, &PermissionOverwrite{},
		&Message{}, &Reaction{},
		&Invite{}, &Ban{},
		&Emoji{}, &SoundboardSound{},
		&SfuNode{}, &ServerSettings{},
	)
}
