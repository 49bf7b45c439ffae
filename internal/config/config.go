// config.go
//
// Record store and permission service for the RealE-Market real estate CRM
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of crmdb.
// crmdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// crmdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with crmdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string `env:"PORT" envDefault:"3000"`

	// Storage configuration
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"sql"` // sql, memory

	// Database configuration
	DBType            string `env:"DB_TYPE" envDefault:"sqlite-purego"` // mysql, mariadb, postgres, sqlite, sqlite-purego, sqlserver
	DBHost            string `env:"DB_HOST" envDefault:"localhost"`
	DBPort            string `env:"DB_PORT" envDefault:"3306"`
	DBDatabase        string `env:"DB_DATABASE"`
	DBUser            string `env:"DB_USER"`
	DBPassword        string `env:"DB_PASSWORD"`
	DBConnectionLimit int    `env:"DB_CONNECTION_LIMIT" envDefault:"5"`
	DBLogSQL          bool   `env:"DB_LOG_SQL" envDefault:"false"`

	// Session configuration
	JWTSecret      string        `env:"JWT_SECRET"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"72h"`
	BypassUsername string        `env:"BYPASS_USERNAME" envDefault:"admin"`
	BypassPassword string        `env:"BYPASS_PASSWORD" envDefault:"admin"`

	// Permission configuration
	SuperAdminRole string `env:"SUPERADMIN_ROLE" envDefault:"Administrator"`
	DefaultRole    string `env:"DEFAULT_ROLE" envDefault:"Admin"`

	// Backup configuration
	BackupDriver      string `env:"BACKUP_DRIVER" envDefault:"fs"` // fs, s3, none
	BackupDir         string `env:"BACKUP_DIR" envDefault:"backups"`
	BackupS3Bucket    string `env:"BACKUP_S3_BUCKET"`
	BackupS3Region    string `env:"BACKUP_S3_REGION" envDefault:"us-east-1"`
	BackupS3Endpoint  string `env:"BACKUP_S3_ENDPOINT"`
	BackupS3PathStyle bool   `env:"BACKUP_S3_PATH_STYLE" envDefault:"false"`
	BackupS3AccessKey string `env:"BACKUP_S3_ACCESS_KEY_ID"`
	BackupS3SecretKey string `env:"BACKUP_S3_SECRET_ACCESS_KEY"`

	// Logging configuration
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // text, json
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and enumerated values
func (cfg *Config) Validate() error {
	switch cfg.StorageDriver {
	case "sql":
		if cfg.DBDatabase == "" {
			return fmt.Errorf("DB_DATABASE is required")
		}
		if cfg.usesCredentials() && cfg.DBUser == "" {
			return fmt.Errorf("DB_USER is required")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER: %s", cfg.StorageDriver)
	}

	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	switch cfg.BackupDriver {
	case "fs", "none":
	case "s3":
		if cfg.BackupS3Bucket == "" {
			return fmt.Errorf("BACKUP_S3_BUCKET is required for the s3 backup driver")
		}
	default:
		return fmt.Errorf("unsupported BACKUP_DRIVER: %s", cfg.BackupDriver)
	}

	return nil
}

// usesCredentials reports whether the configured database needs a user
func (cfg *Config) usesCredentials() bool {
	return cfg.DBType != "sqlite" && cfg.DBType != "sqlite-purego"
}
