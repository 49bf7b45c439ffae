// main.go
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

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/joho/godotenv"
	"github.com/localnerve/crmdb/data"
	"github.com/localnerve/crmdb/internal/backup"
	"github.com/localnerve/crmdb/internal/config"
	"github.com/localnerve/crmdb/internal/database"
	"github.com/localnerve/crmdb/internal/handlers"
	"github.com/localnerve/crmdb/internal/kv"
	"github.com/localnerve/crmdb/internal/middleware"
	"github.com/localnerve/crmdb/internal/permissions"
	"github.com/localnerve/crmdb/internal/services"
	"github.com/localnerve/crmdb/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	_ "github.com/localnerve/crmdb/docs/api" // Swagger docs
)

// @title crmdb API
// @version 1.0.0
// @description Record store and permission service for the RealE-Market real estate CRM
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/crmdb
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to an optional .env file")
	flag.Parse()

	if envFilename != "" {
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logs := cfg.NewLogger()
	ctx := context.Background()

	// Storage backend
	var (
		storage kv.Storage
		pinger  services.Pinger
	)
	switch cfg.StorageDriver {
	case "memory":
		storage = kv.NewMemory()
		logs.Warn("Using memory storage, data is lost on exit")
	default:
		db, err := database.Connect(cfg, logs)
		if err != nil {
			logs.WithError(err).Fatal("Failed to connect to database")
		}
		if err := database.AutoMigrate(db); err != nil {
			logs.WithError(err).Fatal("Failed to run migrations")
		}
		sqlStorage := database.NewStorage(db)
		storage, pinger = sqlStorage, sqlStorage
	}

	// Record store, seeded with the demo dataset on first run
	s := store.New(storage, store.Options{
		Logger:     logs,
		Registerer: prometheus.DefaultRegisterer,
		Defaults:   data.Demo,
	})
	if err := s.Hydrate(ctx); err != nil {
		logs.WithError(err).Fatal("Failed to load records")
	}
	defer func() {
		if err := s.Close(); err != nil {
			logs.WithError(err).Error("Failed to close storage")
		}
	}()

	auth := services.NewAuth(s, services.AuthConfig{
		Secret:         cfg.JWTSecret,
		TTL:            cfg.SessionTTL,
		BypassUsername: cfg.BypassUsername,
		BypassPassword: cfg.BypassPassword,
		SuperAdminRole: cfg.SuperAdminRole,
		Logger:         logs,
	})
	if err := auth.EnsurePasswordHashes(ctx); err != nil {
		logs.WithError(err).Fatal("Failed to hash stored passwords")
	}

	sink, err := newBackupSink(ctx, cfg)
	if err != nil {
		logs.WithError(err).Fatal("Failed to set up backups")
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: true,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prom := fiberprometheus.New("crmdb")
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api", middleware.VersionMiddleware())
	handlers.Register(api, handlers.Deps{
		Config:    cfg,
		Store:     s,
		Evaluator: permissions.NewEvaluator(cfg.SuperAdminRole, cfg.DefaultRole),
		Auth:      auth,
		Storage:   pinger,
		Sink:      sink,
		Logger:    logs,
	})

	// 404 handler
	app.Use(handlers.NotFound)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logs.Info("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	logs.WithFields(logrus.Fields{
		"port":    cfg.Port,
		"storage": cfg.StorageDriver,
		"backups": cfg.BackupDriver,
	}).Info("Starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logs.WithError(err).Fatal("Failed to start server")
	}

	logs.Info("Server stopped")
}

// newBackupSink returns the configured sink, or nil when backups are off
func newBackupSink(ctx context.Context, cfg *config.Config) (backup.Sink, error) {
	switch cfg.BackupDriver {
	case "s3":
		return backup.NewS3(ctx, backup.S3Config{
			Region:          cfg.BackupS3Region,
			Bucket:          cfg.BackupS3Bucket,
			Endpoint:        cfg.BackupS3Endpoint,
			AccessKeyID:     cfg.BackupS3AccessKey,
			SecretAccessKey: cfg.BackupS3SecretKey,
			PathStyle:       cfg.BackupS3PathStyle,
		})
	case "fs":
		return backup.NewFilesystem(cfg.BackupDir)
	}
	return nil, nil
}
