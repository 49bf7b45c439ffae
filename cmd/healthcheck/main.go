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
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/localnerve/crmdb/internal/backup"
	"github.com/localnerve/crmdb/internal/config"
	"github.com/localnerve/crmdb/internal/database"
	"github.com/localnerve/crmdb/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logs := cfg.NewLogger()

	var pinger services.Pinger
	if cfg.StorageDriver == "sql" {
		db, err := database.Connect(cfg, logs)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close(db)
		pinger = database.NewStorage(db)
	}

	var sink backup.Sink
	switch cfg.BackupDriver {
	case "s3":
		s3Sink, err := backup.NewS3(context.Background(), backup.S3Config{
			Region:    cfg.BackupS3Region,
			Bucket:    cfg.BackupS3Bucket,
			Endpoint:  cfg.BackupS3Endpoint,
			PathStyle: cfg.BackupS3PathStyle,
		})
		if err != nil {
			log.Fatalf("Failed to configure backups: %v", err)
		}
		sink = s3Sink
	case "fs":
		fsSink, err := backup.NewFilesystem(cfg.BackupDir)
		if err != nil {
			log.Fatalf("Failed to configure backups: %v", err)
		}
		sink = fsSink
	}

	// Perform health check
	result := services.HealthCheck(cfg, pinger, sink, logs)

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if result.Status != "healthy" {
		os.Exit(1)
	}
	os.Exit(0)
}
