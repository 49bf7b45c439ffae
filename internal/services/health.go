package services

import (
	"fmt"
	"time"

	"github.com/localnerve/crmdb/internal/backup"
	"github.com/localnerve/crmdb/internal/config"
	"github.com/localnerve/crmdb/internal/utils"
	"github.com/sirupsen/logrus"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Storage      string            `json:"storage"`
	Backups      string            `json:"backups"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// Pinger checks the storage backend. A nil Pinger means memory storage.
type Pinger interface {
	Ping() error
}

// HealthCheck performs a comprehensive health check of the service
func HealthCheck(cfg *config.Config, storage Pinger, sink backup.Sink, log *logrus.Logger) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	fail := func(msg string, err error) {
		result.Status = "unhealthy"
		if result.ErrorMessage == "" {
			result.ErrorMessage = fmt.Sprintf("%s: %v", msg, err)
		} else {
			result.ErrorMessage += fmt.Sprintf("; %s: %v", msg, err)
		}
		log.WithError(err).Warnf("Health check failed - %s", msg)
	}

	// Check storage connectivity
	result.Details["storage_driver"] = cfg.StorageDriver
	if storage == nil {
		result.Storage = "ok"
	} else if err := storage.Ping(); err != nil {
		result.Storage = "unreachable"
		result.Details["storage_error"] = err.Error()
		fail("Database ping failed", err)
	} else {
		result.Storage = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	// Check the backup endpoint when one is configured
	switch {
	case sink == nil:
		result.Backups = "disabled"
	case sink.Driver() == backup.DriverS3 && cfg.BackupS3Endpoint != "":
		if err := utils.PingService(cfg.BackupS3Endpoint, 1500*time.Millisecond); err != nil {
			result.Backups = "unreachable"
			result.Details["backups_error"] = err.Error()
			fail("Backup endpoint ping failed", err)
		} else {
			result.Backups = "ok"
			result.Details["backups_endpoint"] = cfg.BackupS3Endpoint
		}
	default:
		result.Backups = "ok"
		result.Details["backups_driver"] = string(sink.Driver())
	}

	if result.Status == "healthy" {
		log.Debug("Health check passed - all systems operational")
	}

	return result
}
