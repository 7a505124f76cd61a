package interfaces

import (
	"github.com/ternarybob/finsight/internal/models"
)

// ReportStorage persists completed analysis reports. The TTL caches over the
// data providers are in-memory only; this archive stores final reports so the
// HTTP surface can list and re-render past runs.
type ReportStorage interface {
	// SaveReport stores a completed report
	SaveReport(report *models.Report) error

	// GetReport retrieves a report by ID
	GetReport(id string) (*models.Report, error)

	// ListReports returns reports sorted by creation time descending
	ListReports(limit int) ([]*models.Report, error)

	// DeleteReport removes a report by ID
	DeleteReport(id string) error
}

// StorageManager provides access to storage implementations
type StorageManager interface {
	ReportStorage() ReportStorage
	Close() error
}
