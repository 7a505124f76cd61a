package badger

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/common"
	"github.com/ternarybob/finsight/internal/interfaces"
)

// Manager wires the Badger-backed storage implementations together.
type Manager struct {
	db      *BadgerDB
	reports interfaces.ReportStorage
}

var _ interfaces.StorageManager = (*Manager)(nil)

// NewManager opens the database and constructs the storage services.
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	return &Manager{
		db:      db,
		reports: NewReportStorage(db, logger),
	}, nil
}

// ReportStorage returns the report archive.
func (m *Manager) ReportStorage() interfaces.ReportStorage {
	return m.reports
}

// Close closes the underlying database.
func (m *Manager) Close() error {
	return m.db.Close()
}
