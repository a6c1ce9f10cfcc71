package store

import (
	"fmt"

	"gorm.io/gorm"
)

// Database is the data-access layer for settlement run history. The
// engine itself never touches it; only the serving shell records and
// reads runs here.
type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) CreateRun(run *Run, events []RunEvent) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("failed to create run record: %w", err)
		}
		if len(events) > 0 {
			if err := tx.Create(&events).Error; err != nil {
				return fmt.Errorf("failed to create run event records: %w", err)
			}
		}
		return nil
	})
}

func (d *Database) GetRun(runID string) (*Run, error) {
	var run Run
	if err := d.db.Where("run_id = ?", runID).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (d *Database) GetRunResult(runID string) (string, error) {
	run, err := d.GetRun(runID)
	if err != nil {
		return "", err
	}
	return run.Result, nil
}

func (d *Database) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []Run
	if err := d.db.Order("created_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (d *Database) GetRunEvents(runID string) ([]RunEvent, error) {
	var events []RunEvent
	if err := d.db.Where("run_id = ?", runID).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
