package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/classlib/internal/entities"
)

// QueueOverdueScan is the queue name of the overdue scan.
const QueueOverdueScan = "overdue_scan"

// OverdueFinder lists open borrow records past their due date.
type OverdueFinder interface {
	ListOverdue(now time.Time) ([]entities.BorrowRecord, error)
}

// OverdueNotifier keeps at most one overdue notice per record.
type OverdueNotifier interface {
	OverdueNoticed(recordID uint) (bool, error)
	LogOverdue(record *entities.BorrowRecord, now time.Time) error
}

// OverdueScanTask looks for open borrow records past their due date.
type OverdueScanTask struct{}

// Config returns the queue configuration for overdue scans.
func (t OverdueScanTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueOverdueScan,
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ScanOverdue records a notice for every overdue record that has none yet
// and returns how many were recorded.
func ScanOverdue(finder OverdueFinder, notifier OverdueNotifier, now time.Time) (int, error) {
	records, err := finder.ListOverdue(now)
	if err != nil {
		return 0, fmt.Errorf("list overdue records: %w", err)
	}

	noticed := 0
	for i := range records {
		record := &records[i]
		seen, err := notifier.OverdueNoticed(record.ID)
		if err != nil {
			return noticed, fmt.Errorf("check notice for record %d: %w", record.ID, err)
		}
		if seen {
			continue
		}
		if err := notifier.LogOverdue(record, now); err != nil {
			return noticed, fmt.Errorf("record notice for record %d: %w", record.ID, err)
		}
		noticed++
	}
	return noticed, nil
}

// OverdueScanProcessor creates a processor function for OverdueScanTask.
func OverdueScanProcessor(finder OverdueFinder, notifier OverdueNotifier, now func() time.Time) backlite.QueueProcessor[OverdueScanTask] {
	return func(ctx context.Context, task OverdueScanTask) error {
		if finder == nil || notifier == nil {
			return fmt.Errorf("overdue scan not configured")
		}

		noticed, err := ScanOverdue(finder, notifier, now())
		if err != nil {
			return err
		}
		log.Printf("[TASK] Overdue scan recorded %d new notices", noticed)
		return nil
	}
}

// NewOverdueScanQueue creates a backlite queue for overdue scans.
func NewOverdueScanQueue(finder OverdueFinder, notifier OverdueNotifier, now func() time.Time) backlite.Queue {
	return backlite.NewQueue(OverdueScanProcessor(finder, notifier, now))
}
