package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/classlib/internal/entities"
)

type fakeFinder struct {
	records []entities.BorrowRecord
	err     error
}

func (f *fakeFinder) ListOverdue(now time.Time) ([]entities.BorrowRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []entities.BorrowRecord
	for _, r := range f.records {
		if r.IsOverdue(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	noticed map[uint]bool
	logged  []uint
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{noticed: make(map[uint]bool)}
}

func (n *fakeNotifier) OverdueNoticed(recordID uint) (bool, error) {
	return n.noticed[recordID], nil
}

func (n *fakeNotifier) LogOverdue(record *entities.BorrowRecord, now time.Time) error {
	n.noticed[record.ID] = true
	n.logged = append(n.logged, record.ID)
	return nil
}

type fakeCleaner struct {
	called chan time.Duration
}

func (c *fakeCleaner) DeleteOldEvents(retention time.Duration) (int64, error) {
	c.called <- retention
	return 3, nil
}

func TestScanOverdue(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	returned := now.Add(-time.Hour)
	finder := &fakeFinder{records: []entities.BorrowRecord{
		{ID: 1, DueAt: now.Add(-48 * time.Hour)},
		{ID: 2, DueAt: now.Add(48 * time.Hour)},
		{ID: 3, DueAt: now.Add(-72 * time.Hour), ReturnedAt: &returned},
		{ID: 4, DueAt: now.Add(-time.Minute)},
	}}
	notifier := newFakeNotifier()

	noticed, err := ScanOverdue(finder, notifier, now)
	require.NoError(t, err)
	assert.Equal(t, 2, noticed)
	assert.Equal(t, []uint{1, 4}, notifier.logged)

	// A second scan does not repeat notices
	noticed, err = ScanOverdue(finder, notifier, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, noticed)
}

func TestScanOverdue_FinderError(t *testing.T) {
	boom := errors.New("database is locked")

	_, err := ScanOverdue(&fakeFinder{err: boom}, newFakeNotifier(), time.Now())
	assert.ErrorIs(t, err, boom)
}

func TestOverdueScanProcessor(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	finder := &fakeFinder{records: []entities.BorrowRecord{{ID: 9, DueAt: now.Add(-time.Hour)}}}
	notifier := newFakeNotifier()

	process := OverdueScanProcessor(finder, notifier, func() time.Time { return now })
	require.NoError(t, process(context.Background(), OverdueScanTask{}))
	assert.Equal(t, []uint{9}, notifier.logged)

	unconfigured := OverdueScanProcessor(nil, nil, time.Now)
	assert.Error(t, unconfigured(context.Background(), OverdueScanTask{}))
}

func TestOverdueScanTaskConfig(t *testing.T) {
	cfg := OverdueScanTask{}.Config()

	assert.Equal(t, QueueOverdueScan, cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestCleanupAuditEventsProcessor(t *testing.T) {
	cleaner := &fakeCleaner{called: make(chan time.Duration, 1)}
	process := CleanupAuditEventsProcessor(cleaner)

	require.NoError(t, process(context.Background(), CleanupAuditEventsTask{}))
	assert.Equal(t, 30*24*time.Hour, <-cleaner.called, "zero retention falls back to the default")

	require.NoError(t, process(context.Background(), CleanupAuditEventsTask{RetentionDays: 10}))
	assert.Equal(t, 10*24*time.Hour, <-cleaner.called)

	assert.Error(t, CleanupAuditEventsProcessor(nil)(context.Background(), CleanupAuditEventsTask{}))
}
