// Package scheduler enqueues the library's background tasks on cron
// schedules.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Triggerer enqueues a task by name.
type Triggerer interface {
	Trigger(name string) (string, error)
}

// Job pairs a task name with a five-field cron schedule. An empty schedule
// disables the job.
type Job struct {
	Task     string
	Schedule string
}

// Scheduler periodically hands jobs to the task queue.
type Scheduler struct {
	triggerer Triggerer
	jobs      []Job

	cron      *cron.Cron
	entries   map[string]cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// New creates a scheduler for the given jobs.
func New(triggerer Triggerer, jobs ...Job) *Scheduler {
	return &Scheduler{
		triggerer: triggerer,
		jobs:      jobs,
		cron:      cron.New(cron.WithParser(parser)),
		entries:   make(map[string]cron.EntryID),
	}
}

// Start registers every job and starts the cron loop. The scheduler stops
// when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	for _, job := range s.jobs {
		if job.Schedule == "" {
			log.Printf("Scheduler: %s disabled", job.Task)
			continue
		}
		if err := ValidateSchedule(job.Schedule); err != nil {
			return fmt.Errorf("invalid cron schedule '%s' for %s: %w", job.Schedule, job.Task, err)
		}

		name := job.Task
		id, err := s.cron.AddFunc(job.Schedule, func() { s.run(name) })
		if err != nil {
			return fmt.Errorf("failed to schedule %s: %w", name, err)
		}
		s.entries[name] = id
	}

	s.cron.Start()
	s.isRunning = true

	for name, id := range s.entries {
		log.Printf("Scheduler: %s scheduled, next run %v", name, s.cron.Entry(id).Next)
	}

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the cron loop and waits for running triggers.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	log.Printf("Scheduler: stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the named task is next enqueued.
func (s *Scheduler) NextRun(task string) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.entries[task]
	if !s.isRunning || !ok {
		return nil
	}
	next := s.cron.Entry(id).Next
	return &next
}

func (s *Scheduler) run(task string) {
	id, err := s.triggerer.Trigger(task)
	if err != nil {
		log.Printf("Scheduler: failed to enqueue %s: %v", task, err)
		return
	}
	log.Printf("Scheduler: enqueued %s (task %s)", task, id)
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}
