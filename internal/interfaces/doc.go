// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Library Interfaces
//
//   - Catalog: Available books by category (internal/http/stores.go)
//   - Circulation: Borrow, return and the user's own records (internal/http/stores.go)
//   - ClassDirectory: Class oversight and the teacher drill-down (internal/http/stores.go)
//   - ProfileStore: Profile reads and edits (internal/http/stores.go)
//
// All four are served by *library.Service, which runs every borrow and
// return inside one database transaction.
//
// ## Audit Interfaces
//
//   - library.Recorder: Borrow, return, class and profile events (internal/library/service.go)
//   - auth.Recorder: Login and logout events (internal/auth/handlers.go)
//   - AuditReader: Paginated event listing (internal/http/stores.go)
//
// ## Background Task Interfaces
//
//   - OverdueFinder / OverdueNotifier: Daily overdue scan (internal/tasks/overdue.go)
//   - AuditEventCleaner: Audit retention (internal/tasks/cleanup_audit.go)
//   - TaskRunner / Triggerer: Enqueue tasks by name (internal/http/stores.go, internal/scheduler)
//
// # Adding a New Background Task
//
//  1. Define the task and its processor in internal/tasks/
//
//     type ReminderTask struct{}
//
//     func (t ReminderTask) Config() backlite.QueueConfig {
//     return backlite.QueueConfig{Name: QueueReminder, MaxAttempts: 3}
//     }
//
//  2. Register the queue in Client.RegisterLibraryQueues and add the name to
//     Trigger and Types
//
//  3. Add a scheduler.Job in entrypoint.go if it runs on a schedule
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
