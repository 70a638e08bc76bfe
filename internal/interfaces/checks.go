package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/classlib/internal/audit"
	"github.com/mrlokans/classlib/internal/auth"
	"github.com/mrlokans/classlib/internal/database/borrows"
	"github.com/mrlokans/classlib/internal/http"
	"github.com/mrlokans/classlib/internal/library"
	"github.com/mrlokans/classlib/internal/scheduler"
	"github.com/mrlokans/classlib/internal/tasks"
)

// =============================================================================
// Library Service
// =============================================================================

var _ http.Catalog = (*library.Service)(nil)
var _ http.Circulation = (*library.Service)(nil)
var _ http.ClassDirectory = (*library.Service)(nil)
var _ http.ProfileStore = (*library.Service)(nil)

var _ http.PasswordChanger = (*auth.Service)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ library.Recorder = (*audit.Service)(nil)
var _ auth.Recorder = (*audit.Service)(nil)
var _ http.ProfileRecorder = (*audit.Service)(nil)
var _ http.AuditReader = (*audit.Service)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

var _ tasks.OverdueFinder = (*borrows.Repository)(nil)
var _ tasks.OverdueNotifier = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

var _ http.TaskRunner = (*tasks.Client)(nil)
var _ scheduler.Triggerer = (*tasks.Client)(nil)
