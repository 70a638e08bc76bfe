package config

import "time"

const (
	// DefaultDatabasePath is the default path for the library database
	DefaultDatabasePath = "./classlib.db"

	// DefaultLoanPeriod is how long a book may be kept before it is overdue
	DefaultLoanPeriod = 90 * 24 * time.Hour

	DefaultStudentQuota = 2
	DefaultTeacherQuota = 4
)
