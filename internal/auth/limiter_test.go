package auth

import (
	"testing"
	"time"

	"github.com/mrlokans/classlib/internal/config"
)

// newTestLimiter returns a limiter whose clock the test moves by hand.
func newTestLimiter(t *testing.T, max int) (*LoginLimiter, *time.Time) {
	t.Helper()

	l := NewLoginLimiter(config.Auth{
		MaxLoginAttempts: max,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  2 * time.Minute,
	})
	t.Cleanup(l.Stop)

	clock := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestLoginLimiter_LocksAfterMaxFailures(t *testing.T) {
	l, _ := newTestLimiter(t, 3)

	for i := 0; i < 2; i++ {
		if lockout := l.Fail("10.0.0.1", "S001"); lockout != 0 {
			t.Errorf("failure %d should not lock, got %v", i+1, lockout)
		}
		if wait := l.RetryAfter("10.0.0.1", "S001"); wait != 0 {
			t.Errorf("failure %d: expected no wait, got %v", i+1, wait)
		}
	}

	if lockout := l.Fail("10.0.0.1", "S001"); lockout != 2*time.Minute {
		t.Errorf("third failure should lock for 2m, got %v", lockout)
	}
	if wait := l.RetryAfter("10.0.0.1", "S001"); wait != 2*time.Minute {
		t.Errorf("expected 2m wait, got %v", wait)
	}
}

func TestLoginLimiter_KeyMatchesUserLookup(t *testing.T) {
	l, _ := newTestLimiter(t, 1)
	l.Fail("10.0.0.1", "S001")

	if wait := l.RetryAfter("10.0.0.1", "  S001 "); wait == 0 {
		t.Error("surrounding space should not escape the lockout")
	}
	// Lookups are exact, so a lower-case id is a different (unknown) login
	if wait := l.RetryAfter("10.0.0.1", "s001"); wait != 0 {
		t.Errorf("lower-case id should not share the lockout, got %v", wait)
	}
}

func TestLoginLimiter_LockoutExpires(t *testing.T) {
	l, clock := newTestLimiter(t, 1)
	l.Fail("10.0.0.1", "T001")

	*clock = clock.Add(90 * time.Second)
	if wait := l.RetryAfter("10.0.0.1", "T001"); wait != 30*time.Second {
		t.Errorf("expected 30s left, got %v", wait)
	}

	*clock = clock.Add(31 * time.Second)
	if wait := l.RetryAfter("10.0.0.1", "T001"); wait != 0 {
		t.Errorf("lockout should be over, got %v", wait)
	}
}

func TestLoginLimiter_WindowResetsCount(t *testing.T) {
	l, clock := newTestLimiter(t, 2)
	l.Fail("10.0.0.1", "S002")

	*clock = clock.Add(2 * time.Minute)
	if lockout := l.Fail("10.0.0.1", "S002"); lockout != 0 {
		t.Errorf("a failure in a new window should not lock, got %v", lockout)
	}
}

func TestLoginLimiter_SucceedClears(t *testing.T) {
	l, _ := newTestLimiter(t, 2)
	l.Fail("10.0.0.1", "T001")
	l.Succeed("10.0.0.1", "T001")

	if lockout := l.Fail("10.0.0.1", "T001"); lockout != 0 {
		t.Errorf("count should restart after success, got %v", lockout)
	}
}

func TestLoginLimiter_IndependentKeys(t *testing.T) {
	l, _ := newTestLimiter(t, 1)
	l.Fail("10.0.0.1", "S001")

	if wait := l.RetryAfter("10.0.0.1", "S002"); wait != 0 {
		t.Error("a different user should not be blocked")
	}
	if wait := l.RetryAfter("10.0.0.2", "S001"); wait != 0 {
		t.Error("a different address should not be blocked")
	}
}

func TestLoginLimiter_Sweep(t *testing.T) {
	l, clock := newTestLimiter(t, 1)
	l.Fail("10.0.0.1", "S001")
	l.Fail("10.0.0.1", "S002")
	l.Succeed("10.0.0.1", "S002")
	l.Fail("10.0.0.1", "S003")

	*clock = clock.Add(90 * time.Second)
	l.Fail("10.0.0.2", "S004")
	l.sweep()
	if len(l.failures) != 3 {
		t.Errorf("locked pairs must survive the sweep, have %d", len(l.failures))
	}

	*clock = clock.Add(3 * time.Minute)
	l.sweep()
	if len(l.failures) != 0 {
		t.Errorf("expected all pairs swept, have %d", len(l.failures))
	}
}

func TestLoginLimiter_Stop(t *testing.T) {
	l := NewLoginLimiter(config.Auth{})
	if l.max != 5 || l.window != 15*time.Minute || l.lockout != 30*time.Minute {
		t.Errorf("unexpected defaults: %d %v %v", l.max, l.window, l.lockout)
	}

	l.Stop()
	l.Stop()
	select {
	case <-l.done:
	default:
		t.Error("sweep goroutine should have exited")
	}
}
