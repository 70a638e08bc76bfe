package auth

import (
	"sync"
	"time"

	"github.com/mrlokans/classlib/internal/config"
)

const limiterSweepInterval = 5 * time.Minute

// LoginLimiter locks out a client address and login id pair after too many
// failed sign-ins inside one window. It complements the per-account lock
// kept in the users table, which ignores the client address.
type LoginLimiter struct {
	mu       sync.Mutex
	failures map[loginKey]*failureWindow

	max     int
	window  time.Duration
	lockout time.Duration
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

type loginKey struct {
	ip  string
	uid string
}

type failureWindow struct {
	count       int
	start       time.Time
	lockedUntil time.Time
}

// NewLoginLimiter starts a limiter using the auth attempt settings.
// Call Stop when the server shuts down.
func NewLoginLimiter(cfg config.Auth) *LoginLimiter {
	l := &LoginLimiter{
		failures: make(map[loginKey]*failureWindow),
		max:      cfg.MaxLoginAttempts,
		window:   cfg.RateLimitWindow,
		lockout:  cfg.LockoutDuration,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if l.max <= 0 {
		l.max = 5
	}
	if l.window <= 0 {
		l.window = 15 * time.Minute
	}
	if l.lockout <= 0 {
		l.lockout = 30 * time.Minute
	}

	go l.sweepLoop(limiterSweepInterval)
	return l
}

// Stop ends the background sweep. It may be called more than once.
func (l *LoginLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}

// RetryAfter reports how long the pair must wait before trying again.
// Zero means the attempt may go ahead.
func (l *LoginLimiter) RetryAfter(ip, uid string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, ok := l.failures[keyFor(ip, uid)]
	if !ok {
		return 0
	}
	if now := l.now(); now.Before(f.lockedUntil) {
		return f.lockedUntil.Sub(now)
	}
	return 0
}

// Fail records a failed sign-in and returns the lockout it started, or zero.
func (l *LoginLimiter) Fail(ip, uid string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	key := keyFor(ip, uid)
	f := l.failures[key]
	if f == nil || now.Sub(f.start) > l.window {
		f = &failureWindow{start: now}
		l.failures[key] = f
	}

	f.count++
	if f.count < l.max {
		return 0
	}
	f.lockedUntil = now.Add(l.lockout)
	return l.lockout
}

// Succeed forgets earlier failures of the pair.
func (l *LoginLimiter) Succeed(ip, uid string) {
	l.mu.Lock()
	delete(l.failures, keyFor(ip, uid))
	l.mu.Unlock()
}

func (l *LoginLimiter) sweepLoop(every time.Duration) {
	defer close(l.done)

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops pairs whose window and lockout have both run out.
func (l *LoginLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, f := range l.failures {
		if now.Sub(f.start) > l.window && !now.Before(f.lockedUntil) {
			delete(l.failures, key)
		}
	}
}

func keyFor(ip, uid string) loginKey {
	return loginKey{ip: ip, uid: normalizeUID(uid)}
}
