package entrypoint

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/classlib/internal/auth"
	"github.com/mrlokans/classlib/internal/config"
	"github.com/mrlokans/classlib/internal/entities"
)

func TestCSRFSecret(t *testing.T) {
	secret, err := csrfSecret("00ff10")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xff, 0x10}, secret)

	secret, err = csrfSecret("not-hex-at-all")
	require.NoError(t, err)
	assert.Equal(t, []byte("not-hex-at-all"), secret)

	a, err := csrfSecret("")
	require.NoError(t, err)
	b, err := csrfSecret("")
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestOpenDatabase(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Path = filepath.Join(t.TempDir(), "classlib.db")
	cfg.Database.LogLevel = "silent"
	cfg.Auth.BcryptCost = bcrypt.MinCost

	db, err := OpenDatabase(cfg)
	require.NoError(t, err)
	var users int64
	require.NoError(t, db.DB.Model(&entities.User{}).Count(&users).Error)
	assert.Zero(t, users, "seeding is off")
	require.NoError(t, db.Close())

	cfg.Library.SeedOnStart = true
	db, err = OpenDatabase(cfg)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.DB.Model(&entities.User{}).Count(&users).Error)
	assert.Positive(t, users)
}

func TestShutdownBackground(t *testing.T) {
	limiter := auth.NewLoginLimiter(config.Auth{})
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		shutdownBackground(nil, nil, cancel, limiter)(context.Background())
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not return")
	}
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	// Stopping again must not panic on the closed channel
	assert.NotPanics(t, limiter.Stop)
}
