// Package auth provides login, sessions and role checks for the library.
//
// Users sign in with their user id (T001, S003, ...) and password. A
// successful login stores the user in a server-side session backed by the
// application's SQLite database. Teachers and students share the same login
// page; role checks happen per route.
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # CSRF signing key, generated if empty
//	AUTH_SESSION_LIFETIME=24h           # Session duration
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
//	AUTH_MAX_LOGIN_ATTEMPTS=5           # Failures before lockout
//	AUTH_LOCKOUT_DURATION=30m           # Lockout length
//
// # Usage
//
//	svc := auth.NewService(db, cfg.Auth)
//	sm, _ := auth.NewSessionManager(sqlDB, cfg.Auth)
//	mw := auth.NewMiddleware(svc, sm)
//	limiter := auth.NewLoginLimiter(cfg.Auth)
//	defer limiter.Stop()
//	auth.NewAuthController(svc, sm, limiter, templatesPath, recorder).RegisterRoutes(router)
//	router.Use(sm.SessionLoadSave(), mw.Handler())
//	teacher := router.Group("/teacher", mw.RequireRole(entities.RoleTeacher))
//
// Extract the user in handlers:
//
//	user := auth.GetUser(c)
package auth
