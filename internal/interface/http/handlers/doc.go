// Package handlers contains reusable HTTP building blocks for the portal API:
// health checks and middleware that do not depend on the server itself.
//
// # Health Checks
//
// The HealthChecker interface runs named checks in parallel:
//
//	checker := handlers.NewCompositeHealthChecker("v1.0.0")
//	checker.AddCheck("storage", handlers.NewPingCheck(redisClient))
//	checker.AddCheck("readiness", handlers.NewGateCheck(gate))
//
//	status := checker.Check(ctx)
//	if !status.Healthy {
//	    log.Printf("health check failed: %s", status.Message)
//	}
//
// # Staff Authentication
//
// Staff endpoints accept an API key whose bcrypt hash is configured in
// STAFF_API_KEY_HASHES. Plain keys are never stored:
//
//	auth, err := handlers.NewAPIKeyAuth("X-API-Key", cfg.Auth.APIKeyHashes)
//	mux.Handle("POST /api/v1/notifications", auth.Middleware(createHandler))
//
// # Middleware
//
// Chain composes middleware so that the first one listed runs outermost:
//
//	h := handlers.ChainHandler(router,
//	    handlers.SecurityHeadersMiddleware,
//	    handlers.RequestSizeLimitMiddleware(1<<20),
//	)
package handlers
