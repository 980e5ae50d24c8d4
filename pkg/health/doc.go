// Package health serves a readiness endpoint over named dependency checks.
//
// Checks use the func(context.Context) error shape of the cache and redis
// healthchecks, so they plug in directly:
//
//	r.Get("/healthz", health.ReadinessHandler(health.Checks{
//	    "cache": registry.Healthcheck,
//	}, health.WithTimeout(3*time.Second), health.WithLogger(log)))
//
// All checks run in parallel under one timeout. The handler answers 200
// when every check passed and 503 otherwise, always with a JSON body:
//
//	{
//	  "status": "unhealthy",
//	  "checks": {
//	    "cache": {"status": "unhealthy", "error": "health: check timeout"}
//	  }
//	}
//
// A check that runs past the timeout is reported as [ErrCheckTimeout].
package health
