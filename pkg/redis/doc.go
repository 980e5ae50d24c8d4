// Package redis opens the go-redis client that backs the shared token cache.
//
// Open validates the URL, applies pool and timeout settings, and pings the
// server with linear backoff until it answers or the attempts run out:
//
//	client, err := redis.Open(ctx, "redis://localhost:6379/0",
//		redis.WithPoolSize(20),
//		redis.WithRetry(5, time.Second),
//	)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// Healthcheck wraps a ping for readiness endpoints.
package redis
