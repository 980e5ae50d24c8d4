// Package cache stores short-lived credentials such as application access
// tokens, keyed by the credential they belong to.
//
// [Memory] keeps entries in process and checks expiry on read. [Redis]
// shares entries across processes. Both implement [Cache].
//
// TTL semantics for Set:
//   - Positive duration: the entry expires after this duration
//   - Zero: the cache's default TTL applies
//   - Negative: the entry never expires
//
// Writes are last-writer-wins. Use [GetOrSet] to fill a missing entry once
// when many goroutines miss at the same time:
//
//	tok, err := cache.GetOrSet(ctx, c, "wechat_work:corp:1000002",
//		func(ctx context.Context) (httpx.Data, time.Duration, error) {
//			data, err := fetchCorpToken(ctx)
//			return data, 7140 * time.Second, err
//		})
//
// Tests can pin time with [WithClock]:
//
//	now := time.Now()
//	c := cache.NewMemory[string](cache.WithClock(func() time.Time { return now }))
package cache
