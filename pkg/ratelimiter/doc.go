// Package ratelimiter implements a keyed token bucket used to throttle
// repeated attempts, such as failed logins for one email within one tenant.
//
// A Bucket refills RefillRate tokens every RefillInterval up to Capacity.
// State lives in a Store; MemoryStore keeps it in process and drops keys
// that have not been touched for an hour.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       5,
//		RefillRate:     1,
//		RefillInterval: time.Minute,
//	})
//	if err != nil {
//		return err
//	}
//
//	res, err := limiter.Allow(ctx, "7:ops@acme.test")
//	if err != nil {
//		return err
//	}
//	if !res.Allowed() {
//		// retry after res.RetryAfter()
//	}
package ratelimiter
