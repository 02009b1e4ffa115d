// Package redis connects to the Redis server that holds state shared by
// every tenantd replica, such as login attempt budgets.
//
// Connect parses a redis:// URL and pings until the server answers or the
// attempts run out. Healthcheck plugs the client into the readiness endpoint.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
package redis
