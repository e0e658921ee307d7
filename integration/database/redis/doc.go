// Package redis opens go-redis clients with connection verification and exposes
// a ping-based health check.
//
// Connect validates the URL (redis:// or rediss://), then pings until Redis answers,
// retrying with a doubling interval inside ConnectTimeout:
//
//	client, err := redis.Connect(ctx, redis.Config{
//		ConnectionURL:  "redis://localhost:6379/0",
//		RetryAttempts:  3,
//		RetryInterval:  time.Second,
//		ConnectTimeout: 10 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// Config carries env tags, so it can be filled with config.Load:
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
// Healthcheck wraps a ping for readiness probes:
//
//	check := redis.Healthcheck(client)
//	if err := check(ctx); err != nil {
//		// errors.Is(err, redis.ErrHealthcheckFailed)
//	}
//
// # Errors
//
//   - ErrEmptyConnectionURL: no URL given
//   - ErrFailedToParseRedisConnString: malformed URL or unsupported scheme
//   - ErrRedisNotReady: no successful ping before attempts or time ran out
//   - ErrHealthcheckFailed: a health check ping failed
//
// The underlying go-redis error stays in the chain.
package redis
