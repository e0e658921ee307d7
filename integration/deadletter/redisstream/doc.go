// Package redisstream keeps failures no handler recovered from on a Redis stream.
//
// Sink implements eventbus.FailureSink. Each unhandled failure becomes one stream
// entry with flat string fields (id, dispatch_id, event_type, event_id, handler,
// message, fatal, occurred_at); event payloads are never written.
//
//	client, err := redis.Connect(ctx, redisCfg)
//	if err != nil {
//		return err
//	}
//
//	cfg, err := redisstream.LoadConfig()
//	if err != nil {
//		return err
//	}
//
//	bus := eventbus.New(eventbus.WithFailureSink(redisstream.NewFromConfig(client, cfg)))
//
// Consumers read entries back with XRANGE or XREADGROUP and decode them with ParseRecord:
//
//	msgs, err := client.XRange(ctx, sink.Stream(), "-", "+").Result()
//	for _, msg := range msgs {
//		rec, err := redisstream.ParseRecord(msg)
//		...
//	}
//
// The stream is trimmed approximately to MaxLen entries on every append.
package redisstream
