// Package redis provides connection helpers for the Redis-backed stores
// in this module.
//
// Connect parses a connection URL, retries the initial ping a configured
// number of times, and returns a ready client or a sentinel error. Healthcheck
// returns a func suitable for readiness probes. Configuration is env-driven:
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//	client, err := redis.Connect(ctx, cfg)
package redis
