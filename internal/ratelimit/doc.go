// Package ratelimit bounds how often a client may call an endpoint.
//
// RedisLimiter keeps fixed-window counters in Redis so that every server
// instance shares the same budget. MemoryLimiter is an in-process token
// bucket used when no Redis address is configured.
package ratelimit
