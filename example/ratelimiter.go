/************************************************************************************
 *
 * gatecore, a Discord gateway shard core for Go
 *
 * SPDX-License-Identifier: BSD-3-Clause
 *
 ************************************************************************************/

package example

import "time"

/*******************************
 * Shards Identify Rate Limiter
 *******************************/

// IdentifyRateLimiter controls the frequency of Identify payloads a
// runner sends across all of a bot's shards. gatecore.Shard has no
// opinion on this: Identify() sends immediately, so a multi-shard
// runner calls Wait() itself before each Identify — max_concurrency
// from GatewayBot typically drives r.
//
// Implementations block the caller in Wait() until an Identify token
// is available.
type IdentifyRateLimiter interface {
	// Wait blocks until the caller is allowed to send an Identify payload.
	Wait()
}

// DefaultIdentifyRateLimiter implements a simple token bucket rate
// limiter using a buffered channel of tokens.
//
// The capacity and refill interval control the max burst and rate.
type DefaultIdentifyRateLimiter struct {
	tokens chan struct{}
}

var _ IdentifyRateLimiter = (*DefaultIdentifyRateLimiter)(nil)

// NewDefaultIdentifyRateLimiter creates a new token bucket rate limiter.
//
// r specifies the maximum burst tokens allowed.
// interval specifies how frequently tokens are refilled.
func NewDefaultIdentifyRateLimiter(r int, interval time.Duration) *DefaultIdentifyRateLimiter {
	rl := &DefaultIdentifyRateLimiter{tokens: make(chan struct{}, r)}
	for range r {
		rl.tokens <- struct{}{}
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			select {
			case rl.tokens <- struct{}{}:
			default:
			}
		}
	}()
	return rl
}

// Wait blocks until a token is available for sending Identify.
func (rl *DefaultIdentifyRateLimiter) Wait() {
	<-rl.tokens
}
