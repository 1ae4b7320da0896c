/************************************************************************************
 *
 * gatecore, a Discord gateway shard core for Go
 *
 * SPDX-License-Identifier: BSD-3-Clause
 *
 ************************************************************************************/

package example

import (
	"testing"
	"time"
)

func TestDefaultIdentifyRateLimiterAllowsBurstUpToCapacity(t *testing.T) {
	rl := NewDefaultIdentifyRateLimiter(3, time.Hour)

	done := make(chan struct{})
	go func() {
		rl.Wait()
		rl.Wait()
		rl.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected three immediate Wait() calls to drain the initial burst without blocking")
	}
}

func TestDefaultIdentifyRateLimiterBlocksPastCapacity(t *testing.T) {
	rl := NewDefaultIdentifyRateLimiter(1, time.Hour)
	rl.Wait()

	done := make(chan struct{})
	go func() {
		rl.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("expected Wait() to block once the bucket is empty and refill interval hasn't elapsed")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDefaultIdentifyRateLimiterRefillsOnInterval(t *testing.T) {
	rl := NewDefaultIdentifyRateLimiter(1, 20*time.Millisecond)
	rl.Wait()

	done := make(chan struct{})
	go func() {
		rl.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected the ticker to refill a token within a second")
	}
}
