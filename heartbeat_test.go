/************************************************************************************
 *
 * gatecore, a Discord gateway shard core for Go
 *
 * SPDX-License-Identifier: BSD-3-Clause
 *
 ************************************************************************************/

package gatecore

import (
	"errors"
	"net"
	"syscall"
	"testing"
	"time"
)

func TestDoHeartbeatHealthyBeforeHelloWithinGrace(t *testing.T) {
	s, _ := newTestShard()
	s.startedAt = MonotonicNow()

	if !doHeartbeat(s) {
		t.Fatal("expected healthy before Hello within grace period")
	}
}

func TestDoHeartbeatSendsWhenIntervalElapsed(t *testing.T) {
	s, ft := newTestShard()
	s.heartbeatInterval = time.Millisecond
	s.hasInterval = true
	s.lastHeartbeatSent = MonotonicNow() - int64(time.Second)
	s.hasLastHeartbeatSent = true
	s.lastHeartbeatAcknowledged.Store(true)

	if !doHeartbeat(s) {
		t.Fatal("expected doHeartbeat to report healthy after sending")
	}
	if len(ft.sent) != 1 {
		t.Fatalf("expected exactly one heartbeat frame sent, got %d", len(ft.sent))
	}
	if s.lastHeartbeatAcknowledged.Load() {
		t.Fatal("expected lastHeartbeatAcknowledged to be false immediately after a send")
	}
}

func TestDoHeartbeatUnhealthyWhenPriorBeatUnacked(t *testing.T) {
	s, _ := newTestShard()
	s.heartbeatInterval = time.Millisecond
	s.hasInterval = true
	s.lastHeartbeatSent = MonotonicNow() - int64(time.Second)
	s.hasLastHeartbeatSent = true
	s.lastHeartbeatAcknowledged.Store(false)

	if doHeartbeat(s) {
		t.Fatal("expected unhealthy when the previous heartbeat was never acked")
	}
}

func TestDoHeartbeatHealthyWithinInterval(t *testing.T) {
	s, ft := newTestShard()
	s.heartbeatInterval = time.Hour
	s.hasInterval = true
	s.lastHeartbeatSent = MonotonicNow()
	s.hasLastHeartbeatSent = true
	s.lastHeartbeatAcknowledged.Store(false)

	if !doHeartbeat(s) {
		t.Fatal("expected healthy while within the heartbeat interval")
	}
	if len(ft.sent) != 0 {
		t.Fatal("expected no heartbeat sent before the interval elapses")
	}
}

func TestLatencyAbsentBeforeFirstRoundTrip(t *testing.T) {
	s, _ := newTestShard()

	if _, ok := latency(s); ok {
		t.Fatal("expected no latency before any heartbeat has been sent and acked")
	}
}

func TestLatencyComputedFromMonotonicTimestamps(t *testing.T) {
	s, _ := newTestShard()
	s.lastHeartbeatSent = 1000
	s.hasLastHeartbeatSent = true
	s.lastHeartbeatAck = 1500
	s.hasLastHeartbeatAck = true

	d, ok := latency(s)
	if !ok {
		t.Fatal("expected latency to be present")
	}
	if d != 500 {
		t.Fatalf("expected latency of 500ns, got %v", d)
	}
}

func TestIsBrokenPipeDetectsEPIPE(t *testing.T) {
	err := &net.OpError{Op: "write", Err: syscall.EPIPE}
	if !isBrokenPipe(err) {
		t.Fatal("expected EPIPE to be detected as a broken pipe")
	}
}

func TestIsBrokenPipeRejectsOtherErrors(t *testing.T) {
	if isBrokenPipe(errors.New("some other failure")) {
		t.Fatal("expected an unrelated error not to be classified as a broken pipe")
	}
}
