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
	"time"
)

// preHelloGrace is how long a shard tolerates no Hello before doHeartbeat
// reports unhealthy.
const preHelloGrace = 15 * time.Second

// doHeartbeat is the Liveness Timer's decision rule, called on a cadence
// by the runner. It returns true (healthy) or false (send a Reconnect
// action). Elapsed-time comparisons use clock.go's monotonic reads
// instead of time.Now() so they are immune to wall-clock adjustments.
func doHeartbeat(s *Shard) bool {
	if !s.hasInterval {
		return MonotonicSince(s.startedAt) < int64(preHelloGrace)
	}

	if s.hasLastHeartbeatSent {
		if MonotonicSince(s.lastHeartbeatSent) <= int64(s.heartbeatInterval) {
			return true
		}
	}

	if !s.lastHeartbeatAcknowledged.Load() {
		return false
	}

	if err := s.sendHeartbeat(); err != nil {
		logHeartbeatError(s, err)
		return false
	}

	s.lastHeartbeatSent = MonotonicNow()
	s.hasLastHeartbeatSent = true
	s.lastHeartbeatAcknowledged.Store(false)
	return true
}

// logHeartbeatError splits log verbosity on the broken-pipe case; both
// branches propagate the same failure to doHeartbeat's caller — a send
// failure during heartbeat is never treated as healthy regardless of
// which OS error produced it.
func logHeartbeatError(s *Shard, err error) {
	if isBrokenPipe(err) {
		s.logger.Debug("heartbeat send failed (broken pipe): " + err.Error())
		return
	}
	s.logger.Warn("heartbeat send failed: " + err.Error())
}

// isBrokenPipe reports whether err is a broken-pipe OS error (EPIPE,
// errno 32 on Unix-family systems). Connection-reset errors are not
// matched.
func isBrokenPipe(err error) bool {
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var errno syscall.Errno
	if !errors.As(opErr.Err, &errno) {
		return false
	}
	return errno == syscall.EPIPE
}

// latency reports the heartbeat round-trip time, present only once both
// timestamps exist and the ack is newer than the send.
func latency(s *Shard) (time.Duration, bool) {
	if !s.hasLastHeartbeatSent || !s.hasLastHeartbeatAck {
		return 0, false
	}
	if s.lastHeartbeatAck <= s.lastHeartbeatSent {
		return 0, false
	}
	return time.Duration(s.lastHeartbeatAck - s.lastHeartbeatSent), true
}
