/************************************************************************************
 *
 * gatecore, a Discord gateway shard core for Go
 *
 * SPDX-License-Identifier: BSD-3-Clause
 *
 ************************************************************************************/

package gatecore

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
)

// ResumeMetadata is obtained from Ready and is required to Resume a
// session; its presence is the wire evidence that a live session exists.
type ResumeMetadata struct {
	sessionID   string
	resumeWSURL string
}

// Shard is a single-owner, cooperatively-scheduled WebSocket session to
// the gateway. There is no internal locking: the caller must ensure at
// most one goroutine drives a Shard at a time. The only background
// goroutine the core starts is the reader a zstd-stream Transport runs
// for its decompressor, one per connection.
type Shard struct {
	shardIndex int
	shardTotal int
	token      string
	intents    GatewayIntent

	baseWSURL   string
	compression CompressionMode

	logger  Logger
	metrics Metrics

	transport Transport

	stage Stage
	seq   int64

	resumeMetadata *ResumeMetadata

	heartbeatInterval time.Duration
	hasInterval       bool

	lastHeartbeatSent    int64
	hasLastHeartbeatSent bool
	lastHeartbeatAck     int64
	hasLastHeartbeatAck  bool

	// lastHeartbeatAcknowledged is read by doHeartbeat on every driver
	// wake; kept as an atomic.Bool because a caller may legitimately
	// read Latency/Stage from a goroutine other than the one driving
	// HandleEvent/DoHeartbeat, even though the single-owner contract
	// never requires it for correctness of the state transitions
	// themselves.
	lastHeartbeatAcknowledged atomic.Bool

	startedAt int64

	presence Presence

	applicationIDObserver func(Snowflake)
}

// ShardIdentity is the (index, total) pair identifying this shard among
// the bot's full shard count.
type ShardIdentity struct {
	Index int
	Total int
}

// NewShard constructs a Shard in stage Disconnected with seq=0, no
// resume metadata, and no heartbeat interval.
func NewShard(baseWSURL, token string, identity ShardIdentity, intents GatewayIntent, presence Presence, compression CompressionMode, logger Logger, metrics Metrics) *Shard {
	if logger == nil {
		logger = NewDefaultLogger(nil, LogLevelInfoLevel)
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	s := &Shard{
		shardIndex:                identity.Index,
		shardTotal:                identity.Total,
		token:                     token,
		intents:                   intents,
		baseWSURL:                 baseWSURL,
		compression:               compression,
		logger:                    logger,
		metrics:                   metrics,
		stage:                     StageDisconnected,
		presence:                  presence,
	}
	s.presence.setStatus(presence.Status)
	s.lastHeartbeatAcknowledged.Store(true)
	return s
}

// Connect opens the first connection to baseWSURL and enters stage
// Handshake. Use Reinitialize for subsequent (re)connections.
func (s *Shard) Connect(ctx context.Context) error {
	t, err := dial(ctx, s.baseWSURL, s.compression)
	if err != nil {
		return &ProtocolError{Kind: ProtocolErrorBuildingURL}
	}
	s.transport = t
	s.startedAt = MonotonicNow()
	s.stage = StageHandshake
	s.metrics.SetStage(StageHandshake)
	return nil
}

// Reinitialize replaces the current Transport, preferring
// resumeMetadata.resumeWSURL when present so the server can route back
// to the original session's shard, falling back to baseWSURL otherwise.
// The old Transport is closed unconditionally.
func (s *Shard) Reinitialize(ctx context.Context) error {
	if s.transport != nil {
		s.transport.Close()
	}

	url := s.baseWSURL
	if s.resumeMetadata != nil {
		url = s.resumeMetadata.resumeWSURL
	}

	s.stage = StageConnecting
	s.metrics.SetStage(StageConnecting)
	s.startedAt = MonotonicNow()

	t, err := dial(ctx, url, s.compression)
	if err != nil {
		return &ProtocolError{Kind: ProtocolErrorBuildingURL}
	}
	s.transport = t
	s.stage = StageHandshake
	s.metrics.SetStage(StageHandshake)
	return nil
}

// Identify sends an Identify frame and marks the session as fresh. The
// Protocol Engine already transitioned stage to Identifying when the
// triggering Hello was processed; Identify is the wire send the runner
// performs in response to an ActionIdentify.
func (s *Shard) Identify() error {
	payload, err := encodeIdentify(s)
	if err != nil {
		return &DecodeError{Context: "identify", Err: err}
	}
	if err := s.transport.Send(payload); err != nil {
		return err
	}
	s.lastHeartbeatSent = MonotonicNow()
	s.hasLastHeartbeatSent = true
	s.stage = StageIdentifying
	s.metrics.SetStage(StageIdentifying)
	s.metrics.IncIdentify()
	return nil
}

// Resume sends a Resume frame over the already-reinitialized Transport.
// It fails with ErrNoSessionID when no resume metadata is held, in
// which case the runner must Identify instead.
func (s *Shard) Resume() error {
	if s.resumeMetadata == nil {
		return ErrNoSessionID
	}
	payload, err := encodeResume(s)
	if err != nil {
		return &DecodeError{Context: "resume", Err: err}
	}
	if err := s.transport.Send(payload); err != nil {
		return err
	}
	s.stage = StageResuming
	s.metrics.SetStage(StageResuming)
	s.metrics.IncResume()
	return nil
}

// sendHeartbeat is the wire send used by doHeartbeat and by an
// ActionHeartbeat response to a server-initiated op-1 Heartbeat.
func (s *Shard) sendHeartbeat() error {
	payload, err := encodeHeartbeat(s.seq)
	if err != nil {
		return &DecodeError{Context: "heartbeat", Err: err}
	}
	return s.transport.Send(payload)
}

// DoHeartbeat runs the liveness timer's decision rule.
func (s *Shard) DoHeartbeat() bool {
	return doHeartbeat(s)
}

// ChunkGuild requests member chunks for one guild (op-8 Request Guild
// Members).
func (s *Shard) ChunkGuild(guildID Snowflake, limit int, presences bool, filter ChunkGuildFilter, nonce string) error {
	payload, err := encodeRequestGuildMembers(guildID, limit, presences, filter, nonce)
	if err != nil {
		return &DecodeError{Context: "chunk_guild", Err: err}
	}
	return s.transport.Send(payload)
}

// SetPresence replaces both the activity and status in one call, then
// pushes a Presence Update frame if the shard is connected.
func (s *Shard) SetPresence(activity *Activity, status OnlineStatus) error {
	s.presence.setActivity(activity)
	s.presence.setStatus(status)
	return s.pushPresenceIfConnected()
}

// SetActivity replaces only the activity, leaving status untouched.
func (s *Shard) SetActivity(activity *Activity) error {
	s.presence.setActivity(activity)
	return s.pushPresenceIfConnected()
}

// SetStatus replaces only the status; Offline is coerced to Invisible,
// since the gateway has no wire representation of an offline bot.
func (s *Shard) SetStatus(status OnlineStatus) error {
	s.presence.setStatus(status)
	return s.pushPresenceIfConnected()
}

func (s *Shard) pushPresenceIfConnected() error {
	if s.stage != StageConnected || s.transport == nil {
		return nil
	}
	payload, err := encodePresenceUpdate(s.presence)
	if err != nil {
		return &DecodeError{Context: "presence_update", Err: err}
	}
	return s.transport.Send(payload)
}

// SetApplicationIDObserver registers a one-shot callback fired on the
// next Ready, then cleared so it cannot be invoked twice even across a
// later resume.
func (s *Shard) SetApplicationIDObserver(cb func(Snowflake)) {
	s.applicationIDObserver = cb
}

// RecvRaw blocks for the next frame on the current Transport. HandleEvent
// then consumes the result without reading from the Transport.
func (s *Shard) RecvRaw() (Frame, error) {
	return s.transport.Recv()
}

// Close closes the underlying Transport. Safe to call on an already-
// closed or never-connected Shard.
func (s *Shard) Close() error {
	if s.transport == nil {
		return nil
	}
	err := s.transport.Close()
	s.transport = nil
	return err
}

// Getters

func (s *Shard) Seq() int64                { return s.seq }
func (s *Shard) Stage() Stage              { return s.stage }
func (s *Shard) ShardInfo() ShardIdentity  { return ShardIdentity{Index: s.shardIndex, Total: s.shardTotal} }
func (s *Shard) Presence() Presence        { return s.presence }

// SessionID returns the resumed-or-established session id, and false
// if no live session exists.
func (s *Shard) SessionID() (string, bool) {
	if s.resumeMetadata == nil {
		return "", false
	}
	return s.resumeMetadata.sessionID, true
}

// HeartbeatInterval returns the server-dictated cadence, and false
// until the first Hello is processed.
func (s *Shard) HeartbeatInterval() (time.Duration, bool) {
	return s.heartbeatInterval, s.hasInterval
}

// Latency returns the heartbeat round-trip time.
func (s *Shard) Latency() (time.Duration, bool) {
	return latency(s)
}

/*****************************
 * Protocol Engine
 *****************************/

// HandleEvent consumes one Transport.Recv result, mutates Shard state,
// and returns the Action the runner must act on, or nil when no action
// is needed (a Heartbeat ack, a Hello while Resuming, an unhandled opcode).
// Split across four helper methods rather than flattened into one
// switch, one per opcode family.
func (s *Shard) HandleEvent(frame Frame, recvErr error) (*Action, error) {
	if recvErr != nil {
		var closeErr *CloseError
		if errors.As(recvErr, &closeErr) {
			return s.handleGatewayClosed(closeErr)
		}
		s.logger.Info("transport error, reconnecting: " + recvErr.Error())
		return &Action{Kind: ActionReconnect}, nil
	}

	payload, err := decodeEnvelope(frame.Data)
	if err != nil {
		return nil, &DecodeError{Context: "envelope", Err: err}
	}

	switch payload.Op {
	case gatewayOpcodeDispatch:
		return s.handleGatewayDispatch(payload, frame.Data)
	case gatewayOpcodeHeartbeat:
		var requested int64
		sonic.Unmarshal(payload.D, &requested)
		return s.handleHeartbeatEvent(requested), nil
	case gatewayOpcodeHeartbeatACK:
		s.lastHeartbeatAck = MonotonicNow()
		s.hasLastHeartbeatAck = true
		s.lastHeartbeatAcknowledged.Store(true)
		if lat, ok := latency(s); ok {
			s.metrics.ObserveLatency(lat)
		}
		return nil, nil
	case gatewayOpcodeHello:
		return s.handleHello(payload)
	case gatewayOpcodeInvalidSession:
		var resumable bool
		sonic.Unmarshal(payload.D, &resumable)
		if !resumable {
			s.resumeMetadata = nil
		}
		return &Action{Kind: ActionReconnect}, nil
	case gatewayOpcodeReconnect:
		return &Action{Kind: ActionReconnect}, nil
	default:
		s.logger.Debug("ignoring unhandled gateway opcode")
		return nil, nil
	}
}

// handleGatewayDispatch updates seq unconditionally even when the
// server's sequence is off by more than one, and transitions stage on
// Ready/Resumed.
func (s *Shard) handleGatewayDispatch(payload gatewayPayload, raw []byte) (*Action, error) {
	if payload.S > s.seq+1 {
		s.logger.Warn("sequence gap in dispatch")
	}
	s.seq = payload.S

	switch payload.T {
	case "READY":
		var ready readyPayload
		if err := sonic.Unmarshal(payload.D, &ready); err != nil {
			return nil, &DecodeError{Context: "ready", Err: err}
		}
		s.resumeMetadata = &ResumeMetadata{
			sessionID:   ready.SessionID,
			resumeWSURL: ready.ResumeGatewayURL,
		}
		s.stage = StageConnected
		s.metrics.SetStage(StageConnected)

		if s.applicationIDObserver != nil {
			cb := s.applicationIDObserver
			s.applicationIDObserver = nil
			cb(ready.Application.ID)
		}
	case "RESUMED":
		s.stage = StageConnected
		s.metrics.SetStage(StageConnected)
		s.lastHeartbeatAcknowledged.Store(true)
		s.lastHeartbeatSent = MonotonicNow()
		s.hasLastHeartbeatSent = true
		s.hasLastHeartbeatAck = false
	}

	return &Action{Kind: ActionDispatch, Event: DispatchEvent{
		Name: payload.T,
		Seq:  payload.S,
		Data: payload.D,
		Raw:  string(raw),
	}}, nil
}

// handleHeartbeatEvent answers an out-of-band server heartbeat request
// (op 1). An off-sequence request during Handshake is treated as a
// signal to Identify immediately; anywhere else it forces a reconnect.
func (s *Shard) handleHeartbeatEvent(requested int64) *Action {
	if requested > s.seq+1 {
		if s.stage == StageHandshake {
			s.stage = StageIdentifying
			s.metrics.SetStage(StageIdentifying)
			return &Action{Kind: ActionIdentify}
		}
		return &Action{Kind: ActionReconnect}
	}
	return &Action{Kind: ActionHeartbeat}
}

// handleHello records the heartbeat interval and decides Identify vs a
// late-Hello Reconnect.
func (s *Shard) handleHello(payload gatewayPayload) (*Action, error) {
	var hello helloPayload
	if err := sonic.Unmarshal(payload.D, &hello); err != nil {
		return nil, &DecodeError{Context: "hello", Err: err}
	}

	if s.stage == StageResuming {
		// record interval, no action: a Resume is already in flight.
		s.heartbeatInterval = time.Duration(hello.HeartbeatInterval) * time.Millisecond
		s.hasInterval = true
		return nil, nil
	}

	s.heartbeatInterval = time.Duration(hello.HeartbeatInterval) * time.Millisecond
	s.hasInterval = true

	if s.stage == StageHandshake {
		s.stage = StageIdentifying
		s.metrics.SetStage(StageIdentifying)
		return &Action{Kind: ActionIdentify}, nil
	}

	s.logger.Debug("late Hello received, reconnecting")
	return &Action{Kind: ActionReconnect}, nil
}

// handleGatewayClosed interprets a close frame,
// applying any state change before returning the Reconnect action, or
// a fatal *ProtocolError the runner must not retry.
func (s *Shard) handleGatewayClosed(ce *CloseError) (*Action, error) {
	outcome := interpretCloseCode(ce.Code)

	if outcome.resetSeq {
		s.seq = 0
	}
	if outcome.dropResumeMeta {
		s.resumeMetadata = nil
	}
	if outcome.err != nil {
		outcome.err.Frame = ce
		s.metrics.IncReconnect("fatal_close")
		return nil, outcome.err
	}

	s.metrics.IncReconnect("close_code")
	return &Action{Kind: ActionReconnect}, nil
}
