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
	"testing"

	"github.com/bytedance/sonic"
)

// fakeTransport is a Transport test double: Send appends to sent,
// Recv drains a queue of canned frames/errors in order.
type fakeTransport struct {
	sent   [][]byte
	queue  []fakeRecv
	closed bool
}

type fakeRecv struct {
	frame Frame
	err   error
}

func (t *fakeTransport) Send(data []byte) error {
	t.sent = append(t.sent, data)
	return nil
}

func (t *fakeTransport) Recv() (Frame, error) {
	if len(t.queue) == 0 {
		return Frame{}, errors.New("fakeTransport: queue empty")
	}
	next := t.queue[0]
	t.queue = t.queue[1:]
	return next.frame, next.err
}

func (t *fakeTransport) Close() error {
	t.closed = true
	return nil
}

func (t *fakeTransport) pushFrame(data string) {
	t.queue = append(t.queue, fakeRecv{frame: Frame{Data: []byte(data)}})
}

func newTestShard() (*Shard, *fakeTransport) {
	s := NewShard("wss://gateway.example.test", "Bot faketokenfaketokenfaketokenfaketokenfaketoken", ShardIdentity{Index: 0, Total: 1}, GatewayIntentGuilds, DefaultPresence(), CompressionNone, nil, nil)
	ft := &fakeTransport{}
	s.transport = ft
	s.stage = StageHandshake
	return s, ft
}

func TestHandleEventHelloTransitionsToIdentifying(t *testing.T) {
	s, _ := newTestShard()

	action, err := s.HandleEvent(Frame{Data: []byte(`{"op":10,"d":{"heartbeat_interval":41250}}`)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action == nil || action.Kind != ActionIdentify {
		t.Fatalf("expected ActionIdentify, got %+v", action)
	}
	if s.Stage() != StageIdentifying {
		t.Fatalf("expected StageIdentifying, got %v", s.Stage())
	}
	interval, ok := s.HeartbeatInterval()
	if !ok || interval.Milliseconds() != 41250 {
		t.Fatalf("expected 41250ms heartbeat interval, got %v (ok=%v)", interval, ok)
	}
}

func TestHandleEventReadyEstablishesSession(t *testing.T) {
	s, _ := newTestShard()
	s.stage = StageIdentifying

	readyFrame := `{"op":0,"t":"READY","s":1,"d":{"session_id":"abc123","resume_gateway_url":"wss://resume.example.test","application":{"id":"123456789012345678"}}}`
	action, err := s.HandleEvent(Frame{Data: []byte(readyFrame)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action == nil || action.Kind != ActionDispatch || action.Event.Name != "READY" {
		t.Fatalf("expected ActionDispatch(READY), got %+v", action)
	}
	if s.Stage() != StageConnected {
		t.Fatalf("expected StageConnected after READY, got %v", s.Stage())
	}
	sessionID, ok := s.SessionID()
	if !ok || sessionID != "abc123" {
		t.Fatalf("expected session id abc123, got %q (ok=%v)", sessionID, ok)
	}
	if s.Seq() != 1 {
		t.Fatalf("expected seq 1, got %d", s.Seq())
	}
}

func TestHandleEventDispatchUpdatesSeqEvenOnGap(t *testing.T) {
	s, _ := newTestShard()
	s.stage = StageConnected
	s.seq = 5

	action, err := s.HandleEvent(Frame{Data: []byte(`{"op":0,"t":"MESSAGE_CREATE","s":20,"d":{}}`)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action == nil || action.Kind != ActionDispatch {
		t.Fatalf("expected ActionDispatch, got %+v", action)
	}
	if s.Seq() != 20 {
		t.Fatalf("expected seq to jump to 20 despite gap, got %d", s.Seq())
	}
}

func TestHandleEventHeartbeatRequestDuringHandshakeIdentifies(t *testing.T) {
	s, _ := newTestShard()
	s.stage = StageHandshake
	s.seq = 0

	action, err := s.HandleEvent(Frame{Data: []byte(`{"op":1,"d":5}`)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action == nil || action.Kind != ActionIdentify {
		t.Fatalf("expected ActionIdentify for off-sequence heartbeat during handshake, got %+v", action)
	}
}

func TestHandleEventHeartbeatRequestElsewhereReconnects(t *testing.T) {
	s, _ := newTestShard()
	s.stage = StageConnected
	s.seq = 0

	action, err := s.HandleEvent(Frame{Data: []byte(`{"op":1,"d":5}`)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action == nil || action.Kind != ActionReconnect {
		t.Fatalf("expected ActionReconnect for off-sequence heartbeat once connected, got %+v", action)
	}
}

func TestHandleEventHeartbeatRequestOnSequenceAsksForHeartbeat(t *testing.T) {
	s, _ := newTestShard()
	s.stage = StageConnected
	s.seq = 4

	action, err := s.HandleEvent(Frame{Data: []byte(`{"op":1,"d":5}`)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action == nil || action.Kind != ActionHeartbeat {
		t.Fatalf("expected ActionHeartbeat, got %+v", action)
	}
}

func TestHandleEventHeartbeatAckUpdatesLatency(t *testing.T) {
	s, _ := newTestShard()
	s.lastHeartbeatSent = 1000
	s.hasLastHeartbeatSent = true

	_, err := s.HandleEvent(Frame{Data: []byte(`{"op":11}`)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.lastHeartbeatAcknowledged.Load() {
		t.Fatal("expected lastHeartbeatAcknowledged to be true after op-11")
	}
	if _, ok := s.Latency(); !ok {
		t.Fatal("expected Latency to be present after an ack")
	}
}

func TestHandleEventFatalCloseCodeReturnsProtocolError(t *testing.T) {
	s, _ := newTestShard()

	_, err := s.HandleEvent(Frame{}, &CloseError{Code: 4004, Reason: "authentication failed"})
	if err == nil {
		t.Fatal("expected an error for close code 4004")
	}
	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected *ProtocolError, got %T: %v", err, err)
	}
	if !protoErr.Fatal() {
		t.Fatal("expected 4004 to be fatal")
	}
	if protoErr.Kind != ProtocolErrorInvalidAuthentication {
		t.Fatalf("expected ProtocolErrorInvalidAuthentication, got %v", protoErr.Kind)
	}
}

func TestHandleEventInvalidSeqClosePreservesSessionButResetsSeq(t *testing.T) {
	s, _ := newTestShard()
	s.seq = 42
	s.resumeMetadata = &ResumeMetadata{sessionID: "abc", resumeWSURL: "wss://resume"}

	action, err := s.HandleEvent(Frame{}, &CloseError{Code: 4007, Reason: "invalid seq"})
	if err != nil {
		t.Fatalf("unexpected error for non-fatal close code: %v", err)
	}
	if action == nil || action.Kind != ActionReconnect {
		t.Fatalf("expected ActionReconnect, got %+v", action)
	}
	if s.Seq() != 0 {
		t.Fatalf("expected seq reset to 0, got %d", s.Seq())
	}
	if _, ok := s.SessionID(); !ok {
		t.Fatal("expected session id to survive an invalid-seq close")
	}
}

func TestHandleEventSessionTimedOutDropsResumeMetadata(t *testing.T) {
	s, _ := newTestShard()
	s.resumeMetadata = &ResumeMetadata{sessionID: "abc", resumeWSURL: "wss://resume"}

	action, err := s.HandleEvent(Frame{}, &CloseError{Code: 4009, Reason: "session timed out"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action == nil || action.Kind != ActionReconnect {
		t.Fatalf("expected ActionReconnect, got %+v", action)
	}
	if _, ok := s.SessionID(); ok {
		t.Fatal("expected resume metadata to be dropped on session timeout")
	}
}

func TestResumeWithoutSessionFails(t *testing.T) {
	s, _ := newTestShard()

	if err := s.Resume(); !errors.Is(err, ErrNoSessionID) {
		t.Fatalf("expected ErrNoSessionID, got %v", err)
	}
}

func TestResumeSendsResumeFrame(t *testing.T) {
	s, ft := newTestShard()
	s.resumeMetadata = &ResumeMetadata{sessionID: "abc", resumeWSURL: "wss://resume"}
	s.seq = 7

	if err := s.Resume(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Stage() != StageResuming {
		t.Fatalf("expected StageResuming, got %v", s.Stage())
	}
	if len(ft.sent) != 1 {
		t.Fatalf("expected exactly one frame sent, got %d", len(ft.sent))
	}
}

func TestIdentifySendsIdentifyFrameAndStartsHeartbeatClock(t *testing.T) {
	s, ft := newTestShard()

	if err := s.Identify(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Stage() != StageIdentifying {
		t.Fatalf("expected StageIdentifying, got %v", s.Stage())
	}
	if len(ft.sent) != 1 {
		t.Fatalf("expected exactly one frame sent, got %d", len(ft.sent))
	}
	if !s.hasLastHeartbeatSent {
		t.Fatal("expected Identify to seed lastHeartbeatSent")
	}
}

func TestSetStatusCoercesOfflineToInvisible(t *testing.T) {
	s, _ := newTestShard()

	if err := s.SetStatus(OnlineStatusOffline); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Presence().Status != OnlineStatusInvisible {
		t.Fatalf("expected OnlineStatusInvisible, got %v", s.Presence().Status)
	}
}

func TestSetStatusPushesPresenceUpdateFrameWhenConnected(t *testing.T) {
	s, ft := newTestShard()
	s.stage = StageConnected

	if err := s.SetStatus(OnlineStatusOffline); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ft.sent) != 1 {
		t.Fatalf("expected exactly one frame sent, got %d", len(ft.sent))
	}

	var payload gatewayPayload
	if err := sonic.Unmarshal(ft.sent[0], &payload); err != nil {
		t.Fatalf("unexpected error unmarshaling envelope: %v", err)
	}
	if payload.Op != gatewayOpcodePresenceUpdate {
		t.Fatalf("expected op 3, got %d", payload.Op)
	}

	var d struct {
		Status     string `json:"status"`
		AFK        bool   `json:"afk"`
		Activities []any  `json:"activities"`
	}
	if err := sonic.Unmarshal(payload.D, &d); err != nil {
		t.Fatalf("unexpected error unmarshaling d: %v", err)
	}
	if d.Status != string(OnlineStatusInvisible) {
		t.Fatalf("expected the offline->invisible coercion to reach the wire, got status %q", d.Status)
	}
	if len(d.Activities) != 0 {
		t.Fatalf("expected no activities, got %v", d.Activities)
	}
}

func TestSetActivityPushesPresenceUpdateFrameWhenConnected(t *testing.T) {
	s, ft := newTestShard()
	s.stage = StageConnected

	activity := &Activity{Name: "ranked queue", Type: ActivityTypeGame}
	if err := s.SetActivity(activity); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ft.sent) != 1 {
		t.Fatalf("expected exactly one frame sent, got %d", len(ft.sent))
	}

	var payload gatewayPayload
	if err := sonic.Unmarshal(ft.sent[0], &payload); err != nil {
		t.Fatalf("unexpected error unmarshaling envelope: %v", err)
	}

	var d struct {
		Activities []struct {
			Name string       `json:"name"`
			Type ActivityType `json:"type"`
		} `json:"activities"`
	}
	if err := sonic.Unmarshal(payload.D, &d); err != nil {
		t.Fatalf("unexpected error unmarshaling d: %v", err)
	}
	if len(d.Activities) != 1 || d.Activities[0].Name != "ranked queue" || d.Activities[0].Type != ActivityTypeGame {
		t.Fatalf("expected the set activity to reach the wire, got %+v", d.Activities)
	}
}

func TestSetPresenceNoOpWhenNotConnected(t *testing.T) {
	s, ft := newTestShard()

	if err := s.SetStatus(OnlineStatusDND); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ft.sent) != 0 {
		t.Fatalf("expected no frame sent before StageConnected, got %d", len(ft.sent))
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s, ft := newTestShard()

	if err := s.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ft.closed {
		t.Fatal("expected transport to be closed")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("expected second Close to be a no-op, got error: %v", err)
	}
}
