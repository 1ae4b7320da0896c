/************************************************************************************
 *
 * gatecore, a Discord gateway shard core for Go
 *
 * SPDX-License-Identifier: BSD-3-Clause
 *
 ************************************************************************************/

package gatecore

import (
	"github.com/bytedance/sonic"
)

// gatewayOpcode is a Discord Gateway WebSocket frame operation code.
type gatewayOpcode int

const (
	gatewayOpcodeDispatch            gatewayOpcode = 0
	gatewayOpcodeHeartbeat           gatewayOpcode = 1
	gatewayOpcodeIdentify            gatewayOpcode = 2
	gatewayOpcodePresenceUpdate      gatewayOpcode = 3
	gatewayOpcodeVoiceStateUpdate    gatewayOpcode = 4
	gatewayOpcodeResume              gatewayOpcode = 6
	gatewayOpcodeReconnect           gatewayOpcode = 7
	gatewayOpcodeRequestGuildMembers gatewayOpcode = 8
	gatewayOpcodeInvalidSession      gatewayOpcode = 9
	gatewayOpcodeHello               gatewayOpcode = 10
	gatewayOpcodeHeartbeatACK        gatewayOpcode = 11
)

// gatewayPayload is the envelope every Gateway WebSocket frame, inbound
// or outbound, is wrapped in.
type gatewayPayload struct {
	Op gatewayOpcode    `json:"op"`
	D  sonic.RawMessage `json:"d,omitempty"`
	S  int64            `json:"s,omitempty"`
	T  string           `json:"t,omitempty"`
}

// DispatchEvent is a decoded op-0 Dispatch frame, surfaced to the
// caller via Action.Event. Raw retains the original frame text so a
// caller can log unrecognized event names without re-serializing data.
type DispatchEvent struct {
	Name string
	Seq  int64
	Data sonic.RawMessage
	Raw  string
}

// readyPayload is the inner `d` of a Dispatch{Name: "READY"} frame,
// decoded just enough to extract resume metadata and the application id.
type readyPayload struct {
	SessionID         string `json:"session_id"`
	ResumeGatewayURL  string `json:"resume_gateway_url"`
	Application       struct {
		ID Snowflake `json:"id"`
	} `json:"application"`
}

// helloPayload is the inner `d` of an op-10 Hello frame.
type helloPayload struct {
	HeartbeatInterval float64 `json:"heartbeat_interval"`
}
