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

// decodeEnvelope parses one raw (already decompressed) text frame into
// the op/d/s/t envelope every Gateway message shares.
func decodeEnvelope(raw []byte) (gatewayPayload, error) {
	var payload gatewayPayload
	err := sonic.Unmarshal(raw, &payload)
	return payload, err
}

// encodeIdentify builds an op-2 Identify frame.
//
//	{op:2, d:{token, intents, properties:{os,browser,device},
//	          compress:false, large_threshold:250, shard:[index,total],
//	          presence}}
func encodeIdentify(s *Shard) ([]byte, error) {
	d := map[string]any{
		"token": s.token,
		"properties": map[string]string{
			"os":      "linux",
			"browser": LibraryName,
			"device":  LibraryName,
		},
		"intents":         s.intents,
		"compress":        false,
		"large_threshold": largeThreshold,
		"shard":           [2]int{s.shardIndex, s.shardTotal},
		"presence":        encodePresence(s.presence),
	}
	return sonic.Marshal(gatewayPayload{Op: gatewayOpcodeIdentify, D: marshalRaw(d)})
}

// encodeResume builds an op-6 Resume frame.
//
//	{op:6, d:{token, session_id, seq}}
func encodeResume(s *Shard) ([]byte, error) {
	d := map[string]any{
		"token":      s.token,
		"session_id": s.resumeMetadata.sessionID,
		"seq":        s.seq,
	}
	return sonic.Marshal(gatewayPayload{Op: gatewayOpcodeResume, D: marshalRaw(d)})
}

// encodeHeartbeat builds an op-1 Heartbeat frame carrying the last
// sequence received.
func encodeHeartbeat(seq int64) ([]byte, error) {
	return sonic.Marshal(gatewayPayload{Op: gatewayOpcodeHeartbeat, D: marshalRaw(seq)})
}

// encodePresenceUpdate builds an op-3 Presence Update frame.
//
//	{op:3, d:{since, activities, status, afk}}
func encodePresenceUpdate(p Presence) ([]byte, error) {
	return sonic.Marshal(gatewayPayload{Op: gatewayOpcodePresenceUpdate, D: marshalRaw(encodePresence(p))})
}

func encodePresence(p Presence) map[string]any {
	activities := []any{}
	if p.Activity != nil {
		activities = append(activities, map[string]any{
			"name": p.Activity.Name,
			"type": p.Activity.Type,
			"url":  p.Activity.URL,
			"state": p.Activity.State,
		})
	}
	return map[string]any{
		"since":      nil,
		"activities": activities,
		"status":     p.Status,
		"afk":        false,
	}
}

// ChunkGuildFilter selects which member-chunk request variant
// encodeRequestGuildMembers builds: exactly one of query or user ids is
// ever present on the wire.
type ChunkGuildFilter struct {
	query   string
	userIDs []Snowflake
	hasQ    bool
	hasIDs  bool
}

// ChunkGuildFilterNone requests all members (query="").
func ChunkGuildFilterNone() ChunkGuildFilter {
	return ChunkGuildFilter{hasQ: true}
}

// ChunkGuildFilterQuery requests members whose name/nickname starts
// with the given string.
func ChunkGuildFilterQuery(query string) ChunkGuildFilter {
	return ChunkGuildFilter{query: query, hasQ: true}
}

// ChunkGuildFilterUserIDs requests chunks for exactly these member ids.
func ChunkGuildFilterUserIDs(ids []Snowflake) ChunkGuildFilter {
	return ChunkGuildFilter{userIDs: ids, hasIDs: true}
}

// encodeRequestGuildMembers builds an op-8 Request Guild Members frame.
//
//	{op:8, d:{guild_id, query?, user_ids?, limit, presences, nonce?}}
func encodeRequestGuildMembers(guildID Snowflake, limit int, presences bool, filter ChunkGuildFilter, nonce string) ([]byte, error) {
	d := map[string]any{
		"guild_id":  guildID,
		"limit":     limit,
		"presences": presences,
	}
	switch {
	case filter.hasIDs:
		d["user_ids"] = filter.userIDs
	default:
		d["query"] = filter.query
	}
	if nonce != "" {
		d["nonce"] = nonce
	}
	return sonic.Marshal(gatewayPayload{Op: gatewayOpcodeRequestGuildMembers, D: marshalRaw(d)})
}

// marshalRaw marshals v to a sonic.RawMessage, swallowing the error: all
// call sites above pass map literals built from known-good Go values,
// which cannot fail to marshal.
func marshalRaw(v any) sonic.RawMessage {
	b, _ := sonic.Marshal(v)
	return sonic.RawMessage(b)
}

const largeThreshold = 250
