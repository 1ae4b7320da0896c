/************************************************************************************
 *
 * gatecore, a Discord gateway shard core for Go
 *
 * SPDX-License-Identifier: BSD-3-Clause
 *
 ************************************************************************************/

package gatecore

// OnlineStatus is the presence status sent at Identify and on
// PresenceUpdate.
type OnlineStatus string

const (
	OnlineStatusOnline    OnlineStatus = "online"
	OnlineStatusIdle      OnlineStatus = "idle"
	OnlineStatusDND       OnlineStatus = "dnd"
	OnlineStatusInvisible OnlineStatus = "invisible"
	// OnlineStatusOffline is never sent; NewShard and SetStatus coerce
	// it to OnlineStatusInvisible before it reaches Presence.
	OnlineStatusOffline OnlineStatus = "offline"
)

// ActivityType is the kind of activity shown in a presence.
type ActivityType int

const (
	ActivityTypeGame ActivityType = iota
	ActivityTypeStreaming
	ActivityTypeListening
	ActivityTypeWatching
	ActivityTypeCustom
	ActivityTypeCompeting
)

// Activity is the optional activity attached to a Presence.
type Activity struct {
	Name  string       `json:"name"`
	Type  ActivityType `json:"type"`
	URL   string       `json:"url,omitempty"`
	State string       `json:"state,omitempty"`
}

// Presence is the shard's current status and activity, sent at
// Identify and updatable via Shard.SetPresence/SetActivity/SetStatus.
type Presence struct {
	Status   OnlineStatus
	Activity *Activity
}

// DefaultPresence is the zero-value presence: online, no activity.
func DefaultPresence() Presence {
	return Presence{Status: OnlineStatusOnline}
}

// setActivity replaces the presence's activity, nil to clear it.
func (p *Presence) setActivity(activity *Activity) {
	p.Activity = activity
}

// setStatus sets the presence's status, coercing Offline to Invisible —
// the gateway has no wire representation of "offline" for a bot.
func (p *Presence) setStatus(status OnlineStatus) {
	if status == OnlineStatusOffline {
		status = OnlineStatusInvisible
	}
	p.Status = status
}
