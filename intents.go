/************************************************************************************
 *
 * gatecore, a Discord gateway shard core for Go
 *
 * SPDX-License-Identifier: BSD-3-Clause
 *
 ************************************************************************************/

package gatecore

// GatewayIntent is a bitset of subscribed event categories, sent at
// Identify.
//
// Combine multiple intents with bitwise OR, or with BitFieldAdd.
//
//	intents := GatewayIntentGuilds | GatewayIntentGuildMessages
type GatewayIntent uint32

const (
	// GatewayIntentGuilds includes:
	//   GuildCreate, GuildUpdate, GuildDelete
	//   GuildRoleCreate, GuildRoleUpdate, GuildRoleDelete
	//   ChannelCreate, ChannelUpdate, ChannelDelete, ChannelPinsUpdate
	//   ThreadCreate, ThreadUpdate, ThreadDelete, ThreadListSync
	//   ThreadMemberUpdate, ThreadMembersUpdate
	//   StageInstanceCreate, StageInstanceUpdate, StageInstanceDelete
	GatewayIntentGuilds GatewayIntent = 1 << 0

	// GatewayIntentGuildMembers includes:
	//   GuildMemberAdd, GuildMemberUpdate, GuildMemberRemove
	//   ThreadMembersUpdate
	GatewayIntentGuildMembers GatewayIntent = 1 << 1

	// GatewayIntentGuildModeration includes:
	//   GuildAuditLogEntryCreate, GuildBanAdd, GuildBanRemove
	GatewayIntentGuildModeration GatewayIntent = 1 << 2

	// GatewayIntentGuildExpressions includes:
	//   GuildEmojisUpdate, GuildStickersUpdate
	//   GuildSoundboardSoundCreate, GuildSoundboardSoundUpdate,
	//   GuildSoundboardSoundDelete, GuildSoundboardSoundsUpdate
	GatewayIntentGuildExpressions GatewayIntent = 1 << 3

	// GatewayIntentGuildIntegrations includes:
	//   GuildIntegrationsUpdate, IntegrationCreate, IntegrationUpdate,
	//   IntegrationDelete
	GatewayIntentGuildIntegrations GatewayIntent = 1 << 4

	// GatewayIntentGuildWebhooks includes:
	//   WebhooksUpdate
	GatewayIntentGuildWebhooks GatewayIntent = 1 << 5

	// GatewayIntentGuildInvites includes:
	//   InviteCreate, InviteDelete
	GatewayIntentGuildInvites GatewayIntent = 1 << 6

	// GatewayIntentGuildVoiceStates includes:
	//   VoiceChannelEffectSend, VoiceStateUpdate
	GatewayIntentGuildVoiceStates GatewayIntent = 1 << 7

	// GatewayIntentGuildPresences includes:
	//   PresenceUpdate
	GatewayIntentGuildPresences GatewayIntent = 1 << 8

	// GatewayIntentGuildMessages includes:
	//   MessageCreate, MessageUpdate, MessageDelete, MessageDeleteBulk
	GatewayIntentGuildMessages GatewayIntent = 1 << 9

	// GatewayIntentGuildMessageReactions includes:
	//   MessageReactionAdd, MessageReactionRemove,
	//   MessageReactionRemoveAll, MessageReactionRemoveEmoji
	GatewayIntentGuildMessageReactions GatewayIntent = 1 << 10

	// GatewayIntentGuildMessageTyping includes:
	//   TypingStart
	GatewayIntentGuildMessageTyping GatewayIntent = 1 << 11

	// GatewayIntentDirectMessages includes:
	//   MessageCreate, MessageUpdate, MessageDelete, ChannelPinsUpdate
	GatewayIntentDirectMessages GatewayIntent = 1 << 12

	// GatewayIntentDirectMessageReactions includes:
	//   MessageReactionAdd, MessageReactionRemove,
	//   MessageReactionRemoveAll, MessageReactionRemoveEmoji
	GatewayIntentDirectMessageReactions GatewayIntent = 1 << 13

	// GatewayIntentDirectMessageTyping includes:
	//   TypingStart
	GatewayIntentDirectMessageTyping GatewayIntent = 1 << 14

	// GatewayIntentMessageContent enables access to message content in
	// events.
	GatewayIntentMessageContent GatewayIntent = 1 << 15

	// GatewayIntentGuildScheduledEvents includes:
	//   GuildScheduledEventCreate, GuildScheduledEventUpdate,
	//   GuildScheduledEventDelete, GuildScheduledEventUserAdd,
	//   GuildScheduledEventUserRemove
	GatewayIntentGuildScheduledEvents GatewayIntent = 1 << 16

	// GatewayIntentAutoModerationConfiguration includes:
	//   AutoModerationRuleCreate, AutoModerationRuleUpdate,
	//   AutoModerationRuleDelete
	GatewayIntentAutoModerationConfiguration GatewayIntent = 1 << 20

	// GatewayIntentAutoModerationExecution includes:
	//   AutoModerationActionExecution
	GatewayIntentAutoModerationExecution GatewayIntent = 1 << 21

	// GatewayIntentGuildMessagePolls includes:
	//   MessagePollVoteAdd, MessagePollVoteRemove
	GatewayIntentGuildMessagePolls GatewayIntent = 1 << 24

	// GatewayIntentDirectMessagePolls includes:
	//   MessagePollVoteAdd, MessagePollVoteRemove
	GatewayIntentDirectMessagePolls GatewayIntent = 1 << 25
)

// Has reports whether all of the given intents are set.
func (g GatewayIntent) Has(intents ...GatewayIntent) bool {
	return BitFieldHas(g, intents...)
}

// Add returns a new intent set with the given intents set.
func (g GatewayIntent) Add(intents ...GatewayIntent) GatewayIntent {
	return BitFieldAdd(g, intents...)
}

// Remove returns a new intent set with the given intents cleared.
func (g GatewayIntent) Remove(intents ...GatewayIntent) GatewayIntent {
	return BitFieldRemove(g, intents...)
}
