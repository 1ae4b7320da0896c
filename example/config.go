/************************************************************************************
 *
 * gatecore, a Discord gateway shard core for Go
 *
 * SPDX-License-Identifier: BSD-3-Clause
 *
 ************************************************************************************/

package example

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gatecore/gatecore"
)

// Config is a single-shard runner's configuration, loaded from a TOML
// file; config is an ambient concern the runner owns, not the core.
type Config struct {
	Token string `toml:"token"`

	ShardIndex int `toml:"shard_index"`
	ShardTotal int `toml:"shard_total"`

	Intents []string `toml:"intents"`

	// Compression selects "none", "zlib-stream" or "zstd-stream".
	Compression string `toml:"compression"`

	// GatewayURL is the wss:// URL the shard connects to. cmd/shard
	// passes it to NewShard unchanged; no REST discovery is performed.
	GatewayURL string `toml:"gateway_url"`

	Presence struct {
		Status       string `toml:"status"`
		ActivityName string `toml:"activity_name"`
		ActivityType string `toml:"activity_type"`
	} `toml:"presence"`
}

// LoadConfig decodes a Config from a TOML file at path.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("example: decode config: %w", err)
	}
	return cfg, nil
}

// IntentBits maps the config's intent names to gatecore.GatewayIntent
// values, unknown names are skipped.
func (c Config) IntentBits() gatecore.GatewayIntent {
	names := map[string]gatecore.GatewayIntent{
		"guilds":                        gatecore.GatewayIntentGuilds,
		"guild_members":                 gatecore.GatewayIntentGuildMembers,
		"guild_moderation":              gatecore.GatewayIntentGuildModeration,
		"guild_expressions":             gatecore.GatewayIntentGuildExpressions,
		"guild_integrations":            gatecore.GatewayIntentGuildIntegrations,
		"guild_webhooks":                gatecore.GatewayIntentGuildWebhooks,
		"guild_invites":                 gatecore.GatewayIntentGuildInvites,
		"guild_voice_states":            gatecore.GatewayIntentGuildVoiceStates,
		"guild_presences":               gatecore.GatewayIntentGuildPresences,
		"guild_messages":                gatecore.GatewayIntentGuildMessages,
		"guild_message_reactions":       gatecore.GatewayIntentGuildMessageReactions,
		"guild_message_typing":          gatecore.GatewayIntentGuildMessageTyping,
		"direct_messages":               gatecore.GatewayIntentDirectMessages,
		"direct_message_reactions":      gatecore.GatewayIntentDirectMessageReactions,
		"direct_message_typing":         gatecore.GatewayIntentDirectMessageTyping,
		"message_content":               gatecore.GatewayIntentMessageContent,
		"guild_scheduled_events":        gatecore.GatewayIntentGuildScheduledEvents,
		"auto_moderation_configuration": gatecore.GatewayIntentAutoModerationConfiguration,
		"auto_moderation_execution":     gatecore.GatewayIntentAutoModerationExecution,
		"guild_message_polls":          gatecore.GatewayIntentGuildMessagePolls,
		"direct_message_polls":         gatecore.GatewayIntentDirectMessagePolls,
	}

	var bits gatecore.GatewayIntent
	for _, name := range c.Intents {
		if bit, ok := names[strings.ToLower(name)]; ok {
			bits = bits.Add(bit)
		}
	}
	return bits
}

// CompressionMode maps the config's compression string to a
// gatecore.CompressionMode, defaulting to CompressionNone.
func (c Config) CompressionMode() gatecore.CompressionMode {
	switch c.Compression {
	case "zlib-stream":
		return gatecore.CompressionZlibStream
	case "zstd-stream":
		return gatecore.CompressionZstdStream
	default:
		return gatecore.CompressionNone
	}
}
