package stats

import (
	"fmt"

	"github.com/VTGare/kazoeru/store"
	"github.com/bwmarrin/discordgo"
)

// Compute aggregates the guild's member, channel and role collections into
// a fresh snapshot. It reads the collections as-is and mutates nothing.
func Compute(guild *discordgo.Guild) *store.Snapshot {
	snapshot := &store.Snapshot{}

	for _, member := range guild.Members {
		snapshot.TotalMembers++
		if member.User != nil && member.User.Bot {
			snapshot.BotMembers++
		} else {
			snapshot.HumanMembers++
		}
	}

	for _, channel := range guild.Channels {
		switch channel.Type {
		case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
			snapshot.TextChannels++
		case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
			snapshot.VoiceChannels++
		}
	}

	snapshot.TotalChannels = snapshot.TextChannels + snapshot.VoiceChannels
	snapshot.TotalRoles = len(guild.Roles)

	return snapshot
}

// CategoryName is the display name of the container category.
const CategoryName = "📊 Server Stats"

// ChannelName renders the display name of a slot from a snapshot.
func ChannelName(slot string, snapshot *store.Snapshot) string {
	switch slot {
	case store.SlotAll:
		return fmt.Sprintf("📊 Total Members: %v", snapshot.TotalMembers)
	case store.SlotMembers:
		return fmt.Sprintf("👥 members: %v", snapshot.HumanMembers)
	case store.SlotBots:
		return fmt.Sprintf("🤖 Bots: %v", snapshot.BotMembers)
	case store.SlotChannels:
		return fmt.Sprintf("💬 Channels: %v | %v", snapshot.TextChannels, snapshot.VoiceChannels)
	case store.SlotRoles:
		return fmt.Sprintf("🎭 Roles: %v", snapshot.TotalRoles)
	}

	return ""
}
