package stats

import "github.com/bwmarrin/discordgo"

// Gateway is the slice of the Discord API the reconciler needs.
type Gateway interface {
	Guild(guildID string) (*discordgo.Guild, error)
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error)
	ChannelEdit(channelID, name string) (*discordgo.Channel, error)
	ChannelDelete(channelID string) (*discordgo.Channel, error)
}

// SessionGateway adapts a discordgo session to the Gateway interface.
// Guilds resolve through the state cache only: REST guild objects carry
// no channel or member collections and must never feed the reconciler.
type SessionGateway struct {
	s *discordgo.Session
}

var _ Gateway = (*SessionGateway)(nil)

func NewSessionGateway(s *discordgo.Session) *SessionGateway {
	return &SessionGateway{s: s}
}

func (g *SessionGateway) Guild(guildID string) (*discordgo.Guild, error) {
	return g.s.State.Guild(guildID)
}

func (g *SessionGateway) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	return g.s.GuildChannelCreateComplex(guildID, data)
}

func (g *SessionGateway) ChannelEdit(channelID, name string) (*discordgo.Channel, error) {
	return g.s.ChannelEdit(channelID, name)
}

func (g *SessionGateway) ChannelDelete(channelID string) (*discordgo.Channel, error) {
	return g.s.ChannelDelete(channelID)
}
