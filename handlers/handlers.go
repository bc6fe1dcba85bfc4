package handlers

import (
	"errors"
	"fmt"

	"github.com/VTGare/embeds"
	"github.com/VTGare/gumi"
	"github.com/VTGare/kazoeru/bot"
	"github.com/VTGare/kazoeru/messages"
	"github.com/bwmarrin/discordgo"
)

// RegisterAll attaches every gateway event handler to the bot.
func RegisterAll(b *bot.Bot) {
	b.AddHandler(OnReady(b))
	b.AddHandler(OnGuildCreate(b))
	b.AddHandler(OnGuildDelete(b))
	b.AddHandler(OnGuildMemberAdd(b))
	b.AddHandler(OnGuildMemberRemove(b))
	b.AddHandler(OnChannelCreate(b))
	b.AddHandler(OnChannelDelete(b))
	b.AddHandler(OnGuildRoleCreate(b))
	b.AddHandler(OnGuildRoleDelete(b))
}

// PrefixResolver returns an array of bot's prefixes and mentions.
func PrefixResolver(b *bot.Bot) func(s *discordgo.Session, m *discordgo.MessageCreate) []string {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) []string {
		mention := fmt.Sprintf("<@%v> ", s.State.User.ID)
		mentionExcl := fmt.Sprintf("<@!%v> ", s.State.User.ID)

		return append(b.Config.Discord.Prefixes, mention, mentionExcl)
	}
}

// OnReady drops configured guilds the session can no longer see. The
// ready payload only carries guild stubs, so refreshing waits for each
// guild's own create event.
func OnReady(b *bot.Bot) func(*discordgo.Session, *discordgo.Ready) {
	return func(s *discordgo.Session, r *discordgo.Ready) {
		b.Log.Infof("%v is online. Session ID: %v. Guilds: %v", r.User.String(), r.SessionID, len(r.Guilds))

		ids := make([]string, 0, len(r.Guilds))
		for _, g := range r.Guilds {
			ids = append(ids, g.ID)
		}

		go b.Stats.Resync(ids)
	}
}

// OnGuildCreate refreshes a configured guild once its members and
// channels actually arrive; the ready payload only carries stubs.
func OnGuildCreate(b *bot.Bot) func(*discordgo.Session, *discordgo.GuildCreate) {
	return func(s *discordgo.Session, g *discordgo.GuildCreate) {
		b.Stats.Refresh(g.ID)
	}
}

// OnGuildDelete logs guild outages and guilds that kicked the bot out.
func OnGuildDelete(b *bot.Bot) func(*discordgo.Session, *discordgo.GuildDelete) {
	return func(s *discordgo.Session, g *discordgo.GuildDelete) {
		if g.Unavailable {
			b.Log.Infof("Guild outage. ID: %v", g.ID)
		} else {
			b.Log.Infof("Kicked/banned from guild: %v", g.ID)
		}
	}
}

func OnGuildMemberAdd(b *bot.Bot) func(*discordgo.Session, *discordgo.GuildMemberAdd) {
	return func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		b.Stats.Refresh(m.GuildID)
	}
}

func OnGuildMemberRemove(b *bot.Bot) func(*discordgo.Session, *discordgo.GuildMemberRemove) {
	return func(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
		b.Stats.Refresh(m.GuildID)
	}
}

func OnChannelCreate(b *bot.Bot) func(*discordgo.Session, *discordgo.ChannelCreate) {
	return func(s *discordgo.Session, c *discordgo.ChannelCreate) {
		if c.GuildID == "" {
			return
		}

		b.Stats.Refresh(c.GuildID)
	}
}

func OnChannelDelete(b *bot.Bot) func(*discordgo.Session, *discordgo.ChannelDelete) {
	return func(s *discordgo.Session, c *discordgo.ChannelDelete) {
		if c.GuildID == "" {
			return
		}

		b.Stats.Refresh(c.GuildID)
	}
}

func OnGuildRoleCreate(b *bot.Bot) func(*discordgo.Session, *discordgo.GuildRoleCreate) {
	return func(s *discordgo.Session, r *discordgo.GuildRoleCreate) {
		b.Stats.Refresh(r.GuildID)
	}
}

func OnGuildRoleDelete(b *bot.Bot) func(*discordgo.Session, *discordgo.GuildRoleDelete) {
	return func(s *discordgo.Session, r *discordgo.GuildRoleDelete) {
		b.Stats.Refresh(r.GuildID)
	}
}

// OnError creates an error response, logs the error and sends the
// response on Discord.
func OnError(b *bot.Bot) func(*gumi.Ctx, error) {
	return func(ctx *gumi.Ctx, err error) {
		eb := embeds.NewBuilder()

		var (
			cmdErr *messages.IncorrectCmd
			usrErr *messages.UserErr
		)

		switch {
		case errors.As(err, &cmdErr):
			eb.FailureTemplate(cmdErr.Error())
			eb.AddField("Usage", fmt.Sprintf("`%v`", cmdErr.Usage), true)
			eb.AddField("Example", fmt.Sprintf("`%v`", cmdErr.Example), true)
		case errors.As(err, &usrErr):
			if err := usrErr.Unwrap(); err != nil {
				logCommandError(b, ctx, err)
			}

			eb.FailureTemplate(usrErr.Error())
		default:
			logCommandError(b, ctx, err)
			eb.ErrorTemplate(err.Error())
		}

		ctx.ReplyEmbed(eb.Finalize())
	}
}

func logCommandError(b *bot.Bot, ctx *gumi.Ctx, err error) {
	if ctx.Command != nil {
		b.Log.Errorf("An error occured. Command: %v. Arguments: [%v]. Error: %v", ctx.Command.Name, ctx.Args.Raw, err)
	} else {
		b.Log.Errorf("An error occured. Error: %v", err)
	}
}

// OnRateLimit creates a response for users who use bot's commands too
// frequently.
func OnRateLimit(b *bot.Bot) func(*gumi.Ctx) error {
	return func(ctx *gumi.Ctx) error {
		duration, err := ctx.Command.RateLimiter.Expires(ctx.Event.Author.ID)
		if err != nil {
			return err
		}

		eb := embeds.NewBuilder()
		eb.FailureTemplate(fmt.Sprintf("Hold your horses! Try again in **%v**.", duration.Round(1e9)))

		return ctx.ReplyEmbed(eb.Finalize())
	}
}

// OnNoPerms creates a response for users who used a command without
// required permissions.
func OnNoPerms(b *bot.Bot) func(*gumi.Ctx) error {
	return func(ctx *gumi.Ctx) error {
		eb := embeds.NewBuilder()
		eb.FailureTemplate("You don't have enough permissions to run this command.")

		return ctx.ReplyEmbed(eb.Finalize())
	}
}

// OnExecute logs every executed command.
func OnExecute(b *bot.Bot) func(*gumi.Ctx) error {
	return func(ctx *gumi.Ctx) error {
		b.Log.Infof("Executing command [%v]. Arguments: [%v]. Guild ID: %v, channel ID: %v", ctx.Command.Name, ctx.Args.Raw, ctx.Event.GuildID, ctx.Event.ChannelID)

		b.Metrics.IncrementCommand()
		return nil
	}
}

func OnPanic(b *bot.Bot) func(*gumi.Ctx, interface{}) {
	return func(ctx *gumi.Ctx, r interface{}) {
		b.Log.Errorf("%v", r)
	}
}
