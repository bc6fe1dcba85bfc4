package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/VTGare/embeds"
	"github.com/VTGare/gumi"
	"github.com/VTGare/kazoeru/bot"
	"github.com/VTGare/kazoeru/messages"
	"github.com/VTGare/kazoeru/stats"
	"github.com/bwmarrin/discordgo"
)

func statsGroup(b *bot.Bot) {
	group := "stats"

	b.Router.RegisterCmd(&gumi.Command{
		Name:        "stats-setup",
		Group:       group,
		Aliases:     []string{"setup-stats"},
		Description: "Creates the server stats category with its display channels.",
		Usage:       "kz!stats-setup",
		Example:     "kz!stats-setup",
		GuildOnly:   true,
		Permissions: discordgo.PermissionAdministrator,
		RateLimiter: gumi.NewRateLimiter(15 * time.Second),
		Exec:        statsSetup(b),
	})

	b.Router.RegisterCmd(&gumi.Command{
		Name:        "stats-remove",
		Group:       group,
		Aliases:     []string{"remove-stats"},
		Description: "Deletes the server stats category with its display channels.",
		Usage:       "kz!stats-remove",
		Example:     "kz!stats-remove",
		GuildOnly:   true,
		Permissions: discordgo.PermissionAdministrator,
		RateLimiter: gumi.NewRateLimiter(15 * time.Second),
		Exec:        statsRemove(b),
	})

	b.Router.RegisterCmd(&gumi.Command{
		Name:        "stats-refresh",
		Group:       group,
		Aliases:     []string{"refresh-stats"},
		Description: "Recomputes the server stats and renames stale display channels.",
		Usage:       "kz!stats-refresh",
		Example:     "kz!stats-refresh",
		GuildOnly:   true,
		Permissions: discordgo.PermissionAdministrator,
		RateLimiter: gumi.NewRateLimiter(5 * time.Second),
		Exec:        statsRefresh(b),
	})
}

func statsSetup(b *bot.Bot) func(ctx *gumi.Ctx) error {
	return func(ctx *gumi.Ctx) error {
		rec, err := b.Stats.Setup(ctx.Event.GuildID)
		if err != nil {
			var ce *stats.CreationError

			switch {
			case errors.Is(err, stats.ErrAlreadyConfigured):
				return messages.ErrStatsAlreadyConfigured()
			case errors.As(err, &ce):
				return messages.ErrStatsCreationFailed(ce.Slot, ce)
			default:
				return messages.ErrGuildNotFound(err, ctx.Event.GuildID)
			}
		}

		eb := embeds.NewBuilder()
		eb.SuccessTemplate("Created the server stats channels.")
		eb.AddField("Category", fmt.Sprintf("`%v`", rec.Channels.CategoryID), true)

		return ctx.ReplyEmbed(eb.Finalize())
	}
}

func statsRemove(b *bot.Bot) func(ctx *gumi.Ctx) error {
	return func(ctx *gumi.Ctx) error {
		err := b.Stats.Teardown(ctx.Event.GuildID)
		if err != nil {
			if errors.Is(err, stats.ErrNotConfigured) {
				return messages.ErrStatsNotConfigured()
			}

			return messages.ErrGuildNotFound(err, ctx.Event.GuildID)
		}

		eb := embeds.NewBuilder()
		return ctx.ReplyEmbed(eb.SuccessTemplate("Removed the server stats channels.").Finalize())
	}
}

func statsRefresh(b *bot.Bot) func(ctx *gumi.Ctx) error {
	return func(ctx *gumi.Ctx) error {
		// refresh swallows its own failures, the reply is unconditional
		b.Stats.Refresh(ctx.Event.GuildID)

		eb := embeds.NewBuilder()
		return ctx.ReplyEmbed(eb.SuccessTemplate("Refreshed the server stats.").Finalize())
	}
}
