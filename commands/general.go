package commands

import (
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/VTGare/embeds"
	"github.com/VTGare/gumi"
	"github.com/VTGare/kazoeru/bot"
	"github.com/VTGare/kazoeru/internal/arrays"
	"github.com/VTGare/kazoeru/messages"
)

func generalGroup(b *bot.Bot) {
	group := "general"

	b.Router.RegisterCmd(&gumi.Command{
		Name:        "help",
		Group:       group,
		Aliases:     []string{"documentation", "docs"},
		Description: "Shows this page.",
		Usage:       "kz!help <command name>",
		Example:     "kz!help stats-setup",
		Exec:        help(b),
	})

	b.Router.RegisterCmd(&gumi.Command{
		Name:        "about",
		Group:       group,
		Aliases:     []string{"invite"},
		Description: "About page with the invite link.",
		Usage:       "kz!about",
		Example:     "kz!about",
		Exec:        about(b),
	})

	b.Router.RegisterCmd(&gumi.Command{
		Name:        "ping",
		Group:       group,
		Description: "Checks bot's availability and response time.",
		Usage:       "kz!ping",
		Example:     "kz!ping",
		RateLimiter: gumi.NewRateLimiter(5 * time.Second),
		Exec:        ping(b),
	})

	b.Router.RegisterCmd(&gumi.Command{
		Name:        "status",
		Group:       group,
		Aliases:     []string{"uptime"},
		Description: "Shows bot's runtime stats.",
		Usage:       "kz!status",
		Example:     "kz!status",
		RateLimiter: gumi.NewRateLimiter(5 * time.Second),
		Exec:        status(b),
	})

	b.Router.RegisterCmd(&gumi.Command{
		Name:        "feedback",
		Group:       group,
		Description: "Sends feedback to bot's author.",
		Usage:       "kz!feedback <your wall of text here>",
		Example:     "kz!feedback The counters are all wrong!",
		Exec:        feedback(b),
	})
}

func help(b *bot.Bot) func(ctx *gumi.Ctx) error {
	return func(ctx *gumi.Ctx) error {
		eb := embeds.NewBuilder()
		eb.Title("Kazoeru's Documentation").Thumbnail(ctx.Session.State.User.AvatarURL(""))

		switch {
		case ctx.Args.Len() == 0:
			groups := make(map[string][]string)
			added := make(map[string]struct{})

			for _, cmd := range b.Router.Commands {
				if _, ok := added[cmd.Name]; ok {
					continue
				}

				groups[cmd.Group] = append(groups[cmd.Group], cmd.Name)
				added[cmd.Name] = struct{}{}
			}

			keys := make([]string, 0, len(groups))
			for key := range groups {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			eb.Description(
				"This page shows bot's command groups. Use `kz!help <command name>` for command's documentation.",
			)

			for _, key := range keys {
				group := groups[key]
				sort.Strings(group)

				eb.AddField(key, fmt.Sprintf(
					"```\n%v\n```", strings.Join(arrays.Map(group, func(s string) string {
						return "• " + s
					}), "\n"),
				), true)
			}
		case ctx.Args.Len() >= 1:
			name := ctx.Args.Get(0).Raw

			cmd, ok := b.Router.Commands[name]
			if !ok {
				return messages.ErrIncorrectCmd(ctx.Command)
			}

			if cmd.GuildOnly {
				eb.Description("Guild only.")
			}

			eb.AddField(
				"Description", "```"+cmd.Description+"```",
			)

			if len(cmd.Aliases) > 0 {
				eb.AddField(
					"Aliases", "```"+strings.Join(cmd.Aliases, " • ")+"```",
				)
			}

			eb.AddField(
				"Usage", "```"+cmd.Usage+"```",
			).AddField(
				"Example", "```"+cmd.Example+"```",
			)
		}

		return ctx.ReplyEmbed(eb.Finalize())
	}
}

func about(*bot.Bot) func(ctx *gumi.Ctx) error {
	return func(ctx *gumi.Ctx) error {
		eb := embeds.NewBuilder()
		eb.Title("ℹ About").Thumbnail(ctx.Session.State.User.AvatarURL(""))
		eb.Description(
			"Kazoeru keeps a category of voice channels renamed to your server's live member, bot, channel and role counts. Run `kz!stats-setup` to get started.",
		)

		invite := fmt.Sprintf(
			"https://discord.com/api/oauth2/authorize?client_id=%v&permissions=16&scope=bot",
			ctx.Session.State.User.ID,
		)
		eb.AddField("Invite link", messages.ClickHere(invite), true)

		return ctx.ReplyEmbed(eb.Finalize())
	}
}

func ping(*bot.Bot) func(ctx *gumi.Ctx) error {
	return func(ctx *gumi.Ctx) error {
		eb := embeds.NewBuilder()

		return ctx.ReplyEmbed(
			eb.Title("🏓 Pong!").AddField(
				"Heartbeat latency",
				ctx.Session.HeartbeatLatency().Round(time.Millisecond).String(),
			).Finalize(),
		)
	}
}

func status(b *bot.Bot) func(ctx *gumi.Ctx) error {
	return func(ctx *gumi.Ctx) error {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		latency := ctx.Session.HeartbeatLatency().Round(time.Millisecond)
		uptime := b.Metrics.Uptime()

		eb := embeds.NewBuilder()
		eb.Title("Bot status")
		eb.AddField("Guilds", strconv.Itoa(len(ctx.Session.State.Guilds)), true).
			AddField("Configured guilds", strconv.Itoa(b.State.Len()), true).
			AddField("Commands executed", strconv.FormatInt(b.Metrics.Commands(), 10), true).
			AddField("Refreshes", strconv.FormatInt(b.Metrics.Refreshes(), 10), true).
			AddField("Channels renamed", strconv.FormatInt(b.Metrics.Renames(), 10), true).
			AddField("Latency", latency.String(), true).
			AddField("Uptime", messages.FormatDuration(uptime), true).
			AddField("RAM used", fmt.Sprintf("%v MB", mem.Alloc/1024/1024), true)

		return ctx.ReplyEmbed(eb.Finalize())
	}
}

func feedback(b *bot.Bot) func(ctx *gumi.Ctx) error {
	return func(ctx *gumi.Ctx) error {
		if ctx.Args.Len() == 0 {
			return messages.ErrIncorrectCmd(ctx.Command)
		}

		eb := embeds.NewBuilder()
		eb.Author(
			fmt.Sprintf("Feedback from %v", ctx.Event.Author.String()),
			"",
			ctx.Event.Author.AvatarURL(""),
		).Description(
			ctx.Args.Raw,
		).AddField(
			"Author ID",
			ctx.Event.Author.ID,
			true,
		)

		if ctx.Event.GuildID != "" {
			eb.AddField(
				"Guild", ctx.Event.GuildID, true,
			)
		}

		ch, err := ctx.Session.UserChannelCreate(ctx.Router.AuthorID)
		if err != nil {
			return err
		}

		_, err = ctx.Session.ChannelMessageSendEmbed(ch.ID, eb.Finalize())
		if err != nil {
			return err
		}

		eb.Clear()
		return ctx.ReplyEmbed(eb.SuccessTemplate("Feedback message has been sent.").Finalize())
	}
}
