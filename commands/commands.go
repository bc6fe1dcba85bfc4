package commands

import "github.com/VTGare/kazoeru/bot"

// RegisterAll adds every command group to the bot's router.
func RegisterAll(b *bot.Bot) {
	generalGroup(b)
	statsGroup(b)
}
