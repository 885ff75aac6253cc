package bot

import (
	"github.com/bwmarrin/discordgo"
)

func (b *Bot) registerCommands() {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "add",
			Description: "Monitor tetr.io users in this channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "users",
					Description: "tetr.io usernames or ids, space separated",
					Required:    true,
				},
			},
		},
		{
			Name:        "remove",
			Description: "Remove a tetr.io user from the monitor list",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "username",
					Description: "tetr.io username",
					Required:    true,
				},
			},
		},
		{
			Name:        "list",
			Description: "List the tetr.io users monitored in this channel",
		},
		{
			Name:        "refresh",
			Description: "Re-fetch stats for every monitored user in this channel",
		},
		{
			Name:        "record",
			Description: "Show a tetr.io user's personal bests",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "user",
					Description: "tetr.io username or id",
					Required:    true,
				},
			},
		},
	}

	_, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, "", commands)
	if err != nil {
		b.Log.Error("failed to register commands", "error", err)
	}
}
