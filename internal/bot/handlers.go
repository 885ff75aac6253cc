package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/vieri-corp/vieribot/internal/database"
	"github.com/vieri-corp/vieribot/internal/embed"
)

// commandTimeout bounds one slash-command invocation end to end, fetch
// fan-out included.
const commandTimeout = 2 * time.Minute

func (b *Bot) interactionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "add":
		b.handleAddCommand(s, i)
	case "remove":
		b.handleRemoveCommand(s, i)
	case "list":
		b.handleListCommand(s, i)
	case "refresh":
		b.handleRefreshCommand(s, i)
	case "record":
		b.handleRecordCommand(s, i)
	}
}

func (b *Bot) handleAddCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	identities := strings.Fields(i.ApplicationCommandData().Options[0].StringValue())
	if len(identities) == 0 {
		b.respondEmbed(s, i, embed.Error("Nothing to add", "Provide at least one username or id."))
		return
	}

	if !b.deferResponse(s, i) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	summary := b.Service.BulkAdd(ctx, i.ChannelID, identities)
	b.editResponseEmbed(s, i, embed.AddSummary(summary))
}

func (b *Bot) handleRemoveCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	username := i.ApplicationCommandData().Options[0].StringValue()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	m, err := b.Service.Remove(ctx, i.ChannelID, username)
	if errors.Is(err, database.ErrNotFound) {
		b.respondEmbed(s, i, embed.Error("Not monitored", fmt.Sprintf("%s is not on this channel's list.", username)))
		return
	}
	if err != nil {
		b.Log.Error("remove failed", "channel", i.ChannelID, "username", username, "error", err)
		b.respondEmbed(s, i, embed.Error("Remove failed", err.Error()))
		return
	}
	b.respondEmbed(s, i, embed.Removed(m))
}

func (b *Bot) handleListCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	monitors, err := b.Service.List(ctx, i.ChannelID)
	if err != nil {
		b.Log.Error("list failed", "channel", i.ChannelID, "error", err)
		b.respondEmbed(s, i, embed.Error("List failed", err.Error()))
		return
	}
	if len(monitors) == 0 {
		b.respondText(s, i, "No monitored users")
		return
	}
	b.respondEmbed(s, i, embed.MonitorList(monitors))
}

func (b *Bot) handleRefreshCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.deferResponse(s, i) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	summary, err := b.Service.RefreshAll(ctx, i.ChannelID)
	if err != nil {
		b.Log.Error("refresh failed", "channel", i.ChannelID, "error", err)
		b.editResponseEmbed(s, i, embed.Error("Refresh failed", err.Error()))
		return
	}
	b.editResponseEmbed(s, i, embed.RefreshSummary(summary))
}

func (b *Bot) handleRecordCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := i.ApplicationCommandData().Options[0].StringValue()

	if !b.deferResponse(s, i) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	resolved, records, err := b.Service.Record(ctx, user)
	if err != nil {
		b.editResponseEmbed(s, i, embed.Error("Record lookup failed", err.Error()))
		return
	}
	b.editResponseEmbed(s, i, embed.PlayerCard(resolved, records))
}

// deferResponse acknowledges the interaction so the slow fan-out can finish
// before the reply is edited in.
func (b *Bot) deferResponse(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		b.Log.Error("failed to defer interaction", "error", err)
		return false
	}
	return true
}

func (b *Bot) editResponseEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, e *discordgo.MessageEmbed) {
	embeds := []*discordgo.MessageEmbed{e}
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Embeds: &embeds})
	if err != nil {
		b.Log.Error("failed to edit interaction response", "error", err)
	}
}

func (b *Bot) respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, e *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{e},
		},
	})
	if err != nil {
		b.Log.Error("failed to respond to interaction", "error", err)
	}
}

func (b *Bot) respondText(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
	if err != nil {
		b.Log.Error("failed to respond to interaction", "error", err)
	}
}
