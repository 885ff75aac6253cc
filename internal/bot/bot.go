package bot

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/vieri-corp/vieribot/internal/config"
	"github.com/vieri-corp/vieribot/internal/logger"
	"github.com/vieri-corp/vieribot/internal/monitor"
)

type Bot struct {
	Session *discordgo.Session
	Service *monitor.Service
	Log     *logger.Logger

	refreshInterval time.Duration
	stop            chan struct{}
	done            chan struct{}
}

func New(service *monitor.Service, log *logger.Logger) (*Bot, error) {
	discord, err := discordgo.New("Bot " + config.DiscordToken)
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		Session:         discord,
		Service:         service,
		Log:             log,
		refreshInterval: config.RefreshInterval,
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
	}

	bot.registerHandlers()

	return bot, nil
}

func (b *Bot) Start() error {
	err := b.Session.Open()
	if err != nil {
		return err
	}

	go b.refreshLoop()

	return nil
}

func (b *Bot) Stop() {
	close(b.stop)
	<-b.done
	b.Session.Close()
}

func (b *Bot) registerHandlers() {
	b.Session.AddHandler(b.ready)
	b.Session.AddHandler(b.interactionCreate)
}

func (b *Bot) ready(s *discordgo.Session, event *discordgo.Ready) {
	b.Log.Info("bot is ready", "user", event.User.Username, "guilds", len(event.Guilds))
	b.registerCommands()
}

// refreshLoop periodically reconciles every channel's roster against
// tetr.io.
func (b *Bot) refreshLoop() {
	defer close(b.done)

	ticker := time.NewTicker(b.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			b.refreshAllChannels()
		}
	}
}

func (b *Bot) refreshAllChannels() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	channels, err := b.Service.Channels(ctx)
	if err != nil {
		b.Log.Error("failed to list channels for background refresh", "error", err)
		return
	}

	for _, channelID := range channels {
		if _, err := b.Service.RefreshAll(ctx, channelID); err != nil {
			b.Log.Error("background refresh failed", "channel", channelID, "error", err)
		}
	}
}
