package embed

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/vieri-corp/vieribot/api"
	"github.com/vieri-corp/vieribot/internal/models"
	"github.com/vieri-corp/vieribot/internal/monitor"
)

const (
	colorDefault = 0x03b2f8
	colorError   = 0xff0000
)

// PlayerCard builds the identity card for a resolved tetr.io user,
// optionally with its personal-best records appended.
func PlayerCard(user *api.User, records *api.UserRecords) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title: strings.TrimSpace(fmt.Sprintf("%s %s", user.Username, countryFlag(user.Country))),
		Color: colorDefault,
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: api.AvatarURL(user.ID),
		},
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Play time",
				Value:  formatDuration(time.Duration(user.GameTime) * time.Second),
				Inline: true,
			},
			{
				Name:   "Online games",
				Value:  fmt.Sprintf("%d", user.GamesPlayed),
				Inline: true,
			},
			{
				Name:   "Games won",
				Value:  fmt.Sprintf("%d", user.GamesWon),
				Inline: true,
			},
		},
	}

	if user.TS != nil {
		if joined, err := time.Parse(time.RFC3339, *user.TS); err == nil {
			e.Description = fmt.Sprintf("Joined %s ago", formatDuration(time.Since(joined)))
		}
	}

	if records != nil {
		if v := fortyLinesValue(records.Records.FortyLines); v != "" {
			e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "40 lines", Value: v, Inline: true})
		}
		if v := blitzValue(records.Records.Blitz); v != "" {
			e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Blitz", Value: v, Inline: true})
		}
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:   "Zen",
			Value:  fmt.Sprintf("level %d (%d)", records.Zen.Level, records.Zen.Score),
			Inline: true,
		})
	}

	return e
}

// AddSummary reports a bulk add back to the channel.
func AddSummary(s *monitor.AddSummary) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Monitored %d new users", s.Inserted),
		Color: colorDefault,
	}
	appendLatency(e, s.Elapsed)
	if len(s.Failed) > 0 {
		e.Color = colorError
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:   "Failed users",
			Value:  failedList(s.Failed),
			Inline: true,
		})
	}
	if s.Duplicate != 0 {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:   "Duplicate users",
			Value:  fmt.Sprintf("%d", s.Duplicate),
			Inline: true,
		})
	}
	return e
}

// RefreshSummary reports a refresh back to the channel.
func RefreshSummary(s *monitor.RefreshSummary) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{Color: colorDefault}
	if len(s.Failed) > 0 {
		e.Title = "Refresh finished with errors"
		e.Description = fmt.Sprintf("Refreshed %d/%d users.", s.Succeeded, s.Attempted)
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:   "Failed users",
			Value:  failedList(s.Failed),
			Inline: true,
		})
	} else {
		e.Title = "Refresh finished"
		e.Description = fmt.Sprintf("Refreshed %d users.", s.Succeeded)
	}
	appendLatency(e, s.Elapsed)
	return e
}

// Removed confirms a monitor deletion.
func Removed(m *models.Monitor) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s removed from the list", m.Username),
		Description: m.UserID,
		Color:       colorDefault,
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: api.AvatarURL(m.UserID),
		},
	}
}

// MonitorList renders the roster for the list command.
func MonitorList(monitors []models.Monitor) *discordgo.MessageEmbed {
	names := make([]string, len(monitors))
	for i, m := range monitors {
		names[i] = m.Username
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Monitored users (%d)", len(monitors)),
		Description: strings.Join(names, "\n"),
		Color:       colorDefault,
	}
}

// Error renders a red error embed.
func Error(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       colorError,
	}
}

func appendLatency(e *discordgo.MessageEmbed, d time.Duration) {
	e.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Time taken: %d.%dms", d.Milliseconds(), d.Nanoseconds()%1_000_000),
	}
}

func failedList(failed []monitor.FailedIdentity) string {
	names := make([]string, len(failed))
	for i, f := range failed {
		names[i] = f.Identity
	}
	return strings.Join(names, "\n")
}

func fortyLinesValue(rec api.ModeRecord) string {
	if rec.Record == nil {
		return ""
	}
	ms, ok := rec.Record.FinalTimeMillis()
	if !ok {
		return ""
	}
	return withRank(fmt.Sprintf("%.3fs", float64(ms)/1000), rec.Rank)
}

func blitzValue(rec api.ModeRecord) string {
	if rec.Record == nil {
		return ""
	}
	score, ok := rec.Record.Score()
	if !ok {
		return ""
	}
	return withRank(fmt.Sprintf("%d", score), rec.Rank)
}

func withRank(v string, rank *int) string {
	if rank != nil {
		return fmt.Sprintf("%s (#%d)", v, *rank)
	}
	return v
}

// countryFlag turns an ISO 3166-1 alpha-2 code into its regional indicator
// pair, or empty when the code is absent or malformed.
func countryFlag(code *string) string {
	if code == nil || len(*code) != 2 {
		return ""
	}
	flag := make([]rune, 0, 2)
	for _, c := range strings.ToUpper(*code) {
		if c < 'A' || c > 'Z' {
			return ""
		}
		flag = append(flag, 0x1F1E6+c-'A')
	}
	return string(flag)
}

// formatDuration renders a duration in its two most significant units, e.g.
// "3d 4h" or "12m 5s".
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	type unit struct {
		name string
		dur  time.Duration
	}
	units := []unit{
		{"y", 365 * 24 * time.Hour},
		{"d", 24 * time.Hour},
		{"h", time.Hour},
		{"m", time.Minute},
		{"s", time.Second},
	}
	parts := make([]string, 0, 2)
	for _, u := range units {
		if n := d / u.dur; n > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", n, u.name))
			d -= n * u.dur
		}
		if len(parts) == 2 {
			break
		}
	}
	if len(parts) == 0 {
		return "0s"
	}
	return strings.Join(parts, " ")
}
