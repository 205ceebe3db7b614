package presentation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sawakoto/canora/internal/bot"
	"github.com/sawakoto/canora/internal/modules/music_player/application/ports"
	"github.com/sawakoto/canora/internal/modules/music_player/application/usecases"
	"github.com/sawakoto/canora/internal/modules/music_player/application/voice"
	"github.com/sawakoto/canora/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
)

// queuePageSize is the number of songs shown per /queue page.
const queuePageSize = 10

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	playback   *usecases.PlaybackService
	queue      *usecases.QueueService
	voices     *voice.Manager
	voiceState ports.VoiceStateProvider
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	playback *usecases.PlaybackService,
	queue *usecases.QueueService,
	voices *voice.Manager,
	voiceState ports.VoiceStateProvider,
) *CommandHandlers {
	return &CommandHandlers{
		playback:   playback,
		queue:      queue,
		voices:     voices,
		voiceState: voiceState,
	}
}

// HandleJoin handles the /join command.
func (h *CommandHandlers) HandleJoin(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return respondError(r, "Invalid user")
	}

	var channelID snowflake.ID
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "channel" {
			channelID, _ = snowflake.Parse(opt.ChannelValue(s).ID)
		}
	}
	if channelID == 0 {
		userChannel, err := h.voiceState.GetUserVoiceChannel(guildID, userID)
		if err != nil || userChannel == nil {
			return respondError(r, "You are not in a voice channel.")
		}
		channelID = *userChannel
	}

	if _, err := h.voices.Join(context.Background(), guildID, channelID); err != nil {
		return respondError(r, err.Error())
	}

	return respondSuccess(r, fmt.Sprintf("Connected to <#%d>.", channelID))
}

// HandleLeave handles the /leave command.
func (h *CommandHandlers) HandleLeave(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	if err := h.voices.Leave(context.Background(), guildID); err != nil {
		return respondError(r, err.Error())
	}

	return respondSuccess(r, "Disconnected.")
}

// HandlePlay handles the /play command.
func (h *CommandHandlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return respondError(r, "Invalid user")
	}

	textChannelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return respondError(r, "Invalid channel")
	}

	var query string
	var position int
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "query":
			query = opt.StringValue()
		case "position":
			position = int(opt.IntValue())
		}
	}

	output, err := h.playback.Play(context.Background(), usecases.PlayInput{
		GuildID:       guildID,
		UserID:        userID,
		UserName:      getDisplayName(i.Member),
		TextChannelID: textChannelID,
		Query:         query,
		Position:      position,
	})
	if err != nil {
		return respondError(r, err.Error())
	}

	switch {
	case output.Playlist != nil:
		return respondSuccess(r, fmt.Sprintf(
			"Added **%s** (%d songs) to the queue.",
			output.Playlist.Name,
			len(output.Playlist.Songs),
		))
	case output.Created:
		return respondSuccess(r, fmt.Sprintf("Playing %s.", songLink(output.Song)))
	default:
		return respondSuccess(r, fmt.Sprintf(
			"Added %s to the queue at position %d.",
			songLink(output.Song),
			output.Position,
		))
	}
}

// HandleStop handles the /stop command.
func (h *CommandHandlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	if err := h.playback.Stop(context.Background(), guildID); err != nil {
		return respondError(r, err.Error())
	}

	return respondSuccess(r, "Stopped playback.")
}

// HandlePause handles the /pause command.
func (h *CommandHandlers) HandlePause(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	if err := h.playback.Pause(context.Background(), guildID); err != nil {
		return respondError(r, err.Error())
	}

	return respondSuccess(r, "Paused playback.")
}

// HandleResume handles the /resume command.
func (h *CommandHandlers) HandleResume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	if err := h.playback.Resume(context.Background(), guildID); err != nil {
		return respondError(r, err.Error())
	}

	return respondSuccess(r, "Resumed playback.")
}

// HandleSkip handles the /skip command.
func (h *CommandHandlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	song, err := h.playback.Skip(context.Background(), guildID)
	if err != nil {
		return respondError(r, err.Error())
	}

	return respondSuccess(r, fmt.Sprintf("Skipped to %s.", songLink(song)))
}

// HandlePrevious handles the /previous command.
func (h *CommandHandlers) HandlePrevious(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	song, err := h.playback.Previous(context.Background(), guildID)
	if err != nil {
		return respondError(r, err.Error())
	}

	return respondSuccess(r, fmt.Sprintf("Playing %s again.", songLink(song)))
}

// HandleJump handles the /jump command.
func (h *CommandHandlers) HandleJump(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	var offset int
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "offset" {
			offset = int(opt.IntValue())
		}
	}

	song, err := h.playback.Jump(context.Background(), guildID, offset)
	if err != nil {
		return respondError(r, err.Error())
	}

	return respondSuccess(r, fmt.Sprintf("Jumped to %s.", songLink(song)))
}

// HandleSeek handles the /seek command.
func (h *CommandHandlers) HandleSeek(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	var seconds int64
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "seconds" {
			seconds = opt.IntValue()
		}
	}
	position := time.Duration(seconds) * time.Second

	if err := h.playback.Seek(context.Background(), guildID, position); err != nil {
		return respondError(r, err.Error())
	}

	return respondSuccess(r, fmt.Sprintf("Seeked to %s.", formatDuration(position)))
}

// HandleVolume handles the /volume command.
func (h *CommandHandlers) HandleVolume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	var percent int
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "percent" {
			percent = int(opt.IntValue())
		}
	}

	if err := h.queue.SetVolume(context.Background(), guildID, percent); err != nil {
		return respondError(r, err.Error())
	}

	return respondSuccess(r, fmt.Sprintf("Volume set to %d%%.", percent))
}

// HandleShuffle handles the /shuffle command.
func (h *CommandHandlers) HandleShuffle(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	if err := h.queue.Shuffle(context.Background(), guildID); err != nil {
		return respondError(r, err.Error())
	}

	return respondSuccess(r, "Shuffled the queue.")
}

// HandleLoop handles the /loop command.
func (h *CommandHandlers) HandleLoop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	var mode *domain.RepeatMode
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "mode" {
			parsed := domain.ParseRepeatMode(opt.StringValue())
			mode = &parsed
		}
	}

	newMode, err := h.queue.SetRepeatMode(context.Background(), guildID, mode)
	if err != nil {
		return respondError(r, err.Error())
	}

	var description string
	switch newMode {
	case domain.RepeatModeSong:
		description = "Now repeating the current song."
	case domain.RepeatModeQueue:
		description = "Now repeating the queue."
	default:
		description = "Repeat disabled."
	}
	return respondSuccess(r, description)
}

// HandleAutoplay handles the /autoplay command.
func (h *CommandHandlers) HandleAutoplay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	enabled, err := h.queue.ToggleAutoplay(context.Background(), guildID)
	if err != nil {
		return respondError(r, err.Error())
	}

	if enabled {
		return respondSuccess(r, "Autoplay enabled.")
	}
	return respondSuccess(r, "Autoplay disabled.")
}

// HandleFilter handles the /filter command.
func (h *CommandHandlers) HandleFilter(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	var preset string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "preset" {
			preset = opt.StringValue()
		}
	}

	var filters domain.FilterList
	if preset != "off" {
		filters = domain.FilterList{{Name: preset}}
	}

	if err := h.queue.SetFilters(context.Background(), guildID, filters); err != nil {
		return respondError(r, err.Error())
	}

	return respondSuccess(r, fmt.Sprintf("Filter: %s.", filters.String()))
}

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	page := 1
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "page" {
			page = int(opt.IntValue())
		}
	}

	snapshot, err := h.queue.Snapshot(guildID)
	if err != nil {
		return respondError(r, err.Error())
	}

	return respondQueueList(r, snapshot, page)
}

// HandleNowPlaying handles the /nowplaying command.
func (h *CommandHandlers) HandleNowPlaying(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	snapshot, err := h.queue.Snapshot(guildID)
	if err != nil {
		return respondError(r, err.Error())
	}
	if snapshot.Current == nil {
		return respondError(r, "Nothing is playing.")
	}

	return respondNowPlaying(r, snapshot)
}

// Response helpers.

func respondError(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Error",
					Description: message,
					Color:       colorError,
				},
			},
		},
	})
}

func respondSuccess(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: message,
					Color:       colorSuccess,
				},
			},
		},
	})
}

func respondQueueList(r bot.Responder, snapshot *usecases.QueueSnapshot, page int) error {
	title := "Queue"
	switch snapshot.RepeatMode {
	case domain.RepeatModeSong:
		title = "Queue \U0001F502"
	case domain.RepeatModeQueue:
		title = "Queue \U0001F501"
	}

	embed := &discordgo.MessageEmbed{
		Title: title,
	}

	totalPages := (len(snapshot.Upcoming) + queuePageSize - 1) / queuePageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	var sb strings.Builder
	if snapshot.Current != nil && page == 1 {
		sb.WriteString("### Now Playing\n")
		fmt.Fprintf(&sb, "%s - %s / %s\n",
			songLink(snapshot.Current),
			formatDuration(snapshot.Elapsed),
			snapshot.Current.FormattedDuration(),
		)
	}

	start := (page - 1) * queuePageSize
	end := start + queuePageSize
	if end > len(snapshot.Upcoming) {
		end = len(snapshot.Upcoming)
	}
	if start < end {
		sb.WriteString("### Up Next\n")
		for idx, song := range snapshot.Upcoming[start:end] {
			// Escape the period to prevent Discord list formatting.
			fmt.Fprintf(&sb, "%d\\. %s - %s\n",
				start+idx+1,
				songLink(song),
				song.FormattedDuration(),
			)
		}
	}
	if sb.Len() == 0 {
		sb.WriteString("Queue is empty.")
	}

	embed.Description = sb.String()
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf(
			"Page %d/%d | %d upcoming | Volume %d%% | Filter: %s",
			page,
			totalPages,
			len(snapshot.Upcoming),
			snapshot.Volume,
			snapshot.Filters.String(),
		),
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func respondNowPlaying(r bot.Responder, snapshot *usecases.QueueSnapshot) error {
	song := snapshot.Current

	embed := &discordgo.MessageEmbed{
		Title: song.Title,
		URL:   song.URL,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "Position",
				Value: fmt.Sprintf("%s / %s",
					formatDuration(snapshot.Elapsed),
					song.FormattedDuration(),
				),
				Inline: true,
			},
			{
				Name:   "Volume",
				Value:  fmt.Sprintf("%d%%", snapshot.Volume),
				Inline: true,
			},
			{
				Name:   "Repeat",
				Value:  snapshot.RepeatMode.String(),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Requested by %s", song.RequesterName),
		},
	}
	if song.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: song.Thumbnail}
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func songLink(song *domain.Song) string {
	if song == nil {
		return "unknown"
	}
	if song.URL != "" {
		return fmt.Sprintf("[%s](%s)", song.Title, song.URL)
	}
	return fmt.Sprintf("**%s**", song.Title)
}

func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	if total >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// getDisplayName returns the effective display name for a guild member.
// Priority: guild nickname > global display name > username.
func getDisplayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}
