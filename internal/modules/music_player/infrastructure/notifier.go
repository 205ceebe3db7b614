package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sawakoto/canora/internal/modules/music_player/application/ports"
	"github.com/sawakoto/canora/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorRed     = 0xE74C3C
	colorYouTube = 0xFF0000
	colorDefault = 0x5865F2
)

// Notifier sends playback notifications to Discord channels.
type Notifier struct {
	session    *discordgo.Session
	httpClient *http.Client
}

// NewNotifier creates a new Notifier.
func NewNotifier(session *discordgo.Session) *Notifier {
	return &Notifier{
		session: session,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// SendNowPlaying sends a "Now Playing" embed to the channel and returns the message ID.
func (n *Notifier) SendNowPlaying(channelID snowflake.ID, song *domain.Song) (snowflake.ID, error) {
	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name: "Now Playing",
		},
		Title:     song.Title,
		URL:       song.URL,
		Color:     sourceColor(song.Source),
		Timestamp: song.EnqueuedAt.UTC().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Requested by %s", song.RequesterName),
		},
	}

	if song.Uploader != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Artist",
			Value:  song.Uploader,
			Inline: true,
		})
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Duration",
		Value:  song.FormattedDuration(),
		Inline: true,
	})

	if thumbnailURL := n.bestThumbnail(song); thumbnailURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{
			URL: thumbnailURL,
		}
	}

	msg, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	if err != nil {
		return 0, err
	}
	messageID, err := snowflake.Parse(msg.ID)
	if err != nil {
		return 0, err
	}
	return messageID, nil
}

// SendSongQueued sends an "Added to Queue" embed to the channel.
func (n *Notifier) SendSongQueued(channelID snowflake.ID, song *domain.Song, position int) error {
	description := fmt.Sprintf("Added **%s** to the queue.", song.Title)
	if position > 0 {
		description = fmt.Sprintf("Added **%s** to the queue at position %d.", song.Title, position)
	}

	embed := &discordgo.MessageEmbed{
		Description: description,
	}

	_, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	return err
}

// SendPlaylistQueued sends a playlist summary embed to the channel.
func (n *Notifier) SendPlaylistQueued(channelID snowflake.ID, playlist *domain.Playlist) error {
	name := playlist.Name
	if name == "" {
		name = "playlist"
	}

	embed := &discordgo.MessageEmbed{
		Description: fmt.Sprintf(
			"Added **%s** (%d songs) to the queue.",
			name,
			len(playlist.Songs),
		),
	}
	if playlist.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{
			URL: playlist.Thumbnail,
		}
	}

	_, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	return err
}

// SendInfo sends a plain informational embed to the channel.
func (n *Notifier) SendInfo(channelID snowflake.ID, message string) error {
	embed := &discordgo.MessageEmbed{
		Description: message,
	}

	_, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	return err
}

// SendError sends an error message embed to the channel.
func (n *Notifier) SendError(channelID snowflake.ID, message string) error {
	embed := &discordgo.MessageEmbed{
		Description: message,
		Color:       colorRed,
	}

	_, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	return err
}

// DeleteMessage deletes a message from the channel.
func (n *Notifier) DeleteMessage(channelID, messageID snowflake.ID) error {
	return n.session.ChannelMessageDelete(channelID.String(), messageID.String())
}

func sourceColor(source string) int {
	if source == "youtube" {
		return colorYouTube
	}
	return colorDefault
}

// bestThumbnail tries to find the best quality thumbnail for the song.
// For YouTube it probes the thumbnail CDN for higher resolutions before
// falling back to the resolved artwork URL.
func (n *Notifier) bestThumbnail(song *domain.Song) string {
	if song.Source != "youtube" || song.ID == "" {
		return song.Thumbnail
	}

	qualities := []string{"maxresdefault", "sddefault", "hqdefault", "mqdefault"}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, quality := range qualities {
		url := fmt.Sprintf("https://img.youtube.com/vi/%s/%s.jpg", song.ID, quality)
		if n.urlExists(ctx, url) {
			return url
		}
	}

	return song.Thumbnail
}

// urlExists checks if a URL returns a successful response using a HEAD request.
func (n *Notifier) urlExists(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}

// Ensure Notifier implements ports.NotificationSender.
var _ ports.NotificationSender = (*Notifier)(nil)
