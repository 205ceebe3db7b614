package presentation

import (
	"github.com/bwmarrin/discordgo"
	"github.com/sawakoto/canora/internal/modules/music_player/infrastructure"
)

// Commands returns all slash commands for the music player module.
func Commands() []*discordgo.ApplicationCommand {
	filterChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(infrastructure.FilterNames)+1)
	filterChoices = append(filterChoices, &discordgo.ApplicationCommandOptionChoice{
		Name:  "Off",
		Value: "off",
	})
	for _, name := range infrastructure.FilterNames {
		filterChoices = append(filterChoices, &discordgo.ApplicationCommandOptionChoice{
			Name:  name,
			Value: name,
		})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "join",
			Description: "Join your voice channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Voice channel to join (defaults to your current channel)",
					Required:    false,
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildVoice,
						discordgo.ChannelTypeGuildStageVoice,
					},
				},
			},
		},
		{
			Name:        "leave",
			Description: "Leave the voice channel",
		},
		{
			Name:        "play",
			Description: "Play a song from URL or search",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "URL or search term",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "position",
					Description: "Queue position to insert at (1 = next up)",
					Required:    false,
					MinValue:    floatPtr(1),
				},
			},
		},
		{
			Name:        "stop",
			Description: "Stop playback and clear the queue",
		},
		{
			Name:        "pause",
			Description: "Pause playback",
		},
		{
			Name:        "resume",
			Description: "Resume playback",
		},
		{
			Name:        "skip",
			Description: "Skip the current song",
		},
		{
			Name:        "previous",
			Description: "Play the previous song",
		},
		{
			Name:        "jump",
			Description: "Jump forward or backward in the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "offset",
					Description: "Songs to jump over (negative goes back into history)",
					Required:    true,
				},
			},
		},
		{
			Name:        "seek",
			Description: "Seek within the current song",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "seconds",
					Description: "Position to seek to, in seconds",
					Required:    true,
					MinValue:    floatPtr(0),
				},
			},
		},
		{
			Name:        "volume",
			Description: "Set the playback volume",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "percent",
					Description: "Volume percent (100 = normal)",
					Required:    true,
					MinValue:    floatPtr(1),
				},
			},
		},
		{
			Name:        "shuffle",
			Description: "Shuffle the upcoming songs",
		},
		{
			Name:        "loop",
			Description: "Set the repeat mode (or cycle through modes if no option provided)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "mode",
					Description: "Repeat mode to set (omit to cycle through modes)",
					Required:    false,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Off", Value: "off"},
						{Name: "Song", Value: "song"},
						{Name: "Queue", Value: "queue"},
					},
				},
			},
		},
		{
			Name:        "autoplay",
			Description: "Toggle autoplay of related songs",
		},
		{
			Name:        "filter",
			Description: "Apply an audio filter preset",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "preset",
					Description: "Filter preset to apply",
					Required:    true,
					Choices:     filterChoices,
				},
			},
		},
		{
			Name:        "queue",
			Description: "Show the current queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "page",
					Description: "Page number",
					Required:    false,
					MinValue:    floatPtr(1),
				},
			},
		},
		{
			Name:        "nowplaying",
			Description: "Show the currently playing song",
		},
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
