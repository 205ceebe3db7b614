package infrastructure

import (
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/sawakoto/canora/internal/modules/music_player/domain"
)

// FilterNames lists the supported filter presets in display order.
var FilterNames = []string{
	"nightcore",
	"vaporwave",
	"tremolo",
	"vibrato",
	"8d",
	"karaoke",
	"lowpass",
}

// IsKnownFilter reports whether name is a supported preset.
func IsKnownFilter(name string) bool {
	for _, known := range FilterNames {
		if known == name {
			return true
		}
	}
	return false
}

// buildFilters maps the queue's named filter chain onto a Lavalink filter
// configuration. Unknown names are skipped; an empty chain clears every
// filter.
func buildFilters(list domain.FilterList) lavalink.Filters {
	var filters lavalink.Filters
	for _, f := range list {
		switch f.Name {
		case "nightcore":
			filters.Timescale = &lavalink.Timescale{
				Speed: 1.2,
				Pitch: 1.2,
				Rate:  1,
			}
		case "vaporwave":
			filters.Timescale = &lavalink.Timescale{
				Speed: 0.85,
				Pitch: 0.9,
				Rate:  1,
			}
		case "tremolo":
			filters.Tremolo = &lavalink.Tremolo{
				Frequency: 4,
				Depth:     0.75,
			}
		case "vibrato":
			filters.Vibrato = &lavalink.Vibrato{
				Frequency: 4,
				Depth:     0.75,
			}
		case "8d":
			filters.Rotation = &lavalink.Rotation{
				RotationHz: 0.2,
			}
		case "karaoke":
			filters.Karaoke = &lavalink.Karaoke{
				Level:       1,
				MonoLevel:   1,
				FilterBand:  220,
				FilterWidth: 100,
			}
		case "lowpass":
			filters.LowPass = &lavalink.LowPass{
				Smoothing: 20,
			}
		}
	}
	return filters
}
