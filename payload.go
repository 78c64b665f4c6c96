package inlinemedia

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the preview payload variants.
type Kind string

// Preview payload variants.
const (
	KindVideo    Kind = "video"   // playable video with optional metadata card
	KindImage    Kind = "image"   // directly displayable image
	KindRichCard Kind = "rich"    // title/author/thumbnail/description card
	KindWebpage  Kind = "website" // generic webpage title/description/image
	KindFile     Kind = "file"    // header-derived file information
)

// Preview is the normalized payload produced by a handler strategy or the
// generic fetch pipeline. It is consumed exactly once by the renderer;
// fields irrelevant to the Kind are left empty.
type Preview struct {
	Kind        Kind   `json:"kind"`
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	ImageWidth  int    `json:"image_width,omitempty"`
	ImageHeight int    `json:"image_height,omitempty"`
	Video       string `json:"video,omitempty"` // direct video stream URL
	Loop        bool   `json:"loop,omitempty"`  // video should autoplay and loop
	HTML        string `json:"html,omitempty"`  // provider embed snippet, may be unsafe
	Duration    string `json:"duration,omitempty"`

	FileName     string `json:"file_name,omitempty"`
	FileKind     string `json:"file_kind,omitempty"`
	FileSize     string `json:"file_size,omitempty"`
	FileModified string `json:"file_modified,omitempty"`
}

// Empty reports whether the payload carries nothing worth rendering.
func (p *Preview) Empty() bool {
	return p == nil || (p.Title == "" && p.Description == "" && p.Image == "" &&
		p.Video == "" && p.HTML == "" && p.FileName == "")
}

// formatDuration renders a total-seconds value as H:MM:SS when at least an
// hour long, M:SS otherwise.
func formatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	if seconds >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

var errBadDuration = errors.New("malformed ISO 8601 duration")

// Calendar-approximate unit lengths used for ISO 8601 durations. Months and
// years have no exact length in seconds; these match the Julian calendar
// averages the original plugin used.
const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 86400
	secondsPerWeek   = 604800
	secondsPerMonth  = 2629800
	secondsPerYear   = 31557600
)

// parseISO8601Duration converts a PnYnMnDTnHnMnS (or PnW) duration string
// into total seconds. "M" means months before the T separator and minutes
// after it. Fractional values are accepted and the total is truncated.
func parseISO8601Duration(s string) (int, error) {
	if !strings.HasPrefix(s, "P") || len(s) < 3 {
		return 0, errBadDuration
	}
	var total float64
	timeSegment := false
	rest := s[1:]
	for len(rest) > 0 {
		if rest[0] == 'T' {
			if timeSegment {
				return 0, errBadDuration
			}
			timeSegment = true
			rest = rest[1:]
			continue
		}
		i := 0
		for i < len(rest) && (rest[i] == '.' || (rest[i] >= '0' && rest[i] <= '9')) {
			i++
		}
		if i == 0 || i == len(rest) {
			return 0, errBadDuration
		}
		value, err := strconv.ParseFloat(rest[:i], 64)
		if err != nil {
			return 0, errBadDuration
		}
		switch rest[i] {
		case 'Y':
			total += value * secondsPerYear
		case 'M':
			if timeSegment {
				total += value * secondsPerMinute
			} else {
				total += value * secondsPerMonth
			}
		case 'W':
			total += value * secondsPerWeek
		case 'D':
			total += value * secondsPerDay
		case 'H':
			if !timeSegment {
				return 0, errBadDuration
			}
			total += value * secondsPerHour
		case 'S':
			if !timeSegment {
				return 0, errBadDuration
			}
			total += value
		default:
			return 0, errBadDuration
		}
		rest = rest[i+1:]
	}
	return int(total), nil
}

// firstLine truncates multi-paragraph API descriptions to their first line.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
