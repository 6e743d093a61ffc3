package queue

import "fmt"

// LiveLabel is shown instead of a duration for unbounded streams.
const LiveLabel = "livestream"

// Song is a resolved, playable track. Values are never modified once queued.
type Song struct {
	Title string
	URL   string
	// Duration in seconds; 0 means a live or otherwise unbounded stream.
	Duration int
	// Stream is the opaque handle the driver opens (a direct media URL).
	Stream      string
	Source      string
	RequestedBy string
}

// IsLive reports whether the song has no known end.
func (s Song) IsLive() bool {
	return s.Duration == 0
}

// FormattedDuration returns FormatDuration(s.Duration).
func (s Song) FormattedDuration() string {
	return FormatDuration(s.Duration)
}

// FormatDuration renders seconds as MM:SS below one hour, HH:MM:SS from one
// hour on, and LiveLabel for zero.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return LiveLabel
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h == 0 {
		return fmt.Sprintf("%02d:%02d", m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func queuedText(s Song) string {
	return fmt.Sprintf("Queued **%s** (**%s**)", s.Title, s.FormattedDuration())
}

func nowPlayingText(s Song) string {
	return fmt.Sprintf("Playing **%s** (**%s**)", s.Title, s.FormattedDuration())
}

const allMembersLeftText = "Stopping music as all members have left the voice channel"
