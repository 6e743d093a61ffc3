package queue

import "errors"

var (
	ErrNotInVoiceChannel    = errors.New("not in a voice channel")
	ErrPermissionDenied     = errors.New("missing permission to join or speak in the voice channel")
	ErrResolution           = errors.New("no playable match for the query")
	ErrConnectTimeout       = errors.New("timed out waiting for the voice connection")
	ErrPlaybackStartTimeout = errors.New("timed out waiting for playback to start")
	ErrNoActiveQueue        = errors.New("no active queue")
	ErrWrongChannel         = errors.New("requester is not in the queue's voice channel")

	// ErrQueueClosed is returned when the queue was terminated while a
	// request for it was still pending.
	ErrQueueClosed = errors.New("queue closed")
)

// UserMessage maps an error returned by the Manager to the text shown in chat.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotInVoiceChannel):
		return "You need to be in a voice channel to do that!"
	case errors.Is(err, ErrPermissionDenied):
		return "I need the permissions to join and speak in your voice channel!"
	case errors.Is(err, ErrResolution):
		return "There was an error searching for that song"
	case errors.Is(err, ErrConnectTimeout):
		return "Could not connect to the voice channel in time"
	case errors.Is(err, ErrPlaybackStartTimeout):
		return "The song did not start playing in time"
	case errors.Is(err, ErrNoActiveQueue):
		return "There's no active queue"
	case errors.Is(err, ErrWrongChannel):
		return "You are not in the same channel"
	case errors.Is(err, ErrQueueClosed):
		return "Playback stopped before your request could be handled"
	default:
		return "Something went wrong, please try again"
	}
}
