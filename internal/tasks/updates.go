package tasks

import (
	"fmt"
	"strings"
)

// ProgressUpdate represents a progress event while a dashboard is assembled.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number
	Total   int    // Total steps
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchProfile Phase = iota
	FetchPlayback
	FetchNews
	RecordPlay
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchProfile:
		return "fetch_profile"
	case FetchPlayback:
		return "fetch_playback"
	case FetchNews:
		return "fetch_news"
	case RecordPlay:
		return "record_play"
	case Done:
		return "done"
	default:
		return ""
	}
}

const dashboardSteps = 4

func fetchProfileUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: FetchProfile, Step: 1, Total: dashboardSteps, Message: "Fetching Spotify profile..."}
}

func fetchPlaybackUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: FetchPlayback, Step: 2, Total: dashboardSteps, Message: "Fetching current playback..."}
}

func fetchNewsUpdate(artists []string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchNews,
		Step:    3,
		Total:   dashboardSteps,
		Message: fmt.Sprintf("Searching news for %s...", strings.Join(artists, ", ")),
		Data:    artists,
	}
}

func recordPlayUpdate(track string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordPlay,
		Step:    4,
		Total:   dashboardSteps,
		Message: fmt.Sprintf("Recording play of %s...", track),
	}
}

func doneUpdate(d *Dashboard) ProgressUpdate {
	msg := "Nothing is playing"
	if d.Playing() {
		msg = fmt.Sprintf("Found %d news items", len(d.News))
	}
	return ProgressUpdate{Phase: Done, Step: dashboardSteps, Total: dashboardSteps, Message: msg, Data: d}
}
