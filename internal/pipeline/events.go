package pipeline

import "tubenotes/internal/models"

// EventKind tags the pipeline's progress messages.
type EventKind string

const (
	// EventVideosFetched carries the selectable catalog for the run.
	EventVideosFetched EventKind = "videos_fetched"
	// EventLog is a human-readable progress line.
	EventLog EventKind = "log"
	// EventError reports an absorbed failure; the run continues.
	EventError EventKind = "error"
	// EventDone is the final event of every run.
	EventDone EventKind = "done"
)

// Event is the tagged union flowing from the worker goroutine to the single
// consumer, in FIFO order. Videos is set only for EventVideosFetched;
// Message carries the text for the other kinds.
type Event struct {
	RunID   string
	Kind    EventKind
	Videos  []models.VideoDetail
	Message string
}
