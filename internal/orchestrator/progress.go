package orchestrator

import "fmt"

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event in a non-blocking fashion.
// If the channel is full, the event is silently dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressPending:
		return fmt.Sprintf("  ○ %s (pending)", event.Persona)
	case ProgressWorking:
		return fmt.Sprintf("  ● %s thinking (%s)...", event.Persona, event.Style)
	case ProgressComplete:
		return fmt.Sprintf("  ✓ %s complete", event.Persona)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", event.Persona, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", event.Persona)
	}
}

// FormatQueryHeader formats the header printed before a comparison.
// Returns: "[{session}] Asking: {query}"
func FormatQueryHeader(session, query string) string {
	return fmt.Sprintf("[%s] Asking: %s", session, query)
}
