package processor

import "fmt"

// Event is one notification published during a run. The set of
// implementations is closed: Status, Progress and Preview.
type Event interface {
	isEvent()
}

// Status is a line of log text for the user.
type Status struct {
	Message string
}

// Progress reports how many items have completed out of Total.
type Progress struct {
	Completed int
	Total     int
}

// Preview carries a JPEG thumbnail of a file being converted.
type Preview struct {
	Name  string
	Image []byte
}

func (Status) isEvent()   {}
func (Progress) isEvent() {}
func (Preview) isEvent()  {}

func (s Status) String() string { return s.Message }

func (p Progress) String() string {
	return fmt.Sprintf("%d/%d converted...", p.Completed, p.Total)
}

func (p Preview) String() string {
	return fmt.Sprintf("preview %s (%d bytes)", p.Name, len(p.Image))
}

// Fixed status messages.
const (
	MsgAborted  = "Aborted by user."
	MsgComplete = "Conversion complete."
)

func foundMessage(total int, label string, workers int) string {
	return fmt.Sprintf("Found %d %s files. Using %d threads.", total, label, workers)
}

func previewErrorMessage(name string, err error) string {
	return fmt.Sprintf("Error generating preview for %s: %v", name, err)
}

func processErrorMessage(name string, err error) string {
	return fmt.Sprintf("Error processing %s: %v", name, err)
}

// Sink receives published events. Implementations must accept concurrent
// calls and must not block on the consumer.
type Sink interface {
	Publish(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Publish(e Event) { f(e) }
