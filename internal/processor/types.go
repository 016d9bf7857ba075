package processor

import (
	"image"
	"time"

	"github.com/charmbracelet/log"

	"nefconv/internal/imaging"
)

// WorkItem names one source file, resolved against the input directory when
// a worker picks it up.
type WorkItem struct {
	Name string
}

// Completion is returned for every item a worker picked up, whether or not
// either phase succeeded.
type Completion struct {
	Item       WorkItem
	Skipped    bool // cancelled before any work started
	PreviewErr error
	ConvertErr error
}

// Failed reports whether either phase failed.
func (c Completion) Failed() bool {
	return c.PreviewErr != nil || c.ConvertErr != nil
}

// Codec decodes source files and encodes previews and outputs.
// imaging.Codec is the production implementation.
type Codec interface {
	Decode(path string) (image.Image, error)
	Thumbnail(img image.Image, maxWidth, maxHeight int) ([]byte, error)
	Encode(img image.Image, dst string, opts imaging.EncodeOptions) error
}

// Options carries the collaborators of a Scheduler. Zero values select the
// production codec and a discarding logger.
type Options struct {
	Codec  Codec
	Logger *log.Logger
}

// Summary describes a finished run. The event stream remains the record the
// front end renders; Summary feeds the closing table of the CLI.
type Summary struct {
	RunID     string
	Total     int
	Completed int // completions reported as progress
	Converted int // outputs written
	Failed    int // items with at least one failed phase
	Skipped   int // items skipped because of cancellation
	Aborted   bool
	Elapsed   time.Duration
}

// State is the lifecycle position of a Scheduler.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateDraining
	StateCompleting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateCompleting:
		return "completing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}
