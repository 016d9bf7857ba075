package processor

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"nefconv/internal/config"
	"nefconv/internal/imaging"
	"nefconv/internal/logging"
)

// ErrSchedulerDone is returned when Run is called on a Scheduler that has
// already run.
var ErrSchedulerDone = errors.New("scheduler already ran; create a new one for the next batch")

// Scheduler runs one batch across a fixed-size worker pool.
type Scheduler struct {
	cfg   config.Config
	codec Codec
	log   *log.Logger
	state atomic.Int32
}

// NewScheduler validates cfg and returns a Scheduler for a single run.
// The configuration is copied; later changes to cfg have no effect.
func NewScheduler(cfg config.Config, opts Options) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Scheduler{cfg: cfg.Clone(), codec: opts.Codec, log: opts.Logger}
	if s.codec == nil {
		s.codec = imaging.Codec{}
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	return s, nil
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Run converts items and publishes Status, Progress and Preview events to
// sink. Completions are reported in the order workers finish. Once token is
// set no new items are started, the next collected completion publishes
// "Aborted by user." and nothing further is reported; workers already
// running are waited for. "Conversion complete." is always the last event.
//
// The only error is ErrSchedulerDone.
func (s *Scheduler) Run(items []WorkItem, token *Token, sink Sink) (Summary, error) {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return Summary{}, ErrSchedulerDone
	}

	summary := Summary{RunID: uuid.NewString(), Total: len(items)}
	logger := s.log.With("run", summary.RunID)
	started := time.Now()

	total := len(items)
	sink.Publish(Status{Message: foundMessage(total, s.cfg.SourceLabel(), s.cfg.Workers)})
	logger.Info("batch started", "items", total, "workers", s.cfg.Workers, "in", s.cfg.InputDir, "out", s.cfg.OutputDir)

	proc := NewProcessor(s.cfg, s.codec, sink, logger)
	completions := make(chan Completion, total)

	go func() {
		defer close(completions)
		var g errgroup.Group
		g.SetLimit(s.cfg.Workers)
		for _, item := range items {
			if token.IsSet() {
				break
			}
			g.Go(func() error {
				completions <- proc.Process(item, token)
				return nil
			})
		}
		_ = g.Wait()
	}()

	seen := 0
	tally := func(c Completion) {
		seen++
		switch {
		case c.Skipped:
			summary.Skipped++
		case c.Failed():
			summary.Failed++
			if c.ConvertErr == nil {
				summary.Converted++
			}
		default:
			summary.Converted++
		}
	}

	completed := 0
	for c := range completions {
		tally(c)
		if token.IsSet() {
			summary.Aborted = true
			sink.Publish(Status{Message: MsgAborted})
			logger.Warn("aborted by user", "completed", completed, "total", total)
			break
		}
		completed++
		sink.Publish(Progress{Completed: completed, Total: total})
	}

	if summary.Aborted {
		s.state.Store(int32(StateDraining))
		for c := range completions {
			tally(c)
		}
	} else if token.IsSet() && completed < total {
		// Cancelled before the remaining items were handed out.
		summary.Aborted = true
		sink.Publish(Status{Message: MsgAborted})
		logger.Warn("aborted by user", "completed", completed, "total", total)
	}

	s.state.Store(int32(StateCompleting))
	summary.Completed = completed
	summary.Skipped += total - seen
	summary.Elapsed = time.Since(started)
	sink.Publish(Status{Message: MsgComplete})
	logger.Info("batch finished",
		"converted", summary.Converted,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"aborted", summary.Aborted,
		"elapsed", summary.Elapsed.Round(time.Millisecond),
	)

	s.state.Store(int32(StateDone))
	return summary, nil
}
