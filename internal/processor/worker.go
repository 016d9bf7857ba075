package processor

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"nefconv/internal/config"
	"nefconv/internal/imaging"
	"nefconv/internal/logging"
)

// OutputExt is the extension given to converted files.
const OutputExt = ".jpg"

// Processor runs the two-phase pipeline for single work items: a preview
// thumbnail first, then the full conversion. The phases fail independently.
type Processor struct {
	cfg   config.Config
	codec Codec
	sink  Sink
	log   *log.Logger
}

// NewProcessor returns a Processor publishing to sink. cfg is assumed valid.
func NewProcessor(cfg config.Config, codec Codec, sink Sink, logger *log.Logger) *Processor {
	if codec == nil {
		codec = imaging.Codec{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Processor{cfg: cfg.Clone(), codec: codec, sink: sink, log: logger}
}

// Process handles one item. It never returns an error: failures are
// published as Status events and recorded on the Completion.
func (p *Processor) Process(item WorkItem, token *Token) Completion {
	done := Completion{Item: item}
	if token.IsSet() {
		done.Skipped = true
		return done
	}

	src := filepath.Join(p.cfg.InputDir, item.Name)
	logger := p.log.With("file", item.Name)

	start := time.Now()
	done.PreviewErr = guard(func() error { return p.preview(item, src) })
	if done.PreviewErr != nil {
		logger.Warn("preview failed", "err", done.PreviewErr)
		p.sink.Publish(Status{Message: previewErrorMessage(item.Name, done.PreviewErr)})
	} else {
		logger.Debug("preview ready", "elapsed", time.Since(start).Round(time.Millisecond))
	}

	start = time.Now()
	dst := OutputPath(p.cfg.OutputDir, item.Name)
	done.ConvertErr = guard(func() error { return p.convert(src, dst) })
	if done.ConvertErr != nil {
		logger.Error("conversion failed", "err", done.ConvertErr)
		p.sink.Publish(Status{Message: processErrorMessage(item.Name, done.ConvertErr)})
	} else {
		logger.Debug("converted", "out", dst, "elapsed", time.Since(start).Round(time.Millisecond))
	}

	return done
}

func (p *Processor) preview(item WorkItem, src string) error {
	img, err := p.codec.Decode(src)
	if err != nil {
		return err
	}
	blob, err := p.codec.Thumbnail(img, p.cfg.PreviewWidth, p.cfg.PreviewHeight)
	if err != nil {
		return err
	}
	p.sink.Publish(Preview{Name: item.Name, Image: blob})
	return nil
}

func (p *Processor) convert(src, dst string) error {
	img, err := p.codec.Decode(src)
	if err != nil {
		return err
	}
	return p.codec.Encode(img, dst, imaging.EncodeOptions{
		Quality: p.cfg.Quality,
		Resize:  p.cfg.Resize,
		Width:   p.cfg.Width,
		Height:  p.cfg.Height,
	})
}

// OutputPath maps a source file name to its converted path in outputDir.
func OutputPath(outputDir, name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return filepath.Join(outputDir, base+OutputExt)
}

// guard runs fn and turns a panic into an error so one bad file cannot take
// down the batch.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
