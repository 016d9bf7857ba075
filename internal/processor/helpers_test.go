package processor

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"nefconv/internal/config"
	"nefconv/internal/imaging"
)

// fakeCodec records calls and fails on demand, keyed by file base name.
type fakeCodec struct {
	mu          sync.Mutex
	decodeErr   map[string]error
	thumbErr    map[string]error
	encodeErr   map[string]error
	decodePanic map[string]bool
	decodes     map[string]int
	encoded     map[string]int
}

func newFakeCodec() *fakeCodec {
	return &fakeCodec{
		decodeErr:   map[string]error{},
		thumbErr:    map[string]error{},
		encodeErr:   map[string]error{},
		decodePanic: map[string]bool{},
		decodes:     map[string]int{},
		encoded:     map[string]int{},
	}
}

type namedImage struct {
	*image.RGBA
	name string
}

func (f *fakeCodec) Decode(path string) (image.Image, error) {
	name := filepath.Base(path)
	f.mu.Lock()
	f.decodes[name]++
	err := f.decodeErr[name]
	panics := f.decodePanic[name]
	f.mu.Unlock()

	if panics {
		panic("corrupt sensor data")
	}
	if err != nil {
		return nil, err
	}
	return namedImage{RGBA: image.NewRGBA(image.Rect(0, 0, 4, 4)), name: name}, nil
}

func (f *fakeCodec) Thumbnail(img image.Image, maxWidth, maxHeight int) ([]byte, error) {
	name := img.(namedImage).name
	f.mu.Lock()
	err := f.thumbErr[name]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return []byte("thumb:" + name), nil
}

func (f *fakeCodec) Encode(img image.Image, dst string, opts imaging.EncodeOptions) error {
	name := img.(namedImage).name
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.encodeErr[name]; err != nil {
		return err
	}
	f.encoded[name]++
	return nil
}

func (f *fakeCodec) decodeCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.decodes[name]
}

func (f *fakeCodec) encodeCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.encoded[name]
}

func (f *fakeCodec) totalDecodes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.decodes {
		n += c
	}
	return n
}

// recorder is a synchronous Sink. onEvent runs on the publishing goroutine.
type recorder struct {
	mu      sync.Mutex
	events  []Event
	onEvent func(Event)
}

func (r *recorder) Publish(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	hook := r.onEvent
	r.mu.Unlock()
	if hook != nil {
		hook(e)
	}
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func progressEvents(events []Event) []Progress {
	var out []Progress
	for _, e := range events {
		if p, ok := e.(Progress); ok {
			out = append(out, p)
		}
	}
	return out
}

func statusMessages(events []Event) []string {
	var out []string
	for _, e := range events {
		if s, ok := e.(Status); ok {
			out = append(out, s.Message)
		}
	}
	return out
}

func countPreviews(events []Event) int {
	n := 0
	for _, e := range events {
		if _, ok := e.(Preview); ok {
			n++
		}
	}
	return n
}

func countMessage(events []Event, msg string) int {
	n := 0
	for _, m := range statusMessages(events) {
		if m == msg {
			n++
		}
	}
	return n
}

func indexOfMessage(events []Event, msg string) int {
	for i, e := range events {
		if s, ok := e.(Status); ok && s.Message == msg {
			return i
		}
	}
	return -1
}

func testConfig(t *testing.T, workers int) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.InputDir = t.TempDir()
	cfg.OutputDir = t.TempDir()
	cfg.Workers = workers
	return cfg
}

func namedItems(names ...string) []WorkItem {
	return Items(names)
}

func numberedItems(n int) []WorkItem {
	names := make([]string, n)
	for i := range names {
		names[i] = "DSC_" + string(rune('A'+i)) + ".NEF"
	}
	return Items(names)
}

var errCorrupt = errors.New("corrupt file")

// writeFakeNEF writes a TIFF-headed file with an embedded JPEG rendering.
func writeFakeNEF(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x40, A: 0xff})
		}
	}
	var rendering bytes.Buffer
	if err := jpeg.Encode(&rendering, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	var buf bytes.Buffer
	buf.Write([]byte{'I', 'I', 0x2a, 0x00, 0x08, 0x00, 0x00, 0x00})
	buf.Write(bytes.Repeat([]byte{0x00}, 24))
	buf.Write(rendering.Bytes())
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}
