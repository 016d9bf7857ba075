// Package imaging decodes camera raw files into pixel buffers and encodes
// JPEG previews and outputs.
//
// Raw sensor data is not demosaiced. Every TIFF-based raw format carries a
// full-size or near full-size JPEG rendering of the shot, and that rendering
// is what gets decoded. Plain TIFF data is decoded directly when no embedded
// JPEG is present.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"sort"

	exif "github.com/dsoprea/go-exif/v3"
	"golang.org/x/image/tiff"

	"nefconv/pkg/imgutil"
)

// Error kinds wrapped around every failure returned by this package.
var (
	ErrDecode = errors.New("decode failed")
	ErrEncode = errors.New("encode failed")
	ErrWrite  = errors.New("write failed")
)

// ErrNoImage is returned when a raw container holds no decodable rendering.
var ErrNoImage = errors.New("no embedded image found")

const (
	tagJPEGOffset = 0x0201
	tagJPEGLength = 0x0202

	maxCandidates = 256
)

// DecodeRaw reads the file at path and returns its pixel buffer.
func DecodeRaw(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	img, err := decodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return img, nil
}

func decodeBytes(data []byte) (image.Image, error) {
	kind, err := imgutil.DetectHeader(data)
	if err != nil {
		return nil, err
	}

	switch kind {
	case imgutil.KindJPEG:
		return jpeg.Decode(bytes.NewReader(data))
	case imgutil.KindPNG:
		return png.Decode(bytes.NewReader(data))
	}

	img, embeddedErr := decodeEmbeddedJPEG(data, previewHints(data))
	if embeddedErr == nil {
		return img, nil
	}
	if kind == imgutil.KindTIFF {
		if img, err := tiff.Decode(bytes.NewReader(data)); err == nil {
			return img, nil
		}
	}
	if kind == imgutil.KindUnknown {
		return nil, fmt.Errorf("unrecognised file format: %w", embeddedErr)
	}
	return nil, fmt.Errorf("%s container: %w", kind, embeddedErr)
}

// previewHints returns offsets of JPEG streams advertised by the EXIF IFDs.
// Offsets in a TIFF-based container are relative to the header at the start
// of the file. Parse errors only mean there are no hints.
func previewHints(data []byte) []int {
	kind, err := imgutil.DetectHeader(data)
	if err != nil || !kind.TIFFBased() {
		return nil
	}

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(bytes.NewReader(data), nil, true)
	if err != nil {
		return nil
	}

	var hints []int
	var offset, length uint64
	var haveOffset bool
	flush := func() {
		if haveOffset && length > 0 && offset+length <= uint64(len(data)) {
			hints = append(hints, int(offset))
		}
		haveOffset = false
		length = 0
	}

	for _, tag := range tags {
		switch tag.TagId {
		case tagJPEGOffset:
			flush()
			if v, ok := firstUint(tag.Value); ok {
				offset, haveOffset = v, true
			}
		case tagJPEGLength:
			if v, ok := firstUint(tag.Value); ok {
				length = v
			}
		}
	}
	flush()
	return hints
}

func firstUint(value interface{}) (uint64, bool) {
	switch v := value.(type) {
	case []uint32:
		if len(v) > 0 {
			return uint64(v[0]), true
		}
	case []uint16:
		if len(v) > 0 {
			return uint64(v[0]), true
		}
	case uint32:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	}
	return 0, false
}

// decodeEmbeddedJPEG decodes the largest JPEG stream found at the hinted
// offsets or by scanning for start-of-image markers.
func decodeEmbeddedJPEG(data []byte, hints []int) (image.Image, error) {
	lastErr := ErrNoImage
	for _, e := range findEmbedded(data, hints) {
		img, err := jpeg.Decode(bytes.NewReader(data[e.offset:]))
		if err == nil {
			return img, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

type embeddedJPEG struct {
	offset int
	config image.Config
}

// findEmbedded lists the JPEG streams in data whose headers parse, largest
// first. Hinted offsets are considered before scanned ones.
func findEmbedded(data []byte, hints []int) []embeddedJPEG {
	seen := make(map[int]bool)
	var candidates []int
	for _, off := range append(hints, imgutil.JPEGStarts(data, maxCandidates)...) {
		if off < 0 || off >= len(data) || seen[off] {
			continue
		}
		seen[off] = true
		candidates = append(candidates, off)
	}

	var found []embeddedJPEG
	for _, off := range candidates {
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(data[off:]))
		if err != nil {
			continue
		}
		found = append(found, embeddedJPEG{offset: off, config: cfg})
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].config.Width*found[i].config.Height > found[j].config.Width*found[j].config.Height
	})
	return found
}
