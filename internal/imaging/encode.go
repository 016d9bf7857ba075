package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// PreviewQuality is the JPEG quality used for preview thumbnails.
const PreviewQuality = 75

// EncodeOptions controls how a full-size output is written.
type EncodeOptions struct {
	Quality int
	Resize  bool
	Width   int
	Height  int
}

// Thumbnail scales img down to fit within maxWidth x maxHeight, keeping its
// aspect ratio, and returns it JPEG-encoded. Images already inside the box
// are encoded unscaled.
func Thumbnail(img image.Image, maxWidth, maxHeight int) ([]byte, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, fmt.Errorf("%w: invalid preview size %dx%d", ErrEncode, maxWidth, maxHeight)
	}

	b := img.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), maxWidth, maxHeight)
	if w != b.Dx() || h != b.Dy() {
		img = scale(img, w, h)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: PreviewQuality}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// FitWithin returns the largest size with the aspect ratio of w x h that
// fits inside maxW x maxH. Sizes already inside the box are returned as is.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	if w*maxH > h*maxW {
		nh := h * maxW / w
		if nh < 1 {
			nh = 1
		}
		return maxW, nh
	}
	nw := w * maxH / h
	if nw < 1 {
		nw = 1
	}
	return nw, maxH
}

// EncodeFile encodes img as JPEG at dst. The image is first written to a
// temporary file in the destination directory and then renamed into place,
// so a failed run never leaves a truncated output behind.
func EncodeFile(img image.Image, dst string, opts EncodeOptions) error {
	if opts.Resize {
		if opts.Width <= 0 || opts.Height <= 0 {
			return fmt.Errorf("%w: invalid resize target %dx%d", ErrEncode, opts.Width, opts.Height)
		}
		img = scale(img, opts.Width, opts.Height)
	}

	destDir := filepath.Dir(dst)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	tmpFile, err := os.CreateTemp(destDir, "nefconv-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	defer os.Remove(tmpFile.Name())

	if err := jpeg.Encode(tmpFile, img, &jpeg.Options{Quality: opts.Quality}); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Chmod(tmpFile.Name(), 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := replaceFile(tmpFile.Name(), dst); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

func scale(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}
