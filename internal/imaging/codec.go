package imaging

import "image"

// Codec is the production decoder/encoder used by the batch engine.
type Codec struct{}

// Decode returns the pixel buffer of the raw file at path.
func (Codec) Decode(path string) (image.Image, error) {
	return DecodeRaw(path)
}

// Thumbnail returns a JPEG preview bounded by maxWidth x maxHeight.
func (Codec) Thumbnail(img image.Image, maxWidth, maxHeight int) ([]byte, error) {
	return Thumbnail(img, maxWidth, maxHeight)
}

// Encode writes img to dst according to opts.
func (Codec) Encode(img image.Image, dst string, opts EncodeOptions) error {
	return EncodeFile(img, dst, opts)
}
