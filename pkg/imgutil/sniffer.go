package imgutil

import "errors"

// Kind identifies a container type recognised from its leading bytes.
type Kind int

const (
	KindUnknown Kind = iota
	KindJPEG
	KindPNG
	KindTIFF
	KindORF
	KindRW2
)

func (k Kind) String() string {
	switch k {
	case KindJPEG:
		return "jpeg"
	case KindPNG:
		return "png"
	case KindTIFF:
		return "tiff"
	case KindORF:
		return "orf"
	case KindRW2:
		return "rw2"
	default:
		return "unknown"
	}
}

// TIFFBased reports whether the container uses a TIFF-style IFD layout.
// NEF, NRW, CR2, ARW, DNG and PEF files all sniff as KindTIFF.
func (k Kind) TIFFBased() bool {
	return k == KindTIFF || k == KindORF || k == KindRW2
}

// HeaderSize is the number of bytes DetectHeader needs.
const HeaderSize = 8

var (
	pngSig    = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	jpegSig   = []byte{0xff, 0xd8, 0xff}
	tiffSigLE = []byte{0x49, 0x49, 0x2a, 0x00}
	tiffSigBE = []byte{0x4d, 0x4d, 0x00, 0x2a}
	orfSigLE  = []byte{0x49, 0x49, 0x52, 0x4f}
	orfSigAlt = []byte{0x49, 0x49, 0x52, 0x53}
	rw2Sig    = []byte{0x49, 0x49, 0x55, 0x00}
)

var errShortHeader = errors.New("header too short")

// DetectHeader inspects the first HeaderSize bytes of a file for known signatures.
func DetectHeader(header []byte) (Kind, error) {
	if len(header) < HeaderSize {
		return KindUnknown, errShortHeader
	}

	switch {
	case hasPrefix(header, jpegSig):
		return KindJPEG, nil
	case hasPrefix(header, pngSig):
		return KindPNG, nil
	case hasPrefix(header, tiffSigLE), hasPrefix(header, tiffSigBE):
		return KindTIFF, nil
	case hasPrefix(header, orfSigLE), hasPrefix(header, orfSigAlt):
		return KindORF, nil
	case hasPrefix(header, rw2Sig):
		return KindRW2, nil
	}

	return KindUnknown, nil
}

// JPEGStarts returns the offsets of every JPEG start-of-image marker
// sequence in data, up to limit entries. limit <= 0 means no limit.
func JPEGStarts(data []byte, limit int) []int {
	var starts []int
	for i := 0; i+len(jpegSig) <= len(data); i++ {
		if data[i] != 0xff {
			continue
		}
		if !hasPrefix(data[i:], jpegSig) {
			continue
		}
		starts = append(starts, i)
		if limit > 0 && len(starts) >= limit {
			break
		}
	}
	return starts
}

func hasPrefix(buf, prefix []byte) bool {
	if len(buf) < len(prefix) {
		return false
	}
	for i := range prefix {
		if buf[i] != prefix[i] {
			return false
		}
	}
	return true
}
