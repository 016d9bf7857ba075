package imaging

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"nefconv/pkg/imgutil"
)

// Report summarises what a source file carries.
type Report struct {
	Path          string
	Kind          imgutil.Kind
	Make          string
	Model         string
	Timestamp     string
	Orientation   string
	Serial        string
	Location      *Location
	PreviewWidth  int
	PreviewHeight int

	// MetadataErr is set when EXIF parsing failed; the other fields are
	// still filled in from whatever could be read.
	MetadataErr error
}

// Inspect reads the EXIF tags and embedded previews of the file at path
// without decoding pixels.
func Inspect(path string) (Report, error) {
	report := Report{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return report, err
	}
	kind, err := imgutil.DetectHeader(data)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	report.Kind = kind

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(bytes.NewReader(data), nil, true)
	if err != nil && !errorsIsNoExif(err) {
		report.MetadataErr = err
	}
	var gps gpsTags
	for _, tag := range tags {
		value := strings.TrimSpace(strings.TrimRight(tag.Formatted, "\x00"))
		if value == "" {
			continue
		}
		switch tag.TagName {
		case "Make":
			setOnce(&report.Make, value)
		case "Model", "CameraModelName":
			setOnce(&report.Model, value)
		case "DateTimeOriginal", "DateTimeDigitized", "DateTime":
			setOnce(&report.Timestamp, value)
		case "Orientation":
			setOnce(&report.Orientation, value)
		case "BodySerialNumber", "SerialNumber", "CameraSerialNumber":
			setOnce(&report.Serial, value)
		case "GPSLatitude":
			gps.lat = value
		case "GPSLatitudeRef":
			gps.latRef = value
		case "GPSLongitude":
			gps.lon = value
		case "GPSLongitudeRef":
			gps.lonRef = value
		}
	}
	if loc, ok := gps.location(); ok {
		report.Location = loc
	}

	switch kind {
	case imgutil.KindJPEG, imgutil.KindPNG:
	default:
		if found := findEmbedded(data, previewHints(data)); len(found) > 0 {
			report.PreviewWidth = found[0].config.Width
			report.PreviewHeight = found[0].config.Height
		}
	}

	return report, nil
}

func setOnce(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}

func errorsIsNoExif(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}
