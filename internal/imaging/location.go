package imaging

import (
	"strconv"
	"strings"
)

// Location is a decimal-degree GPS position recorded by the camera.
type Location struct {
	Latitude  float64
	Longitude float64
}

// gpsTags collects the raw GPS values seen while walking EXIF tags.
type gpsTags struct {
	lat, latRef string
	lon, lonRef string
}

func (g gpsTags) location() (*Location, bool) {
	if g.lat == "" || g.lon == "" {
		return nil, false
	}
	lat, ok := parseDegrees(g.lat)
	if !ok {
		return nil, false
	}
	lon, ok := parseDegrees(g.lon)
	if !ok {
		return nil, false
	}
	if strings.HasPrefix(strings.ToUpper(g.latRef), "S") {
		lat = -lat
	}
	if strings.HasPrefix(strings.ToUpper(g.lonRef), "W") {
		lon = -lon
	}
	return &Location{Latitude: lat, Longitude: lon}, true
}

// parseDegrees reads a formatted EXIF coordinate such as
// "[35/1 40/1 2910/100]" (degrees, minutes, seconds) or a plain decimal.
func parseDegrees(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ' ' || r == ',' })
	if len(parts) == 0 {
		return 0, false
	}

	var deg float64
	scale := 1.0
	for i, part := range parts {
		if i == 3 {
			break
		}
		v, ok := parseRational(part)
		if !ok {
			return 0, false
		}
		deg += v / scale
		scale *= 60
	}
	return deg, true
}

func parseRational(part string) (float64, bool) {
	num, den, isFrac := strings.Cut(strings.TrimSpace(part), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	if !isFrac {
		return n, true
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, false
	}
	return n / d, true
}
