package files

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	defaultName = "upload"
	defaultType = "image/jpeg"
	maxWidth    = 1600
)

// DecodeData accepts raw base64 or a data URL and returns the bytes.
func DecodeData(data string) ([]byte, error) {
	if i := strings.IndexByte(data, ','); i >= 0 {
		data = data[i+1:]
	}
	data = strings.TrimSpace(data)
	buf, err := base64.StdEncoding.DecodeString(data)
	if err == nil {
		return buf, nil
	}
	buf, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "="))
	if rawErr != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return buf, nil
}

func formatFor(contentType string) (imaging.Format, string) {
	switch strings.ToLower(contentType) {
	case "image/png":
		return imaging.PNG, "image/png"
	case "image/gif":
		return imaging.GIF, "image/gif"
	default:
		return imaging.JPEG, "image/jpeg"
	}
}

// Resize scales an encoded image to the given width keeping its aspect ratio.
// Images already narrower than width are returned unchanged.
func Resize(buf []byte, contentType string, width int) ([]byte, string, error) {
	img, err := imaging.Decode(bytes.NewReader(buf), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Dx() <= width {
		return buf, contentType, nil
	}

	resized := imaging.Resize(img, width, 0, imaging.Lanczos)
	format, outType := formatFor(contentType)

	var out bytes.Buffer
	if err := imaging.Encode(&out, resized, format, imaging.JPEGQuality(85)); err != nil {
		return nil, "", fmt.Errorf("encode image: %w", err)
	}
	return out.Bytes(), outType, nil
}
