// Package assets decodes map and avatar images from file paths or data URIs
// and caches the decoded results by source reference.
package assets

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var (
	ErrBadDataURI  = errors.New("malformed data URI")
	ErrUnsupported = errors.New("unsupported image format")
	ErrNotPNG      = errors.New("avatar must be a PNG image")
)

const dataPrefix = "data:"

// IsDataURI reports whether src is an embedded data URI rather than a path.
func IsDataURI(src string) bool {
	return strings.HasPrefix(src, dataPrefix)
}

// Read returns the raw bytes behind src, which is a data URI or a file path.
func Read(src string) ([]byte, error) {
	if IsDataURI(src) {
		return parseDataURI(src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", src, err)
	}
	return data, nil
}

// Decode reads and decodes the image behind src.
func Decode(src string) (image.Image, error) {
	data, err := Read(src)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes PNG, JPEG, GIF, WebP or BMP data.
func DecodeBytes(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupported
		}
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// DataURI embeds image bytes as a base64 data URI so a snapshot does not
// depend on files that may move.
func DataURI(data []byte) (string, error) {
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", ErrUnsupported
	}
	return dataPrefix + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// PNGDataURI embeds data only if it is a PNG image.
func PNGDataURI(data []byte) (string, error) {
	if http.DetectContentType(data) != "image/png" {
		return "", ErrNotPNG
	}
	return DataURI(data)
}

func parseDataURI(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, dataPrefix), ",")
	if !ok {
		return nil, ErrBadDataURI
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadDataURI, err)
		}
		return data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDataURI, err)
	}
	return []byte(data), nil
}
