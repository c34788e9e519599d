package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/icgdb/icgdb-server/internal/id"
)

var (
	// ErrTooLarge is returned for uploads over the configured limit.
	ErrTooLarge = errors.New("picture is too large")
	// ErrUnsupportedType is returned for extensions or contents that are not an allowed image.
	ErrUnsupportedType = errors.New("picture type not allowed")
)

// allowedFormats maps upload extensions to the decoder name image.DecodeConfig reports.
var allowedFormats = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".gif":  "gif",
}

// AllowedExtensions lists accepted upload extensions, for messages.
const AllowedExtensions = "png, jpg, jpeg, gif"

// Upload is a validated picture ready to store.
type Upload struct {
	Ext    string // lower case, with dot
	Data   []byte
	Width  int
	Height int
}

// Check validates an uploaded file. The extension must be allowed and the
// bytes must decode as that format.
func Check(fileName string, data []byte, maxBytes int64) (*Upload, error) {
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), maxBytes)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	want, ok := allowedFormats[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}
	if format != want {
		return nil, fmt.Errorf("%w: %s content in a %s file", ErrUnsupportedType, format, ext)
	}

	return &Upload{Ext: ext, Data: data, Width: cfg.Width, Height: cfg.Height}, nil
}

// FileName returns a new stored name for a record's picture. Every upload
// gets its own file, so the current picture is untouched until the record
// points at the new one.
func FileName(recordID, ext string) (string, error) {
	name, err := id.Generate(recordID)
	if err != nil {
		return "", fmt.Errorf("picture name: %w", err)
	}
	return name + ext, nil
}
