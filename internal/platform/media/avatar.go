package media

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"

	"github.com/disintegration/imaging"
)

// Avatar processing errors. All of them describe a bad upload.
var (
	ErrUnsupportedType = errors.New("unsupported avatar file type")
	ErrTooLarge        = errors.New("avatar file too large")
	ErrDecode          = errors.New("avatar image could not be decoded")
)

// DefaultMaxBytes is the largest accepted upload.
const DefaultMaxBytes = 1_000_000

// DefaultSize is the width and height of a processed avatar.
const DefaultSize = 250

var allowedFilename = regexp.MustCompile(`\.(jpg|jpeg|png)$`)

// AvatarProcessor decodes jpg and png uploads, fills them to a square of
// Size pixels and re-encodes them as PNG.
type AvatarProcessor struct {
	MaxBytes int64
	Size     int
}

// NewAvatarProcessor creates an AvatarProcessor. Non-positive arguments
// fall back to DefaultMaxBytes and DefaultSize.
func NewAvatarProcessor(maxBytes int64, size int) *AvatarProcessor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if size <= 0 {
		size = DefaultSize
	}
	return &AvatarProcessor{MaxBytes: maxBytes, Size: size}
}

// CheckUpload validates the upload's name and size without decoding it.
func (p *AvatarProcessor) CheckUpload(filename string, size int64) error {
	if !allowedFilename.MatchString(filename) {
		return ErrUnsupportedType
	}
	if size > p.MaxBytes {
		return ErrTooLarge
	}
	return nil
}

// Process validates an upload and returns the PNG-encoded avatar.
func (p *AvatarProcessor) Process(filename string, data []byte) ([]byte, error) {
	if err := p.CheckUpload(filename, int64(len(data))); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	resized := imaging.Fill(img, p.Size, p.Size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}

// IsUploadError reports whether err describes a bad upload rather than a
// processing failure.
func IsUploadError(err error) bool {
	return errors.Is(err, ErrUnsupportedType) ||
		errors.Is(err, ErrTooLarge) ||
		errors.Is(err, ErrDecode)
}
