package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodedImage(t *testing.T, width, height int, format imaging.Format) []byte {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 200, G: 40, B: 90, A: 255})

	var buf bytes.Buffer
	switch format {
	case imaging.JPEG:
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	default:
		require.NoError(t, png.Encode(&buf, img))
	}
	return buf.Bytes()
}

func TestNewAvatarProcessor_Defaults(t *testing.T) {
	t.Parallel()

	p := NewAvatarProcessor(0, -1)
	assert.Equal(t, int64(DefaultMaxBytes), p.MaxBytes)
	assert.Equal(t, DefaultSize, p.Size)
}

func TestAvatarProcessor_CheckUpload(t *testing.T) {
	t.Parallel()

	p := NewAvatarProcessor(100, 10)

	tests := []struct {
		filename string
		size     int64
		wantErr  error
	}{
		{"me.png", 10, nil},
		{"me.jpg", 100, nil},
		{"holiday.photo.jpeg", 1, nil},
		{"photo.gif", 10, ErrUnsupportedType},
		{"me.PNG", 10, ErrUnsupportedType},
		{"png", 10, ErrUnsupportedType},
		{"me.png.exe", 10, ErrUnsupportedType},
		{"me.png", 101, ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			err := p.CheckUpload(tt.filename, tt.size)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsUploadError(err))
		})
	}
}

func TestAvatarProcessor_Process(t *testing.T) {
	t.Parallel()

	p := NewAvatarProcessor(DefaultMaxBytes, 25)

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"wide png", "wide.png", encodedImage(t, 80, 40, imaging.PNG)},
		{"tall jpeg", "tall.jpeg", encodedImage(t, 30, 90, imaging.JPEG)},
		{"small jpg is upscaled", "tiny.jpg", encodedImage(t, 5, 5, imaging.JPEG)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := p.Process(tt.filename, tt.data)
			require.NoError(t, err)

			img, format, err := image.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, "png", format)
			assert.Equal(t, 25, img.Bounds().Dx())
			assert.Equal(t, 25, img.Bounds().Dy())
		})
	}
}

func TestAvatarProcessor_ProcessRejects(t *testing.T) {
	t.Parallel()

	p := NewAvatarProcessor(50, 25)

	_, err := p.Process("photo.gif", []byte("GIF89a"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = p.Process("big.png", bytes.Repeat([]byte{1}, 51))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = p.Process("broken.png", []byte("definitely not a png"))
	assert.ErrorIs(t, err, ErrDecode)
	assert.True(t, IsUploadError(err))
}
