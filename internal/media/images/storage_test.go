package images

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeGIF(t *testing.T) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 8, 8), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestNewStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "pictures")

	s, err := NewStorage(dir)
	require.NoError(t, err)

	info, err := os.Stat(s.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = NewStorage("")
	assert.Error(t, err)
}

func TestStorage_SaveGetDelete(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	data := encodePNG(t, 4, 4)
	require.NoError(t, s.Save("game-abc.png", data))

	got, err := s.Get("game-abc.png")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// Replacing keeps one file.
	require.NoError(t, s.Save("game-abc.png", encodePNG(t, 2, 2)))
	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, s.Delete("game-abc.png"))
	_, err = s.Get("game-abc.png")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.Delete("game-abc.png"), "deleting a missing picture is fine")
}

func TestStorage_RejectsEscapingNames(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../etc/passwd", "sub/file.png", ".hidden", ".."} {
		_, err := s.Path(name)
		assert.ErrorIs(t, err, ErrBadName, name)
	}
}

func TestStorage_ConcurrentSaves(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)
	data := encodePNG(t, 4, 4)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Save("same.png", data))
		}()
	}
	wg.Wait()

	got, err := s.Get("same.png")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCheck(t *testing.T) {
	pngData := encodePNG(t, 10, 6)

	up, err := Check("Cover.PNG", pngData, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, ".png", up.Ext)
	assert.Equal(t, 10, up.Width)
	assert.Equal(t, 6, up.Height)

	_, err = Check("anim.gif", encodeGIF(t), 1<<20)
	assert.NoError(t, err)

	_, err = Check("cover.png", pngData, 10)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = Check("cover.bmp", pngData, 1<<20)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Check("cover.jpg", pngData, 1<<20)
	assert.ErrorIs(t, err, ErrUnsupportedType, "png bytes under a jpg name")

	_, err = Check("cover.png", []byte("not an image"), 1<<20)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestFileName(t *testing.T) {
	first, err := FileName("game-123", ".jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first, "game-123-"), first)
	assert.True(t, strings.HasSuffix(first, ".jpeg"), first)

	second, err := FileName("game-123", ".jpeg")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestComputeBlurHash(t *testing.T) {
	hash, err := ComputeBlurHash(encodePNG(t, 200, 100))
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	small, err := ComputeBlurHash(encodePNG(t, 8, 8))
	require.NoError(t, err)
	assert.NotEmpty(t, small)

	_, err = ComputeBlurHash([]byte("garbage"))
	assert.Error(t, err)
}

func TestThumbnail_KeepsAspect(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 640, 320))
	b := thumbnail(img).Bounds()
	assert.Equal(t, blurHashSize, b.Dx())
	assert.Equal(t, blurHashSize/2, b.Dy())
}
