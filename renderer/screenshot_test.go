package renderer

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenshotName(t *testing.T) {
	at := time.Date(2024, 10, 31, 21, 5, 9, 42_000_000, time.UTC)
	assert.Equal(t, filepath.Join("shots", "glhologram-20241031-210509.042.png"), ScreenshotName("shots", at))

	later := at.Add(300 * time.Millisecond)
	assert.NotEqual(t, ScreenshotName("shots", at), ScreenshotName("shots", later), "same second")
}

func TestSavePNGKeepsExistingFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, os.WriteFile(name, []byte("first"), 0o644))

	err := SavePNG(name, image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	assert.ErrorIs(t, err, os.ErrExist)

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data), "existing screenshot untouched")
}

func TestSavePNG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(2, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	name := filepath.Join(t.TempDir(), "nested", "shot.png")
	require.NoError(t, SavePNG(name, img))

	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()

	got, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), got.Bounds())

	r, g, b, a := got.At(2, 1).RGBA()
	assert.Equal(t, []uint32{10, 20, 30, 255}, []uint32{r >> 8, g >> 8, b >> 8, a >> 8})
}

func TestSavePNGBadDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	err := SavePNG(filepath.Join(file, "shot.png"), image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	assert.Error(t, err)
}
