package ico

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSourcePNG(t *testing.T, dir, prefix string, size int, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, fmt.Sprintf("%s_%d.png", prefix, size))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func squareRGBA(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 200, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	return img
}

func TestLoadSourcesSkipsMissing(t *testing.T) {
	dir := t.TempDir()
	writeSourcePNG(t, dir, "app_icon", 256, squareRGBA(256))
	writeSourcePNG(t, dir, "app_icon", 48, squareRGBA(48))
	writeSourcePNG(t, dir, "app_icon", 16, squareRGBA(16))

	entries, err := LoadSources(dir, "app_icon", SourceOptions{})
	require.NoError(t, err)

	dims := make([]int, len(entries))
	for i, e := range entries {
		dims[i] = e.Dim
	}
	// Largest first, absent sizes skipped.
	assert.Equal(t, []int{256, 48, 16}, dims)
}

func TestLoadSourcesEmptyDir(t *testing.T) {
	_, err := LoadSources(t.TempDir(), "app_icon", SourceOptions{})
	require.Error(t, err)
}

func TestLoadSourcesRejectsWrongSize(t *testing.T) {
	dir := t.TempDir()
	// 32x32 pixels stored under the _16 name
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, squareRGBA(32)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app_icon_16.png"), buf.Bytes(), 0o644))

	_, err := LoadSources(dir, "app_icon", SourceOptions{Sizes: []int{16}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32x32")
}

func TestLoadSourcesNormalizesToRGBA(t *testing.T) {
	dir := t.TempDir()
	gray := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(i)
	}
	writeSourcePNG(t, dir, "app_icon", 16, gray)

	entries, err := LoadSources(dir, "app_icon", SourceOptions{Sizes: []int{16}})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	img, err := png.Decode(bytes.NewReader(entries[0].Data))
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	_, isRGBA := img.(*image.RGBA)
	_, isNRGBA := img.(*image.NRGBA)
	assert.True(t, isRGBA || isNRGBA, "re-encoded payload must carry an alpha channel, got %T", img)
}

func TestLoadSourcesScaleMissing(t *testing.T) {
	dir := t.TempDir()
	writeSourcePNG(t, dir, "app_icon", 64, squareRGBA(64))

	entries, err := LoadSources(dir, "app_icon", SourceOptions{
		Sizes:        []int{64, 32, 16},
		ScaleMissing: true,
	})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	for i, want := range []int{64, 32, 16} {
		assert.Equal(t, want, entries[i].Dim)
		img, err := png.Decode(bytes.NewReader(entries[i].Data))
		require.NoError(t, err)
		assert.Equal(t, want, img.Bounds().Dx())
	}
}

func TestLoadSourcesFeedEncoder(t *testing.T) {
	dir := t.TempDir()
	writeSourcePNG(t, dir, "app_icon", 256, squareRGBA(256))
	writeSourcePNG(t, dir, "app_icon", 16, squareRGBA(16))

	entries, err := LoadSources(dir, "app_icon", SourceOptions{})
	require.NoError(t, err)

	out := filepath.Join(dir, "app_icon.ico")
	require.NoError(t, EncodeFile(out, entries))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.NoError(t, Verify(data))
}
