package ico

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

// DefaultSizes are the resolutions the desktop build ships PNGs for,
// largest first (consumers iterate the directory in stored order, so the
// biggest image should come up first).
var DefaultSizes = []int{256, 128, 64, 48, 36, 16}

// SourceOptions controls LoadSources.
type SourceOptions struct {
	// Sizes to look for; DefaultSizes when nil.
	Sizes []int

	// ScaleMissing synthesizes absent sizes from the largest source
	// found instead of skipping them.
	ScaleMissing bool
}

// LoadSources collects entries for <prefix>_<size>.png files in dir.
// Missing sizes are skipped (or synthesized with ScaleMissing); a present
// file that fails to decode or isn't exactly size×size is an error.
// Every loaded image is re-encoded through an RGBA canvas so the payloads
// always carry an alpha channel, whatever mode the source PNG used.
func LoadSources(dir, prefix string, opts SourceOptions) ([]Entry, error) {
	sizes := opts.Sizes
	if len(sizes) == 0 {
		sizes = DefaultSizes
	}
	sizes = append([]int(nil), sizes...)
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))

	found := make(map[int]image.Image, len(sizes))
	for _, size := range sizes {
		path := filepath.Join(dir, fmt.Sprintf("%s_%d.png", prefix, size))
		img, err := loadSquarePNG(path, size)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		found[size] = img
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("ico: no %s_*.png sources in %s", prefix, dir)
	}

	var largest image.Image
	for _, size := range sizes {
		if img, ok := found[size]; ok {
			largest = img
			break
		}
	}

	entries := make([]Entry, 0, len(sizes))
	for _, size := range sizes {
		img, ok := found[size]
		if !ok {
			if !opts.ScaleMissing {
				continue
			}
			img = scaleSquare(largest, size)
		}
		data, err := encodeRGBA(img)
		if err != nil {
			return nil, fmt.Errorf("ico: re-encode %dx%d source: %w", size, size, err)
		}
		entries = append(entries, Entry{Dim: size, Data: data})
	}
	return entries, nil
}

func loadSquarePNG(path string, size int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("ico: decode %s: %w", path, err)
	}
	b := img.Bounds()
	if b.Dx() != size || b.Dy() != size {
		return nil, fmt.Errorf("ico: %s is %dx%d, want %dx%d",
			path, b.Dx(), b.Dy(), size, size)
	}
	return img, nil
}

func scaleSquare(src image.Image, size int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Rect, src, src.Bounds(), draw.Over, nil)
	return dst
}

// encodeRGBA redraws img onto an RGBA canvas and encodes it as PNG.
func encodeRGBA(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := gg.NewContextForImage(img).EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
