package output

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nfnt/resize"
)

// RenderFilename returns output/<scene>/render_<timestamp>.png under dir
func RenderFilename(dir, sceneName string, now time.Time) string {
	timestamp := now.Format("20060102_150405")
	return filepath.Join(dir, sceneName, fmt.Sprintf("render_%s.png", timestamp))
}

// ThumbnailFilename returns the thumbnail path that sits next to a render
func ThumbnailFilename(renderPath string) string {
	return strings.TrimSuffix(renderPath, filepath.Ext(renderPath)) + "_thumb.png"
}

// SavePNG encodes img to filename, creating parent directories as needed
func SavePNG(filename string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filename, err)
	}
	return nil
}

// Thumbnail scales img to width pixels wide, keeping its aspect ratio
func Thumbnail(img image.Image, width int) image.Image {
	// Height 0 lets resize keep the aspect ratio
	return resize.Resize(uint(width), 0, img, resize.Bilinear)
}

// SaveThumbnail writes a scaled copy of img next to renderPath and returns its path
func SaveThumbnail(renderPath string, img image.Image, width int) (string, error) {
	if width <= 0 {
		return "", fmt.Errorf("invalid thumbnail width %d", width)
	}

	thumbPath := ThumbnailFilename(renderPath)
	if err := SavePNG(thumbPath, Thumbnail(img, width)); err != nil {
		return "", err
	}
	return thumbPath, nil
}

// MaxChannelDiff returns the largest per-channel 8-bit difference between two
// images of the same size
func MaxChannelDiff(a, b image.Image) (int, error) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return 0, fmt.Errorf("image sizes differ: %dx%d vs %dx%d", ab.Dx(), ab.Dy(), bb.Dx(), bb.Dy())
	}

	maxDiff := 0
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			r1, g1, b1, _ := a.At(ab.Min.X+x, ab.Min.Y+y).RGBA()
			r2, g2, b2, _ := b.At(bb.Min.X+x, bb.Min.Y+y).RGBA()
			for _, d := range []int{
				channelDiff(r1, r2),
				channelDiff(g1, g2),
				channelDiff(b1, b2),
			} {
				maxDiff = max(maxDiff, d)
			}
		}
	}
	return maxDiff, nil
}

// channelDiff compares two 16-bit premultiplied channels at 8-bit precision
func channelDiff(c1, c2 uint32) int {
	d := int(c1>>8) - int(c2>>8)
	if d < 0 {
		return -d
	}
	return d
}
