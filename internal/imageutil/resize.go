package imageutil

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // registered for decoding camera screenshots

	"golang.org/x/image/draw"
)

// DefaultMaxDimension caps the longest edge of an uploaded image.
const DefaultMaxDimension = 1200

// DefaultQuality is the JPEG quality factor used for re-encoding.
const DefaultQuality = 85

// CompressConfig holds configuration for image compression.
type CompressConfig struct {
	MaxDimension int // maximum width or height (default 1200)
	Quality      int // JPEG quality 1-100 (default 85)
}

// DefaultConfig returns the default compression configuration.
func DefaultConfig() *CompressConfig {
	return &CompressConfig{
		MaxDimension: DefaultMaxDimension,
		Quality:      DefaultQuality,
	}
}

// Compress downsizes an image so its longest edge fits MaxDimension and
// re-encodes it as JPEG. Images already within bounds are still re-encoded
// so every stored object is a JPEG.
func Compress(imageData []byte, config *CompressConfig) ([]byte, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxDimension <= 0 {
		config.MaxDimension = DefaultMaxDimension
	}
	if config.Quality <= 0 {
		config.Quality = DefaultQuality
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > config.MaxDimension || height > config.MaxDimension {
		var newWidth, newHeight int
		if width > height {
			newWidth = config.MaxDimension
			newHeight = int(float64(height) * float64(config.MaxDimension) / float64(width))
		} else {
			newHeight = config.MaxDimension
			newWidth = int(float64(width) * float64(config.MaxDimension) / float64(height))
		}
		if newWidth < 1 {
			newWidth = 1
		}
		if newHeight < 1 {
			newHeight = 1
		}

		dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		// CatmullRom resampling keeps small receipt text legible after downscale.
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: config.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return buf.Bytes(), nil
}
