package ocr

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Size thresholds in bytes for shrinking screenshots before recognition.
const (
	grayscaleAbove = 5_000_000
	halveAbove     = 8_000_000
)

// Reduction is how an input image is shrunk before recognition.
type Reduction int

const (
	ReduceNone Reduction = iota
	ReduceGrayscale
	ReduceHalf
)

func (r Reduction) String() string {
	switch r {
	case ReduceGrayscale:
		return "grayscale"
	case ReduceHalf:
		return "half"
	}
	return "none"
}

// ReductionFor picks the reduction for a file called name of size bytes.
// Large files are decoded in grayscale; very large files and large JPEGs
// are also halved.
func ReductionFor(name string, size int64) Reduction {
	if size <= grayscaleAbove {
		return ReduceNone
	}
	if size > halveAbove || strings.EqualFold(filepath.Ext(name), ".jpg") {
		return ReduceHalf
	}
	return ReduceGrayscale
}

// Prepare opens path and applies the reduction its size calls for.
func Prepare(path string) (image.Image, Reduction, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, ReduceNone, err
	}
	red := ReductionFor(path, fi.Size())
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, red, fmt.Errorf("%w: %w", ErrBadImage, err)
	}
	return reduce(img, red), red, nil
}

func reduce(img image.Image, red Reduction) image.Image {
	switch red {
	case ReduceGrayscale:
		return imaging.Grayscale(img)
	case ReduceHalf:
		gray := imaging.Grayscale(img)
		w := gray.Bounds().Dx() / 2
		if w < 1 {
			w = 1
		}
		return imaging.Resize(gray, w, 0, imaging.Box)
	}
	return img
}

// binarize performs a global threshold on the grayscale form of img.
func binarize(img image.Image, threshold uint8) *image.NRGBA {
	return imaging.AdjustFunc(imaging.Grayscale(img), func(c color.NRGBA) color.NRGBA {
		var v uint8 = 255
		if c.R <= threshold {
			v = 0
		}
		return color.NRGBA{R: v, G: v, B: v, A: 255}
	})
}

// upscale enlarges short images so small glyphs survive recognition.
func upscale(img image.Image, minHeight, target int) image.Image {
	if img.Bounds().Dy() >= minHeight {
		return img
	}
	return imaging.Resize(img, 0, target, imaging.Lanczos)
}
