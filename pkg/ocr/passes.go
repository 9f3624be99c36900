package ocr

import (
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// pass is one recognition attempt. Passes run in order until one yields
// text.
type pass struct {
	name string
	prep func(image.Image) image.Image
	psm  gosseract.PageSegMode
}

var passes = []pass{
	{name: "base", psm: gosseract.PSM_AUTO},
	{
		name: "binarized",
		prep: func(img image.Image) image.Image {
			gray := imaging.AdjustContrast(imaging.Grayscale(img), 15)
			gray = imaging.Sharpen(gray, 0.7)
			return binarize(upscale(gray, 900, 1300), 210)
		},
		psm: gosseract.PSM_SINGLE_BLOCK,
	},
	{
		// status screens are mostly light text on a dark panel
		name: "inverted",
		prep: func(img image.Image) image.Image {
			return imaging.Invert(upscale(imaging.Grayscale(img), 900, 1300))
		},
		psm: gosseract.PSM_SPARSE_TEXT,
	},
}

// DumpPasses writes the image every pass would hand to the engine into dir,
// as <name>.<pass>.ocr.png, and returns the written paths.
func DumpPasses(path, dir string) ([]string, error) {
	img, _, err := Prepare(path)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := make([]string, 0, len(passes))
	for _, p := range passes {
		pimg := img
		if p.prep != nil {
			pimg = p.prep(img)
		}
		dst := filepath.Join(dir, base+"."+p.name+".ocr.png")
		if err := imaging.Save(pimg, dst); err != nil {
			return out, err
		}
		out = append(out, dst)
	}
	return out, nil
}
