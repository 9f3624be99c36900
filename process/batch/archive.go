package batch

import (
	"io"
	"math"
	"os"

	"github.com/disintegration/imaging"
)

// archive moves a rated screenshot from src to dst. Images larger than
// maxBytes are downscaled on the way; maxBytes <= 0 moves files as they are.
// It attempts an atomic rename and falls back to copy+remove when necessary.
func archive(src, dst string, maxBytes int64) error {
	fi, err := os.Stat(src)
	if err != nil {
		return err
	}
	if maxBytes <= 0 || fi.Size() <= maxBytes {
		return move(src, dst)
	}
	img, err := imaging.Open(src)
	if err != nil { // cannot decode, keep the original bytes
		return move(src, dst)
	}
	// size roughly scales with area
	scale := math.Sqrt(float64(maxBytes) / float64(fi.Size()))
	if scale > 0.95 {
		scale = 0.95
	}
	if scale < 0.1 {
		scale = 0.1
	}
	w := int(math.Max(1, math.Round(float64(img.Bounds().Dx())*scale)))
	h := int(math.Max(1, math.Round(float64(img.Bounds().Dy())*scale)))
	if err := imaging.Save(imaging.Resize(img, w, h, imaging.Lanczos), dst); err != nil {
		return move(src, dst)
	}
	_ = os.Remove(src)
	// one more uniform 80% pass if still over budget
	if fi2, err := os.Stat(dst); err == nil && fi2.Size() > maxBytes {
		if img2, err := imaging.Open(dst); err == nil {
			img2 = imaging.Resize(img2, int(float64(img2.Bounds().Dx())*0.8), 0, imaging.Lanczos)
			_ = imaging.Save(img2, dst)
		}
	}
	return nil
}

func move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyRemove(src, dst)
}

func copyRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
