package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Recognizer turns a screenshot into OCR text. lang is a tesseract language
// code such as "jpn" or "eng".
type Recognizer interface {
	Recognize(ctx context.Context, path, lang string) (string, error)
}

// Tesseract recognizes screenshots with the local tesseract install.
type Tesseract struct {
	// TessdataPrefix overrides the tessdata directory when set.
	TessdataPrefix string
	// MaxPasses limits the preprocessing passes tried; 0 means all.
	MaxPasses int
}

// Recognize prepares the image at path and runs the recognition passes
// until one returns text. Engine failures are returned as *UpstreamError,
// an image that yields nothing as ErrNoText.
func (t *Tesseract) Recognize(ctx context.Context, path, lang string) (string, error) {
	img, red, err := Prepare(path)
	if err != nil {
		return "", err
	}
	var lastErr error
	for i, p := range passes {
		if t.MaxPasses > 0 && i >= t.MaxPasses {
			break
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := t.run(img, p, lang)
		if err != nil {
			var ue *UpstreamError
			if !errors.As(err, &ue) {
				return "", err
			}
			log.Printf("WARN ocr pass=%s file=%s: %v", p.name, path, err)
			lastErr = err
			continue
		}
		if strings.TrimSpace(text) != "" {
			log.Printf("OCR RAW %s pass=%s reduce=%s snippet=%q", path, p.name, red, snippet(normalizeOCRText(text), 180))
			return text, nil
		}
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", ErrNoText
}

func (t *Tesseract) run(img image.Image, p pass, lang string) (string, error) {
	if p.prep != nil {
		img = p.prep(img)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encode %s pass: %w", p.name, err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	if t.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.TessdataPrefix); err != nil {
			return "", upstream(err)
		}
	}
	if lang != "" {
		if err := client.SetLanguage(lang); err != nil {
			return "", upstream(err)
		}
	}
	if err := client.SetPageSegMode(p.psm); err != nil {
		return "", upstream(err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", upstream(err)
	}
	text, err := client.Text()
	if err != nil {
		return "", upstream(err)
	}
	return text, nil
}
