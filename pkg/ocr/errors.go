package ocr

import (
	"errors"
	"strings"

	"statrater/pkg/locale"
)

// ErrNoText is returned when the engine ran but recognized nothing.
var ErrNoText = errors.New("no text recognized")

// ErrTooLarge is returned when a download exceeds MaxDownload.
var ErrTooLarge = errors.New("image too large")

// ErrBadURL is returned for screenshot URLs that are not http(s).
var ErrBadURL = errors.New("unsupported image url")

// ErrBadImage is returned when a screenshot cannot be decoded.
var ErrBadImage = errors.New("unreadable image")

// UpstreamError carries the failure reported by the OCR engine or the image
// host. Its messages are shown to users as they are.
type UpstreamError struct {
	Messages []string
	Err      error
}

func (e *UpstreamError) Error() string {
	if len(e.Messages) == 0 && e.Err != nil {
		return e.Err.Error()
	}
	return strings.Join(e.Messages, ". ")
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func upstream(err error) *UpstreamError {
	return &UpstreamError{Messages: []string{strings.TrimSpace(err.Error())}, Err: err}
}

// UserMessage renders an OCR failure in the language of loc, prefixed with
// the locale's error word.
func UserMessage(err error, loc *locale.Profile) string {
	m := locale.English().Messages
	if loc != nil {
		if loc.Messages.OCRError != "" {
			m.OCRError = loc.Messages.OCRError
		}
		if loc.Messages.OCRUnknown != "" {
			m.OCRUnknown = loc.Messages.OCRUnknown
		}
	}
	var ue *UpstreamError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ue):
		return m.OCRError + ": " + ue.Error()
	case errors.Is(err, ErrNoText):
		return m.OCRUnknown
	}
	return m.OCRError + ": " + err.Error()
}
