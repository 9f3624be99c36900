// Package rating ties locales, OCR and the stats engine together for the
// API server and the command line tools.
package rating

import (
	"context"
	"errors"
	"sync"

	"statrater/pkg/locale"
	"statrater/pkg/ocr"
	"statrater/pkg/stats"
)

// ErrNoRecognizer is returned by Image when no OCR engine is configured.
var ErrNoRecognizer = errors.New("no ocr recognizer configured")

// Outcome is the result of rating one input. Locale is set as soon as the
// locale id resolved, so callers can localize error messages too.
type Outcome struct {
	Locale *locale.Profile
	Text   string
	Report stats.Report
}

// Service rates OCR text and screenshots. It is safe for concurrent use.
type Service struct {
	locales *locale.Registry
	ocr     ocr.Recognizer

	mu      sync.Mutex
	parsers map[string]*stats.Parser
}

// New returns a Service over reg. rec may be nil when only text is rated.
func New(reg *locale.Registry, rec ocr.Recognizer) *Service {
	return &Service{locales: reg, ocr: rec, parsers: map[string]*stats.Parser{}}
}

// Locales returns the registry the service resolves ids against.
func (s *Service) Locales() *locale.Registry { return s.locales }

// Parser returns the cached parser for locale id.
func (s *Service) Parser(id string) (*stats.Parser, error) {
	loc, err := s.locales.Lookup(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.parsers[loc.ID]; ok && p.Locale() == loc {
		return p, nil
	}
	p, err := stats.NewParser(loc)
	if err != nil {
		return nil, err
	}
	s.parsers[loc.ID] = p
	return p, nil
}

// Text rates OCR text in locale id.
func (s *Service) Text(id, text string, buffs stats.BuffSet) (Outcome, error) {
	p, err := s.Parser(id)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Locale: p.Locale(), Text: text}
	out.Report, err = p.Rate(text, buffs)
	return out, err
}

// Image recognizes the screenshot at path in the OCR language of locale id
// and rates the text.
func (s *Service) Image(ctx context.Context, id, path string, buffs stats.BuffSet) (Outcome, error) {
	p, err := s.Parser(id)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Locale: p.Locale()}
	if s.ocr == nil {
		return out, ErrNoRecognizer
	}
	out.Text, err = s.ocr.Recognize(ctx, path, p.Locale().OCRCode)
	if err != nil {
		return out, err
	}
	out.Report, err = p.Rate(out.Text, buffs)
	return out, err
}

// Buffs parses and sums buff flag strings, for example a preset followed by
// inline flags.
func Buffs(flags ...string) (stats.BuffSet, error) {
	out := stats.BuffSet{}
	for _, f := range flags {
		b, err := stats.ParseBuffs(f)
		if err != nil {
			return nil, err
		}
		for k, v := range b {
			out[k] += v
		}
	}
	return out, nil
}

// Message renders err for end users in the language of loc.
func Message(err error, loc *locale.Profile) string {
	var ue *ocr.UpstreamError
	if errors.As(err, &ue) || errors.Is(err, ocr.ErrNoText) {
		return ocr.UserMessage(err, loc)
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
