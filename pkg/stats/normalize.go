package stats

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"

	"statrater/pkg/locale"
)

// progressRE matches progress-bar style fractions such as "320/1000".
var progressRE = regexp.MustCompile(`\d+/1000$`)

// captionSuffix lets a caption carry a trailing bonus such as "+1.2%".
const captionSuffix = `(\+\d[.,]\d%)?`

var punctuation = strings.NewReplacer(
	":", ".",
	"-", "",
	"0/0", "%",
	"'", "",
	"*", "",
)

// SkipReason tells why a line was dropped before tokenizing.
type SkipReason string

const (
	SkipNone     SkipReason = ""
	SkipIgnored  SkipReason = "ignored"
	SkipProgress SkipReason = "progress"
	SkipCaption  SkipReason = "caption"
)

// Line is the trace of one non-empty OCR line.
type Line struct {
	Index      int        `json:"index"`
	Raw        string     `json:"raw"`
	Normalized string     `json:"normalized"` // space stripped
	Skip       SkipReason `json:"skip,omitempty"`
	Token      bool       `json:"token"`
}

// Parser holds the compiled form of a locale profile. It is immutable and
// safe for concurrent use.
type Parser struct {
	loc      *locale.Profile
	ignore   map[string]struct{}
	captions []*regexp.Regexp
	resolver LayoutResolver
}

// Option configures a Parser.
type Option func(*Parser)

// WithResolver replaces the default line count layout resolver.
func WithResolver(r LayoutResolver) Option {
	return func(p *Parser) { p.resolver = r }
}

// NewParser compiles loc. The profile must not be modified afterwards.
func NewParser(loc *locale.Profile, opts ...Option) (*Parser, error) {
	if loc == nil {
		return nil, fmt.Errorf("nil locale profile")
	}
	p := &Parser{
		loc:      loc,
		ignore:   make(map[string]struct{}, len(loc.Ignore)),
		resolver: LineCountResolver{},
	}
	for _, s := range loc.Ignore {
		p.ignore[compact(fold(s))] = struct{}{}
	}
	for _, s := range loc.IgnorePatterns {
		folded := compact(fold(s))
		if folded == "" {
			continue
		}
		re, err := regexp.Compile(regexp.QuoteMeta(folded) + captionSuffix)
		if err != nil {
			return nil, fmt.Errorf("locale %s: ignore pattern %q: %w", loc.ID, s, err)
		}
		p.captions = append(p.captions, re)
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Locale returns the profile the parser was built from.
func (p *Parser) Locale() *locale.Profile { return p.loc }

// fold transliterates to lowercase ASCII and normalizes punctuation.
func fold(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(unidecode.Unidecode(s))
	return punctuation.Replace(s)
}

func compact(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

// normalize returns the space stripped comparison form of raw and why it
// must be skipped, if at all.
func (p *Parser) normalize(raw string) (string, SkipReason) {
	line := raw
	for _, sub := range p.loc.Substitutions {
		line = strings.ReplaceAll(line, sub.From, sub.To)
	}
	line = compact(fold(line))
	if _, ok := p.ignore[line]; ok {
		return line, SkipIgnored
	}
	if progressRE.MatchString(line) {
		return line, SkipProgress
	}
	for _, re := range p.captions {
		if re.MatchString(line) {
			return line, SkipCaption
		}
	}
	return line, SkipNone
}

// Lines splits text into non-empty lines and normalizes each of them.
// Indexes count non-empty lines only.
func (p *Parser) Lines(text string) []Line {
	var out []Line
	for _, raw := range strings.Split(text, "\n") {
		raw = strings.TrimRight(raw, "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		l := Line{Index: len(out), Raw: raw}
		l.Normalized, l.Skip = p.normalize(raw)
		l.Token = l.Skip == SkipNone && isToken(l.Index, l.Normalized)
		out = append(out, l)
	}
	return out
}
