// Package locale holds the read-only vocabulary tables the stat parser
// consumes: field display names, OCR misread substitutions and the lines
// that must never be read as stat values.
package locale

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrUnknownLocale is returned when a locale id is not registered.
var ErrUnknownLocale = errors.New("unknown locale")

// Substitution is one literal replacement applied to raw OCR lines.
type Substitution struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Messages are the user facing texts of a locale.
type Messages struct {
	FavorAttack    string `yaml:"favor_attack"`
	AttackBalanced string `yaml:"attack_balanced"`
	FavorCrit      string `yaml:"favor_crit"`
	OCRError       string `yaml:"ocr_error"`
	OCRUnknown     string `yaml:"ocr_unknown"`
}

// Profile describes one screenshot language.
type Profile struct {
	ID      string `yaml:"id"`
	OCRCode string `yaml:"ocr_code"` // tesseract traineddata name
	Name    string `yaml:"name"`

	// Fields maps a stat field id (atk, cr, ...) to its in-game label.
	Fields map[string]string `yaml:"fields"`

	// Substitutions are applied in order; OCR misreads depend on it.
	Substitutions []Substitution `yaml:"substitutions"`
	// Ignore holds exact, space-stripped lines to drop.
	Ignore []string `yaml:"ignore"`
	// IgnorePatterns are caption lines (searched, not anchored) to drop.
	IgnorePatterns []string `yaml:"ignore_patterns"`

	Messages Messages `yaml:"messages"`
}

// FieldName returns the display label of a field, falling back to the id.
func (p *Profile) FieldName(field string) string {
	if n, ok := p.Fields[field]; ok && n != "" {
		return n
	}
	return field
}

// validate also canonicalizes the id to the form Lookup expects.
func (p *Profile) validate() error {
	p.ID = strings.ToLower(strings.TrimSpace(p.ID))
	if p.ID == "" {
		return fmt.Errorf("locale id required")
	}
	if p.OCRCode == "" {
		return fmt.Errorf("locale %s: ocr_code required", p.ID)
	}
	for i, s := range p.Substitutions {
		if s.From == "" {
			return fmt.Errorf("locale %s: substitution %d has empty from", p.ID, i)
		}
	}
	return nil
}

// LoadFile reads a single YAML profile.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading locale %s: %w", path, err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing locale %s: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("locale %s: %w", path, err)
	}
	return &p, nil
}

// LoadDir reads every *.yaml / *.yml profile of dir, sorted by file name.
func LoadDir(dir string) ([]*Profile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read locale dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	out := make([]*Profile, 0, len(names))
	for _, n := range names {
		p, err := LoadFile(filepath.Join(dir, n))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Registry resolves locale ids. The zero value is not usable; use NewRegistry.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
	fallback string
}

// NewRegistry returns a registry holding the built-in profiles with the
// given fallback id (used for empty lookups).
func NewRegistry(fallback string) *Registry {
	r := &Registry{profiles: map[string]*Profile{}, fallback: strings.ToLower(strings.TrimSpace(fallback))}
	for _, p := range Builtin() {
		r.profiles[p.ID] = p
	}
	return r
}

// Register adds or replaces a profile.
func (r *Registry) Register(p *Profile) error {
	if err := p.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.profiles[p.ID] = p
	r.mu.Unlock()
	return nil
}

// Lookup returns the profile for id; an empty id resolves to the fallback.
func (r *Registry) Lookup(id string) (*Profile, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		id = r.fallback
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocale, id)
	}
	return p, nil
}

// IDs lists registered locale ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
