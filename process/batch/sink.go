package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"gorm.io/gorm"

	"statrater/models"
	"statrater/pkg/rating"
	"statrater/pkg/stats"
)

// Line is the JSON form of a Result written by JSONSink.
type Line struct {
	File    string        `json:"file"`
	Locale  string        `json:"locale,omitempty"`
	Record  stats.Record  `json:"record,omitempty"`
	Applied stats.BuffSet `json:"applied_buffs,omitempty"`
	Result  *stats.Result `json:"result,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// NewLine converts r for output. Errors are localized to the result locale.
func NewLine(r Result) Line {
	l := Line{File: r.File}
	if r.Outcome.Locale != nil {
		l.Locale = r.Outcome.Locale.ID
	}
	if r.Err != nil {
		l.Error = rating.Message(r.Err, r.Outcome.Locale)
		return l
	}
	rep := r.Outcome.Report
	l.Record = rep.Record
	res := rep.Result
	l.Result = &res
	l.Applied = rep.Applied
	return l
}

// claims tracks names that are being rated (false) or were rated (true).
type claims struct {
	mu   sync.Mutex
	done map[string]bool
}

func (c *claims) claim(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.done[name]; ok {
		return false
	}
	if c.done == nil {
		c.done = map[string]bool{}
	}
	c.done[name] = false
	return true
}

// release ends the claim on name. Rated names stay claimed for good.
func (c *claims) release(name string, rated bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rated {
		if c.done == nil {
			c.done = map[string]bool{}
		}
		c.done[name] = true
		return
	}
	delete(c.done, name)
}

// JSONSink writes one JSON object per result. It only keeps a file from
// being rated twice at the same time.
type JSONSink struct {
	claims
	wmu sync.Mutex
	enc *json.Encoder
}

func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{enc: json.NewEncoder(w)}
}

func (s *JSONSink) Claim(name string) bool { return s.claim(name) }

func (s *JSONSink) Put(r Result) error {
	defer s.release(r.File, false)
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.enc.Encode(NewLine(r))
}

// DBSink stores successful results as ratings of one user and skips files
// that user already has a rating for.
type DBSink struct {
	claims
	db     *gorm.DB
	userID uint
	next   Sink
}

// NewDBSink loads the sources already rated by userID. Every result is also
// forwarded to next when it is not nil.
func NewDBSink(db *gorm.DB, userID uint, next Sink) (*DBSink, error) {
	var sources []string
	if err := db.Model(&models.Rating{}).Where("user_id = ?", userID).Pluck("source", &sources).Error; err != nil {
		return nil, fmt.Errorf("load rated sources: %w", err)
	}
	s := &DBSink{db: db, userID: userID, next: next}
	s.done = make(map[string]bool, len(sources))
	for _, src := range sources {
		s.done[src] = true
	}
	return s, nil
}

// Claim also claims name on next, so both sinks agree on what is in flight.
func (s *DBSink) Claim(name string) bool {
	if !s.claim(name) {
		return false
	}
	if s.next != nil && !s.next.Claim(name) {
		s.release(name, false)
		return false
	}
	return true
}

func (s *DBSink) Put(r Result) error {
	rated := false
	defer func() { s.release(r.File, rated) }()
	if r.Err == nil {
		rec := models.NewRating(s.userID, r.File, r.Outcome.Locale.ID, r.Outcome.Report)
		if err := s.db.Create(&rec).Error; err != nil {
			if s.next != nil {
				_ = s.next.Put(Result{File: r.File, Outcome: r.Outcome, Err: err})
			}
			return err
		}
		rated = true
	}
	if s.next != nil {
		return s.next.Put(r)
	}
	return nil
}
