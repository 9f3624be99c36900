// Package report prints monthly rating summaries for one user.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"gorm.io/gorm"

	"statrater/models"
)

// Summary aggregates the ratings of one month.
type Summary struct {
	Count    int
	AvgScore float64
	Best     *models.Rating
	// Guidance counts ratings per guidance code.
	Guidance map[string]int
}

// MonthRange parses month (YYYY-MM) into a UTC [start, end) range.
func MonthRange(month string) (time.Time, time.Time, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month format, expected YYYY-MM: %w", err)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}

func Summarize(rows []models.Rating) Summary {
	s := Summary{Count: len(rows), Guidance: map[string]int{}}
	var total float64
	for i := range rows {
		r := &rows[i]
		total += r.Score
		s.Guidance[r.Guidance]++
		if s.Best == nil || r.Score > s.Best.Score {
			s.Best = r
		}
	}
	if s.Count > 0 {
		s.AvgScore = total / float64(s.Count)
	}
	return s
}

// Write prints s, and rows when list is set, in the plain format of the
// report command.
func Write(w io.Writer, username, month string, s Summary, rows []models.Rating, list bool) {
	fmt.Fprintf(w, "Report for user=%s month=%s (UTC):\n", username, month)
	fmt.Fprintf(w, "  ratings=%d avg_score=%.1f\n", s.Count, s.AvgScore)
	if s.Best != nil {
		fmt.Fprintf(w, "  best=%.1f source=%s\n", s.Best.Score, s.Best.Source)
	}
	codes := make([]string, 0, len(s.Guidance))
	for c := range s.Guidance {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	for _, c := range codes {
		fmt.Fprintf(w, "  %s=%d\n", c, s.Guidance[c])
	}
	if list {
		for _, r := range rows {
			fmt.Fprintf(w, "%d|%s|%.1f|%s|%s\n", r.ID, r.Source, r.Score, r.Guidance, r.CreatedAt.Format(time.RFC3339))
		}
	}
}

// Run loads the ratings of username for month and writes the report.
func Run(db *gorm.DB, w io.Writer, username, month string, list bool) error {
	uid, err := models.UserID(db, username)
	if err != nil {
		return err
	}
	start, end, err := MonthRange(month)
	if err != nil {
		return err
	}
	var rows []models.Rating
	if err := db.Where("user_id = ? AND created_at >= ? AND created_at < ?", uid, start, end).Order("id").Find(&rows).Error; err != nil {
		return fmt.Errorf("fetch ratings: %w", err)
	}
	Write(w, username, month, Summarize(rows), rows, list)
	return nil
}

// Month is one row of the rating_months view.
type Month struct {
	Month     string
	Ratings   int64
	AvgScore  float64
	BestScore float64
}

// History returns every month username has ratings in, oldest first.
func History(db *gorm.DB, username string) ([]Month, error) {
	uid, err := models.UserID(db, username)
	if err != nil {
		return nil, err
	}
	var rows []Month
	err = db.Table("rating_months").
		Select("month, ratings, avg_score, best_score").
		Where("user_id = ?", uid).Order("month").Scan(&rows).Error
	return rows, err
}

// WriteHistory prints one line per month.
func WriteHistory(w io.Writer, username string, months []Month) {
	fmt.Fprintf(w, "History for user=%s:\n", username)
	for _, m := range months {
		fmt.Fprintf(w, "  %s ratings=%d avg_score=%.1f best=%.1f\n", m.Month, m.Ratings, m.AvgScore, m.BestScore)
	}
}
