package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statrater/models"
)

func TestMonthRange(t *testing.T) {
	start, end, err := MonthRange("2025-12")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), end)

	_, _, err = MonthRange("12/2025")
	assert.Error(t, err)
}

func TestSummarizeAndWrite(t *testing.T) {
	rows := []models.Rating{
		{ID: 1, Source: "a.png", Score: 90, Guidance: "balanced"},
		{ID: 2, Source: "b.png", Score: 110, Guidance: "favor_crit"},
		{ID: 3, Source: "c.png", Score: 100, Guidance: "balanced"},
	}
	s := Summarize(rows)
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 100.0, s.AvgScore, 1e-9)
	require.NotNil(t, s.Best)
	assert.Equal(t, "b.png", s.Best.Source)
	assert.Equal(t, map[string]int{"balanced": 2, "favor_crit": 1}, s.Guidance)

	buf := &bytes.Buffer{}
	Write(buf, "alice", "2025-12", s, rows, false)
	assert.Equal(t, "Report for user=alice month=2025-12 (UTC):\n"+
		"  ratings=3 avg_score=100.0\n"+
		"  best=110.0 source=b.png\n"+
		"  balanced=2\n"+
		"  favor_crit=1\n", buf.String())
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Count)
	assert.Nil(t, s.Best)

	buf := &bytes.Buffer{}
	Write(buf, "bob", "2025-01", s, nil, true)
	assert.Equal(t, "Report for user=bob month=2025-01 (UTC):\n  ratings=0 avg_score=0.0\n", buf.String())
}

func TestWriteHistory(t *testing.T) {
	buf := &bytes.Buffer{}
	WriteHistory(buf, "alice", []Month{
		{Month: "2025-11", Ratings: 2, AvgScore: 95.3, BestScore: 101},
		{Month: "2025-12", Ratings: 1, AvgScore: 88, BestScore: 88},
	})
	assert.Equal(t, "History for user=alice:\n"+
		"  2025-11 ratings=2 avg_score=95.3 best=101.0\n"+
		"  2025-12 ratings=1 avg_score=88.0 best=88.0\n", buf.String())
}
