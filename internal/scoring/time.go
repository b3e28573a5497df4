package scoring

import (
	"math"
	"time"

	"github.com/jonesrussell/north-cloud/curator/internal/domain"
)

const hoursPerDay = 24.0

// TimeScore computes the unbounded recency score for a timestamp:
//
//	score = 1 / (1 + ln(1 + ageHours/24))
//
// The score is 1 at age zero, strictly decreasing and asymptotic
// toward zero without ever reaching it. Future timestamps clamp to 1.
func TimeScore(indexedAt, now time.Time) float64 {
	ageHours := now.Sub(indexedAt).Hours()
	if ageHours <= 0 {
		return 1.0
	}
	return 1.0 / (1.0 + math.Log(1.0+ageHours/hoursPerDay))
}

// WindowScore treats [start,end] as a bell curve centered on the
// window midpoint: d = |t-M|/W, score = exp(-d²/2). The peak is 1.0 at
// the midpoint and ~0.6065 at the edges; decay continues smoothly
// outside the window. Cutoffs are the pipeline's job, not this
// function's.
func WindowScore(indexedAt, start, end time.Time) float64 {
	mid := start.Add(end.Sub(start) / 2)
	halfWidth := end.Sub(start).Seconds() / 2
	if halfWidth <= 0 {
		// Degenerate window: full score exactly at the instant.
		if indexedAt.Equal(start) {
			return 1.0
		}
		return 0.0
	}
	d := math.Abs(indexedAt.Sub(mid).Seconds()) / halfWidth
	return math.Exp(-d * d / 2)
}

// ScoreTime picks the bounded or unbounded model based on whether the
// config carries a time range.
func ScoreTime(indexedAt time.Time, window *domain.TimeRange, now time.Time) float64 {
	if window != nil {
		return WindowScore(indexedAt, window.Start, window.End)
	}
	return TimeScore(indexedAt, now)
}
