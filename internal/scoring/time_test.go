package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/curator/internal/domain"
)

func TestTimeScore_NowScoresOne(t *testing.T) {
	now := time.Now()
	if score := TimeScore(now, now); score != 1.0 {
		t.Errorf("expected score 1.0 at age zero, got %f", score)
	}
}

func TestTimeScore_FutureClampsToOne(t *testing.T) {
	now := time.Now()
	if score := TimeScore(now.Add(time.Hour), now); score != 1.0 {
		t.Errorf("expected future timestamp to clamp to 1.0, got %f", score)
	}
}

func TestTimeScore_StrictlyDecreasing(t *testing.T) {
	now := time.Now()
	ages := []time.Duration{
		time.Hour,
		6 * time.Hour,
		24 * time.Hour,
		3 * 24 * time.Hour,
		7 * 24 * time.Hour,
		30 * 24 * time.Hour,
	}

	prev := 1.0
	for _, age := range ages {
		score := TimeScore(now.Add(-age), now)
		if score >= prev {
			t.Errorf("score %f at age %v not below %f", score, age, prev)
		}
		if score <= 0 {
			t.Errorf("score must stay above zero, got %f at age %v", score, age)
		}
		prev = score
	}
}

func TestTimeScore_OneDayOld(t *testing.T) {
	now := time.Now()
	// ageHours/24 == 1 at one day, so score = 1/(1+ln 2).
	want := 1.0 / (1.0 + math.Ln2)
	got := TimeScore(now.Add(-24*time.Hour), now)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %f at one day old, got %f", want, got)
	}
}

func TestWindowScore_PeakAtMidpoint(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)
	mid := start.Add(24 * time.Hour)

	if score := WindowScore(mid, start, end); score != 1.0 {
		t.Errorf("expected 1.0 at window midpoint, got %f", score)
	}
}

func TestWindowScore_EdgesNearPointSixZeroSixFive(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Hour)
	want := math.Exp(-0.5)

	for _, edge := range []time.Time{start, end} {
		got := WindowScore(edge, start, end)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("expected %f at window edge %v, got %f", want, edge, got)
		}
	}
}

func TestWindowScore_DecaysSmoothlyOutsideWindow(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Hour)

	outside := WindowScore(end.Add(5*time.Hour), start, end)
	farther := WindowScore(end.Add(20*time.Hour), start, end)

	if outside <= 0 || outside >= math.Exp(-0.5) {
		t.Errorf("expected score outside window in (0, edge score), got %f", outside)
	}
	if farther >= outside {
		t.Errorf("expected monotone decay outside window: %f then %f", outside, farther)
	}
}

func TestScoreTime_PicksModelFromWindow(t *testing.T) {
	now := time.Now()

	unbounded := ScoreTime(now, nil, now)
	if unbounded != 1.0 {
		t.Errorf("expected unbounded score 1.0 at now, got %f", unbounded)
	}

	window := &domain.TimeRange{Start: now.Add(-2 * time.Hour), End: now.Add(2 * time.Hour)}
	bounded := ScoreTime(now, window, now)
	if bounded != 1.0 {
		t.Errorf("expected bounded score 1.0 at window midpoint, got %f", bounded)
	}
}
