package timeline

import (
	"time"
)

// Tick is a labelled position on the time axis. Label may span several
// lines separated by "\n".
type Tick struct {
	Time  time.Time `json:"time"`
	Label string    `json:"label"`
}

const day = 24 * time.Hour

// tickSteps is the ladder of candidate tick spacings, smallest first.
var tickSteps = []time.Duration{
	time.Minute, 2 * time.Minute, 5 * time.Minute, 10 * time.Minute,
	15 * time.Minute, 30 * time.Minute,
	time.Hour, 2 * time.Hour, 3 * time.Hour, 6 * time.Hour, 12 * time.Hour,
	day, 2 * day, 7 * day, 14 * day, 30 * day,
}

const (
	maxTicks        = 8
	minTicks        = 2
	pixelsPerTick   = 130
	emptySpanMargin = time.Hour
)

// timeDomain returns the earliest and latest instants touched by any
// event. A zero-length domain is widened by an hour on both sides, and a
// sub-minute domain to the enclosing whole minutes.
func timeDomain(events []Event) (time.Time, time.Time) {
	lo, hi := events[0].Start, events[0].Start
	for _, e := range events {
		for _, t := range []time.Time{e.Start, e.End} {
			if t.Before(lo) {
				lo = t
			}
			if t.After(hi) {
				hi = t
			}
		}
	}
	if !hi.After(lo) {
		lo = lo.Add(-emptySpanMargin)
		hi = hi.Add(emptySpanMargin)
	}
	// Spans shorter than the smallest step are widened to whole steps so
	// the axis always has ticks.
	if minStep := tickSteps[0]; hi.Sub(lo) < minStep {
		lo = floorTime(lo, minStep)
		hi = floorTime(hi, minStep).Add(minStep)
	}
	return lo, hi
}

// tickBudget is the maximum label count for a canvas width.
func tickBudget(width int) int {
	return max(minTicks, min(maxTicks, width/pixelsPerTick))
}

// chooseStep picks the smallest ladder step that yields at most budget
// ticks across span. Spans beyond the ladder use multiples of its top.
func chooseStep(span time.Duration, budget int) time.Duration {
	for _, step := range tickSteps {
		if int(span/step)+1 <= budget {
			return step
		}
	}
	top := tickSteps[len(tickSteps)-1]
	n := int(span/top)/(budget-1) + 1
	return time.Duration(n) * top
}

// floorTime aligns t down to a multiple of step counted from local midnight.
func floorTime(t time.Time, step time.Duration) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	if step >= day {
		return midnight
	}
	return midnight.Add(t.Sub(midnight) / step * step)
}

// buildTicks generates labelled ticks within [lo, hi].
func buildTicks(lo, hi time.Time, budget int) []Tick {
	step := chooseStep(hi.Sub(lo), budget)

	t := floorTime(lo, step)
	for t.Before(lo) {
		t = t.Add(step)
	}

	var ticks []Tick
	var prev time.Time
	for !t.After(hi) {
		ticks = append(ticks, Tick{Time: t, Label: tickLabel(t, prev, step)})
		prev = t
		t = t.Add(step)
	}
	return ticks
}

func tickLabel(t, prev time.Time, step time.Duration) string {
	if step >= day {
		return t.Format("Jan 2")
	}
	label := t.Format("15:04")
	if prev.IsZero() || !sameDay(prev, t) {
		label += "\n" + t.Format("Jan 2")
	}
	return label
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
