package model

import (
	"fmt"
	"time"
)

// WindowDays is the width of each search window. Searching in 30-day chunks
// keeps individual queries under GitHub's 1000-result-per-query cap for most
// query shapes.
const WindowDays = 30

// SearchWindow is a calendar interval at day granularity. Both endpoints are
// inclusive, matching GitHub's created:A..B range qualifier.
type SearchWindow struct {
	Start time.Time
	End   time.Time
}

// DateQualifier renders the window as a GitHub search qualifier,
// e.g. "created:2014-01-01..2014-01-31".
func (w SearchWindow) DateQualifier() string {
	return fmt.Sprintf("created:%s..%s", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
}

// PartitionRange splits [start, end] into consecutive search windows in
// ascending order. Windows are contiguous and non-overlapping: each window
// spans at most WindowDays days past its start, and the next window begins
// one day after the previous window's end. The final window is clipped to
// end. Returns nil when start is after end.
func PartitionRange(start, end time.Time) []SearchWindow {
	start = truncateToDay(start)
	end = truncateToDay(end)

	var windows []SearchWindow
	for !start.After(end) {
		windowEnd := start.AddDate(0, 0, WindowDays)
		if windowEnd.After(end) {
			windowEnd = end
		}
		windows = append(windows, SearchWindow{Start: start, End: windowEnd})
		start = windowEnd.AddDate(0, 0, 1)
	}
	return windows
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
