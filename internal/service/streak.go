package service

import "time"

const dayLayout = "2006-01-02"

// computeStreaks takes distinct practice days (YYYY-MM-DD, UTC, any
// order) and returns the longest run of consecutive days and the run that
// is still alive: one ending today, or yesterday when today has no
// practice yet.
func computeStreaks(days []string, now time.Time) (longest, current int) {
	seen := make(map[time.Time]struct{}, len(days))
	for _, raw := range days {
		day, err := time.Parse(dayLayout, raw)
		if err != nil {
			continue
		}
		seen[day] = struct{}{}
	}

	for day := range seen {
		if _, ok := seen[day.AddDate(0, 0, -1)]; ok {
			continue
		}
		run := 1
		for next := day.AddDate(0, 0, 1); ; next = next.AddDate(0, 0, 1) {
			if _, ok := seen[next]; !ok {
				break
			}
			run++
		}
		if run > longest {
			longest = run
		}
	}

	today := truncateDay(now)
	cursor := today
	if _, ok := seen[cursor]; !ok {
		cursor = today.AddDate(0, 0, -1)
	}
	for {
		if _, ok := seen[cursor]; !ok {
			break
		}
		current++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return longest, current
}

func truncateDay(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}
