package service

import (
	"sort"
	"time"
)

// Streak counts consecutive calendar days, walking backwards from today,
// on which at least one of the timestamps falls. Calendar days are taken in
// today's location. A day without activity today yields 0 even when the
// days before it are unbroken.
func Streak(timestamps []time.Time, today time.Time) int {
	loc := today.Location()

	seen := make(map[civilDay]bool, len(timestamps))
	days := make([]civilDay, 0, len(timestamps))
	for _, ts := range timestamps {
		day := dayOf(ts.In(loc))
		if seen[day] {
			continue
		}
		seen[day] = true
		days = append(days, day)
	}

	sort.Slice(days, func(i, j int) bool {
		return days[j].before(days[i])
	})

	streak := 0
	expected := dayOf(today)
	for _, day := range days {
		if day != expected {
			break
		}
		streak++
		expected = expected.previous()
	}

	return streak
}

// civilDay is a date with no time of day, so zones whose DST shift skips
// local midnight cannot shift it.
type civilDay struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time) civilDay {
	y, m, d := t.Date()
	return civilDay{year: y, month: m, day: d}
}

func (d civilDay) previous() civilDay {
	return dayOf(time.Date(d.year, d.month, d.day-1, 12, 0, 0, 0, time.UTC))
}

func (d civilDay) before(o civilDay) bool {
	if d.year != o.year {
		return d.year < o.year
	}
	if d.month != o.month {
		return d.month < o.month
	}
	return d.day < o.day
}
