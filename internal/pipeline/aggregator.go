// Package pipeline rolls the recorded delta series into calendar views and
// forecasts end-of-month usage.
package pipeline

import (
	"time"

	"github.com/theirongolddev/dataneko/internal/model"
)

// AggregateHourly computes 24 hour-of-day buckets for the calendar day
// containing date, in date's location.
func AggregateHourly(deltas []model.IntervalDelta, date time.Time) []model.HourlyUsage {
	loc := date.Location()
	dayStart := startOfDay(date)
	dayEnd := dayStart.AddDate(0, 0, 1)

	hours := make([]model.HourlyUsage, 24)
	for i := range hours {
		hours[i].Hour = i
	}

	for _, d := range deltas {
		local := d.Timestamp.In(loc)
		if local.Before(dayStart) || !local.Before(dayEnd) {
			continue
		}
		h := local.Hour()
		hours[h].WifiBytes += d.WifiBytes
		hours[h].WWANBytes += d.WWANBytes
	}
	return hours
}

// WeekStart returns midnight of the first day of the week containing date.
func WeekStart(date time.Time, firstWeekday time.Weekday) time.Time {
	day := startOfDay(date)
	offset := (int(day.Weekday()) - int(firstWeekday) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// AggregateWeekly computes 7 day buckets for the week containing date,
// index 0 being firstWeekday.
func AggregateWeekly(deltas []model.IntervalDelta, date time.Time, firstWeekday time.Weekday) []model.DailyUsage {
	start := WeekStart(date, firstWeekday)
	days := make([]model.DailyUsage, 7)
	for i := range days {
		days[i].Index = i
		days[i].Date = start.AddDate(0, 0, i)
	}
	fillDays(days, deltas, start)
	return days
}

// AggregateMonthly computes one bucket per calendar day of date's month,
// indexed from 1.
func AggregateMonthly(deltas []model.IntervalDelta, date time.Time) []model.DailyUsage {
	start := startOfMonth(date)
	n := model.DaysInMonth(date)
	days := make([]model.DailyUsage, n)
	for i := range days {
		days[i].Index = i + 1
		days[i].Date = start.AddDate(0, 0, i)
	}
	fillDays(days, deltas, start)
	return days
}

// fillDays adds each delta to the bucket whose Date matches its local day.
func fillDays(days []model.DailyUsage, deltas []model.IntervalDelta, start time.Time) {
	loc := start.Location()
	end := start.AddDate(0, 0, len(days))
	for _, d := range deltas {
		local := d.Timestamp.In(loc)
		if local.Before(start) || !local.Before(end) {
			continue
		}
		// Day index by calendar date, not by 24h division, so DST days land correctly.
		idx := calendarDaysBetween(start, local)
		if idx < 0 || idx >= len(days) {
			continue
		}
		days[idx].WifiBytes += d.WifiBytes
		days[idx].WWANBytes += d.WWANBytes
	}
}

// MonthTotal sums the monthly buckets for date's month and converts to GB.
func MonthTotal(deltas []model.IntervalDelta, date time.Time) (wifiGB, wwanGB float64) {
	var wifi, wwan uint64
	for _, d := range AggregateMonthly(deltas, date) {
		wifi += d.WifiBytes
		wwan += d.WWANBytes
	}
	return model.ToGB(wifi), model.ToGB(wwan)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func calendarDaysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
