package domain

import (
	"sort"
	"time"
)

// DashboardListLimit caps the dashboard's recent-subscriptions list
const DashboardListLimit = 10

// DashboardSummary is the aggregate shown on the dashboard cards
type DashboardSummary struct {
	Total        int             `json:"total"`
	Active       int             `json:"active"`
	ExpiringSoon int             `json:"expiring_soon"`
	Expired      int             `json:"expired"`
	ActiveCost   float64         `json:"active_cost"`
	Latest       []*Subscription `json:"latest"`
}

// CalendarDayEntry lists the subscriptions expiring on one day
type CalendarDayEntry struct {
	Date          time.Time       `json:"date"`
	Subscriptions []*Subscription `json:"subscriptions"`
}

// CalendarMonth is the calendar view for one month
type CalendarMonth struct {
	Year        int                `json:"year"`
	Month       time.Month         `json:"month"`
	Days        []CalendarDayEntry `json:"days"`
	Expirations []*Subscription    `json:"expirations"`
}

// SummarizeSubscriptions counts all records per status (re-classified against now).
// The dashboard list holds the latest-expiring records that pass filter and search.
func SummarizeSubscriptions(records []*Subscription, now time.Time, filter StatusFilter, search string) *DashboardSummary {
	summary := &DashboardSummary{
		Total:  len(records),
		Latest: []*Subscription{},
	}

	current := make([]*Subscription, 0, len(records))
	for _, sub := range records {
		c := sub.Clone()
		c.Refresh(now)
		current = append(current, c)

		switch c.Status {
		case StatusActive:
			summary.Active++
		case StatusExpiringSoon:
			summary.ExpiringSoon++
		case StatusExpired:
			summary.Expired++
			continue
		}
		if sub.Cost != nil {
			summary.ActiveCost += *sub.Cost
		}
	}

	sorted := FilterSubscriptions(current, filter, search)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ExpirationDate.After(sorted[j].ExpirationDate)
	})
	if len(sorted) > DashboardListLimit {
		sorted = sorted[:DashboardListLimit]
	}
	summary.Latest = append(summary.Latest, sorted...)

	return summary
}

// BuildCalendarMonth lays out every day of the month with the records expiring on it
func BuildCalendarMonth(records []*Subscription, year int, month time.Month) *CalendarMonth {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	cal := &CalendarMonth{
		Year:        year,
		Month:       month,
		Expirations: []*Subscription{},
	}

	byDay := make(map[int][]*Subscription)
	for _, sub := range records {
		exp := CalendarDay(sub.ExpirationDate)
		if exp.Before(first) || !exp.Before(next) {
			continue
		}
		byDay[exp.Day()] = append(byDay[exp.Day()], sub)
		cal.Expirations = append(cal.Expirations, sub)
	}

	for day := first; day.Before(next); day = day.AddDate(0, 0, 1) {
		subs := byDay[day.Day()]
		if subs == nil {
			subs = []*Subscription{}
		}
		cal.Days = append(cal.Days, CalendarDayEntry{Date: day, Subscriptions: subs})
	}

	sort.SliceStable(cal.Expirations, func(i, j int) bool {
		return cal.Expirations[i].ExpirationDate.Before(cal.Expirations[j].ExpirationDate)
	})

	return cal
}
