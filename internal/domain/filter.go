package domain

import (
	"fmt"
	"strings"
)

// StatusFilter selects subscriptions by status category
type StatusFilter string

const (
	FilterAll          StatusFilter = "all"
	FilterActive       StatusFilter = StatusFilter(StatusActive)
	FilterExpiringSoon StatusFilter = StatusFilter(StatusExpiringSoon)
	FilterExpired      StatusFilter = StatusFilter(StatusExpired)
)

// ParseStatusFilter accepts "", "all" or a status name
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(strings.TrimSpace(s)) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterExpiringSoon:
		return FilterExpiringSoon, nil
	case FilterExpired:
		return FilterExpired, nil
	}
	return "", fmt.Errorf("%w: unknown status filter %q", ErrValidation, s)
}

// FilterSubscriptions returns the records passing both the status filter and the
// free-text search, in their original order. The input slice is not modified.
func FilterSubscriptions(records []*Subscription, filter StatusFilter, search string) []*Subscription {
	query := strings.ToLower(strings.TrimSpace(search))

	result := make([]*Subscription, 0, len(records))
	for _, sub := range records {
		if filter != FilterAll && filter != "" && Status(filter) != sub.Status {
			continue
		}
		if query != "" && !matchesSearch(sub, query) {
			continue
		}
		result = append(result, sub)
	}
	return result
}

// matchesSearch checks client name or notes; records without notes only match on name
func matchesSearch(sub *Subscription, query string) bool {
	if strings.Contains(strings.ToLower(sub.ClientName), query) {
		return true
	}
	return sub.Notes != nil && strings.Contains(strings.ToLower(*sub.Notes), query)
}
