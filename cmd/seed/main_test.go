package main

import (
	"testing"
	"time"

	"github.com/mansoorceksport/subtrack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplesSeedEveryStatus(t *testing.T) {
	now := domain.CalendarDay(time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC))

	want := map[string]domain.Status{
		"Netflix":              domain.StatusActive,
		"Spotify Premium":      domain.StatusActive,
		"Adobe Creative Cloud": domain.StatusActive,
		"GitHub Pro":           domain.StatusExpiringSoon,
		"Gym Membership":       domain.StatusExpiringSoon,
		"New York Times":       domain.StatusExpired,
		"VPN Service":          domain.StatusExpired,
		"Microsoft 365":        domain.StatusExpired,
	}
	require.Len(t, samples, len(want))

	for _, s := range samples {
		var customDays *int
		if s.customDays > 0 {
			days := s.customDays
			customDays = &days
		}
		expiration := domain.ResolveExpirationDate(now.AddDate(0, 0, -s.startDays), s.duration, customDays, nil)

		assert.Equal(t, want[s.name], domain.ClassifyStatus(expiration, now), s.name)
	}
}
