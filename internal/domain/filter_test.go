package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []*Subscription {
	mk := func(id, name string, notes *string, daysAgo int, duration string) *Subscription {
		start := refNow.AddDate(0, 0, -daysAgo)
		return NewSubscription(id, SubscriptionInput{
			ClientName: name,
			PlanType:   "Basic",
			Duration:   duration,
			StartDate:  &start,
			Notes:      notes,
		}, refNow)
	}

	return []*Subscription{
		mk("1", "Netflix", strPtr("Family plan with 4K streaming"), 10, "1-month"),
		mk("2", "Spotify", nil, 5, "1-month"),
		mk("3", "GitHub Pro", strPtr("Private repositories"), 20, "1-month"),
		mk("4", "New York Times", strPtr("Digital subscription"), 35, "1-month"),
		mk("5", "VPN Service", strPtr("NordVPN premium plan"), 370, "1-year"),
	}
}

func TestFilterSubscriptions_Status(t *testing.T) {
	records := sampleRecords()

	expired := FilterSubscriptions(records, FilterExpired, "")
	require.Len(t, expired, 2)
	assert.Equal(t, "4", expired[0].ID)
	assert.Equal(t, "5", expired[1].ID)

	soon := FilterSubscriptions(records, FilterExpiringSoon, "")
	require.Len(t, soon, 1)
	assert.Equal(t, "3", soon[0].ID)

	assert.Len(t, FilterSubscriptions(records, FilterAll, ""), len(records))
	assert.Len(t, FilterSubscriptions(records, FilterActive, ""), 2)
}

func TestFilterSubscriptions_Search(t *testing.T) {
	records := sampleRecords()

	got := FilterSubscriptions(records, FilterAll, "netflix")
	require.Len(t, got, 1)
	assert.Equal(t, "Netflix", got[0].ClientName)

	// matches on notes, record without notes never matches on notes
	got = FilterSubscriptions(records, FilterAll, "  PLAN ")
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "5", got[1].ID)

	assert.Empty(t, FilterSubscriptions(records, FilterAll, "nothing matches"))
}

func TestFilterSubscriptions_ComposesWithAnd(t *testing.T) {
	records := sampleRecords()

	got := FilterSubscriptions(records, FilterExpired, "vpn")
	require.Len(t, got, 1)
	assert.Equal(t, "5", got[0].ID)

	assert.Empty(t, FilterSubscriptions(records, FilterActive, "vpn"))
}

func TestFilterSubscriptions_DoesNotMutateInput(t *testing.T) {
	records := sampleRecords()
	before := make([]string, len(records))
	for i, r := range records {
		before[i] = r.ID
	}

	_ = FilterSubscriptions(records, FilterExpired, "x")

	for i, r := range records {
		assert.Equal(t, before[i], r.ID)
	}
}

func TestParseStatusFilter(t *testing.T) {
	f, err := ParseStatusFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	f, err = ParseStatusFilter("expiring-soon")
	require.NoError(t, err)
	assert.Equal(t, FilterExpiringSoon, f)

	_, err = ParseStatusFilter("bogus")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSummarizeSubscriptions(t *testing.T) {
	records := sampleRecords()
	records[0].Cost = floatPtr(15.99)
	records[3].Cost = floatPtr(4)

	summary := SummarizeSubscriptions(records, refNow, FilterAll, "")

	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 2, summary.Active)
	assert.Equal(t, 1, summary.ExpiringSoon)
	assert.Equal(t, 2, summary.Expired)
	assert.InDelta(t, 15.99, summary.ActiveCost, 0.001)
	require.Len(t, summary.Latest, 5)
	assert.Equal(t, "2", summary.Latest[0].ID)
	assert.Equal(t, "5", summary.Latest[4].ID)
}

func TestSummarizeSubscriptions_FilteredLatest(t *testing.T) {
	records := sampleRecords()

	expired := SummarizeSubscriptions(records, refNow, FilterExpired, "")
	// cards still count every record
	assert.Equal(t, 5, expired.Total)
	assert.Equal(t, 2, expired.Active)
	assert.Equal(t, []string{"4", "5"}, ids(expired.Latest))

	searched := SummarizeSubscriptions(records, refNow, FilterAll, " GIT ")
	assert.Equal(t, []string{"3"}, ids(searched.Latest))

	none := SummarizeSubscriptions(records, refNow, FilterActive, "vpn")
	assert.Empty(t, none.Latest)
	assert.NotNil(t, none.Latest)
}

func TestBuildCalendarMonth(t *testing.T) {
	records := sampleRecords()

	cal := BuildCalendarMonth(records, 2025, time.March)

	assert.Len(t, cal.Days, 31)
	// New York Times and VPN expire Mar 5, GitHub Mar 20, Netflix Mar 30
	require.Len(t, cal.Expirations, 4)
	assert.Equal(t, []string{"4", "5", "3", "1"}, ids(cal.Expirations))

	assert.Equal(t, []string{"4", "5"}, ids(cal.Days[4].Subscriptions))
	assert.Equal(t, []string{"1"}, ids(cal.Days[29].Subscriptions))
	assert.Empty(t, cal.Days[0].Subscriptions)
}

func ids(records []*Subscription) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func floatPtr(f float64) *float64 {
	return &f
}
