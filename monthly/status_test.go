package monthly_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/commission-engine/comp"
	"github.com/warp/commission-engine/monthly"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestDeriveStatus_NoHistory_NewBusiness(t *testing.T) {
	got := monthly.DeriveStatus(nil, 12, date(2025, time.March, 15))
	assert.Equal(t, comp.StatusNewBusiness, got)
}

func TestDeriveStatus_RecentOrder_SixMonthActive(t *testing.T) {
	got := monthly.DeriveStatus(datePtr(2025, time.January, 10), 12, date(2025, time.March, 15))
	assert.Equal(t, comp.Status6MonthActive, got)
}

func TestDeriveStatus_MidRange_TwelveMonthActive(t *testing.T) {
	// 8 months ago: past the 6-month window, inside the 12-month window.
	got := monthly.DeriveStatus(datePtr(2024, time.July, 15), 12, date(2025, time.March, 15))
	assert.Equal(t, comp.Status12MonthActive, got)
}

func TestDeriveStatus_ExactlySixMonths_TwelveMonthActive(t *testing.T) {
	// The 6-month window is half-open: exactly 6 months old falls out.
	got := monthly.DeriveStatus(datePtr(2024, time.September, 15), 12, date(2025, time.March, 15))
	assert.Equal(t, comp.Status12MonthActive, got)
}

func TestDeriveStatus_ExactlyAtThreshold_NewBusiness(t *testing.T) {
	got := monthly.DeriveStatus(datePtr(2024, time.March, 15), 12, date(2025, time.March, 15))
	assert.Equal(t, comp.StatusNewBusiness, got)
}

func TestDeriveStatus_CustomThreshold(t *testing.T) {
	// With an 18-month threshold, a 14-month-old order is neither active
	// tier nor past the threshold; it still resolves to new business.
	got := monthly.DeriveStatus(datePtr(2024, time.January, 15), 18, date(2025, time.March, 15))
	assert.Equal(t, comp.StatusNewBusiness, got)

	// And a 10-month-old order is unaffected by the longer threshold.
	got = monthly.DeriveStatus(datePtr(2024, time.May, 15), 18, date(2025, time.March, 15))
	assert.Equal(t, comp.Status12MonthActive, got)
}

func TestDeriveStatus_ZeroThreshold_UsesDefault(t *testing.T) {
	got := monthly.DeriveStatus(datePtr(2025, time.February, 1), 0, date(2025, time.March, 15))
	assert.Equal(t, comp.Status6MonthActive, got)
}
