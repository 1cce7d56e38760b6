package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sirius/internal/wizard"
)

func TestResolvePeriodPrecedence(t *testing.T) {
	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	// Explicit launch arguments win over a stored period.
	got := ResolvePeriod(Data{
		Args:   map[string]any{"year": 2025, "month": 3},
		Period: &wizard.Period{Year: 2024, Month: 12},
	}, now)
	assert.Equal(t, wizard.Period{Year: 2025, Month: 3}, got)

	// A stored period wins over the current-month fallback.
	got = ResolvePeriod(Data{Period: &wizard.Period{Year: 2024, Month: 12}}, now)
	assert.Equal(t, wizard.Period{Year: 2024, Month: 12}, got)

	// Neither present: current month.
	got = ResolvePeriod(Data{}, now)
	assert.Equal(t, wizard.Period{Year: 2026, Month: 8}, got)

	// JSON-decoded arguments arrive as float64.
	got = ResolvePeriod(Data{Args: map[string]any{"year": float64(2023), "month": float64(7)}}, now)
	assert.Equal(t, wizard.Period{Year: 2023, Month: 7}, got)

	// A partial argument pair falls through to the stored period.
	got = ResolvePeriod(Data{
		Args:   map[string]any{"year": 2025},
		Period: &wizard.Period{Year: 2024, Month: 6},
	}, now)
	assert.Equal(t, wizard.Period{Year: 2024, Month: 6}, got)
}

func TestOutputFileName(t *testing.T) {
	period := wizard.Period{Year: 2026, Month: 3}

	assert.Equal(t, "monthly-remittance_2026_03.csv", OutputFileName("monthly-remittance", period, ""))
	assert.Equal(t, "monthly-remittance_2026_03.csv", OutputFileName("monthly-remittance", period, "csv"))
	assert.Equal(t, "monthly-remittance_2026_12.xlsx", OutputFileName("monthly-remittance", wizard.Period{Year: 2026, Month: 12}, "xlsx"))
}

func TestFeedRegistry(t *testing.T) {
	r := NewRegistry()
	f := NewMonthlyRemittanceFeed(&fakeRemittanceSource{}, nil)

	assert.NoError(t, r.Register(f))
	assert.Error(t, r.Register(f))
	assert.Error(t, r.Register(nil))

	got, err := r.Get("monthly-remittance")
	assert.NoError(t, err)
	assert.Equal(t, f.Name(), got.Name())

	_, err = r.Get("bogus")
	assert.Error(t, err)
	assert.Len(t, r.List(), 1)
}
