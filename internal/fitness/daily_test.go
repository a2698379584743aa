package fitness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func preparedOn(id string, day time.Time) Prepared {
	return Prepared{
		ID:        id,
		Name:      "Activity " + id,
		Date:      day,
		Timestamp: day.Unix(),
		DayOfYear: day.YearDay(),
		Year:      day.Year(),
	}
}

func TestFinalScorePriorityPowerWithMeterWins(t *testing.T) {
	p := preparedOn("a", time.Now())
	p.HasPowerMeter = true
	p.PSS = ptr(150)
	p.HRSS = ptr(190)
	assert.Equal(t, 150.0, finalScore(p))
}

func TestFinalScorePriorityChain(t *testing.T) {
	day := time.Now()

	hrOnly := preparedOn("a", day)
	hrOnly.HRSS = ptr(80)
	hrOnly.RSS = ptr(60)
	assert.Equal(t, 80.0, finalScore(hrOnly))

	trimpOnly := preparedOn("b", day)
	trimpOnly.TRIMP = ptr(70)
	assert.Equal(t, 70.0, finalScore(trimpOnly))

	// power without a meter only contributes after HR-based scores
	estimated := preparedOn("c", day)
	estimated.PSS = ptr(110)
	estimated.RSS = ptr(90)
	assert.Equal(t, 110.0, finalScore(estimated))

	runOnly := preparedOn("d", day)
	runOnly.RSS = ptr(90)
	assert.Equal(t, 90.0, finalScore(runOnly))

	swimOnly := preparedOn("e", day)
	swimOnly.SSS = ptr(40)
	assert.Equal(t, 40.0, finalScore(swimOnly))

	assert.Zero(t, finalScore(preparedOn("f", day)))
}

func TestGenerateDailyStressSpanAndPreviewDays(t *testing.T) {
	first := time.Date(2018, 1, 1, 10, 0, 0, 0, time.UTC)
	today := time.Date(2018, 2, 15, 0, 0, 0, 0, time.UTC)

	p := preparedOn("a", first)
	p.HRSS = ptr(100)

	days := GenerateDailyStress([]Prepared{p}, today)

	// 2017-12-31 .. 2018-02-15 inclusive = 47 days, plus the preview tail
	require.Len(t, days, 47+FutureDaysPreview)
	assert.Equal(t, time.Date(2017, 12, 31, 0, 0, 0, 0, time.UTC), days[0].Date)
	assert.Equal(t, today, days[46].Date)

	for _, d := range days[:47] {
		assert.False(t, d.PreviewDay)
	}
	for _, d := range days[47:] {
		assert.True(t, d.PreviewDay)
		assert.Nil(t, d.HRSS)
		assert.Zero(t, d.FinalStressScore)
		assert.Empty(t, d.IDs)
	}
	assert.Equal(t, today.AddDate(0, 0, FutureDaysPreview), days[len(days)-1].Date)
}

func TestGenerateDailyStressScenario(t *testing.T) {
	day1 := time.Date(2018, 1, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2018, 1, 2, 10, 0, 0, 0, time.UTC)
	today := time.Date(2018, 2, 15, 0, 0, 0, 0, time.UTC)

	a1 := preparedOn("a1", day1)
	a1.HasPowerMeter = true
	a1.PSS = ptr(150)
	a1.HRSS = ptr(190)

	a2 := preparedOn("a2", day2)
	a2.HasPowerMeter = true
	a2.PSS = ptr(150)

	days := GenerateDailyStress([]Prepared{a1, a2}, today)

	// index 0 is the synthetic day before the first activity
	d1 := days[1]
	assert.Equal(t, time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), d1.Date)
	assert.Equal(t, 150.0, d1.FinalStressScore) // power with meter beats HRSS 190
	require.NotNil(t, d1.HRSS)
	assert.Equal(t, 190.0, *d1.HRSS)
	require.NotNil(t, d1.PSS)
	assert.Equal(t, 150.0, *d1.PSS)

	d2 := days[2]
	assert.Equal(t, 150.0, d2.FinalStressScore)
	assert.Nil(t, d2.HRSS)
}

func TestGenerateDailyStressSumsSameDayActivities(t *testing.T) {
	day := time.Date(2019, 3, 10, 8, 0, 0, 0, time.UTC)
	today := time.Date(2019, 3, 12, 0, 0, 0, 0, time.UTC)

	morning := preparedOn("m", day)
	morning.HRSS = ptr(60)
	evening := preparedOn("e", day.Add(10*time.Hour))
	evening.HRSS = ptr(40)
	evening.RSS = ptr(55)

	days := GenerateDailyStress([]Prepared{morning, evening}, today)
	d := days[1]
	require.NotNil(t, d.HRSS)
	assert.Equal(t, 100.0, *d.HRSS)
	require.NotNil(t, d.RSS)
	assert.Equal(t, 55.0, *d.RSS)
	// each activity contributes its own first-priority score
	assert.Equal(t, 100.0, d.FinalStressScore)
	assert.Equal(t, []string{"m", "e"}, d.IDs)
}

func TestGenerateDailyStressEmptyInput(t *testing.T) {
	assert.Nil(t, GenerateDailyStress(nil, time.Now()))
}
