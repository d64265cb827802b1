package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentaid/assessment-engine/engine"
)

// =============================================================================
// FAMILY SIZE TABLE
// =============================================================================

func TestFamilySizeTable_Lookup(t *testing.T) {
	table := engine.FamilySizeTable{2: money(50000), 3: money(60000), 5: money(78000), 7: money(92000)}

	tests := []struct {
		size int
		want float64
	}{
		{1, 50000},  // below smallest size
		{2, 50000},
		{4, 60000},  // gap uses nearest smaller size
		{5, 78000},
		{7, 92000},
		{12, 92000}, // capped at the largest size
	}
	for _, tt := range tests {
		got, ok := table.Lookup(tt.size)
		assert.True(t, ok)
		requireMoney(t, tt.want, got, "size %d", tt.size)
	}

	_, ok := engine.FamilySizeTable{}.Lookup(1)
	assert.False(t, ok)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate_DefaultProgramYearIsValid(t *testing.T) {
	assert.NoError(t, programYear(t).Validate())
}

func TestValidate_MissingAwardAmount_ConfigError(t *testing.T) {
	// GIVEN: the part-time CSGP federal amount removed
	cfg := cloneAwards(programYear(t))
	csgp := cfg.Awards[engine.PartTime][engine.AwardCSGP]
	csgp.Federal = engine.ComponentConfig{}
	cfg.Awards[engine.PartTime][engine.AwardCSGP] = csgp

	err := cfg.Validate()

	var ce *engine.ConfigError
	require.True(t, errors.As(err, &ce))
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)
	assert.Equal(t, engine.PartTime, ce.Intensity)
	assert.Equal(t, engine.AwardCSGP, ce.Award)
	assert.Equal(t, "federal.amount", ce.Field)
}

func TestValidate_MissingAward_ConfigError(t *testing.T) {
	cfg := cloneAwards(programYear(t))
	delete(cfg.Awards[engine.FullTime], engine.AwardBCAG)

	err := cfg.Validate()

	var ce *engine.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, engine.AwardBCAG, ce.Award)
	assert.Equal(t, "award", ce.Field)
}

func TestValidate_MissingIncomeThresholds_ConfigError(t *testing.T) {
	cfg := cloneAwards(programYear(t))
	cspt := cfg.Awards[engine.PartTime][engine.AwardCSPT]
	cspt.IncomeThresholds = nil
	cfg.Awards[engine.PartTime][engine.AwardCSPT] = cspt

	var ce *engine.ConfigError
	require.ErrorAs(t, cfg.Validate(), &ce)
	assert.Equal(t, "incomeThresholds", ce.Field)
}

func TestValidate_ReductionFactorOutOfRange(t *testing.T) {
	cfg := cloneAwards(programYear(t))
	cfg.Transportation.DistanceReductionFactor = decimal.NewFromFloat(1.5)

	assert.ErrorIs(t, cfg.Validate(), engine.ErrInvalidConfig)
}

// cloneAwards copies the config deeply enough to edit award entries.
func cloneAwards(src *engine.ProgramYearConfig) *engine.ProgramYearConfig {
	cfg := *src
	cfg.Awards = make(map[engine.OfferingIntensity]map[engine.AwardCode]engine.AwardConfig)
	for intensity, awards := range src.Awards {
		cfg.Awards[intensity] = make(map[engine.AwardCode]engine.AwardConfig, len(awards))
		for code, a := range awards {
			cfg.Awards[intensity][code] = a
		}
	}
	return &cfg
}

// =============================================================================
// PROGRAM YEAR AND DATES
// =============================================================================

func TestParseProgramYear(t *testing.T) {
	py, err := engine.ParseProgramYear("2024-2025")
	require.NoError(t, err)
	assert.True(t, py.Start.Equal(date(2024, time.August, 1)))
	assert.True(t, py.End.Equal(date(2025, time.July, 31)))
	assert.True(t, py.Contains(date(2025, time.January, 15)))
	assert.False(t, py.Contains(date(2025, time.August, 1)))

	for _, bad := range []string{"2024", "2024-2026", "abcd-efgh", ""} {
		_, err := engine.ParseProgramYear(bad)
		assert.ErrorIs(t, err, engine.ErrInvalidInput, bad)
	}
}

func TestWholeYearsBetween(t *testing.T) {
	from := date(2014, time.September, 1)

	assert.Equal(t, 10, engine.WholeYearsBetween(from, date(2024, time.September, 1)))
	assert.Equal(t, 9, engine.WholeYearsBetween(from, date(2024, time.August, 31)))
	assert.Equal(t, 0, engine.WholeYearsBetween(from, date(2010, time.January, 1)))
	// Feb 29 birthdays complete a year on Mar 1 in non-leap years
	assert.Equal(t, 1, engine.AgeAt(date(2020, time.February, 29), date(2021, time.March, 1)))
	assert.Equal(t, 0, engine.AgeAt(date(2020, time.February, 29), date(2021, time.February, 28)))
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d, err := engine.ParseDate("2024-09-03")
	require.NoError(t, err)

	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2024-09-03"`, string(b))

	var back engine.Date
	require.NoError(t, back.UnmarshalJSON([]byte(`null`)))
	assert.True(t, back.IsZero())
}
