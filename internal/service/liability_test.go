package service

import (
	"testing"

	"backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func activeSetting(t *testing.T, year int, amount string, includePrev bool) model.TaxYearSetting {
	t.Helper()
	return model.TaxYearSetting{
		Year:                 year,
		TaxAmount:            dec(t, amount),
		IsActive:             true,
		IncludePreviousYears: includePrev,
	}
}

func taxRecord(t *testing.T, year int, assessed, paid string) model.MemberTaxRecord {
	t.Helper()
	return model.MemberTaxRecord{
		Year:       year,
		TaxAmount:  dec(t, assessed),
		AmountPaid: dec(t, paid),
	}
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, actual.Equal(dec(t, expected)), "expected %s, got %s", expected, actual.String())
}

func TestComputeLiabilityEmptyInputs(t *testing.T) {
	report := ComputeLiability(LiabilitySnapshot{
		Settings: nil,
		Records:  map[int]model.MemberTaxRecord{},
	}, 2024)

	assertDecimal(t, "0", report.CumulativeOutstanding)
	assertDecimal(t, "0", report.CurrentYearTax)
	assertDecimal(t, "0", report.TotalTaxDue)
	assert.Empty(t, report.YearBreakdown)
	assert.True(t, report.IsNewUser)
	assert.False(t, report.HasExistingRegistration)
	assert.Equal(t, 2024, report.JoiningYear)
}

func TestComputeLiabilityNewMemberBackdated(t *testing.T) {
	snapshot := LiabilitySnapshot{
		Settings: []model.TaxYearSetting{
			activeSetting(t, 2022, "500", true),
			activeSetting(t, 2023, "600", true),
		},
		Records: map[int]model.MemberTaxRecord{},
	}

	report := ComputeLiability(snapshot, 2023)

	assertDecimal(t, "500", report.CumulativeOutstanding)
	assertDecimal(t, "600", report.CurrentYearTax)
	assertDecimal(t, "1100", report.TotalTaxDue)
	assert.True(t, report.IsNewUser)
	assert.Equal(t, 2022, report.JoiningYear)

	require.Len(t, report.YearBreakdown, 2)
	assert.Equal(t, 2022, report.YearBreakdown[0].Year)
	assert.Equal(t, StatusNewRegistrationPreviousYear, report.YearBreakdown[0].Status)
	assertDecimal(t, "500", report.YearBreakdown[0].Outstanding)
	assert.Equal(t, 2023, report.YearBreakdown[1].Year)
	assert.Equal(t, StatusCurrentNew, report.YearBreakdown[1].Status)
	assertDecimal(t, "600", report.YearBreakdown[1].Outstanding)
}

func TestComputeLiabilityCurrentYearRecordBlocksBackdating(t *testing.T) {
	snapshot := LiabilitySnapshot{
		Settings: []model.TaxYearSetting{
			activeSetting(t, 2022, "500", true),
			activeSetting(t, 2023, "600", true),
		},
		Records: map[int]model.MemberTaxRecord{
			2023: taxRecord(t, 2023, "600", "0"),
		},
	}

	report := ComputeLiability(snapshot, 2023)

	// The member already holds a current-year record, so 2022 must not be
	// retroactively charged even though its flag is set.
	assertDecimal(t, "0", report.CumulativeOutstanding)
	assertDecimal(t, "600", report.CurrentYearTax)
	assertDecimal(t, "600", report.TotalTaxDue)
	assert.False(t, report.IsNewUser)
	assert.Equal(t, 2023, report.JoiningYear)

	require.Len(t, report.YearBreakdown, 1)
	assert.Equal(t, StatusCurrentRegistered, report.YearBreakdown[0].Status)
}

func TestComputeLiabilityPerYearFlagIndependence(t *testing.T) {
	snapshot := LiabilitySnapshot{
		Settings: []model.TaxYearSetting{
			activeSetting(t, 2020, "300", false),
			activeSetting(t, 2021, "400", true),
			activeSetting(t, 2022, "500", false),
			activeSetting(t, 2023, "600", true),
		},
		Records: map[int]model.MemberTaxRecord{},
	}

	report := ComputeLiability(snapshot, 2023)

	// Only 2021 carries the backdating flag; 2020 and 2022 are excluded.
	assertDecimal(t, "400", report.CumulativeOutstanding)
	assertDecimal(t, "600", report.CurrentYearTax)
	assertDecimal(t, "1000", report.TotalTaxDue)
	assert.Equal(t, 2021, report.JoiningYear)

	require.Len(t, report.YearBreakdown, 2)
	assert.Equal(t, 2021, report.YearBreakdown[0].Year)
	assert.Equal(t, 2023, report.YearBreakdown[1].Year)
}

func TestComputeLiabilityPartialAndFullPayments(t *testing.T) {
	snapshot := LiabilitySnapshot{
		Settings: []model.TaxYearSetting{
			activeSetting(t, 2021, "400", false),
			activeSetting(t, 2022, "500", false),
			activeSetting(t, 2023, "600", false),
		},
		Records: map[int]model.MemberTaxRecord{
			2021: taxRecord(t, 2021, "400", "400"),
			2022: taxRecord(t, 2022, "500", "200"),
		},
	}

	report := ComputeLiability(snapshot, 2023)

	// 2021 fully paid contributes zero but keeps its row and sets the
	// joining year; 2022 contributes the unpaid 300.
	assertDecimal(t, "300", report.CumulativeOutstanding)
	assertDecimal(t, "600", report.CurrentYearTax)
	assertDecimal(t, "900", report.TotalTaxDue)
	assert.Equal(t, 2021, report.JoiningYear)
	assert.False(t, report.IsNewUser)

	require.Len(t, report.YearBreakdown, 3)
	assert.Equal(t, StatusRegistered, report.YearBreakdown[0].Status)
	assertDecimal(t, "0", report.YearBreakdown[0].Outstanding)
	assertDecimal(t, "300", report.YearBreakdown[1].Outstanding)
	assert.Equal(t, StatusCurrentNew, report.YearBreakdown[2].Status)
}

func TestComputeLiabilityOverpaymentClampsToZero(t *testing.T) {
	snapshot := LiabilitySnapshot{
		Settings: []model.TaxYearSetting{
			activeSetting(t, 2022, "500", false),
			activeSetting(t, 2023, "600", false),
		},
		Records: map[int]model.MemberTaxRecord{
			2022: taxRecord(t, 2022, "500", "650"),
		},
	}

	report := ComputeLiability(snapshot, 2023)

	assertDecimal(t, "0", report.CumulativeOutstanding)
	assertDecimal(t, "0", report.YearBreakdown[0].Outstanding)
	assert.False(t, report.YearBreakdown[0].Outstanding.IsNegative())
}

func TestComputeLiabilityFutureYearsInvisible(t *testing.T) {
	snapshot := LiabilitySnapshot{
		Settings: []model.TaxYearSetting{
			activeSetting(t, 2023, "600", true),
			activeSetting(t, 2024, "700", true),
			activeSetting(t, 2025, "800", true),
		},
		Records: map[int]model.MemberTaxRecord{},
	}

	report := ComputeLiability(snapshot, 2023)

	assertDecimal(t, "0", report.CumulativeOutstanding)
	assertDecimal(t, "600", report.CurrentYearTax)
	assertDecimal(t, "600", report.TotalTaxDue)
	require.Len(t, report.YearBreakdown, 1)
	assert.Equal(t, 2023, report.YearBreakdown[0].Year)
}

func TestComputeLiabilityNoSettingForReferenceYear(t *testing.T) {
	snapshot := LiabilitySnapshot{
		Settings: []model.TaxYearSetting{
			activeSetting(t, 2021, "400", false),
		},
		Records: map[int]model.MemberTaxRecord{
			2021: taxRecord(t, 2021, "400", "100"),
		},
	}

	report := ComputeLiability(snapshot, 2023)

	assertDecimal(t, "300", report.CumulativeOutstanding)
	assertDecimal(t, "0", report.CurrentYearTax)
	assertDecimal(t, "300", report.TotalTaxDue)
	assert.Equal(t, 2021, report.JoiningYear)
}

func TestComputeLiabilityRecordWithoutSettingIgnored(t *testing.T) {
	snapshot := LiabilitySnapshot{
		Settings: []model.TaxYearSetting{
			activeSetting(t, 2023, "600", false),
		},
		Records: map[int]model.MemberTaxRecord{
			2020: taxRecord(t, 2020, "250", "0"),
		},
	}

	report := ComputeLiability(snapshot, 2023)

	// 2020 has no policy row, so its record never enters the fold.
	assertDecimal(t, "0", report.CumulativeOutstanding)
	require.Len(t, report.YearBreakdown, 1)
	assert.Equal(t, 2023, report.YearBreakdown[0].Year)
	// A non-empty record map still marks the member as registered.
	assert.False(t, report.IsNewUser)
}

func TestComputeLiabilityDeterministic(t *testing.T) {
	snapshot := LiabilitySnapshot{
		Settings: []model.TaxYearSetting{
			activeSetting(t, 2021, "400", true),
			activeSetting(t, 2022, "500", false),
			activeSetting(t, 2023, "600", true),
		},
		Records: map[int]model.MemberTaxRecord{
			2022: taxRecord(t, 2022, "500", "250"),
		},
	}

	first := ComputeLiability(snapshot, 2023)
	second := ComputeLiability(snapshot, 2023)

	assert.Equal(t, first, second)
}

func TestComputeLiabilityTotalIdentity(t *testing.T) {
	cases := []struct {
		name     string
		snapshot LiabilitySnapshot
		year     int
	}{
		{
			name: "new member backdated",
			snapshot: LiabilitySnapshot{
				Settings: []model.TaxYearSetting{
					activeSetting(t, 2022, "500", true),
					activeSetting(t, 2023, "600", false),
				},
				Records: map[int]model.MemberTaxRecord{},
			},
			year: 2023,
		},
		{
			name: "registered with arrears",
			snapshot: LiabilitySnapshot{
				Settings: []model.TaxYearSetting{
					activeSetting(t, 2021, "400", false),
					activeSetting(t, 2022, "500", false),
					activeSetting(t, 2023, "600", false),
				},
				Records: map[int]model.MemberTaxRecord{
					2021: taxRecord(t, 2021, "400", "150"),
					2022: taxRecord(t, 2022, "500", "500"),
					2023: taxRecord(t, 2023, "600", "100"),
				},
			},
			year: 2023,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report := ComputeLiability(tc.snapshot, tc.year)
			assert.True(t, report.TotalTaxDue.Equal(report.CumulativeOutstanding.Add(report.CurrentYearTax)))
		})
	}
}
