package service

import (
	"backend/internal/model"

	"github.com/shopspring/decimal"
)

// BreakdownStatus tags why a year appears in a liability report.
type BreakdownStatus string

const (
	// StatusRegistered — past year the member actually registered for.
	StatusRegistered BreakdownStatus = "registered"
	// StatusNewRegistrationPreviousYear — past year backdated onto a
	// brand-new registrant because that year's IncludePreviousYears is set.
	StatusNewRegistrationPreviousYear BreakdownStatus = "new_registration_previous_year"
	// StatusCurrentRegistered — reference year with an existing record.
	StatusCurrentRegistered BreakdownStatus = "current_registered"
	// StatusCurrentNew — reference year the member has not registered for yet.
	StatusCurrentNew BreakdownStatus = "current_new"
)

// YearLiability is one per-year line item of a liability report.
type YearLiability struct {
	Year        int             `json:"year"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Status      BreakdownStatus `json:"status"`
}

// LiabilitySnapshot bundles the two reads that feed the calculator into one
// value, making the consistency boundary explicit: the settings and records
// are fetched independently (no shared transaction), so a concurrent write
// between the two reads can yield a policy snapshot inconsistent with the
// record snapshot. Callers needing stronger guarantees must take both reads
// inside one transaction before building the snapshot.
type LiabilitySnapshot struct {
	// Settings must contain only IsActive rows for one trust, ascending by year.
	Settings []model.TaxYearSetting
	// Records are one member's tax records keyed by year.
	Records map[int]model.MemberTaxRecord
}

// LiabilityReport is the computed multi-year liability for one member.
// It is ephemeral — computed on demand, never persisted.
type LiabilityReport struct {
	CumulativeOutstanding   decimal.Decimal `json:"cumulative_outstanding"`
	CurrentYearTax          decimal.Decimal `json:"current_year_tax"`
	TotalTaxDue             decimal.Decimal `json:"total_tax_due"`
	YearBreakdown           []YearLiability `json:"year_breakdown"`
	HasExistingRegistration bool            `json:"has_existing_registration"`
	IsNewUser               bool            `json:"is_new_user"`
	JoiningYear             int             `json:"joining_year"`
}

// ComputeLiability reconciles a trust's per-year tax policy against one
// member's payment history as of referenceYear. It is a pure function: no
// I/O, no mutation of its inputs, and identical inputs always produce an
// identical report.
//
// Rules, per year of the (ascending) settings slice:
//
//   - Past year with a record: outstanding = max(0, assessed - paid) is added
//     to the cumulative total. A fully paid year still gets a breakdown row
//     and still advances the joining year.
//   - Past year without a record: charged only when the member has no record
//     for the reference year AND that year's own IncludePreviousYears flag is
//     set. A year that qualifies under neither rule is excluded outright —
//     no zero-filled row.
//   - Reference year: sets CurrentYearTax from the setting; the breakdown row
//     reflects the record when one exists.
//   - Future years: invisible. No accumulation, no breakdown entry.
//
// Backdating is per-year: each past year's own flag decides whether that
// year is retroactively charged. A member who already holds a current-year
// record is never backdated, regardless of any flag.
func ComputeLiability(snapshot LiabilitySnapshot, referenceYear int) LiabilityReport {
	isNewUser := len(snapshot.Records) == 0
	_, hasCurrentYearRegistration := snapshot.Records[referenceYear]

	cumulative := decimal.Zero
	currentYearTax := decimal.Zero
	joiningYear := 0
	breakdown := make([]YearLiability, 0, len(snapshot.Settings))

	for _, setting := range snapshot.Settings {
		switch {
		case setting.Year < referenceYear:
			if rec, ok := snapshot.Records[setting.Year]; ok {
				due := outstandingOf(rec.TaxAmount, rec.AmountPaid)
				cumulative = cumulative.Add(due)
				breakdown = append(breakdown, YearLiability{
					Year:        setting.Year,
					TaxAmount:   rec.TaxAmount,
					AmountPaid:  rec.AmountPaid,
					Outstanding: due,
					Status:      StatusRegistered,
				})
				if joiningYear == 0 {
					joiningYear = setting.Year
				}
			} else if !hasCurrentYearRegistration && setting.IncludePreviousYears {
				cumulative = cumulative.Add(setting.TaxAmount)
				breakdown = append(breakdown, YearLiability{
					Year:        setting.Year,
					TaxAmount:   setting.TaxAmount,
					AmountPaid:  decimal.Zero,
					Outstanding: setting.TaxAmount,
					Status:      StatusNewRegistrationPreviousYear,
				})
				if joiningYear == 0 {
					joiningYear = setting.Year
				}
			}
			// Neither rule applies: the year contributes nothing and is
			// silently excluded from the breakdown.

		case setting.Year == referenceYear:
			currentYearTax = setting.TaxAmount
			if rec, ok := snapshot.Records[setting.Year]; ok {
				breakdown = append(breakdown, YearLiability{
					Year:        setting.Year,
					TaxAmount:   rec.TaxAmount,
					AmountPaid:  rec.AmountPaid,
					Outstanding: outstandingOf(rec.TaxAmount, rec.AmountPaid),
					Status:      StatusCurrentRegistered,
				})
			} else {
				breakdown = append(breakdown, YearLiability{
					Year:        setting.Year,
					TaxAmount:   setting.TaxAmount,
					AmountPaid:  decimal.Zero,
					Outstanding: setting.TaxAmount,
					Status:      StatusCurrentNew,
				})
			}
			// Fallback only: a qualifying past year always wins.
			if joiningYear == 0 {
				joiningYear = setting.Year
			}

		default:
			// setting.Year > referenceYear: future policy rows are invisible
			// to a liability computation for an earlier reference year.
		}
	}

	if joiningYear == 0 {
		joiningYear = referenceYear
	}

	return LiabilityReport{
		CumulativeOutstanding:   cumulative,
		CurrentYearTax:          currentYearTax,
		TotalTaxDue:             cumulative.Add(currentYearTax),
		YearBreakdown:           breakdown,
		HasExistingRegistration: !isNewUser,
		IsNewUser:               isNewUser,
		JoiningYear:             joiningYear,
	}
}

// outstandingOf recomputes the unpaid balance; the stored OutstandingAmount
// column is never trusted.
func outstandingOf(taxAmount, amountPaid decimal.Decimal) decimal.Decimal {
	due := taxAmount.Sub(amountPaid)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}
