// Package roi turns extracted energy metrics and economic assumptions into a
// profitability report. Pure arithmetic: deterministic and idempotent for
// identical inputs, no retries needed anywhere above it.
package roi

import (
	"math"

	"solarcalc/internal/domain/entity"
)

// DefaultSystemSizeKW is the installed peak power assumed when the results
// page did not expose one. Matches the recommended residential system the
// estimation flow is tuned for.
const DefaultSystemSizeKW = 5.0

// co2PerKWh is the avoided-emissions factor in kg CO2 per kWh produced.
const co2PerKWh = 0.4

// Compute derives the profitability report.
//
// Returns a nil report with an InvalidInput error when the metrics are not
// valid or the assumptions are non-positive. When the annual savings are
// zero the report is still returned with PaybackYears set to +Inf, alongside
// a DivisionByZero error for the caller to record.
func Compute(m entity.ExtractedMetrics, a entity.EconomicAssumptions) (*entity.ProfitabilityReport, *entity.ComputationError) {
	if !m.Valid {
		return nil, &entity.ComputationError{
			Kind:    entity.ComputationInvalidInput,
			Message: "metrics not valid: " + m.Reason,
		}
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	annualSavings := m.AnnualYieldKWh * a.ElectricityPricePerKWh

	peakKW := m.PeakPowerKW
	if peakKW <= 0 {
		peakKW = DefaultSystemSizeKW
	}
	systemCost := peakKW * a.PanelCostPerKW

	report := &entity.ProfitabilityReport{
		AnnualSavings:       annualSavings,
		EstimatedSystemCost: systemCost,
		LifetimeSavings:     annualSavings*a.ExpectedLifetimeYears - systemCost,
		CO2AvoidedKg:        m.AnnualYieldKWh * co2PerKWh,
	}

	if annualSavings == 0 {
		report.PaybackYears = math.Inf(1)
		return report, &entity.ComputationError{
			Kind:    entity.ComputationDivisionByZero,
			Message: "annual savings are zero",
		}
	}

	report.PaybackYears = systemCost / annualSavings
	return report, nil
}
