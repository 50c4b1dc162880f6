// Package sink holds the best-effort publishers a finished run fans out to.
// Every sink receives a read-only report snapshot and must tolerate missing
// financial fields; isolation between sinks lives in the pipeline.
package sink

import (
	"fmt"
	"math"
	"strings"

	"solarcalc/internal/domain/entity"
)

// ShortSummary is the one-line digest used for social posts when no
// composer is configured.
func ShortSummary(r entity.RunReport) string {
	addr := r.Location.Query()
	if !r.Metrics.Valid {
		return fmt.Sprintf("Solar analysis for %s: no usable estimate (%s).", addr, r.Metrics.Reason)
	}
	if r.Profitability == nil {
		return fmt.Sprintf("Solar analysis for %s: estimated %.0f kWh/year.", addr, r.Metrics.AnnualYieldKWh)
	}
	p := r.Profitability
	if math.IsInf(p.PaybackYears, 0) {
		return fmt.Sprintf("Solar analysis for %s: %.0f kWh/year, payback not reachable at current prices.",
			addr, r.Metrics.AnnualYieldKWh)
	}
	return fmt.Sprintf("Solar analysis for %s: %.0f kWh/year, ~%.0f saved annually, payback in %.1f years.",
		addr, r.Metrics.AnnualYieldKWh, p.AnnualSavings, p.PaybackYears)
}

// TextReport renders the full report in the layout delivered by email.
func TextReport(r entity.RunReport) string {
	var b strings.Builder
	rule := strings.Repeat("=", 50)

	fmt.Fprintf(&b, "SOLAR REPORT - %s\n%s\n", r.Location.Query(), rule)
	fmt.Fprintf(&b, "Run:   %s\n", r.ID)
	fmt.Fprintf(&b, "Date:  %s\n", r.StartedAt.Format("02/01/2006 15:04"))
	fmt.Fprintf(&b, "State: %s\n\n", r.State)

	if r.Metrics.Valid {
		b.WriteString("ESTIMATED RESULTS:\n")
		fmt.Fprintf(&b, "- Annual production: %.0f kWh/year\n", r.Metrics.AnnualYieldKWh)
		if r.Metrics.IrradiationKWhM2 > 0 {
			fmt.Fprintf(&b, "- Solar irradiation: %.0f kWh/m2/year\n", r.Metrics.IrradiationKWhM2)
		}
		if r.Metrics.PeakPowerKW > 0 {
			fmt.Fprintf(&b, "- Installed peak power: %.1f kWp\n", r.Metrics.PeakPowerKW)
		}
	} else {
		fmt.Fprintf(&b, "ESTIMATED RESULTS: unavailable (%s)\n", r.Metrics.Reason)
	}

	if p := r.Profitability; p != nil {
		b.WriteString("\nFINANCIALS:\n")
		fmt.Fprintf(&b, "- Estimated savings: ~%.0f/year\n", p.AnnualSavings)
		fmt.Fprintf(&b, "- System cost: ~%.0f\n", p.EstimatedSystemCost)
		if math.IsInf(p.PaybackYears, 0) {
			b.WriteString("- Payback: N/A (no annual savings)\n")
		} else {
			fmt.Fprintf(&b, "- Payback: %.1f years\n", p.PaybackYears)
		}
		fmt.Fprintf(&b, "- Lifetime savings: ~%.0f\n", p.LifetimeSavings)
		if p.CO2AvoidedKg > 0 {
			fmt.Fprintf(&b, "- CO2 avoided: ~%.0f kg/year\n", p.CO2AvoidedKg)
		}
	} else {
		b.WriteString("\nFINANCIALS: unavailable\n")
	}

	return b.String()
}
