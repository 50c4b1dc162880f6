package entity

// ExtractedMetrics is the typed result of parsing the estimation tool's
// results page. A metrics value is either valid and fully populated, or
// invalid with a reason. Optional fields are zero when the page did not
// expose them.
type ExtractedMetrics struct {
	AnnualYieldKWh   float64 `json:"annual_yield_kwh"`
	PeakPowerKW      float64 `json:"peak_power_kw,omitempty"`
	SystemLossesPct  float64 `json:"system_losses_pct,omitempty"`
	IrradiationKWhM2 float64 `json:"irradiation_kwh_m2,omitempty"`

	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

func ValidMetrics(annualYieldKWh float64) ExtractedMetrics {
	return ExtractedMetrics{AnnualYieldKWh: annualYieldKWh, Valid: true}
}

func InvalidMetrics(reason string) ExtractedMetrics {
	return ExtractedMetrics{Valid: false, Reason: reason}
}
