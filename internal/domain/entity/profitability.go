package entity

import (
	"encoding/json"
	"math"
)

// ProfitabilityReport is derived from extracted metrics and economic
// assumptions, immutable once computed. PaybackYears is +Inf when the
// annual savings are zero; it is serialized as the string "infinity"
// because JSON has no infinity literal.
type ProfitabilityReport struct {
	AnnualSavings       float64 `json:"annual_savings"`
	EstimatedSystemCost float64 `json:"estimated_system_cost"`
	PaybackYears        float64 `json:"payback_years"`
	LifetimeSavings     float64 `json:"lifetime_savings"`
	CO2AvoidedKg        float64 `json:"co2_avoided_kg,omitempty"`
}

const paybackInfinity = "infinity"

func (p ProfitabilityReport) MarshalJSON() ([]byte, error) {
	type alias ProfitabilityReport
	payback := any(p.PaybackYears)
	if math.IsInf(p.PaybackYears, 0) {
		payback = paybackInfinity
	}
	return json.Marshal(struct {
		alias
		PaybackYears any `json:"payback_years"`
	}{alias(p), payback})
}

func (p *ProfitabilityReport) UnmarshalJSON(data []byte) error {
	type alias ProfitabilityReport
	aux := struct {
		*alias
		PaybackYears json.RawMessage `json:"payback_years"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.PaybackYears) == 0 {
		return nil
	}
	var f float64
	if err := json.Unmarshal(aux.PaybackYears, &f); err == nil {
		p.PaybackYears = f
		return nil
	}
	var s string
	if err := json.Unmarshal(aux.PaybackYears, &s); err == nil && s == paybackInfinity {
		p.PaybackYears = math.Inf(1)
	}
	return nil
}
