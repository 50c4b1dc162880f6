package entity

// EconomicAssumptions is externally supplied configuration. The pipeline
// never mutates it.
type EconomicAssumptions struct {
	ElectricityPricePerKWh float64 `json:"electricity_price_per_kwh"`
	PanelCostPerKW         float64 `json:"panel_cost_per_kw"`
	ExpectedLifetimeYears  float64 `json:"expected_lifetime_years"`
}

func DefaultAssumptions() EconomicAssumptions {
	return EconomicAssumptions{
		ElectricityPricePerKWh: 0.15,
		PanelCostPerKW:         1200,
		ExpectedLifetimeYears:  20,
	}
}

func (a EconomicAssumptions) Validate() *ComputationError {
	if a.PanelCostPerKW <= 0 {
		return &ComputationError{Kind: ComputationInvalidInput, Message: "panel_cost_per_kw must be positive"}
	}
	if a.ExpectedLifetimeYears <= 0 {
		return &ComputationError{Kind: ComputationInvalidInput, Message: "expected_lifetime_years must be positive"}
	}
	return nil
}
