package extract

import (
	"strings"
	"testing"

	"solarcalc/internal/domain/entity"
)

func TestExtractPlainText(t *testing.T) {
	e := New()

	m := e.Extract("Yearly PV energy production: 6,120 kWh")
	if !m.Valid {
		t.Fatalf("metrics invalid, reason %q", m.Reason)
	}
	if m.AnnualYieldKWh != 6120 {
		t.Errorf("yield = %v, want 6120", m.AnnualYieldKWh)
	}
}

func TestExtractUnitSuffixPattern(t *testing.T) {
	e := New()

	for _, raw := range []string{
		"Estimated output: 6,120 kWh/year for this roof",
		"Estimated output: 6120 kWh per year",
		"Estimated output: 6 120 kWh/yr",
	} {
		m := e.Extract(raw)
		if !m.Valid || m.AnnualYieldKWh != 6120 {
			t.Errorf("Extract(%q) = %+v, want valid yield 6120", raw, m)
		}
	}
}

func TestExtractFromHTMLTable(t *testing.T) {
	e := New()

	raw := `<html><body><table>
		<tr><td>Yearly PV energy production</td><td>6120.5 kWh</td></tr>
		<tr><td>Year-to-year variability</td><td>310.2 kWh</td></tr>
	</table></body></html>`

	m := e.Extract(raw)
	if !m.Valid {
		t.Fatalf("metrics invalid, reason %q", m.Reason)
	}
	if m.AnnualYieldKWh != 6120.5 {
		t.Errorf("yield = %v, want 6120.5", m.AnnualYieldKWh)
	}
}

func TestExtractOptionalFields(t *testing.T) {
	e := New()

	raw := "Installed peak PV power: 5 kWp\n" +
		"System losses: 14 %\n" +
		"Yearly in-plane irradiation: 1696.92 kWh/m2\n" +
		"Yearly PV energy production: 6120 kWh"

	m := e.Extract(raw)
	if !m.Valid {
		t.Fatalf("metrics invalid, reason %q", m.Reason)
	}
	if m.AnnualYieldKWh != 6120 {
		t.Errorf("yield = %v, want 6120", m.AnnualYieldKWh)
	}
	if m.PeakPowerKW != 5 {
		t.Errorf("peak power = %v, want 5", m.PeakPowerKW)
	}
	if m.SystemLossesPct != 14 {
		t.Errorf("system losses = %v, want 14", m.SystemLossesPct)
	}
	if m.IrradiationKWhM2 != 1696.92 {
		t.Errorf("irradiation = %v, want 1696.92", m.IrradiationKWhM2)
	}
}

func TestExtractNoNumericMatch(t *testing.T) {
	e := New()

	for _, raw := range []string{
		"",
		"   ",
		"The simulation is still loading, please wait.",
	} {
		m := e.Extract(raw)
		if m.Valid {
			t.Errorf("Extract(%q) valid, want invalid", raw)
		}
		if m.Reason != entity.ReasonNoNumericMatch {
			t.Errorf("Extract(%q) reason = %q, want %q", raw, m.Reason, entity.ReasonNoNumericMatch)
		}
	}
}

func TestExtractOutOfRange(t *testing.T) {
	e := New()

	m := e.Extract("Yearly PV energy production: 61,200,000 kWh")
	if m.Valid {
		t.Fatal("implausible yield accepted")
	}
	if m.Reason != entity.ReasonOutOfRange {
		t.Errorf("reason = %q, want %q", m.Reason, entity.ReasonOutOfRange)
	}
}

func TestParseNumberSeparators(t *testing.T) {
	tests := []struct {
		token string
		want  float64
	}{
		{"6,120", 6120},
		{"6120", 6120},
		{"6 120", 6120},
		{"6'120.5", 6120.5},
		{"1,696.92", 1696.92},
		{"1.696,92", 1696.92},
		{"1.234.567", 1234567},
		{"1696,92", 1696.92},
		{"14.5", 14.5},
		{"-3", -3},
	}

	for _, tt := range tests {
		got, ok := parseNumber(tt.token)
		if !ok {
			t.Errorf("parseNumber(%q) not ok", tt.token)
			continue
		}
		if got != tt.want {
			t.Errorf("parseNumber(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}

	if _, ok := parseNumber("not a number"); ok {
		t.Error("parseNumber accepted garbage")
	}
}

func TestFlattenKeepsCellAdjacency(t *testing.T) {
	raw := `<html><head><script>var x = 99999;</script></head><body>
		<table><tr><td>Yearly PV energy production</td><td>6120 kWh</td></tr></table>
	</body></html>`

	text := Flatten(raw)
	if want := "Yearly PV energy production 6120 kWh"; !strings.Contains(text, want) {
		t.Errorf("Flatten() = %q, want it to contain %q", text, want)
	}
	if strings.Contains(text, "99999") {
		t.Error("script content leaked into flattened text")
	}
}
