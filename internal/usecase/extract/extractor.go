// Package extract parses raw page content captured by the gateway into
// typed energy metrics. It is deliberately defensive: the page snapshot has
// no schema guarantee, so extraction works on tolerant patterns and always
// returns a value object, never an error.
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"solarcalc/internal/domain/entity"
)

// MaxAnnualYieldKWh is the sanity ceiling for a residential installation.
// Values above it (or below zero) are reported as out of range rather than
// trusted.
const MaxAnnualYieldKWh = 100000

const numPattern = `-?\d{1,3}(?:[ ,.']\d{3})+(?:[.,]\d+)?|-?\d+(?:[.,]\d+)?`

var (
	yieldLabelRe = regexp.MustCompile(`(?i)(?:yearly\s+pv\s+energy\s+production|annual\s+(?:pv\s+)?(?:energy\s+)?(?:production|yield))`)

	// Primary structured patterns: a numeric token adjacent to a known label.
	yieldAfterLabelRe = regexp.MustCompile(`(?i)(?:yearly\s+pv\s+energy\s+production|annual\s+(?:pv\s+)?(?:energy\s+)?(?:production|yield))[^0-9\-]{0,60}(` + numPattern + `)`)
	kwhPerYearRe      = regexp.MustCompile(`(?i)(` + numPattern + `)\s*kwh\s*(?:/|per\s+)\s*(?:year|yr|an)\b`)

	// Secondary loose pattern: any plausible numeric token, kWh-adjacent
	// tokens first.
	numNearKWhRe = regexp.MustCompile(`(?i)(` + numPattern + `)\s*kwh`)
	anyNumRe     = regexp.MustCompile(numPattern)

	peakPowerRe   = regexp.MustCompile(`(?i)(?:installed\s+)?peak\s+(?:pv\s+)?power[^0-9\-]{0,40}(` + numPattern + `)`)
	kwpRe         = regexp.MustCompile(`(?i)(` + numPattern + `)\s*kwp\b`)
	systemLossRe  = regexp.MustCompile(`(?i)system\s+loss(?:es)?[^0-9\-]{0,40}(` + numPattern + `)`)
	irradiationRe = regexp.MustCompile(`(?i)in-plane\s+irradiation[^0-9\-]{0,60}(` + numPattern + `)`)
)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract parses the raw snapshot into metrics. The result is either fully
// populated with Valid set, or invalid with reason "no_numeric_match" or
// "out_of_range".
func (e *Extractor) Extract(raw string) entity.ExtractedMetrics {
	if strings.TrimSpace(raw) == "" {
		return entity.InvalidMetrics(entity.ReasonNoNumericMatch)
	}

	text := raw
	var doc *goquery.Document
	if looksLikeHTML(raw) {
		if d, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
			doc = d
		}
		text = Flatten(raw)
	}

	yield, found := findYield(text, doc)
	if !found {
		return entity.InvalidMetrics(entity.ReasonNoNumericMatch)
	}
	if yield < 0 || yield > MaxAnnualYieldKWh {
		return entity.InvalidMetrics(entity.ReasonOutOfRange)
	}

	m := entity.ValidMetrics(yield)
	m.PeakPowerKW = firstMatch(text, peakPowerRe, kwpRe)
	m.SystemLossesPct = firstMatch(text, systemLossRe)
	m.IrradiationKWhM2 = firstMatch(text, irradiationRe)
	return m
}

// findYield returns the best yield candidate and whether any numeric token
// matched at all. Range checking is left to the caller so an out-of-range
// primary match is reported as such instead of silently falling through.
func findYield(text string, doc *goquery.Document) (float64, bool) {
	if doc != nil {
		if v, ok := yieldFromDOM(doc); ok {
			return v, true
		}
	}

	for _, re := range []*regexp.Regexp{yieldAfterLabelRe, kwhPerYearRe} {
		if g := re.FindStringSubmatch(text); g != nil {
			if v, ok := parseNumber(g[1]); ok {
				return v, true
			}
		}
	}

	// Loose fallback: prefer kWh-adjacent tokens, then any token in range.
	var sawToken bool
	for _, g := range numNearKWhRe.FindAllStringSubmatch(text, -1) {
		if v, ok := parseNumber(g[1]); ok {
			sawToken = true
			if v > 0 && v <= MaxAnnualYieldKWh {
				return v, true
			}
		}
	}
	for _, tok := range anyNumRe.FindAllString(text, -1) {
		if v, ok := parseNumber(tok); ok {
			sawToken = true
			if v > 0 && v <= MaxAnnualYieldKWh {
				return v, true
			}
		}
	}
	if sawToken {
		// Tokens existed but none inside the plausibility window.
		return MaxAnnualYieldKWh + 1, true
	}
	return 0, false
}

// yieldFromDOM looks for the labelled cell and reads the number from the
// same element or the adjacent one. The shortest matching element wins so a
// page-wide container does not swallow the lookup.
func yieldFromDOM(doc *goquery.Document) (float64, bool) {
	var value float64
	var ok bool
	bestLen := -1

	doc.Find("td, th, li, dt, dd, p, span, b, strong, label").Each(func(_ int, sel *goquery.Selection) {
		t := strings.TrimSpace(sel.Text())
		if t == "" || !yieldLabelRe.MatchString(t) {
			return
		}
		if bestLen != -1 && len(t) >= bestLen {
			return
		}
		candidate := t
		if m := anyNumRe.FindString(candidate); m == "" {
			candidate = strings.TrimSpace(sel.Next().Text())
		}
		if m := anyNumRe.FindString(candidate); m != "" {
			if v, parsed := parseNumber(m); parsed {
				value, ok, bestLen = v, true, len(t)
			}
		}
	})

	return value, ok
}

func firstMatch(text string, res ...*regexp.Regexp) float64 {
	for _, re := range res {
		if g := re.FindStringSubmatch(text); g != nil {
			if v, ok := parseNumber(g[1]); ok && v >= 0 {
				return v
			}
		}
	}
	return 0
}
