package rates

import "strings"

// FallbackTable is the static rate table used when the primary source is
// unreachable. Rates here are deliberately conservative snapshots; quotes
// built from them carry a shorter validity window.
type FallbackTable struct {
	rates map[string]float64
}

// NewFallbackTable returns the deployed static rate table
func NewFallbackTable() *FallbackTable {
	return &FallbackTable{
		rates: map[string]float64{
			"USD:EUR": 0.85,
			"EUR:USD": 1.17,
			"USD:GBP": 0.73,
			"GBP:USD": 1.37,
			"USD:CLP": 950,
			"CLP:USD": 0.00105,
			"USD:MXN": 18.5,
			"MXN:USD": 0.054,
			"USD:BRL": 5.4,
			"BRL:USD": 0.185,
			"EUR:GBP": 0.86,
			"GBP:EUR": 1.16,
		},
	}
}

// Lookup returns the fallback rate for a pair. Pairs without a direct entry
// are triangulated through USD when both legs exist.
func (t *FallbackTable) Lookup(from, to string) (float64, bool) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	if rate, ok := t.rates[pairKey(from, to)]; ok {
		return rate, true
	}

	toUSD, ok1 := t.rates[pairKey(from, "USD")]
	fromUSD, ok2 := t.rates[pairKey("USD", to)]
	if ok1 && ok2 {
		return toUSD * fromUSD, true
	}

	return 0, false
}

// pairKey builds the cache/table key for a directed currency pair.
// USD:EUR and EUR:USD are distinct entries.
func pairKey(from, to string) string {
	return from + ":" + to
}
