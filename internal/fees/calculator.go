package fees

import "math"

// Fee schedule. Rates are fractions, fixed components are in the send currency.
const (
	quoteRate       = 0.005 // 0.5% quote fee
	quoteFixed      = 0.50
	cardRate        = 0.029 // 2.9% + $0.30 card processing
	cardFixed       = 0.30
	transferRate    = 0.005 // 0.5% cross-currency transfer fee
	domesticRate    = 0.003 // 0.3% same-currency transfer fee
)

// Breakdown separates the percentage and fixed components of a fee
type Breakdown struct {
	PercentageFee float64 `json:"percentage_fee"`
	FixedFee      float64 `json:"fixed_fee"`
	TotalFee      float64 `json:"total_fee"`
}

// Calculator computes the fee components of a transfer
type Calculator struct{}

// NewCalculator creates a new fee calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// QuoteFee computes the fee attached to a rate quote: 0.5% + $0.50,
// each component rounded to 2 decimals
func (c *Calculator) QuoteFee(amount float64) Breakdown {
	pct := Round2(amount * quoteRate)
	return Breakdown{
		PercentageFee: pct,
		FixedFee:      quoteFixed,
		TotalFee:      Round2(pct + quoteFixed),
	}
}

// CardProcessingFee computes the card acquirer fee: 2.9% + $0.30
func (c *Calculator) CardProcessingFee(amount float64) float64 {
	return Round2(amount*cardRate + cardFixed)
}

// TransferFee computes the cross-currency transfer fee: 0.5% of the send amount
func (c *Calculator) TransferFee(amount float64) float64 {
	return Round2(amount * transferRate)
}

// DomesticTransferFee computes the reduced same-currency transfer fee: 0.3%
func (c *Calculator) DomesticTransferFee(amount float64) float64 {
	return Round2(amount * domesticRate)
}

// Round2 rounds a monetary value to 2 decimals, half away from zero.
// Applied at every computation step to match how the upstream provider settles.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
