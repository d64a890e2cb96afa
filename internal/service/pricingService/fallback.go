package pricingService

// fallbackPrices are static demo quotes used when the upstream is unavailable and fallback is enabled.
var fallbackPrices = map[string]float64{
	"AAPL":   225.0,
	"MSFT":   420.0,
	"TSLA":   240.0,
	"AMZN":   186.0,
	"SHEL":   68.5,
	"LLOY.L": 0.85,
	"GOOGL":  165.0,
	"NVDA":   875.0,
}
