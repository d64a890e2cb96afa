package model

type PositionValue struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Value    float64 `json:"value"`
	Weight   float64 `json:"weight"`
	Priced   bool    `json:"priced"`
}

type Valuation struct {
	BaseCurrency string          `json:"baseCurrency"`
	TotalValue   float64         `json:"totalValue"`
	Positions    []PositionValue `json:"positions"`
	Notes        []string        `json:"notes"`
}

type AllocationStatus string

const (
	AllocationOK   AllocationStatus = "ok"
	AllocationWarn AllocationStatus = "warn"
	AllocationOff  AllocationStatus = "off"
)

// AllocationLine weights are percentages of the portfolio value.
type AllocationLine struct {
	Symbol        string           `json:"symbol"`
	CurrentValue  float64          `json:"currentValue"`
	CurrentWeight float64          `json:"currentWeight"`
	TargetWeight  float64          `json:"targetWeight"`
	Difference    float64          `json:"difference"`
	Status        AllocationStatus `json:"status"`
}

type AllocationReport struct {
	TotalValue float64          `json:"totalValue"`
	Lines      []AllocationLine `json:"lines"`
	Notes      []string         `json:"notes"`
}
