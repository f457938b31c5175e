package models

// QueryType classifies a parsed user query
type QueryType string

const (
	QueryPriceShock QueryType = "price_shock"
	QueryDelay      QueryType = "delay"
	QueryCategory   QueryType = "category_query"
	QueryGeneral    QueryType = "general"
)

// DefaultLeadTimeThreshold is the lead-time threshold in days used when a
// query does not supply its own assumption.
const DefaultLeadTimeThreshold = 5

// PriceShock represents a percentage change to one ingredient's unit price
type PriceShock struct {
	Ingredient string  `json:"ingredient"`
	Pct        float64 `json:"pct"`
}

// SupplyDelay represents extra delivery days on one ingredient
type SupplyDelay struct {
	Ingredient string `json:"ingredient"`
	ExtraDays  int    `json:"extra_days"`
}

// Assumptions carries tunable business parameters attached to a query
type Assumptions struct {
	LeadTimeThresholdDays int `json:"lead_time_threshold_days"`
}

// StructuredQuery is the machine-readable form of a user question, produced
// by the LLM parser or by a caller of the direct API endpoints.
type StructuredQuery struct {
	PriceShocks    []PriceShock  `json:"price_shocks"`
	Delays         []SupplyDelay `json:"delays"`
	Assumptions    Assumptions   `json:"assumptions"`
	QueryType      QueryType     `json:"query_type"`
	CategoryFilter string        `json:"category_filter"`
	UserIntent     string        `json:"user_intent"`
	OriginalQuery  string        `json:"original_query,omitempty"`

	// ParseFailed marks a query produced by the neutral fallback after a
	// parser timeout or malformed output.
	ParseFailed bool `json:"-"`
}

// DefaultQuery returns the neutral query used when parsing fails or times
// out: a general query with no shocks and no delays.
func DefaultQuery() StructuredQuery {
	return StructuredQuery{
		PriceShocks: []PriceShock{},
		Delays:      []SupplyDelay{},
		Assumptions: Assumptions{LeadTimeThresholdDays: DefaultLeadTimeThreshold},
		QueryType:   QueryGeneral,
		UserIntent:  "general query",
	}
}

// Threshold returns the query's lead-time threshold, falling back to the
// default when the parser left it unset.
func (q *StructuredQuery) Threshold() int {
	if q.Assumptions.LeadTimeThresholdDays <= 0 {
		return DefaultLeadTimeThreshold
	}
	return q.Assumptions.LeadTimeThresholdDays
}
