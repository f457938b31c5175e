package models

import "fmt"

// IngredientLine is the per-ingredient cost detail inside a dish breakdown
type IngredientLine struct {
	Qty       float64 `json:"qty"`
	UnitCost  float64 `json:"unit_cost"`
	TotalCost float64 `json:"total_cost"`
	Unit      string  `json:"unit"`
}

// DishCostBreakdown is the baseline cost structure of a single dish.
// Recomputed on every query and never cached; it is a pure function of the
// ingredient, menu, and BOM relations.
type DishCostBreakdown struct {
	MenuPrice      float64                   `json:"menu_price"`
	IngredientCost float64                   `json:"ingredient_cost"`
	CostPercentage float64                   `json:"cost_percentage"`
	Category       string                    `json:"category"`
	Ingredients    map[string]IngredientLine `json:"ingredients"`
}

// CostLine is one ingredient row of a shocked dish costing
type CostLine struct {
	Ingredient    string  `json:"ingredient"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	BaseUnitPrice float64 `json:"base_unit_price"`
	NewUnitPrice  float64 `json:"new_unit_price"`
	BaseCost      float64 `json:"base_cost"`
	NewCost       float64 `json:"new_cost"`
	CostIncrease  float64 `json:"cost_increase"`
	ShockPct      float64 `json:"shock_pct"`
}

// DishCost is the full costing of a single dish, optionally under shocks
type DishCost struct {
	DishName            string     `json:"dish_name"`
	MenuPrice           float64    `json:"menu_price"`
	Category            string     `json:"category"`
	TotalBaseCost       float64    `json:"total_base_cost"`
	TotalNewCost        float64    `json:"total_new_cost"`
	TotalCostIncrease   float64    `json:"total_cost_increase"`
	CostIncreasePct     float64    `json:"cost_increase_pct"`
	IngredientCostRatio float64    `json:"ingredient_cost_ratio"`
	CostBreakdown       []CostLine `json:"cost_breakdown"`
}

// DishImpact summarizes how one dish is affected by a set of price shocks
type DishImpact struct {
	Name                string   `json:"name"`
	Category            string   `json:"category"`
	CostIncrease        float64  `json:"cost_increase"`
	PercentageIncrease  float64  `json:"percentage_increase"`
	MonthlyImpact       float64  `json:"monthly_impact"`
	AffectedIngredients []string `json:"affected_ingredient"`
	MenuPrice           float64  `json:"menu_price"`
}

// ShockAssumptions echoes the business assumptions behind a shock analysis
type ShockAssumptions struct {
	MonthlySalesPerDish int    `json:"monthly_sales_per_dish"`
	CalculationMethod   string `json:"calculation_method"`
}

// PriceShockImpact is the result of applying price shocks across the menu
type PriceShockImpact struct {
	AffectedDishes       []DishImpact       `json:"affected_dishes"`
	MostImpactedDishes   []DishImpact       `json:"most_impacted_dishes"`
	TotalMonthlyIncrease float64            `json:"total_monthly_increase"`
	PriceShocksApplied   map[string]float64 `json:"price_shocks_applied"`
	TotalDishesAffected  int                `json:"total_dishes_affected"`
	Assumptions          ShockAssumptions   `json:"assumptions"`
}

// RiskLevel classifies the supply risk of a delayed ingredient
type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)

// Priority returns the sort weight of a risk level, higher is more severe
func (r RiskLevel) Priority() int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	}
	return 0
}

// SupplyRisk is the risk assessment for one delayed ingredient
type SupplyRisk struct {
	Ingredient        string    `json:"ingredient"`
	BaseLeadTimeDays  int       `json:"base_lead_time_days"`
	ExtraDaysDelay    int       `json:"extra_days_delay"`
	NewLeadTimeDays   int       `json:"new_lead_time_days"`
	RiskLevel         RiskLevel `json:"risk_level"`
	Supplier          string    `json:"supplier"`
	AffectedDishes    []string  `json:"affected_dishes"`
	AffectedDishCount int       `json:"affected_dish_count"`
}

// AtRiskDish is one (dish, ingredient) pairing from the flattened view of
// HIGH and MEDIUM supply risks.
type AtRiskDish struct {
	Name               string `json:"name"`
	Category           string `json:"category"`
	AffectedIngredient string `json:"affected_ingredient"`
	BaseLeadTime       int    `json:"base_lead_time"`
	NewLeadTime        int    `json:"new_lead_time"`
	ExtraDays          int    `json:"extra_days"`
}

// DelayImpact is the result of analyzing supply delays
type DelayImpact struct {
	AtRiskDishes   []AtRiskDish   `json:"at_risk_dishes"`
	SupplyRisks    []SupplyRisk   `json:"supply_risks"`
	ThresholdDays  int            `json:"threshold_days"`
	DelaysAnalyzed map[string]int `json:"delays_analyzed"`
}

// Impact is the tagged union handed from the cost engine to the
// substitution engine. Callers need not know which analysis produced it;
// dispatch is on the concrete variant rather than field sniffing.
type Impact interface {
	isImpact()
}

func (*PriceShockImpact) isImpact() {}
func (*DelayImpact) isImpact()      {}

// CostClassification labels the price relationship between two ingredients
type CostClassification string

const (
	CostMoreExpensive CostClassification = "more_expensive"
	CostCheaper       CostClassification = "cheaper"
	CostSame          CostClassification = "same_cost"
	CostUnknown       CostClassification = "unknown"
)

// CostImpact compares the unit prices of an original ingredient and its
// substitute. Unknown means at least one price could not be resolved.
type CostImpact struct {
	Classification CostClassification `json:"classification"`
	DifferenceUSD  float64            `json:"difference_usd"`
	DifferencePct  float64            `json:"difference_pct"`
}

func (ci CostImpact) String() string {
	switch ci.Classification {
	case CostMoreExpensive:
		return fmt.Sprintf("$%.2f more expensive (%.1f%% increase)", ci.DifferenceUSD, ci.DifferencePct)
	case CostCheaper:
		return fmt.Sprintf("$%.2f cheaper (%.1f%% savings)", ci.DifferenceUSD, ci.DifferencePct)
	case CostSame:
		return "Same cost"
	}
	return "Cost impact unknown"
}

// LeadTimeClassification labels the delivery-speed relationship between
// two ingredients
type LeadTimeClassification string

const (
	LeadTimeFaster  LeadTimeClassification = "faster"
	LeadTimeSlower  LeadTimeClassification = "slower"
	LeadTimeSame    LeadTimeClassification = "same"
	LeadTimeUnknown LeadTimeClassification = "unknown"
)

// LeadTimeImprovement compares the lead times of an original ingredient
// and its substitute
type LeadTimeImprovement struct {
	Classification LeadTimeClassification `json:"classification"`
	DifferenceDays int                    `json:"difference_days"`
}

func (lt LeadTimeImprovement) String() string {
	switch lt.Classification {
	case LeadTimeFaster:
		return fmt.Sprintf("%d days faster delivery", lt.DifferenceDays)
	case LeadTimeSlower:
		return fmt.Sprintf("%d days slower delivery", lt.DifferenceDays)
	case LeadTimeSame:
		return "Same lead time"
	}
	return "Lead time comparison unknown"
}

// Substitution is one recommended ingredient swap attached to a dish that
// surfaced in an impact analysis. CostImpact is set for price-shock
// impacts, LeadTimeImprovement for delay impacts.
type Substitution struct {
	Original            string               `json:"original"`
	Substitute          string               `json:"substitute"`
	Context             string               `json:"context"`
	Rationale           string               `json:"rationale"`
	CostImpact          *CostImpact          `json:"cost_impact,omitempty"`
	LeadTimeImprovement *LeadTimeImprovement `json:"lead_time_improvement,omitempty"`
	AffectedDish        string               `json:"affected_dish"`
	DishCategory        string               `json:"dish_category"`
}

// CategoryDish is one row of a category cost breakdown, richest first
type CategoryDish struct {
	Name           string                    `json:"name"`
	Category       string                    `json:"category"`
	MenuPrice      float64                   `json:"menu_price"`
	IngredientCost float64                   `json:"ingredient_cost"`
	CostPercentage float64                   `json:"cost_percentage"`
	Ingredients    map[string]IngredientLine `json:"ingredients"`
}
