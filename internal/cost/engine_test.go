package cost

import (
	"testing"

	"menucost/internal/data"
	"menucost/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *data.Store {
	t.Helper()

	ingredients := []models.Ingredient{
		{Name: "tomato_sauce", BaseCostUSD: 2.00, LeadTimeDays: 3, Supplier: "Rossi Foods"},
		{Name: "mozzarella", BaseCostUSD: 4.50, LeadTimeDays: 2, Supplier: "Caseificio Verde"},
		{Name: "flour", BaseCostUSD: 1.20, LeadTimeDays: 4, Supplier: "Molino Bianco"},
		{Name: "olive_oil", BaseCostUSD: 7.00, LeadTimeDays: 4, Supplier: "Liguria Olive Co"},
	}
	menu := []models.MenuItem{
		{Name: "Margherita", PriceUSD: 12.00, Category: "pinsa"},
		{Name: "Marinara", PriceUSD: 8.00, Category: "pinsa"},
		{Name: "Free Sample", PriceUSD: 0, Category: "promo"},
		{Name: "Mystery Special", PriceUSD: 10.00, Category: "special"},
	}
	bom := []models.BOMEntry{
		{MenuItem: "Margherita", Ingredient: "tomato_sauce", Qty: 3, Unit: "units"},
		{MenuItem: "Marinara", Ingredient: "tomato_sauce", Qty: 1, Unit: "units"},
		{MenuItem: "Marinara", Ingredient: "flour", Qty: 1, Unit: "kg"},
		{MenuItem: "Free Sample", Ingredient: "flour", Qty: 1, Unit: "kg"},
		{MenuItem: "Mystery Special", Ingredient: "unobtainium", Qty: 2, Unit: "kg"},
	}

	store, err := data.NewStore(ingredients, menu, bom, nil)
	require.NoError(t, err)
	return store
}

func TestCalculateBaselineCosts(t *testing.T) {
	engine := NewEngine(newTestStore(t))

	baseline := engine.CalculateBaselineCosts()
	require.Len(t, baseline, 4)

	margherita := baseline["Margherita"]
	assert.Equal(t, 12.00, margherita.MenuPrice)
	assert.InDelta(t, 6.00, margherita.IngredientCost, 1e-9)
	assert.InDelta(t, 50.0, margherita.CostPercentage, 1e-9)
	assert.Equal(t, "pinsa", margherita.Category)

	line := margherita.Ingredients["tomato_sauce"]
	assert.Equal(t, 3.0, line.Qty)
	assert.Equal(t, 2.00, line.UnitCost)
	assert.InDelta(t, 6.00, line.TotalCost, 1e-9)
}

func TestBaselineSkipsUnknownIngredients(t *testing.T) {
	engine := NewEngine(newTestStore(t))

	baseline := engine.CalculateBaselineCosts()
	mystery := baseline["Mystery Special"]
	assert.Zero(t, mystery.IngredientCost)
	assert.Zero(t, mystery.CostPercentage)
	assert.Empty(t, mystery.Ingredients)
}

func TestBaselineGuardsZeroPrice(t *testing.T) {
	engine := NewEngine(newTestStore(t))

	baseline := engine.CalculateBaselineCosts()
	free := baseline["Free Sample"]
	assert.InDelta(t, 1.20, free.IngredientCost, 1e-9)
	assert.Zero(t, free.CostPercentage)
}

func TestBaselineIsPure(t *testing.T) {
	engine := NewEngine(newTestStore(t))

	first := engine.CalculateBaselineCosts()
	engine.ApplyPriceShocks([]models.PriceShock{{Ingredient: "tomato_sauce", Pct: 50}})
	second := engine.CalculateBaselineCosts()

	assert.Equal(t, first, second)
}

func TestCalculateDishCostUnknownDish(t *testing.T) {
	engine := NewEngine(newTestStore(t))
	assert.Nil(t, engine.CalculateDishCost("Ghost Dish", nil))
}

func TestCalculateDishCostWithShocks(t *testing.T) {
	engine := NewEngine(newTestStore(t))

	analysis := engine.CalculateDishCost("Margherita", map[string]float64{"tomato_sauce": 50})
	require.NotNil(t, analysis)

	assert.InDelta(t, 6.00, analysis.TotalBaseCost, 1e-9)
	assert.InDelta(t, 9.00, analysis.TotalNewCost, 1e-9)
	assert.InDelta(t, 3.00, analysis.TotalCostIncrease, 1e-9)
	assert.InDelta(t, 50.0, analysis.CostIncreasePct, 1e-9)
	assert.InDelta(t, 0.5, analysis.IngredientCostRatio, 1e-9)

	require.Len(t, analysis.CostBreakdown, 1)
	line := analysis.CostBreakdown[0]
	assert.Equal(t, "tomato_sauce", line.Ingredient)
	assert.InDelta(t, 3.00, line.NewUnitPrice, 1e-9)
	assert.InDelta(t, 3.00, line.CostIncrease, 1e-9)
	assert.Equal(t, 50.0, line.ShockPct)
}

func TestCalculateDishCostZeroBaseCost(t *testing.T) {
	engine := NewEngine(newTestStore(t))

	analysis := engine.CalculateDishCost("Mystery Special", map[string]float64{"unobtainium": 50})
	require.NotNil(t, analysis)
	assert.Zero(t, analysis.CostIncreasePct)
}

func TestApplyPriceShocks(t *testing.T) {
	engine := NewEngine(newTestStore(t))

	impact := engine.ApplyPriceShocks([]models.PriceShock{{Ingredient: "tomato_sauce", Pct: 50}})

	require.Len(t, impact.AffectedDishes, 2)
	// Sorted descending by monthly impact.
	assert.Equal(t, "Margherita", impact.AffectedDishes[0].Name)
	assert.InDelta(t, 300.0, impact.AffectedDishes[0].MonthlyImpact, 1e-9)
	assert.Equal(t, "Marinara", impact.AffectedDishes[1].Name)
	assert.InDelta(t, 100.0, impact.AffectedDishes[1].MonthlyImpact, 1e-9)

	assert.Equal(t, impact.AffectedDishes, impact.MostImpactedDishes)
	assert.InDelta(t, 400.0, impact.TotalMonthlyIncrease, 1e-9)
	assert.Equal(t, 2, impact.TotalDishesAffected)
	assert.Equal(t, map[string]float64{"tomato_sauce": 50}, impact.PriceShocksApplied)
	assert.Equal(t, MonthlySalesPerDish, impact.Assumptions.MonthlySalesPerDish)
	assert.Equal(t, []string{"tomato_sauce"}, impact.AffectedDishes[0].AffectedIngredients)
}

func TestApplyPriceShocksZeroPct(t *testing.T) {
	engine := NewEngine(newTestStore(t))

	impact := engine.ApplyPriceShocks([]models.PriceShock{{Ingredient: "tomato_sauce", Pct: 0}})

	assert.Empty(t, impact.AffectedDishes)
	assert.Empty(t, impact.MostImpactedDishes)
	assert.Zero(t, impact.TotalMonthlyIncrease)
}

func TestApplyPriceShocksDropsDecreases(t *testing.T) {
	engine := NewEngine(newTestStore(t))

	impact := engine.ApplyPriceShocks([]models.PriceShock{{Ingredient: "tomato_sauce", Pct: -25}})
	assert.Empty(t, impact.AffectedDishes)
	assert.Zero(t, impact.TotalMonthlyIncrease)
}

func TestApplyPriceShocksLastWriteWins(t *testing.T) {
	engine := NewEngine(newTestStore(t))

	impact := engine.ApplyPriceShocks([]models.PriceShock{
		{Ingredient: "tomato_sauce", Pct: 10},
		{Ingredient: "tomato_sauce", Pct: 50},
	})

	assert.Equal(t, map[string]float64{"tomato_sauce": 50}, impact.PriceShocksApplied)
	require.NotEmpty(t, impact.AffectedDishes)
	assert.InDelta(t, 300.0, impact.AffectedDishes[0].MonthlyImpact, 1e-9)
}

func TestApplyPriceShocksTopFive(t *testing.T) {
	ingredients := []models.Ingredient{
		{Name: "saffron", BaseCostUSD: 10.00, LeadTimeDays: 5, Supplier: "Spice Route"},
	}
	var menu []models.MenuItem
	var bom []models.BOMEntry
	for _, dish := range []struct {
		name string
		qty  float64
	}{
		{"Dish A", 7}, {"Dish B", 6}, {"Dish C", 5}, {"Dish D", 4},
		{"Dish E", 3}, {"Dish F", 2}, {"Dish G", 1},
	} {
		menu = append(menu, models.MenuItem{Name: dish.name, PriceUSD: 20, Category: "special"})
		bom = append(bom, models.BOMEntry{MenuItem: dish.name, Ingredient: "saffron", Qty: dish.qty, Unit: "g"})
	}
	store, err := data.NewStore(ingredients, menu, bom, nil)
	require.NoError(t, err)

	impact := NewEngine(store).ApplyPriceShocks([]models.PriceShock{{Ingredient: "saffron", Pct: 10}})

	require.Len(t, impact.AffectedDishes, 7)
	require.Len(t, impact.MostImpactedDishes, 5)
	assert.Equal(t, impact.AffectedDishes[:5], impact.MostImpactedDishes)
	for i := 1; i < len(impact.AffectedDishes); i++ {
		assert.GreaterOrEqual(t,
			impact.AffectedDishes[i-1].MonthlyImpact,
			impact.AffectedDishes[i].MonthlyImpact)
	}
}

func TestAnalyzeSupplyDelaysRiskTiers(t *testing.T) {
	engine := NewEngine(newTestStore(t))

	// base 3 + extra 3 = 6 > 5 -> HIGH
	impact := engine.AnalyzeSupplyDelays([]models.SupplyDelay{{Ingredient: "tomato_sauce", ExtraDays: 3}}, 5)
	require.Len(t, impact.SupplyRisks, 1)
	assert.Equal(t, models.RiskHigh, impact.SupplyRisks[0].RiskLevel)
	assert.Equal(t, 6, impact.SupplyRisks[0].NewLeadTimeDays)

	// base 3 + extra 1 = 4 <= 5, extra not > 2 -> LOW
	impact = engine.AnalyzeSupplyDelays([]models.SupplyDelay{{Ingredient: "tomato_sauce", ExtraDays: 1}}, 5)
	require.Len(t, impact.SupplyRisks, 1)
	assert.Equal(t, models.RiskLow, impact.SupplyRisks[0].RiskLevel)

	// base 3 + extra 3 = 6 <= 10, extra > 2 -> MEDIUM
	impact = engine.AnalyzeSupplyDelays([]models.SupplyDelay{{Ingredient: "tomato_sauce", ExtraDays: 3}}, 10)
	require.Len(t, impact.SupplyRisks, 1)
	assert.Equal(t, models.RiskMedium, impact.SupplyRisks[0].RiskLevel)
}

func TestAnalyzeSupplyDelaysOrdering(t *testing.T) {
	engine := NewEngine(newTestStore(t))

	impact := engine.AnalyzeSupplyDelays([]models.SupplyDelay{
		{Ingredient: "olive_oil", ExtraDays: 1},   // LOW, 0 dishes
		{Ingredient: "flour", ExtraDays: 3},       // MEDIUM at threshold 10, 2 dishes
		{Ingredient: "tomato_sauce", ExtraDays: 8}, // HIGH, 2 dishes
	}, 10)

	require.Len(t, impact.SupplyRisks, 3)
	assert.Equal(t, "tomato_sauce", impact.SupplyRisks[0].Ingredient)
	assert.Equal(t, models.RiskHigh, impact.SupplyRisks[0].RiskLevel)
	assert.Equal(t, "flour", impact.SupplyRisks[1].Ingredient)
	assert.Equal(t, models.RiskMedium, impact.SupplyRisks[1].RiskLevel)
	assert.Equal(t, "olive_oil", impact.SupplyRisks[2].Ingredient)
	assert.Equal(t, models.RiskLow, impact.SupplyRisks[2].RiskLevel)
}

func TestAnalyzeSupplyDelaysTieBreakOnDishCount(t *testing.T) {
	engine := NewEngine(newTestStore(t))

	// Both HIGH: tomato_sauce reaches 2 dishes, olive_oil none.
	impact := engine.AnalyzeSupplyDelays([]models.SupplyDelay{
		{Ingredient: "olive_oil", ExtraDays: 10},
		{Ingredient: "tomato_sauce", ExtraDays: 10},
	}, 5)

	require.Len(t, impact.SupplyRisks, 2)
	assert.Equal(t, models.RiskHigh, impact.SupplyRisks[0].RiskLevel)
	assert.Equal(t, models.RiskHigh, impact.SupplyRisks[1].RiskLevel)
	assert.Equal(t, "tomato_sauce", impact.SupplyRisks[0].Ingredient)
	assert.Equal(t, "olive_oil", impact.SupplyRisks[1].Ingredient)
}

func TestAnalyzeSupplyDelaysAtRiskFlattening(t *testing.T) {
	engine := NewEngine(newTestStore(t))

	impact := engine.AnalyzeSupplyDelays([]models.SupplyDelay{
		{Ingredient: "tomato_sauce", ExtraDays: 8}, // HIGH
		{Ingredient: "olive_oil", ExtraDays: 1},    // LOW, excluded from flattened view
	}, 5)

	require.Len(t, impact.AtRiskDishes, 2)
	names := []string{impact.AtRiskDishes[0].Name, impact.AtRiskDishes[1].Name}
	assert.ElementsMatch(t, []string{"Margherita", "Marinara"}, names)
	for _, dish := range impact.AtRiskDishes {
		assert.Equal(t, "tomato_sauce", dish.AffectedIngredient)
		assert.Equal(t, 3, dish.BaseLeadTime)
		assert.Equal(t, 11, dish.NewLeadTime)
	}
}

func TestAnalyzeSupplyDelaysSkipsUnknownIngredient(t *testing.T) {
	engine := NewEngine(newTestStore(t))

	impact := engine.AnalyzeSupplyDelays([]models.SupplyDelay{
		{Ingredient: "unobtainium", ExtraDays: 9},
		{Ingredient: "tomato_sauce", ExtraDays: 1},
	}, 5)

	require.Len(t, impact.SupplyRisks, 1)
	assert.Equal(t, "tomato_sauce", impact.SupplyRisks[0].Ingredient)
	// The echo of analyzed delays still records the unknown ingredient.
	assert.Equal(t, map[string]int{"unobtainium": 9, "tomato_sauce": 1}, impact.DelaysAnalyzed)
	assert.Equal(t, 5, impact.ThresholdDays)
}

func TestDishesByCategory(t *testing.T) {
	engine := NewEngine(newTestStore(t))

	dishes := engine.DishesByCategory("PINSA")
	require.Len(t, dishes, 2)
	// Margherita 50%, Marinara (2.00+1.20)/8.00 = 40%.
	assert.Equal(t, "Margherita", dishes[0].Name)
	assert.Equal(t, "Marinara", dishes[1].Name)
	assert.GreaterOrEqual(t, dishes[0].CostPercentage, dishes[1].CostPercentage)

	assert.Empty(t, engine.DishesByCategory("dessert"))
}
