package cost

import (
	"sort"

	"menucost/internal/models"
)

// ApplyPriceShocks models the menu-wide impact of ingredient price shocks.
// Later shocks for the same ingredient overwrite earlier ones. Only dishes
// whose recomputed cost strictly increased are reported; results are
// sorted descending by monthly impact and the top five form the
// most-impacted list.
func (e *Engine) ApplyPriceShocks(shocks []models.PriceShock) *models.PriceShockImpact {
	shockMap := make(map[string]float64, len(shocks))
	for _, shock := range shocks {
		shockMap[shock.Ingredient] = shock.Pct
	}

	affectedSet := make(map[string]bool)
	for ingredient := range shockMap {
		for _, dish := range e.store.DishesWithIngredient(ingredient) {
			affectedSet[dish] = true
		}
	}
	affectedNames := make([]string, 0, len(affectedSet))
	for name := range affectedSet {
		affectedNames = append(affectedNames, name)
	}
	sort.Strings(affectedNames)

	var impacts []models.DishImpact
	totalMonthly := 0.0

	for _, dishName := range affectedNames {
		analysis := e.CalculateDishCost(dishName, shockMap)
		if analysis == nil || analysis.TotalCostIncrease <= 0 {
			continue
		}

		monthly := analysis.TotalCostIncrease * MonthlySalesPerDish
		totalMonthly += monthly

		var shocked []string
		for _, line := range analysis.CostBreakdown {
			if line.ShockPct > 0 {
				shocked = append(shocked, line.Ingredient)
			}
		}

		impacts = append(impacts, models.DishImpact{
			Name:                analysis.DishName,
			Category:            analysis.Category,
			CostIncrease:        analysis.TotalCostIncrease,
			PercentageIncrease:  analysis.CostIncreasePct,
			MonthlyImpact:       monthly,
			AffectedIngredients: shocked,
			MenuPrice:           analysis.MenuPrice,
		})
	}

	sort.SliceStable(impacts, func(i, j int) bool {
		return impacts[i].MonthlyImpact > impacts[j].MonthlyImpact
	})

	topN := len(impacts)
	if topN > 5 {
		topN = 5
	}

	return &models.PriceShockImpact{
		AffectedDishes:       impacts,
		MostImpactedDishes:   impacts[:topN],
		TotalMonthlyIncrease: totalMonthly,
		PriceShocksApplied:   shockMap,
		TotalDishesAffected:  len(affectedSet),
		Assumptions: models.ShockAssumptions{
			MonthlySalesPerDish: MonthlySalesPerDish,
			CalculationMethod:   "quantity × unit_price × (1 + shock_pct/100)",
		},
	}
}
