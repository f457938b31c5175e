package cost

import (
	"sort"

	"menucost/internal/models"
)

// AnalyzeSupplyDelays classifies the supply risk of each delayed
// ingredient and maps it onto the dishes that use it. Unknown ingredients
// are skipped. Risk tiers, in priority order: HIGH when the new lead time
// exceeds the threshold, else MEDIUM when the delay itself exceeds two
// days, else LOW.
func (e *Engine) AnalyzeSupplyDelays(delays []models.SupplyDelay, thresholdDays int) *models.DelayImpact {
	var risks []models.SupplyRisk

	for _, delay := range delays {
		ing, ok := e.store.Ingredient(delay.Ingredient)
		if !ok {
			continue
		}

		newLeadTime := ing.LeadTimeDays + delay.ExtraDays
		risk := models.RiskLow
		if newLeadTime > thresholdDays {
			risk = models.RiskHigh
		} else if delay.ExtraDays > 2 {
			risk = models.RiskMedium
		}

		affected := e.store.DishesWithIngredient(delay.Ingredient)

		risks = append(risks, models.SupplyRisk{
			Ingredient:        delay.Ingredient,
			BaseLeadTimeDays:  ing.LeadTimeDays,
			ExtraDaysDelay:    delay.ExtraDays,
			NewLeadTimeDays:   newLeadTime,
			RiskLevel:         risk,
			Supplier:          ing.Supplier,
			AffectedDishes:    affected,
			AffectedDishCount: len(affected),
		})
	}

	// Risk tier dominates; within a tier, more affected dishes first.
	sort.SliceStable(risks, func(i, j int) bool {
		if risks[i].RiskLevel.Priority() != risks[j].RiskLevel.Priority() {
			return risks[i].RiskLevel.Priority() > risks[j].RiskLevel.Priority()
		}
		return risks[i].AffectedDishCount > risks[j].AffectedDishCount
	})

	// Flattened (dish, ingredient) view of HIGH and MEDIUM risks only.
	var atRisk []models.AtRiskDish
	for _, risk := range risks {
		if risk.RiskLevel == models.RiskLow {
			continue
		}
		for _, dishName := range risk.AffectedDishes {
			dish, ok := e.store.Dish(dishName)
			if !ok {
				continue
			}
			atRisk = append(atRisk, models.AtRiskDish{
				Name:               dishName,
				Category:           dish.Category,
				AffectedIngredient: risk.Ingredient,
				BaseLeadTime:       risk.BaseLeadTimeDays,
				NewLeadTime:        risk.NewLeadTimeDays,
				ExtraDays:          risk.ExtraDaysDelay,
			})
		}
	}

	analyzed := make(map[string]int, len(delays))
	for _, delay := range delays {
		analyzed[delay.Ingredient] = delay.ExtraDays
	}

	return &models.DelayImpact{
		AtRiskDishes:   atRisk,
		SupplyRisks:    risks,
		ThresholdDays:  thresholdDays,
		DelaysAnalyzed: analyzed,
	}
}
