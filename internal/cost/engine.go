package cost

import (
	"log"
	"sort"

	"menucost/internal/data"
	"menucost/internal/models"
)

// MonthlySalesPerDish is the fixed business assumption for units sold per
// dish per month when projecting a cost increase onto monthly spend.
const MonthlySalesPerDish = 100

// Engine computes dish cost structure from the reference relations and
// models the first-order impact of ingredient price shocks and supply
// delays. It holds no mutable state: every result is derived from the
// immutable store, so identical inputs always yield identical results
// regardless of call order.
type Engine struct {
	store *data.Store
}

// NewEngine creates a cost engine over an indexed relation store
func NewEngine(store *data.Store) *Engine {
	log.Printf("Cost engine initialized with %d dishes and %d ingredients",
		store.NumMenuItems(), store.NumIngredients())
	return &Engine{store: store}
}

// CalculateBaselineCosts computes the baseline ingredient cost of every
// menu item. A BOM entry referencing an unknown ingredient contributes
// zero cost rather than failing the batch; a non-positive menu price
// yields a zero cost percentage.
func (e *Engine) CalculateBaselineCosts() map[string]models.DishCostBreakdown {
	baseline := make(map[string]models.DishCostBreakdown, e.store.NumMenuItems())

	for _, name := range e.store.MenuNames() {
		item, _ := e.store.Dish(name)

		total := 0.0
		details := make(map[string]models.IngredientLine)
		for _, entry := range e.store.BOMFor(name) {
			ing, ok := e.store.Ingredient(entry.Ingredient)
			if !ok {
				continue
			}
			lineCost := entry.Qty * ing.BaseCostUSD
			total += lineCost
			details[entry.Ingredient] = models.IngredientLine{
				Qty:       entry.Qty,
				UnitCost:  ing.BaseCostUSD,
				TotalCost: lineCost,
				Unit:      entry.Unit,
			}
		}

		costPct := 0.0
		if item.PriceUSD > 0 {
			costPct = total / item.PriceUSD * 100
		}

		baseline[name] = models.DishCostBreakdown{
			MenuPrice:      item.PriceUSD,
			IngredientCost: total,
			CostPercentage: costPct,
			Category:       item.Category,
			Ingredients:    details,
		}
	}

	return baseline
}

// CalculateDishCost re-derives the cost of a single dish, recomputing each
// ingredient line under the supplied shock map when one is given. Returns
// nil when the dish is unknown.
func (e *Engine) CalculateDishCost(dishName string, shocks map[string]float64) *models.DishCost {
	baseline := e.CalculateBaselineCosts()
	dish, ok := baseline[dishName]
	if !ok {
		return nil
	}

	totalBase := dish.IngredientCost
	totalNew := totalBase
	var breakdown []models.CostLine

	if len(shocks) > 0 {
		totalNew = 0.0
		for _, ingredient := range sortedIngredientNames(dish.Ingredients) {
			line := dish.Ingredients[ingredient]
			shockPct := shocks[ingredient]
			newCost := line.TotalCost * (1 + shockPct/100)
			totalNew += newCost

			breakdown = append(breakdown, models.CostLine{
				Ingredient:    ingredient,
				Quantity:      line.Qty,
				Unit:          line.Unit,
				BaseUnitPrice: line.UnitCost,
				NewUnitPrice:  line.UnitCost * (1 + shockPct/100),
				BaseCost:      line.TotalCost,
				NewCost:       newCost,
				CostIncrease:  newCost - line.TotalCost,
				ShockPct:      shockPct,
			})
		}
	}

	increasePct := 0.0
	if totalBase > 0 {
		increasePct = (totalNew - totalBase) / totalBase * 100
	}
	costRatio := 0.0
	if dish.MenuPrice > 0 {
		costRatio = totalBase / dish.MenuPrice
	}

	return &models.DishCost{
		DishName:            dishName,
		MenuPrice:           dish.MenuPrice,
		Category:            dish.Category,
		TotalBaseCost:       totalBase,
		TotalNewCost:        totalNew,
		TotalCostIncrease:   totalNew - totalBase,
		CostIncreasePct:     increasePct,
		IngredientCostRatio: costRatio,
		CostBreakdown:       breakdown,
	}
}

// DishesByCategory returns the cost breakdown of every dish in a category,
// matched case-insensitively and sorted by cost percentage descending.
func (e *Engine) DishesByCategory(category string) []models.CategoryDish {
	baseline := e.CalculateBaselineCosts()

	var dishes []models.CategoryDish
	for _, name := range e.store.MenuNames() {
		item, _ := e.store.Dish(name)
		if !item.IsInCategory(category) {
			continue
		}
		breakdown := baseline[name]
		dishes = append(dishes, models.CategoryDish{
			Name:           name,
			Category:       breakdown.Category,
			MenuPrice:      breakdown.MenuPrice,
			IngredientCost: breakdown.IngredientCost,
			CostPercentage: breakdown.CostPercentage,
			Ingredients:    breakdown.Ingredients,
		})
	}

	sort.SliceStable(dishes, func(i, j int) bool {
		return dishes[i].CostPercentage > dishes[j].CostPercentage
	})
	return dishes
}

func sortedIngredientNames(lines map[string]models.IngredientLine) []string {
	names := make([]string, 0, len(lines))
	for name := range lines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
