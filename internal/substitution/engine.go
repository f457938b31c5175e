package substitution

import (
	"log"
	"strings"

	"menucost/internal/data"
	"menucost/internal/models"
)

// Engine matches impacted ingredients against the substitution rules and
// scores each candidate swap on cost or delivery speed. Like the cost
// engine it is stateless over the immutable store.
type Engine struct {
	store *data.Store
}

// NewEngine creates a substitution engine over an indexed relation store
func NewEngine(store *data.Store) *Engine {
	log.Printf("Substitution engine initialized with %d substitution rules",
		store.NumSubstitutionRules())
	return &Engine{store: store}
}

// GetSubstitutionsForIngredient returns the allowed substitution rules for
// an ingredient. When a context is given, rules whose context contains it
// (case-insensitive) are preferred; if none match, the full allowed set is
// returned instead. Context narrows but never starves results.
func (e *Engine) GetSubstitutionsForIngredient(ingredient, context string) []models.SubstitutionRule {
	var allowed []models.SubstitutionRule
	for _, rule := range e.store.SubstitutionsFor(ingredient) {
		if rule.Allowed {
			allowed = append(allowed, rule)
		}
	}

	if context == "" {
		return allowed
	}

	var matched []models.SubstitutionRule
	needle := strings.ToLower(context)
	for _, rule := range allowed {
		if strings.Contains(strings.ToLower(rule.Context), needle) {
			matched = append(matched, rule)
		}
	}
	if len(matched) == 0 {
		return allowed
	}
	return matched
}

// ingredientPrice resolves an ingredient's unit price. A zero price is
// treated as unresolved so percentage math never divides by zero.
func (e *Engine) ingredientPrice(ingredient string) (float64, bool) {
	ing, ok := e.store.Ingredient(ingredient)
	if !ok || ing.BaseCostUSD == 0 {
		return 0, false
	}
	return ing.BaseCostUSD, true
}

// CalculateCostImpact compares the unit costs of an original ingredient
// and its substitute
func (e *Engine) CalculateCostImpact(original, substitute string) models.CostImpact {
	originalCost, okOriginal := e.ingredientPrice(original)
	substituteCost, okSubstitute := e.ingredientPrice(substitute)
	if !okOriginal || !okSubstitute {
		return models.CostImpact{Classification: models.CostUnknown}
	}

	diff := substituteCost - originalCost
	pct := diff / originalCost * 100

	switch {
	case diff > 0:
		return models.CostImpact{
			Classification: models.CostMoreExpensive,
			DifferenceUSD:  diff,
			DifferencePct:  pct,
		}
	case diff < 0:
		return models.CostImpact{
			Classification: models.CostCheaper,
			DifferenceUSD:  -diff,
			DifferencePct:  -pct,
		}
	}
	return models.CostImpact{Classification: models.CostSame}
}

// CheckLeadTimeImprovement compares the lead times of an original
// ingredient and its substitute
func (e *Engine) CheckLeadTimeImprovement(original, substitute string) models.LeadTimeImprovement {
	originalIng, okOriginal := e.store.Ingredient(original)
	substituteIng, okSubstitute := e.store.Ingredient(substitute)
	if !okOriginal || !okSubstitute {
		return models.LeadTimeImprovement{Classification: models.LeadTimeUnknown}
	}

	diff := substituteIng.LeadTimeDays - originalIng.LeadTimeDays
	switch {
	case diff < 0:
		return models.LeadTimeImprovement{
			Classification: models.LeadTimeFaster,
			DifferenceDays: -diff,
		}
	case diff > 0:
		return models.LeadTimeImprovement{
			Classification: models.LeadTimeSlower,
			DifferenceDays: diff,
		}
	}
	return models.LeadTimeImprovement{Classification: models.LeadTimeSame}
}

// FindSubstitutions finds candidate swaps for every impacted ingredient.
// Price-shock impacts get a cost comparison, delay impacts a lead-time
// comparison; the dish category serves as rule context either way.
// Duplicate (original, substitute, context) triples surfacing from
// multiple dishes are collapsed to their first occurrence.
func (e *Engine) FindSubstitutions(impact models.Impact) []models.Substitution {
	var found []models.Substitution

	switch v := impact.(type) {
	case *models.PriceShockImpact:
		for _, dish := range v.AffectedDishes {
			for _, ingredient := range dish.AffectedIngredients {
				if ingredient == "" {
					continue
				}
				category := dishContext(dish.Category)
				for _, rule := range e.GetSubstitutionsForIngredient(ingredient, category) {
					costImpact := e.CalculateCostImpact(rule.Original, rule.Substitute)
					found = append(found, models.Substitution{
						Original:     rule.Original,
						Substitute:   rule.Substitute,
						Context:      rule.Context,
						Rationale:    rule.Rationale,
						CostImpact:   &costImpact,
						AffectedDish: dish.Name,
						DishCategory: category,
					})
				}
			}
		}

	case *models.DelayImpact:
		for _, dish := range v.AtRiskDishes {
			if dish.AffectedIngredient == "" {
				continue
			}
			category := dishContext(dish.Category)
			for _, rule := range e.GetSubstitutionsForIngredient(dish.AffectedIngredient, category) {
				leadTime := e.CheckLeadTimeImprovement(rule.Original, rule.Substitute)
				found = append(found, models.Substitution{
					Original:            rule.Original,
					Substitute:          rule.Substitute,
					Context:             rule.Context,
					Rationale:           rule.Rationale,
					LeadTimeImprovement: &leadTime,
					AffectedDish:        dish.Name,
					DishCategory:        category,
				})
			}
		}
	}

	return dedupe(found)
}

func dishContext(category string) string {
	if category == "" {
		return "general"
	}
	return category
}

type substitutionKey struct {
	original   string
	substitute string
	context    string
}

func dedupe(subs []models.Substitution) []models.Substitution {
	seen := make(map[substitutionKey]bool, len(subs))
	unique := make([]models.Substitution, 0, len(subs))
	for _, sub := range subs {
		key := substitutionKey{sub.Original, sub.Substitute, sub.Context}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, sub)
	}
	return unique
}
