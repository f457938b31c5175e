package report

import (
	"fmt"
	"sort"
	"strings"

	"menucost/internal/analysis"
	"menucost/internal/models"
)

// FormatResponse renders the combined analysis result as conversational
// markdown for the chat surface. Rendering never fails: an analysis error
// becomes an apology message.
func FormatResponse(query models.StructuredQuery, result *analysis.Result) string {
	if result.Error != "" {
		return fmt.Sprintf("Sorry, I encountered an error analyzing your request: %s", result.Error)
	}

	switch {
	case result.PriceShockImpact != nil:
		return formatPriceShockResponse(result)
	case result.DelayImpact != nil:
		return formatDelayResponse(result)
	case query.QueryType == models.QueryCategory && result.CategoryFilter != "":
		return formatCategoryResponse(result)
	case len(result.FollowupContext) > 0:
		return formatFollowupResponse(result)
	}

	return "I can help you analyze ingredient cost impacts and suggest menu changes. " +
		"Try asking about price increases, supply delays, or cost breakdowns for specific menu categories."
}

func formatPriceShockResponse(result *analysis.Result) string {
	impact := result.PriceShockImpact

	var b strings.Builder
	b.WriteString("**PRICE SHOCK ANALYSIS**\n\n")

	b.WriteString("**Query Parsed:**\n")
	for _, ingredient := range sortedKeys(impact.PriceShocksApplied) {
		fmt.Fprintf(&b, "- Ingredient: %s\n", ingredient)
		fmt.Fprintf(&b, "- Price increase: %g%%\n", impact.PriceShocksApplied[ingredient])
	}
	b.WriteString("\n")

	b.WriteString("**Impact Analysis:**\n")
	b.WriteString("**Affected Menu Items:**\n")
	for i, dish := range impact.AffectedDishes {
		if i >= 8 {
			break
		}
		oldCost := 0.0
		if dish.PercentageIncrease > 0 {
			oldCost = dish.CostIncrease / (dish.PercentageIncrease / 100)
		}
		fmt.Fprintf(&b, "%d. %s - Cost: $%.2f → $%.2f (+$%.2f)\n",
			i+1, dish.Name, oldCost, oldCost+dish.CostIncrease, dish.CostIncrease)
	}
	b.WriteString("\n")

	b.WriteString("**Monthly Impact:**\n")
	fmt.Fprintf(&b, "- Additional COGS: +$%.0f (assuming %d dishes/month per item)\n",
		impact.TotalMonthlyIncrease, impact.Assumptions.MonthlySalesPerDish)
	if len(impact.MostImpactedDishes) > 0 {
		top := impact.MostImpactedDishes[0]
		fmt.Fprintf(&b, "- Most exposed: %s (+%.1f%% dish cost)\n", top.Name, top.PercentageIncrease)
	}
	b.WriteString("\n")

	b.WriteString("**Substitution Recommendations:**\n")
	subs := result.AvailableSubstitutions
	if len(subs) == 0 {
		names := make([]string, 0, len(impact.PriceShocksApplied))
		for _, ingredient := range sortedKeys(impact.PriceShocksApplied) {
			names = append(names, displayName(ingredient))
		}
		fmt.Fprintf(&b, "No cost-effective substitutions found for %s.\n\n", strings.Join(names, ", "))
		b.WriteString("**Recommendations:**\n")
		fmt.Fprintf(&b, "- Consider adjusting menu prices to offset the $%.0f monthly increase\n", impact.TotalMonthlyIncrease)
		b.WriteString("- Negotiate with current supplier for better rates\n")
		fmt.Fprintf(&b, "- Source alternative suppliers for %s\n", strings.Join(names, ", "))
		return b.String()
	}

	totalSavings := 0.0
	appliedCount := 0
	for i, sub := range subs {
		if i >= 3 {
			break
		}
		if sub.CostImpact != nil && sub.CostImpact.Classification == models.CostCheaper {
			totalSavings += sub.CostImpact.DifferenceUSD * float64(impact.Assumptions.MonthlySalesPerDish)
			appliedCount++
			fmt.Fprintf(&b, "**Applied:** %s → %s (%s context)\n", sub.Original, sub.Substitute, sub.Context)
			fmt.Fprintf(&b, "- %s: Potential savings $%.2f per dish\n", sub.AffectedDish, sub.CostImpact.DifferenceUSD)
			fmt.Fprintf(&b, "- Rationale: %q\n\n", sub.Rationale)
		} else {
			fmt.Fprintf(&b, "**Available:** %s → %s (%s context)\n", sub.Original, sub.Substitute, sub.Context)
			fmt.Fprintf(&b, "- %s: %s\n", sub.AffectedDish, sub.CostImpact)
			fmt.Fprintf(&b, "- Rationale: %q\n\n", sub.Rationale)
		}
	}

	if totalSavings > 0 && appliedCount > 0 {
		b.WriteString("**Final Impact After Substitutions:**\n")
		netCost := impact.TotalMonthlyIncrease - totalSavings
		if netCost < 0 {
			netCost = 0
		}
		reductionPct := 0.0
		if impact.TotalMonthlyIncrease > 0 {
			reductionPct = totalSavings / impact.TotalMonthlyIncrease * 100
			if reductionPct > 100 {
				reductionPct = 100
			}
		}
		fmt.Fprintf(&b, "- Net additional cost: +$%.0f/month (-%.0f%% reduction)\n", netCost, reductionPct)
		fmt.Fprintf(&b, "- %d dishes optimized, %d dishes still affected\n",
			appliedCount, impact.TotalDishesAffected-appliedCount)
	} else {
		b.WriteString("**Impact Summary:**\n")
		fmt.Fprintf(&b, "- %d substitution options found\n", len(subs))
		b.WriteString("- Consider implementing based on kitchen capabilities\n")
	}

	return b.String()
}

func formatDelayResponse(result *analysis.Result) string {
	impact := result.DelayImpact

	var b strings.Builder
	b.WriteString("**SUPPLY DELAY ANALYSIS**\n\n")

	b.WriteString("**Query Parsed:**\n")
	maxDelay := 0
	for _, ingredient := range sortedIntKeys(impact.DelaysAnalyzed) {
		days := impact.DelaysAnalyzed[ingredient]
		if days > maxDelay {
			maxDelay = days
		}
		baseLeadTime := 3
		for _, risk := range impact.SupplyRisks {
			if risk.Ingredient == ingredient {
				baseLeadTime = risk.BaseLeadTimeDays
				break
			}
		}
		fmt.Fprintf(&b, "- Ingredient: %s\n", ingredient)
		fmt.Fprintf(&b, "- Delay: %d additional days\n", days)
		fmt.Fprintf(&b, "- Current lead time: %d days → %d days total\n", baseLeadTime, baseLeadTime+days)
	}
	b.WriteString("\n")

	b.WriteString("**Supply Risk Assessment:**\n")
	writeRiskTier(&b, "Critical Risk Items", impact.SupplyRisks, models.RiskHigh)
	writeRiskTier(&b, "Medium Risk Items", impact.SupplyRisks, models.RiskMedium)
	b.WriteString("\n")

	b.WriteString("**Impact Timeline:**\n")
	fmt.Fprintf(&b, "- Days 1-%d: Normal operations (current inventory)\n", impact.ThresholdDays-1)
	fmt.Fprintf(&b, "- Days %d-%d: **STOCKOUT RISK** - %d menu items affected\n",
		impact.ThresholdDays, impact.ThresholdDays+maxDelay, len(impact.AtRiskDishes))
	// Rough estimate: $15 average ticket, 7 days of exposure.
	fmt.Fprintf(&b, "- Revenue at risk: ~$%d/week\n\n", len(impact.AtRiskDishes)*15*7)

	subs := result.AvailableSubstitutions
	if len(subs) == 0 {
		b.WriteString("**Mitigation Plan:**\n")
		b.WriteString("No suitable substitutions found\n")
		b.WriteString("**Recommendations:**\n")
		b.WriteString("1. Contact alternative suppliers immediately\n")
		b.WriteString("2. Increase safety stock for critical ingredients\n")
		b.WriteString("3. Consider temporary menu modifications\n")
		return b.String()
	}

	b.WriteString("**Substitution Strategy:**\n")
	for i, sub := range subs {
		if i >= 3 {
			break
		}
		if sub.LeadTimeImprovement != nil && sub.LeadTimeImprovement.Classification == models.LeadTimeFaster {
			fmt.Fprintf(&b, "**Applied:** %s → %s (%s context)\n", sub.Original, sub.Substitute, sub.Context)
			b.WriteString("- Affected dishes can continue production\n")
			fmt.Fprintf(&b, "- Rationale: %q\n", sub.Rationale)
			fmt.Fprintf(&b, "- Lead time: %s\n\n", sub.LeadTimeImprovement)
		} else {
			fmt.Fprintf(&b, "**Limited Options:** %s → %s\n", sub.Original, sub.Substitute)
			fmt.Fprintf(&b, "- %s\n", sub.LeadTimeImprovement)
			b.WriteString("- Consider temporary menu adjustments\n\n")
		}
	}

	b.WriteString("**Mitigation Plan:**\n")
	b.WriteString("1. **Immediate:** Implement viable substitutions above\n")
	b.WriteString("2. **Short-term:** Contact backup suppliers\n")
	b.WriteString("3. **Communication:** Notify customers of temporary menu changes\n")

	return b.String()
}

func formatCategoryResponse(result *analysis.Result) string {
	category := result.CategoryFilter
	dishes := result.CategoryDishes
	if len(dishes) == 0 {
		return fmt.Sprintf("No %s dishes found in the menu.", category)
	}

	totalCost := 0.0
	avgPct := 0.0
	for _, dish := range dishes {
		totalCost += dish.IngredientCost
		avgPct += dish.CostPercentage
	}
	avgPct /= float64(len(dishes))

	var b strings.Builder
	fmt.Fprintf(&b, "**%s COST BREAKDOWN**\n\n", strings.ToUpper(category))
	b.WriteString("**Summary:**\n")
	fmt.Fprintf(&b, "- %d %s dishes analyzed\n", len(dishes), category)
	fmt.Fprintf(&b, "- Total ingredient costs: $%.2f\n", totalCost)
	fmt.Fprintf(&b, "- Average cost ratio: %.1f%% of menu price\n\n", avgPct)

	b.WriteString("**Individual Dishes:**\n")
	for i, dish := range dishes {
		if i >= 8 {
			break
		}
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, dish.Name)
		fmt.Fprintf(&b, "   - Menu price: $%.2f\n", dish.MenuPrice)
		fmt.Fprintf(&b, "   - Ingredient cost: $%.2f (%.1f%%)\n", dish.IngredientCost, dish.CostPercentage)
		if top := topIngredients(dish.Ingredients, 3); len(top) > 0 {
			fmt.Fprintf(&b, "   - Top ingredients: %s\n", strings.Join(top, ", "))
		}
	}

	return b.String()
}

func formatFollowupResponse(result *analysis.Result) string {
	names := make([]string, 0, len(result.FollowupContext))
	for _, ingredient := range result.FollowupContext {
		names = append(names, displayName(ingredient))
	}

	var b strings.Builder
	b.WriteString("**SUBSTITUTION OPTIONS**\n\n")
	fmt.Fprintf(&b, "**Available substitutions for: %s**\n\n", strings.Join(names, ", "))

	subs := result.AvailableSubstitutions
	if len(subs) == 0 {
		b.WriteString("No substitutions are currently available for those ingredients.\n")
		b.WriteString("Consider contacting suppliers for alternative options.\n")
		return b.String()
	}

	for i, sub := range subs {
		if i >= 4 {
			break
		}
		fmt.Fprintf(&b, "**%d. %s → %s**\n", i+1, displayName(sub.Original), displayName(sub.Substitute))
		fmt.Fprintf(&b, "   - Context: %s\n", sub.Context)
		if sub.CostImpact != nil {
			fmt.Fprintf(&b, "   - Cost impact: %s\n", sub.CostImpact)
		}
		fmt.Fprintf(&b, "   - Rationale: %s\n", sub.Rationale)
		if sub.AffectedDish != "" {
			fmt.Fprintf(&b, "   - Example dish: %s\n", sub.AffectedDish)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeRiskTier(b *strings.Builder, title string, risks []models.SupplyRisk, level models.RiskLevel) {
	wroteHeader := false
	for _, risk := range risks {
		if risk.RiskLevel != level {
			continue
		}
		if !wroteHeader {
			fmt.Fprintf(b, "**%s:**\n", title)
			wroteHeader = true
		}
		fmt.Fprintf(b, "- %s: %d menu items affected\n", displayName(risk.Ingredient), risk.AffectedDishCount)
	}
}

// topIngredients returns the n costliest ingredient lines as display strings
func topIngredients(lines map[string]models.IngredientLine, n int) []string {
	type entry struct {
		name string
		cost float64
	}
	entries := make([]entry, 0, len(lines))
	for name, line := range lines {
		entries = append(entries, entry{name, line.TotalCost})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].cost != entries[j].cost {
			return entries[i].cost > entries[j].cost
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, fmt.Sprintf("%s ($%.2f)", displayName(e.name), e.cost))
	}
	return out
}

func displayName(ingredient string) string {
	return strings.ReplaceAll(ingredient, "_", " ")
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedIntKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
