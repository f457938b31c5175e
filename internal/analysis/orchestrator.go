package analysis

import (
	"fmt"
	"log"
	"strings"

	"menucost/internal/cost"
	"menucost/internal/models"
	"menucost/internal/substitution"
)

// Orchestrator routes a structured query through the cost and
// substitution engines in their fixed evaluation order and assembles the
// combined result.
type Orchestrator struct {
	cost  *cost.Engine
	subs  *substitution.Engine
	convo ConversationContext
}

// ParsingMetadata echoes how the query was understood
type ParsingMetadata struct {
	QueryType         models.QueryType `json:"query_type"`
	UserIntent        string           `json:"user_intent"`
	OriginalQuery     string           `json:"original_query"`
	ParsingSuccessful bool             `json:"parsing_successful"`
}

// Result is the combined outcome of one analysis request. Exactly one of
// the impact branches is populated; Error is set instead of propagating a
// fault past the operation boundary.
type Result struct {
	BaselineCosts          map[string]models.DishCostBreakdown `json:"baseline_costs"`
	CategoryDishes         []models.CategoryDish               `json:"category_dishes,omitempty"`
	CategoryFilter         string                              `json:"category_filter,omitempty"`
	UserIntent             string                              `json:"user_intent,omitempty"`
	DelayImpact            *models.DelayImpact                 `json:"delay_impact,omitempty"`
	PriceShockImpact       *models.PriceShockImpact            `json:"price_shock_impact,omitempty"`
	AvailableSubstitutions []models.Substitution               `json:"available_substitutions,omitempty"`
	FollowupContext        []string                            `json:"followup_context,omitempty"`
	ParsingMetadata        ParsingMetadata                     `json:"parsing_metadata"`
	Error                  string                              `json:"error,omitempty"`
}

// NewOrchestrator wires the two engines and a conversation context
func NewOrchestrator(costEngine *cost.Engine, subsEngine *substitution.Engine, convo ConversationContext) *Orchestrator {
	return &Orchestrator{cost: costEngine, subs: subsEngine, convo: convo}
}

// followupWords are the intent markers of a substitution follow-up question
var followupWords = []string{"substitution", "substitute", "alternative", "replace"}

// ProcessQuery evaluates a structured query. Baseline costs are always
// computed first. Delays take priority over price shocks when both are
// present; the branches are mutually exclusive. A general query with
// substitution wording re-analyzes recently mentioned ingredients from
// the conversation context, which is empty in the stateless deployment.
func (o *Orchestrator) ProcessQuery(query models.StructuredQuery) (result *Result) {
	result = &Result{}

	// No fault may escape a public operation: surface it as a structured
	// error value instead.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Analysis fault: %v", r)
			result.Error = fmt.Sprintf("analysis failed: %v", r)
		}
	}()

	log.Printf("Processing query - type: %s, intent: %s", query.QueryType, query.UserIntent)

	result.BaselineCosts = o.cost.CalculateBaselineCosts()

	if query.QueryType == models.QueryCategory && query.CategoryFilter != "" {
		result.CategoryDishes = o.cost.DishesByCategory(query.CategoryFilter)
		result.CategoryFilter = query.CategoryFilter
		result.UserIntent = query.UserIntent
	}

	recentIngredients := o.convo.RecentIngredients()
	isFollowup := query.QueryType == models.QueryGeneral &&
		o.convo.HasRecentAnalysis() &&
		containsAny(strings.ToLower(query.UserIntent), followupWords)

	switch {
	case len(query.Delays) > 0:
		log.Printf("Processing supply delays: %v", query.Delays)
		delayImpact := o.cost.AnalyzeSupplyDelays(query.Delays, query.Threshold())
		result.DelayImpact = delayImpact
		result.AvailableSubstitutions = o.subs.FindSubstitutions(delayImpact)

	case len(query.PriceShocks) > 0:
		log.Printf("Processing price shocks: %v", query.PriceShocks)
		shockImpact := o.cost.ApplyPriceShocks(query.PriceShocks)
		result.PriceShockImpact = shockImpact
		result.AvailableSubstitutions = o.subs.FindSubstitutions(shockImpact)

	case isFollowup && len(recentIngredients) > 0:
		// Unreachable with the stateless context; kept as the extension
		// point for a stateful conversation collaborator.
		log.Printf("Processing substitution follow-up for: %v", recentIngredients)
		result.AvailableSubstitutions = o.subs.FindSubstitutions(followupImpact(recentIngredients))
		result.FollowupContext = recentIngredients
	}

	result.ParsingMetadata = ParsingMetadata{
		QueryType:         query.QueryType,
		UserIntent:        query.UserIntent,
		OriginalQuery:     query.OriginalQuery,
		ParsingSuccessful: !query.ParseFailed,
	}

	return result
}

// followupImpact shapes recently mentioned ingredients as a synthetic
// price-shock impact so the substitution engine can re-analyze them.
func followupImpact(ingredients []string) *models.PriceShockImpact {
	dishes := make([]models.DishImpact, 0, len(ingredients))
	for _, ing := range ingredients {
		dishes = append(dishes, models.DishImpact{
			Name:                "Multiple dishes",
			Category:            "general",
			AffectedIngredients: []string{ing},
		})
	}
	return &models.PriceShockImpact{AffectedDishes: dishes}
}

func containsAny(s string, words []string) bool {
	for _, word := range words {
		if strings.Contains(s, word) {
			return true
		}
	}
	return false
}
