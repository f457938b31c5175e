package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"menucost/internal/models"

	"github.com/tmc/langchaingo/llms"
)

// ParseTimeout bounds the single LLM attempt. On timeout or malformed
// output the parser degrades to the neutral default query; it never fails
// the request and never retries.
const ParseTimeout = 30 * time.Second

// QueryParser turns free-text restaurant questions into structured
// queries using an LLM.
type QueryParser struct {
	model   llms.LLM
	timeout time.Duration
}

// NewQueryParser creates a parser over any langchaingo model
func NewQueryParser(model llms.LLM) *QueryParser {
	return &QueryParser{model: model, timeout: ParseTimeout}
}

// Parse translates a user message into a structured query. The returned
// query is always usable: any parse failure yields the default general
// query with ParseFailed set.
func (p *QueryParser) Parse(ctx context.Context, userInput string) models.StructuredQuery {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	response, err := p.model.Call(ctx, parsingPrompt(userInput),
		llms.WithTemperature(0.1),
		llms.WithTopP(0.9),
		llms.WithMaxTokens(200),
	)
	if err != nil {
		log.Printf("LLM query parsing failed: %v", err)
		return fallbackQuery(userInput)
	}

	query, err := extractQuery(response)
	if err != nil {
		log.Printf("LLM response rejected: %v", err)
		return fallbackQuery(userInput)
	}

	query.OriginalQuery = userInput
	return query
}

// parsingPrompt builds the single-shot parsing instruction for the model
func parsingPrompt(userInput string) string {
	return fmt.Sprintf(`Parse restaurant query into JSON.

Query: %q

Classification rules:
- If query mentions "delayed", "late", "shipment", "delivery" -> query_type is "delay"
- If query mentions "increased", "price up", "cost more" -> query_type is "price_shock"
- If query asks about category breakdown -> query_type is "category_query"

Ingredient mapping:
- "tomatoes" or "tomato" -> "tomato_sauce"
- "flour" -> "00_flour"
- "mozzarella" -> "mozzarella_fior_di_latte"
- "prosciutto" -> "prosciutto_crudo"

JSON format:
{
  "price_shocks": [{"ingredient": "name", "pct": number}],
  "delays": [{"ingredient": "name", "extra_days": number}],
  "assumptions": {"lead_time_threshold_days": 5},
  "query_type": "price_shock" | "delay" | "category_query" | "general",
  "category_filter": "pasta" | "pinsa" | "salad" | null,
  "user_intent": "brief description"
}`, userInput)
}

// extractQuery pulls the JSON object out of the model response and
// validates its structure.
func extractQuery(response string) (models.StructuredQuery, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return models.StructuredQuery{}, fmt.Errorf("no JSON object in response")
	}
	raw := response[start : end+1]

	// Required keys must be present before the payload is trusted.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return models.StructuredQuery{}, fmt.Errorf("invalid JSON: %w", err)
	}
	for _, key := range []string{"price_shocks", "delays", "assumptions", "query_type"} {
		if _, ok := fields[key]; !ok {
			return models.StructuredQuery{}, fmt.Errorf("missing required key %q", key)
		}
	}

	var query models.StructuredQuery
	if err := json.Unmarshal([]byte(raw), &query); err != nil {
		return models.StructuredQuery{}, fmt.Errorf("invalid query structure: %w", err)
	}

	log.Printf("Successfully parsed query type %s", query.QueryType)
	return query, nil
}

func fallbackQuery(userInput string) models.StructuredQuery {
	query := models.DefaultQuery()
	query.OriginalQuery = userInput
	query.ParseFailed = true
	return query
}
