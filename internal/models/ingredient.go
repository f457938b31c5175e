package models

import "fmt"

// Ingredient represents a purchasable ingredient from the reference data.
// Identity is the ingredient name; the loader rejects duplicates.
type Ingredient struct {
	Name         string  `json:"ingredient"`
	BaseCostUSD  float64 `json:"base_cost_per_unit_usd"`
	LeadTimeDays int     `json:"lead_time_days"`
	Supplier     string  `json:"supplier"`
}

// SubstitutionRule represents a single allowed or disallowed swap between
// two ingredients within a menu context.
type SubstitutionRule struct {
	Original   string `json:"ingredient"`
	Substitute string `json:"substitute"`
	Context    string `json:"context"`
	Allowed    bool   `json:"allowed"`
	Rationale  string `json:"rationale"`
}

// ValidateIngredient validates an ingredient record
func ValidateIngredient(ing *Ingredient) error {
	if ing.Name == "" {
		return fmt.Errorf("ingredient name is required")
	}
	if ing.BaseCostUSD < 0 {
		return fmt.Errorf("ingredient %s: base cost must not be negative", ing.Name)
	}
	if ing.LeadTimeDays < 0 {
		return fmt.Errorf("ingredient %s: lead time must not be negative", ing.Name)
	}
	return nil
}

// ValidateSubstitutionRule validates a substitution rule record
func ValidateSubstitutionRule(rule *SubstitutionRule) error {
	if rule.Original == "" {
		return fmt.Errorf("substitution rule original ingredient is required")
	}
	if rule.Substitute == "" {
		return fmt.Errorf("substitution rule substitute ingredient is required")
	}
	return nil
}
