package models

import (
	"fmt"
	"strings"
)

// MenuItem represents a dish on the menu
type MenuItem struct {
	Name     string  `json:"menu_item"`
	PriceUSD float64 `json:"price_usd"`
	Category string  `json:"category"`
}

// BOMEntry represents one bill-of-materials line: a quantity of an
// ingredient used by a menu item. A menu item has one-to-many entries;
// an ingredient may appear in many items.
type BOMEntry struct {
	MenuItem   string  `json:"menu_item"`
	Ingredient string  `json:"ingredient"`
	Qty        float64 `json:"qty"`
	Unit       string  `json:"unit"`
}

// ValidateMenuItem validates a menu item record. A non-positive price is
// degenerate but tolerated input; the cost engine guards its ratios.
func ValidateMenuItem(item *MenuItem) error {
	if item.Name == "" {
		return fmt.Errorf("menu item name is required")
	}
	if item.Category == "" {
		return fmt.Errorf("menu item %s: category is required", item.Name)
	}
	return nil
}

// ValidateBOMEntry validates a bill-of-materials record
func ValidateBOMEntry(entry *BOMEntry) error {
	if entry.MenuItem == "" {
		return fmt.Errorf("BOM entry menu item is required")
	}
	if entry.Ingredient == "" {
		return fmt.Errorf("BOM entry ingredient is required")
	}
	if entry.Qty < 0 {
		return fmt.Errorf("BOM entry %s/%s: quantity must not be negative", entry.MenuItem, entry.Ingredient)
	}
	return nil
}

// IsInCategory checks if the item belongs to a category, case-insensitively
func (mi *MenuItem) IsInCategory(category string) bool {
	return strings.EqualFold(mi.Category, category)
}
