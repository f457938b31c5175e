package data

import (
	"fmt"
	"sort"

	"menucost/internal/models"
)

// Store holds the four reference relations indexed for O(1) lookup.
// All indexes are built once at construction; a Store is immutable
// afterwards and safe for concurrent readers without locking.
type Store struct {
	ingredients map[string]models.Ingredient
	menu        map[string]models.MenuItem
	menuNames   []string
	bomByDish   map[string][]models.BOMEntry
	dishesByIng map[string][]string
	subsByIng   map[string][]models.SubstitutionRule
	numBOM      int
	numSubs     int
}

// NewStore indexes the reference relations. Duplicate ingredient or menu
// item names are rejected; every record is validated on the way in.
func NewStore(ingredients []models.Ingredient, menu []models.MenuItem, bom []models.BOMEntry, subs []models.SubstitutionRule) (*Store, error) {
	s := &Store{
		ingredients: make(map[string]models.Ingredient, len(ingredients)),
		menu:        make(map[string]models.MenuItem, len(menu)),
		bomByDish:   make(map[string][]models.BOMEntry),
		dishesByIng: make(map[string][]string),
		subsByIng:   make(map[string][]models.SubstitutionRule),
		numBOM:      len(bom),
		numSubs:     len(subs),
	}

	for i := range ingredients {
		ing := ingredients[i]
		if err := models.ValidateIngredient(&ing); err != nil {
			return nil, err
		}
		if _, exists := s.ingredients[ing.Name]; exists {
			return nil, fmt.Errorf("duplicate ingredient: %s", ing.Name)
		}
		s.ingredients[ing.Name] = ing
	}

	for i := range menu {
		item := menu[i]
		if err := models.ValidateMenuItem(&item); err != nil {
			return nil, err
		}
		if _, exists := s.menu[item.Name]; exists {
			return nil, fmt.Errorf("duplicate menu item: %s", item.Name)
		}
		s.menu[item.Name] = item
		s.menuNames = append(s.menuNames, item.Name)
	}
	sort.Strings(s.menuNames)

	for i := range bom {
		entry := bom[i]
		if err := models.ValidateBOMEntry(&entry); err != nil {
			return nil, err
		}
		s.bomByDish[entry.MenuItem] = append(s.bomByDish[entry.MenuItem], entry)
		if !containsString(s.dishesByIng[entry.Ingredient], entry.MenuItem) {
			s.dishesByIng[entry.Ingredient] = append(s.dishesByIng[entry.Ingredient], entry.MenuItem)
		}
	}
	for _, dishes := range s.dishesByIng {
		sort.Strings(dishes)
	}

	for i := range subs {
		rule := subs[i]
		if err := models.ValidateSubstitutionRule(&rule); err != nil {
			return nil, err
		}
		s.subsByIng[rule.Original] = append(s.subsByIng[rule.Original], rule)
	}

	return s, nil
}

// Ingredient looks up an ingredient by name
func (s *Store) Ingredient(name string) (models.Ingredient, bool) {
	ing, ok := s.ingredients[name]
	return ing, ok
}

// Dish looks up a menu item by name
func (s *Store) Dish(name string) (models.MenuItem, bool) {
	item, ok := s.menu[name]
	return item, ok
}

// MenuNames returns all menu item names in sorted order
func (s *Store) MenuNames() []string {
	return s.menuNames
}

// BOMFor returns the bill-of-materials rows for a dish
func (s *Store) BOMFor(dish string) []models.BOMEntry {
	return s.bomByDish[dish]
}

// DishesWithIngredient returns the sorted, deduplicated names of all
// dishes whose BOM references the ingredient.
func (s *Store) DishesWithIngredient(ingredient string) []string {
	return s.dishesByIng[ingredient]
}

// SubstitutionsFor returns all substitution rules (allowed or not) whose
// original ingredient matches, in load order.
func (s *Store) SubstitutionsFor(ingredient string) []models.SubstitutionRule {
	return s.subsByIng[ingredient]
}

// NumIngredients returns the size of the ingredient relation
func (s *Store) NumIngredients() int { return len(s.ingredients) }

// NumMenuItems returns the size of the menu relation
func (s *Store) NumMenuItems() int { return len(s.menu) }

// NumBOMEntries returns the size of the bill-of-materials relation
func (s *Store) NumBOMEntries() int { return s.numBOM }

// NumSubstitutionRules returns the size of the substitutions relation
func (s *Store) NumSubstitutionRules() int { return s.numSubs }

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
