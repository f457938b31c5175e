package data

import (
	"fmt"

	"menucost/internal/models"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Row types mirroring the reference tables in SQLite.

type ingredientRow struct {
	Ingredient      string  `gorm:"column:ingredient;primary_key"`
	BaseCostPerUnit float64 `gorm:"column:base_cost_per_unit_usd"`
	LeadTimeDays    int     `gorm:"column:lead_time_days"`
	Supplier        string  `gorm:"column:supplier"`
}

func (ingredientRow) TableName() string { return "ingredients" }

type menuRow struct {
	MenuItem string  `gorm:"column:menu_item;primary_key"`
	PriceUSD float64 `gorm:"column:price_usd"`
	Category string  `gorm:"column:category"`
}

func (menuRow) TableName() string { return "menu" }

type bomRow struct {
	MenuItem   string  `gorm:"column:menu_item"`
	Ingredient string  `gorm:"column:ingredient"`
	Qty        float64 `gorm:"column:qty"`
	Unit       string  `gorm:"column:unit"`
}

func (bomRow) TableName() string { return "menu_bom" }

type substitutionRow struct {
	Ingredient string `gorm:"column:ingredient"`
	Substitute string `gorm:"column:substitute"`
	Context    string `gorm:"column:context"`
	Allowed    bool   `gorm:"column:allowed"`
	Rationale  string `gorm:"column:rationale"`
}

func (substitutionRow) TableName() string { return "substitutions" }

// LoadFromSQLite reads the four reference tables from a SQLite database
// and builds an indexed store. The database is opened read-only in
// spirit: nothing here writes to it.
func LoadFromSQLite(dbPath string) (*Store, error) {
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}
	defer db.Close()

	return loadFromDB(db)
}

func loadFromDB(db *gorm.DB) (*Store, error) {
	var ingRows []ingredientRow
	if err := db.Find(&ingRows).Error; err != nil {
		return nil, fmt.Errorf("failed to load ingredients: %w", err)
	}
	var menuRows []menuRow
	if err := db.Find(&menuRows).Error; err != nil {
		return nil, fmt.Errorf("failed to load menu: %w", err)
	}
	var bomRows []bomRow
	if err := db.Find(&bomRows).Error; err != nil {
		return nil, fmt.Errorf("failed to load menu BOM: %w", err)
	}
	var subRows []substitutionRow
	if err := db.Find(&subRows).Error; err != nil {
		return nil, fmt.Errorf("failed to load substitutions: %w", err)
	}

	ingredients := make([]models.Ingredient, 0, len(ingRows))
	for _, r := range ingRows {
		ingredients = append(ingredients, models.Ingredient{
			Name:         r.Ingredient,
			BaseCostUSD:  r.BaseCostPerUnit,
			LeadTimeDays: r.LeadTimeDays,
			Supplier:     r.Supplier,
		})
	}
	menu := make([]models.MenuItem, 0, len(menuRows))
	for _, r := range menuRows {
		menu = append(menu, models.MenuItem{
			Name:     r.MenuItem,
			PriceUSD: r.PriceUSD,
			Category: r.Category,
		})
	}
	bom := make([]models.BOMEntry, 0, len(bomRows))
	for _, r := range bomRows {
		bom = append(bom, models.BOMEntry{
			MenuItem:   r.MenuItem,
			Ingredient: r.Ingredient,
			Qty:        r.Qty,
			Unit:       r.Unit,
		})
	}
	subs := make([]models.SubstitutionRule, 0, len(subRows))
	for _, r := range subRows {
		subs = append(subs, models.SubstitutionRule{
			Original:   r.Ingredient,
			Substitute: r.Substitute,
			Context:    r.Context,
			Allowed:    r.Allowed,
			Rationale:  r.Rationale,
		})
	}

	return NewStore(ingredients, menu, bom, subs)
}

// SeedSQLite creates the reference tables in a SQLite database from CSV
// files in dir, replacing any existing rows. Used to bootstrap a fresh
// deployment from the canonical CSV exports.
func SeedSQLite(dbPath, dir string) error {
	ingredients, menu, bom, subs, err := readCSVDir(dir)
	if err != nil {
		return err
	}

	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&ingredientRow{}, &menuRow{}, &bomRow{}, &substitutionRow{}).Error; err != nil {
		return fmt.Errorf("failed to migrate reference tables: %w", err)
	}

	tx := db.Begin()
	for _, table := range []string{"ingredients", "menu", "menu_bom", "substitutions"} {
		if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}

	for _, ing := range ingredients {
		row := ingredientRow{
			Ingredient:      ing.Name,
			BaseCostPerUnit: ing.BaseCostUSD,
			LeadTimeDays:    ing.LeadTimeDays,
			Supplier:        ing.Supplier,
		}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert ingredient %s: %w", ing.Name, err)
		}
	}
	for _, item := range menu {
		row := menuRow{MenuItem: item.Name, PriceUSD: item.PriceUSD, Category: item.Category}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert menu item %s: %w", item.Name, err)
		}
	}
	for _, entry := range bom {
		row := bomRow{MenuItem: entry.MenuItem, Ingredient: entry.Ingredient, Qty: entry.Qty, Unit: entry.Unit}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert BOM entry %s/%s: %w", entry.MenuItem, entry.Ingredient, err)
		}
	}
	for _, rule := range subs {
		row := substitutionRow{
			Ingredient: rule.Original,
			Substitute: rule.Substitute,
			Context:    rule.Context,
			Allowed:    rule.Allowed,
			Rationale:  rule.Rationale,
		}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert substitution %s/%s: %w", rule.Original, rule.Substitute, err)
		}
	}

	return tx.Commit().Error
}
