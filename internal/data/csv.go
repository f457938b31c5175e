package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"menucost/internal/models"
)

// LoadFromCSV builds an indexed store from the four canonical CSV exports
// (ingredients.csv, menu.csv, menu_bom.csv, substitutions.csv) in dir.
func LoadFromCSV(dir string) (*Store, error) {
	ingredients, menu, bom, subs, err := readCSVDir(dir)
	if err != nil {
		return nil, err
	}
	return NewStore(ingredients, menu, bom, subs)
}

func readCSVDir(dir string) ([]models.Ingredient, []models.MenuItem, []models.BOMEntry, []models.SubstitutionRule, error) {
	ingredients, err := readIngredientsCSV(filepath.Join(dir, "ingredients.csv"))
	if err != nil {
		return nil, nil, nil, nil, err
	}
	menu, err := readMenuCSV(filepath.Join(dir, "menu.csv"))
	if err != nil {
		return nil, nil, nil, nil, err
	}
	bom, err := readBOMCSV(filepath.Join(dir, "menu_bom.csv"))
	if err != nil {
		return nil, nil, nil, nil, err
	}
	subs, err := readSubstitutionsCSV(filepath.Join(dir, "substitutions.csv"))
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return ingredients, menu, bom, subs, nil
}

// readRecords reads a CSV file and returns its rows as column-name maps,
// keyed off the header line.
func readRecords(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: missing header row", path)
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				record[strings.TrimSpace(col)] = strings.TrimSpace(row[i])
			}
		}
		records = append(records, record)
	}
	return records, nil
}

func readIngredientsCSV(path string) ([]models.Ingredient, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	ingredients := make([]models.Ingredient, 0, len(records))
	for _, rec := range records {
		cost, err := strconv.ParseFloat(rec["base_cost_per_unit_usd"], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad base cost for %s: %w", path, rec["ingredient"], err)
		}
		leadTime, err := strconv.Atoi(rec["lead_time_days"])
		if err != nil {
			return nil, fmt.Errorf("%s: bad lead time for %s: %w", path, rec["ingredient"], err)
		}
		ingredients = append(ingredients, models.Ingredient{
			Name:         rec["ingredient"],
			BaseCostUSD:  cost,
			LeadTimeDays: leadTime,
			Supplier:     rec["supplier"],
		})
	}
	return ingredients, nil
}

func readMenuCSV(path string) ([]models.MenuItem, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	menu := make([]models.MenuItem, 0, len(records))
	for _, rec := range records {
		price, err := strconv.ParseFloat(rec["price_usd"], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad price for %s: %w", path, rec["menu_item"], err)
		}
		menu = append(menu, models.MenuItem{
			Name:     rec["menu_item"],
			PriceUSD: price,
			Category: rec["category"],
		})
	}
	return menu, nil
}

func readBOMCSV(path string) ([]models.BOMEntry, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	bom := make([]models.BOMEntry, 0, len(records))
	for _, rec := range records {
		qty, err := strconv.ParseFloat(rec["qty"], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad quantity for %s/%s: %w", path, rec["menu_item"], rec["ingredient"], err)
		}
		bom = append(bom, models.BOMEntry{
			MenuItem:   rec["menu_item"],
			Ingredient: rec["ingredient"],
			Qty:        qty,
			Unit:       rec["unit"],
		})
	}
	return bom, nil
}

func readSubstitutionsCSV(path string) ([]models.SubstitutionRule, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	subs := make([]models.SubstitutionRule, 0, len(records))
	for _, rec := range records {
		allowed, err := strconv.ParseBool(strings.ToLower(rec["allowed"]))
		if err != nil {
			return nil, fmt.Errorf("%s: bad allowed flag for %s: %w", path, rec["ingredient"], err)
		}
		subs = append(subs, models.SubstitutionRule{
			Original:   rec["ingredient"],
			Substitute: rec["substitute"],
			Context:    rec["context"],
			Allowed:    allowed,
			Rationale:  rec["rationale"],
		})
	}
	return subs, nil
}
