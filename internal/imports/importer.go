// Package imports loads reference data (ingredients and tags) from CSV and
// JSON files into the database.
package imports

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"foodgram/internal/models"
	"foodgram/internal/repository"

	"gorm.io/gorm"
)

// Result counts what an import run did. Rows matching an existing record
// are skipped, not treated as errors.
type Result struct {
	Created int
	Skipped int
}

// Importer loads reference data through the get-or-create repository
// operations so repeated runs stay idempotent.
type Importer struct {
	tagRepo        repository.TagRepository
	ingredientRepo repository.IngredientRepository
}

// NewImporter returns an Importer backed by the given database.
func NewImporter(db *gorm.DB) *Importer {
	return &Importer{
		tagRepo:        repository.NewTagRepository(db),
		ingredientRepo: repository.NewIngredientRepository(db),
	}
}

// ImportIngredients dispatches on the file extension (.csv or .json).
func (im *Importer) ImportIngredients(ctx context.Context, path string) (Result, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return im.ingredientsFromCSV(ctx, path)
	case ".json":
		return im.ingredientsFromJSON(ctx, path)
	default:
		return Result{}, fmt.Errorf("%s: unsupported file format", path)
	}
}

// ImportTags dispatches on the file extension (.csv or .json).
func (im *Importer) ImportTags(ctx context.Context, path string) (Result, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return im.tagsFromCSV(ctx, path)
	case ".json":
		return im.tagsFromJSON(ctx, path)
	default:
		return Result{}, fmt.Errorf("%s: unsupported file format", path)
	}
}

func (im *Importer) ingredientsFromCSV(ctx context.Context, path string) (Result, error) {
	rows, err := readCSV(path, 2)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for i, row := range rows {
		ingredient := models.Ingredient{
			Name:            strings.TrimSpace(row[0]),
			MeasurementUnit: strings.TrimSpace(row[1]),
		}
		if err := validateIngredient(&ingredient); err != nil {
			return res, fmt.Errorf("%s: row %d: %w", path, i+1, err)
		}
		created, err := im.ingredientRepo.GetOrCreate(ctx, &ingredient)
		if err != nil {
			return res, fmt.Errorf("%s: row %d: %w", path, i+1, err)
		}
		res.count(created)
	}
	return res, nil
}

func (im *Importer) ingredientsFromJSON(ctx context.Context, path string) (Result, error) {
	var rows []struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}
	if err := readJSON(path, &rows); err != nil {
		return Result{}, err
	}

	var res Result
	for i, row := range rows {
		ingredient := models.Ingredient{
			Name:            strings.TrimSpace(row.Name),
			MeasurementUnit: strings.TrimSpace(row.MeasurementUnit),
		}
		if err := validateIngredient(&ingredient); err != nil {
			return res, fmt.Errorf("%s: entry %d: %w", path, i+1, err)
		}
		created, err := im.ingredientRepo.GetOrCreate(ctx, &ingredient)
		if err != nil {
			return res, fmt.Errorf("%s: entry %d: %w", path, i+1, err)
		}
		res.count(created)
	}
	return res, nil
}

func (im *Importer) tagsFromCSV(ctx context.Context, path string) (Result, error) {
	rows, err := readCSV(path, 2)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for i, row := range rows {
		tag := models.Tag{
			Name: strings.TrimSpace(row[0]),
			Slug: strings.TrimSpace(row[1]),
		}
		if err := validateTag(&tag); err != nil {
			return res, fmt.Errorf("%s: row %d: %w", path, i+1, err)
		}
		created, err := im.tagRepo.GetOrCreate(ctx, &tag)
		if err != nil {
			return res, fmt.Errorf("%s: row %d: %w", path, i+1, err)
		}
		res.count(created)
	}
	return res, nil
}

func (im *Importer) tagsFromJSON(ctx context.Context, path string) (Result, error) {
	var rows []struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := readJSON(path, &rows); err != nil {
		return Result{}, err
	}

	var res Result
	for i, row := range rows {
		tag := models.Tag{
			Name: strings.TrimSpace(row.Name),
			Slug: strings.TrimSpace(row.Slug),
		}
		if err := validateTag(&tag); err != nil {
			return res, fmt.Errorf("%s: entry %d: %w", path, i+1, err)
		}
		created, err := im.tagRepo.GetOrCreate(ctx, &tag)
		if err != nil {
			return res, fmt.Errorf("%s: entry %d: %w", path, i+1, err)
		}
		res.count(created)
	}
	return res, nil
}

func (r *Result) count(created bool) {
	if created {
		r.Created++
	} else {
		r.Skipped++
	}
}

func validateIngredient(ing *models.Ingredient) error {
	if ing.Name == "" || ing.MeasurementUnit == "" {
		return fmt.Errorf("name and measurement_unit are required")
	}
	return nil
}

func validateTag(tag *models.Tag) error {
	if tag.Name == "" || tag.Slug == "" {
		return fmt.Errorf("name and slug are required")
	}
	return nil
}

// readCSV loads every record of a headerless CSV file, requiring exactly
// fields columns per row.
func readCSV(path string, fields int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = fields
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func readJSON(path string, out interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
