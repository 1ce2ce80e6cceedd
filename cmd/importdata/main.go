// Command main imports reference data (ingredients and tags) from CSV or
// JSON files into the database.
package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/imports"
)

func main() {
	ingredientsFile := flag.String("ingredients", "", "Path to ingredients file (.csv or .json)")
	tagsFile := flag.String("tags", "", "Path to tags file (.csv or .json)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Default to the configured data directory when no explicit paths given
	if *ingredientsFile == "" && *tagsFile == "" {
		*ingredientsFile = filepath.Join(cfg.DataDir, "ingredients.csv")
		*tagsFile = filepath.Join(cfg.DataDir, "tags.csv")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	importer := imports.NewImporter(db)
	ctx := context.Background()

	if *tagsFile != "" {
		res, err := importer.ImportTags(ctx, *tagsFile)
		if err != nil {
			log.Fatalf("Tag import failed: %v", err)
		}
		log.Printf("Tags: %d created, %d skipped (%s)", res.Created, res.Skipped, *tagsFile)
	}

	if *ingredientsFile != "" {
		res, err := importer.ImportIngredients(ctx, *ingredientsFile)
		if err != nil {
			log.Fatalf("Ingredient import failed: %v", err)
		}
		log.Printf("Ingredients: %d created, %d skipped (%s)", res.Created, res.Skipped, *ingredientsFile)
	}
}
