// Command main runs the database seeder for Foodgram.
package main

import (
	"context"
	"flag"
	"log"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numRecipes := flag.Int("recipes", 60, "Number of recipes to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d recipes, clean=%v", *numUsers, *numRecipes, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)
	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if err := s.Run(context.Background(), seed.Options{
		NumUsers:   *numUsers,
		NumRecipes: *numRecipes,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
