package main

import (
	"flag"
	"log"

	"emirps/internal/api"
	"emirps/internal/config"
)

func main() {
	configPath := flag.String("config", "", "Optional config file (yaml, json or toml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Setting up database at: %s\n", cfg.DBPath)

	db, err := api.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Drop existing tables
	log.Println("Dropping existing tables...")
	if _, err := db.Exec(api.DropTables); err != nil {
		log.Fatalf("Failed to drop tables: %v", err)
	}

	// Create tables
	log.Println("Creating tables...")
	if err := api.CreateSchema(db); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	log.Println("Database setup completed successfully!")
}
