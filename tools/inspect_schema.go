package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/localnerve/crmdb/data"
	"github.com/localnerve/crmdb/internal/database"
	"github.com/localnerve/crmdb/internal/store"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Prints the table GORM creates for the key-value storage, then the entries
// a demo-seeded store writes into it.
func main() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		log.Fatal(err)
	}

	// Auto-migrate to see what GORM creates
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	// Get the schema
	var tables []string
	db.Raw("SELECT name FROM sqlite_master WHERE type='table'").Scan(&tables)

	for _, table := range tables {
		fmt.Printf("\n=== Table: %s ===\n", table)
		var schema string
		db.Raw("SELECT sql FROM sqlite_master WHERE name = ?", table).Scan(&schema)
		fmt.Println(schema)
	}

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	ctx := context.Background()
	storage := database.NewStorage(db)
	s := store.New(storage, store.Options{Logger: quiet, Defaults: data.Demo})
	if err := s.Hydrate(ctx); err != nil {
		log.Fatal(err)
	}

	keys, err := storage.Keys(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("\n=== Entries ===\n")
	for _, key := range keys {
		e, err := storage.Get(ctx, key)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%-18s v%-3d %6d bytes\n", key, e.Version, len(e.Value))
	}
}
