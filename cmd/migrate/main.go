// Command migrate applies or rolls back the dev server's schema.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/deon-gracias/rag/internal/config"
	"github.com/deon-gracias/rag/internal/repository/sqlite"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	down := flag.Int("down", 0, "roll back this many migrations instead of applying")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	url := cfg.Database.MigrateURL()
	fmt.Printf("Migrating database at %s...\n", cfg.Database.Path)

	if *down > 0 {
		err = sqlite.RollbackMigrations(url, *down)
	} else {
		err = sqlite.RunMigrations(url)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	version, dirty, err := sqlite.MigrationVersion(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read version: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Schema at version %d (dirty=%t)\n", version, dirty)
}
