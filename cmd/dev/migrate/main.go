package main

import (
	"context"
	"fmt"
	"os"

	"github.com/capsule-corp/now-shopify-auth/pkg/config"
	"github.com/capsule-corp/now-shopify-auth/pkg/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// Uses DIRECT_URL if set; the embedded schema unless MIGRATIONS_PATH points elsewhere.
	if err := db.Migrate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "migrate failed: %v\n", err)
		os.Exit(1)
	}

	// Sanity check that the runtime connection (DATABASE_URL) opens too.
	// DSNs are not printed.
	pool, err := db.Open(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runtime db open failed: %v\n", err)
		os.Exit(1)
	}
	pool.Close()

	fmt.Println("migrations applied")
}
