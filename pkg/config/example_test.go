package config_test

import (
	"fmt"

	"github.com/wonny/aegis-picker/backend/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Server running on port: %s\n", cfg.Port)
	fmt.Printf("Environment: %s\n", cfg.Env)
	fmt.Printf("Enrichment cap: %d (batch %d)\n", cfg.Pipeline.MaxEnrichment, cfg.Pipeline.BatchSize)
	fmt.Printf("Run log enabled: %v\n", cfg.Database.Enabled())
}
