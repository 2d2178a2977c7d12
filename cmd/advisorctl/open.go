package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"RoboAdvisor/internal/assumptions"
	"RoboAdvisor/internal/catalog"
	"RoboAdvisor/internal/config"
	"RoboAdvisor/internal/store"
)

var configPath = flag.String("config", defaultConfigPath(), "Path to the YAML config file")

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

func loadConfig() (*config.Config, *assumptions.Tables, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation: %w", err)
	}
	tables, err := assumptions.Load(cfg.Assumptions.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("load assumptions: %w", err)
	}
	return cfg, tables, nil
}

// openCatalog loads the fund catalog once; no refresh schedule runs here.
func openCatalog(ctx context.Context, cfg *config.Config) (*catalog.Manager, error) {
	var src catalog.Source
	if cfg.Catalog.URL != "" {
		src = catalog.NewHTTPSource(cfg.Catalog.URL, cfg.Proxy)
	} else {
		src = &catalog.FileSource{Path: cfg.Catalog.Path}
	}
	return catalog.NewManager(ctx, src, cfg.Catalog.SnapshotFile)
}

func openStore(cfg *config.Config) (store.Store, error) {
	return store.NewSQLiteStore(cfg.Database.SQLitePath)
}
