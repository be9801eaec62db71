// Command supplierprobe performs a connectivity check against the dropship
// supplier platform: it authenticates, runs a small catalog search, and reads
// the category tree, reporting what it saw. Useful for verifying credentials
// and redis wiring in a new environment.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/launchlab/backend/internal/domain/supplier"
	"github.com/launchlab/backend/internal/infrastructure/config"
	"github.com/launchlab/backend/internal/infrastructure/dropship"
	"github.com/launchlab/backend/internal/infrastructure/logger"
)

func main() {
	keyword := flag.String("keyword", "mug", "catalog search keyword")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall probe deadline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting supplier probe",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
	)

	client, err := dropship.NewClientFromConfig(cfg, log)
	if err != nil {
		log.Fatal("Failed to build supplier client", zap.Error(err))
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Error("Error closing supplier client", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	page, err := client.SearchProducts(ctx, supplier.SearchRequest{Keyword: *keyword, PageSize: 5})
	if err != nil {
		log.Error("Catalog search failed", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Catalog search succeeded",
		zap.String("keyword", *keyword),
		zap.Int64("totalRecords", page.TotalRecords),
		zap.Int("returned", len(page.Products)),
	)
	for _, product := range page.Products {
		log.Info("Product",
			zap.String("id", product.ID),
			zap.String("name", product.Name),
			zap.String("price", product.Price.String()),
		)
	}

	categories, err := client.GetCategories(ctx)
	if err != nil {
		log.Error("Category read failed", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Category read succeeded", zap.Int("topLevel", len(categories)))

	if len(page.Products) > 0 {
		variants, err := client.GetVariants(ctx, page.Products[0].ID)
		if err != nil {
			log.Error("Variant read failed", zap.Error(err))
			os.Exit(1)
		}
		log.Info("Variant read succeeded",
			zap.String("productId", page.Products[0].ID),
			zap.Int("variants", len(variants)),
		)
		if len(variants) > 0 {
			snapshot, err := client.InventoryByVariant(ctx, variants[0].ID)
			if err != nil {
				log.Error("Inventory read failed", zap.Error(err))
				os.Exit(1)
			}
			log.Info("Inventory read succeeded",
				zap.String("variantId", variants[0].ID),
				zap.Int64("total", snapshot.Total),
				zap.Int("warehouses", len(snapshot.Warehouses)),
			)
		}
	}

	log.Info("Supplier probe completed")
}
