package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pageza/recipebook/backend/config"
	"github.com/pageza/recipebook/backend/internal/database"
	"github.com/pageza/recipebook/backend/internal/logging"
	"github.com/pageza/recipebook/backend/internal/service"
)

type seedResult struct {
	Created int
	Skipped int
}

func main() {
	file := flag.String("file", "seed/recipes.json", "JSON array of recipes to load")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.New("info").Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, *file, logger); err != nil {
		logger.Error("seeding failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, path string, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	db, err := database.Open(ctx, cfg.StoreURI, cfg.StoreName, logger)
	if err != nil {
		return err
	}
	defer db.Close(context.Background())

	if err := database.RunMigrations(ctx, db, logger); err != nil {
		return err
	}

	res, err := seed(ctx, service.NewRecipeService(db, logger), f, logger)
	if err != nil {
		return err
	}
	logger.Info("seeding finished", "created", res.Created, "skipped", res.Skipped)
	return nil
}

// seed creates every recipe in r through svc so the usual validation and
// defaults apply. Invalid records are logged and skipped; a store failure
// stops the run.
func seed(ctx context.Context, svc service.IRecipeService, r io.Reader, logger *slog.Logger) (seedResult, error) {
	var inputs []service.CreateRecipeInput
	if err := json.NewDecoder(r).Decode(&inputs); err != nil {
		return seedResult{}, fmt.Errorf("failed to parse seed file: %w", err)
	}

	var res seedResult
	for i, input := range inputs {
		recipe, err := svc.Create(ctx, input)
		switch {
		case errors.Is(err, service.ErrBadRequest):
			logger.Warn("skipping recipe", "index", i, "name", input.Name, "reason", err.Error())
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("failed to create recipe %q: %w", input.Name, err)
		default:
			logger.Info("created recipe", "id", recipe.ID.Hex(), "name", recipe.Name)
			res.Created++
		}
	}
	return res, nil
}
