// devseed loads the demo accounts and catalog into a real PostgreSQL
// database, giving local and staging environments the same fixtures demo
// mode serves from memory.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"gramseva/internal/catalog"
	"gramseva/internal/identity"
	"gramseva/internal/platform/logger"
	"gramseva/internal/platform/postgres"
	"gramseva/pkg/platform/sentinel"
)

func main() {
	log := logger.New()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Open(ctx, url)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	profiles := identity.NewPostgresProfileStore(db)
	creds := identity.NewPostgresCredentialStore(db)
	if err := identity.SeedDemoStores(ctx, profiles, creds); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			log.Info("demo accounts already seeded")
		} else {
			log.Error("failed to seed demo accounts", "error", err)
			os.Exit(1)
		}
	} else {
		log.Info("seeded demo accounts", "count", len(identity.DemoAccounts()))
	}

	store := catalog.NewPostgresStore(db)
	seeded := 0
	for _, svc := range catalog.DemoServices() {
		err := store.Save(ctx, svc)
		switch {
		case err == nil:
			seeded++
		case errors.Is(err, sentinel.ErrConflict):
			// Already present from an earlier run.
		default:
			log.Error("failed to seed service", "service", svc.Name, "error", err)
			os.Exit(1)
		}
	}
	log.Info("seeded catalog", "new", seeded, "total", len(catalog.DemoServices()))
}
