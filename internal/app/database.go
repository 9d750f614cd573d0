// Package app holds startup wiring shared by the server and the admin CLI.
package app

import (
	"alcyxob/fitness-coach/internal/config"
	"alcyxob/fitness-coach/internal/repository"
	"alcyxob/fitness-coach/internal/repository/memory"
	"alcyxob/fitness-coach/internal/repository/mongo"
	"context"
	"fmt"
	"log"
	"time"
)

// OpenRepositories connects the configured database driver. The returned
// close function releases the connection and is never nil.
func OpenRepositories(ctx context.Context, cfg config.DatabaseConfig) (repository.Repositories, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory:
		log.Println("WARN: Using in-memory storage; data is lost on exit.")
		return memory.NewRepositories(), func() {}, nil

	case config.DriverMongo:
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return repository.Repositories{}, func() {}, err
		}
		closeDB := func() {
			log.Println("Disconnecting MongoDB...")
			if err := mongo.DisconnectDB(client); err != nil {
				log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
			}
		}
		db := client.Database(cfg.Name)

		log.Println("Ensuring database indexes...")
		indexCtx, cancel := context.WithTimeout(ctx, 1*time.Minute)
		defer cancel()
		mongo.EnsureIndexes(indexCtx, db)

		return mongo.NewRepositories(db), closeDB, nil

	default:
		return repository.Repositories{}, func() {}, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
