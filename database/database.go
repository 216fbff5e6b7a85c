package database

import (
	"context"
	"fmt"

	config "github.com/anjiri1684/educonnect/configs"
	"github.com/rs/zerolog/log"
)

// Open connects the store selected by STORE_DRIVER and makes sure the unique
// indexes exist.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.StoreDriver {
	case "mongo":
		store, err = ConnectMongo(ctx, cfg.MongoURI, cfg.DBName)
	case "postgres":
		store, err = ConnectPostgres(cfg.DatabaseURL)
	case "memory":
		store = NewMemoryStore()
	default:
		err = fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}

	if err := store.EnsureIndexes(ctx, Indexes); err != nil {
		_ = store.Close(ctx)
		return nil, err
	}
	log.Info().Str("driver", cfg.StoreDriver).Msg("database connected successfully")
	return store, nil
}
