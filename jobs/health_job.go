package jobs

import (
	"context"
	"time"

	"github.com/anjiri1684/educonnect/database"
	"github.com/rs/zerolog/log"
)

type StoreGauge interface {
	SetStoreUp(up bool)
}

// StorePing reports document store reachability on the store_up gauge.
func StorePing(store database.Store, gauge StoreGauge) func(ctx context.Context) {
	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			log.Error().Err(err).Msg("document store ping failed")
			gauge.SetStoreUp(false)
			return
		}
		gauge.SetStoreUp(true)
	}
}

// AdminCheck re-applies the admin bootstrap so a demoted or deleted admin
// account is restored.
func AdminCheck(store database.Store, email, password, name string) func(ctx context.Context) {
	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		res, err := database.SeedAdmin(ctx, store, email, password, name)
		if err != nil {
			log.Error().Err(err).Msg("admin bootstrap check failed")
			return
		}
		if res != database.SeedUnchanged {
			log.Warn().Str("email", email).Msg("admin account was restored by bootstrap check")
		}
	}
}
