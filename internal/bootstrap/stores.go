package bootstrap

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/loudachris/tradievoice/internal/profile"
	"github.com/loudachris/tradievoice/internal/quote"
)

func ProvideProfileStore(db *gorm.DB) *profile.Store {
	return profile.NewStore(db)
}

func ProvideQuoteStore(redisClient *redis.Client) *quote.Store {
	return quote.NewStore(redisClient)
}

func RunMigrations(profileStore *profile.Store) error {
	return profileStore.Migrate()
}

var StoresModule = fx.Options(
	fx.Provide(
		ProvideProfileStore,
		ProvideQuoteStore,
	),
	fx.Invoke(RunMigrations),
)
