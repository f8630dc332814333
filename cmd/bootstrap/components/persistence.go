package components

import (
	"academy-api/internal/infra/cache"
	"academy-api/internal/infra/db"
	"academy-api/internal/infra/readstore"
	"academy-api/internal/infra/repository"
	"academy-api/internal/infra/uow"
	"academy-api/internal/pkg/config"
	"academy-api/internal/usecase/queries"
	"academy-api/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		uow.NewPostgresUoW,
		// Request views
		fx.Annotate(
			readstore.NewRequestReadStore,
			fx.As(new(queries.RequestViewRepo)),
		),
		// Section views
		fx.Annotate(
			readstore.NewSectionReadStore,
			fx.As(new(queries.SectionViewRepo)),
		),
		// Post-commit side effect sinks
		fx.Annotate(
			repository.NewNotificationRepository,
			fx.As(new(shared.NotificationRepository)),
		),
		fx.Annotate(
			repository.NewAuditRepository,
			fx.As(new(shared.AuditRepository)),
		),
		NewSectionCache,
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

func NewSectionCache(client *redis.Client, cfg config.Config) queries.SectionCache {
	return cache.NewSectionCache(client, cfg.Redis.CacheTTL)
}
