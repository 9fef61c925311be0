package container

import (
	"context"
	"fmt"

	"deckforge-backend/internal/config"
	"deckforge-backend/internal/infrastructure/cache"
	"deckforge-backend/internal/infrastructure/database"
	"deckforge-backend/internal/infrastructure/storage"
	"deckforge-backend/pkg/ident"

	deckHandler "deckforge-backend/internal/domains/deck/handler"
	deckRepo "deckforge-backend/internal/domains/deck/repository"
	deckService "deckforge-backend/internal/domains/deck/service"
)

// Container is the root of the dependency graph: infrastructure first,
// then repositories, services and handlers on top.
type Container struct {
	Config *config.Config
	DB     *database.PostgresDB
	Redis  *cache.RedisClient
	Blobs  *storage.MinIOStorage

	DeckRepo    deckRepo.DeckRepository
	DeckService deckService.DeckService
	DeckHandler *deckHandler.DeckHandler
}

func NewContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redis := cache.NewRedisClient(cfg.Redis)
	if err := redis.Connect(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	blobs, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		db.Close()
		_ = redis.Close()
		return nil, fmt.Errorf("connect minio: %w", err)
	}

	repo := deckRepo.NewPostgresRepository(db.Pool)
	svc := deckService.NewDeckService(
		repo,
		blobs,
		storage.NewImageProcessor(),
		cache.NewTelemetry(redis),
		ident.NewSource(),
		cfg.Share,
	)

	return &Container{
		Config:      cfg,
		DB:          db,
		Redis:       redis,
		Blobs:       blobs,
		DeckRepo:    repo,
		DeckService: svc,
		DeckHandler: deckHandler.NewDeckHandler(svc),
	}, nil
}

func (c *Container) Cleanup() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
