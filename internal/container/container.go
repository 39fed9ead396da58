package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"fipe/consulta/internal/app"
	"fipe/consulta/internal/client"
	"fipe/consulta/internal/config"
	"fipe/consulta/internal/proxy"
	"fipe/consulta/internal/repository"
	"fipe/consulta/internal/server"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config *config.Config
	Fipe   client.FipeClient
	Prices client.PriceClient
	Slot   repository.SlotRepository
	App    *app.App

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	proxies := proxy.NewSupplier(ctx, cfg.Fipe.Proxies, cfg.Fipe.BaseURL+"/carros/marcas")
	container.Fipe = client.NewFipeClient(cfg.Fipe, proxies)
	container.Prices = client.NewPriceClient(cfg.Price)

	slot, err := container.openSlot(ctx)
	if err != nil {
		container.Close()
		return nil, err
	}
	container.Slot = slot

	container.App = app.New(
		container.Fipe,
		container.Prices,
		slot,
		time.Duration(cfg.Notify.TTL)*time.Second,
	)

	return container, nil
}

func (c *Container) openSlot(ctx context.Context) (repository.SlotRepository, error) {
	cfg := c.Config

	switch cfg.Favorites.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})
		c.redis = rdb

		// Test connection
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")

		return repository.NewRedisSlot(rdb, cfg.Favorites.Slot), nil

	case "postgres":
		db, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to create database pool: %w", err)
		}
		c.db = db

		if err := db.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := repository.EnsureSchema(ctx, db); err != nil {
			return nil, err
		}
		log.Info("✅ Connected to PostgreSQL successfully")

		return repository.NewPostgresSlot(db, cfg.Favorites.Slot), nil

	default:
		log.Infof("📁 Storing favorites in %s", cfg.Favorites.Dir)
		return repository.NewFileSlot(cfg.Favorites.Dir, cfg.Favorites.Slot), nil
	}
}

// Serve runs the web UI until ctx is cancelled, then shuts the server down
// gracefully.
func (c *Container) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr: c.Config.Server.Addr(),
		Handler: server.NewRouter(
			c.App,
			time.Duration(c.Config.Server.RequestTimeout)*time.Second,
			c.Config.Price.ErrorPage,
		),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("🚀 Listening on http://%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(c.Config.Server.ShutdownTimeout)*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Debug("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return fmt.Errorf("failed to close Redis client: %w", err)
		}
	}

	log.Debug("Container shut down successfully")
	return nil
}
