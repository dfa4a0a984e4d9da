package di

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"chatonline-world/backend/ai"
	"chatonline-world/backend/internal/geocoding"
	"chatonline-world/backend/internal/profanity"
	"chatonline-world/backend/internal/repository"
	"chatonline-world/backend/internal/service"
	"chatonline-world/backend/internal/ws"
	"chatonline-world/backend/pkg/cache"
	"chatonline-world/backend/pkg/config"
	"chatonline-world/backend/pkg/health"
	"chatonline-world/backend/pkg/logger"
	"chatonline-world/backend/pkg/observability"
	"chatonline-world/backend/pkg/resilience"

	"gorm.io/gorm"
)

// Container holds all the dependencies for the application
type Container struct {
	Config         *config.Config
	DB             *gorm.DB
	Logger         *logger.Logger
	Metrics        *observability.Metrics
	ResponseCache  cache.Store
	Hub            *ws.Hub
	Health         *health.Checker
	MessageService *service.MessageService
	SummaryService *service.SummaryService

	closers []func() error
}

// Overrides replaces collaborators that are otherwise built from Config.
// Nil fields use the defaults.
type Overrides struct {
	Geocoder      geocoding.Geocoder
	Generator     ai.Generator
	ResponseCache cache.Store
	Metrics       *observability.Metrics
	Profanity     *profanity.Filter
}

// New creates a new dependency injection container
func New(cfg *config.Config, db *gorm.DB, log *logger.Logger, overrides Overrides) (*Container, error) {
	if log == nil {
		log = logger.Discard()
	}

	c := &Container{
		Config:  cfg,
		DB:      db,
		Logger:  log,
		Metrics: overrides.Metrics,
		Hub:     ws.NewHub(log),
		Health:  health.NewChecker(log, 30*time.Second),
	}

	c.Health.WatchDatabase(func(ctx context.Context) error {
		return config.PingDB(ctx, db)
	})

	// Initialize the response cache
	c.ResponseCache = overrides.ResponseCache
	if c.ResponseCache == nil {
		store, err := c.newResponseCache()
		if err != nil {
			return nil, err
		}
		c.ResponseCache = store
	}

	// Load the word blocklist
	filter := overrides.Profanity
	if filter == nil {
		filter = loadProfanity(cfg.Messages.ProfanityFile, log)
	}

	// Initialize upstream clients
	geocoder := overrides.Geocoder
	if geocoder == nil {
		geocoder = geocoding.NewClient(cfg.Geo.URL, cfg.Geo.Token, cfg.Geo.Timeout)
	}
	generator := overrides.Generator
	if generator == nil {
		generator = ai.NewClient(cfg.AI.BaseURL, cfg.AI.AccountID, cfg.AI.Model, cfg.AI.Token, cfg.AI.Timeout)
	}

	// Stop hammering an upstream that keeps failing
	geoBreaker := resilience.NewBreaker(observability.UpstreamGeocoding, log,
		resilience.CountingOnly(geocoding.IsUpstreamFailure))
	aiBreaker := resilience.NewBreaker(observability.UpstreamGeneration, log)
	geocoder = geocoding.WithCircuitBreaker(geocoder, geoBreaker)
	generator = ai.WithCircuitBreaker(generator, aiBreaker)
	for _, b := range []*resilience.Breaker{geoBreaker, aiBreaker} {
		c.Health.WatchCircuit(b.Upstream(), b.Open)
	}

	// Initialize core services
	c.MessageService = service.NewMessageService(repository.NewGormMessageRepository(db), service.MessageOptions{
		TTL:              cfg.Messages.TTL,
		Profanity:        filter,
		EnforceProfanity: cfg.Messages.ProfanityEnforce,
		Notifier:         c.Hub,
		Metrics:          c.Metrics,
		Logger:           log,
	})
	c.SummaryService = service.NewSummaryService(
		repository.NewGormSummaryRepository(db),
		geocoder,
		generator,
		cfg.AI.ResponseLength,
		c.Metrics,
		log,
	)

	return c, nil
}

// newResponseCache builds the store selected by CACHE_TYPE
func (c *Container) newResponseCache() (cache.Store, error) {
	cfg := c.Config.Cache

	switch cfg.Type {
	case "redis":
		store := cache.NewRedisStore(cfg.RedisURL)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisURL, err)
		}
		c.Health.WatchCache("redis", store.Ping, nil)
		c.closers = append(c.closers, store.Close)
		c.Logger.Info("Response cache initialized", "type", "redis", "addr", cfg.RedisURL)
		return store, nil

	case "memory", "":
		mem := cache.NewMemoryStore(cfg.MaxSize, cfg.PurgeWindow)
		c.Health.WatchCache("memory", nil, mem.Len)
		c.closers = append(c.closers, mem.Close)
		c.Logger.Info("Response cache initialized", "type", "memory", "max_items", cfg.MaxSize)
		return mem, nil

	default:
		return nil, fmt.Errorf("unknown CACHE_TYPE %q", cfg.Type)
	}
}

// loadProfanity reads the blocklist. A missing or unreadable file leaves it empty.
func loadProfanity(path string, log *logger.Logger) *profanity.Filter {
	filter, err := profanity.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("Profanity list not found, continuing with an empty list", "path", path)
		} else {
			log.Warn("Failed to load profanity list", "path", path, "error", err.Error())
		}
		return profanity.New()
	}
	log.Info("Profanity list loaded", "path", path, "words", filter.Len())
	return filter
}

// Close releases the resources owned by the container
func (c *Container) Close() error {
	var errs []error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
