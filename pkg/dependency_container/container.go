package dependency_container

import (
	"errors"
	"fmt"
	"time"

	"github.com/NeuralTrust/banhammer/pkg/app/bans"
	"github.com/NeuralTrust/banhammer/pkg/app/events"
	"github.com/NeuralTrust/banhammer/pkg/config"
	"github.com/NeuralTrust/banhammer/pkg/domain/breach"
	"github.com/NeuralTrust/banhammer/pkg/domain/counter"
	"github.com/NeuralTrust/banhammer/pkg/domain/ladder"
	"github.com/NeuralTrust/banhammer/pkg/engine"
	handlers "github.com/NeuralTrust/banhammer/pkg/handlers/http"
	"github.com/NeuralTrust/banhammer/pkg/infra/actions"
	"github.com/NeuralTrust/banhammer/pkg/infra/breaker"
	"github.com/NeuralTrust/banhammer/pkg/infra/cache"
	"github.com/NeuralTrust/banhammer/pkg/infra/database"
	_ "github.com/NeuralTrust/banhammer/pkg/infra/migrations"
	"github.com/NeuralTrust/banhammer/pkg/infra/prometheus"
	"github.com/NeuralTrust/banhammer/pkg/infra/repository"
	"github.com/NeuralTrust/banhammer/pkg/infra/store"
	"github.com/NeuralTrust/banhammer/pkg/server/middleware"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// blockMemoryTTL is only a fallback; block flags always carry the action
// duration.
const blockMemoryTTL = time.Hour

type Container struct {
	Cache               cache.Client
	Memory              *cache.TTLMap
	Store               counter.Store
	DB                  *database.DB
	BreachRepository    breach.Repository
	ActionRegistry      *actions.Registry
	Ladder              *ladder.Ladder
	Engine              *engine.Engine
	Hooks               *events.Hooks
	Blocker             actions.Blocker
	HandlerTransport    *handlers.HandlerTransport
	MiddlewareTransport *middleware.Transport
}

type ContainerDI struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	// Cache replaces the redis connection built from Cfg.Redis.
	Cache cache.Client
	// Dialector replaces the postgres dialector built from Cfg.Database.
	Dialector gorm.Dialector
	Clock     func() time.Time
}

func NewContainer(di ContainerDI) (*Container, error) {
	if di.Cfg == nil || di.Logger == nil {
		return nil, errors.New("config and logger are required")
	}
	clock := di.Clock
	if clock == nil {
		clock = time.Now
	}
	c := &Container{
		Memory: cache.NewTTLMapWithClock(blockMemoryTTL, clock),
	}

	// counter store
	c.Cache = di.Cache
	if c.Cache == nil && di.Cfg.Redis.Enabled {
		cacheInstance, err := cache.NewClient(cache.Config{
			Host:     di.Cfg.Redis.Host,
			Port:     di.Cfg.Redis.Port,
			Password: di.Cfg.Redis.Password,
			DB:       di.Cfg.Redis.DB,
			TLS:      di.Cfg.Redis.TLS,
		}, di.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		c.Cache = cacheInstance
	}
	if c.Cache != nil {
		c.Store = store.NewRedisStore(c.Cache.RedisClient(), &store.RedisStoreOpts{
			Breaker: breaker.FromConfig("counter-store", breaker.Config{
				Timeout:     di.Cfg.Engine.Breaker.Timeout,
				MaxFailures: di.Cfg.Engine.Breaker.MaxFailures,
			}),
		})
	} else {
		di.Logger.Warn("redis is disabled, counters are kept in process memory")
		c.Store = store.NewMemoryStore(clock)
	}

	// audit database
	if di.Dialector != nil || di.Cfg.Database.Enabled {
		dialector := di.Dialector
		if dialector == nil {
			dialector = database.PostgresDialector(di.Cfg.Database)
		}
		db, err := database.NewDB(di.Logger, dialector)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db
		c.BreachRepository = repository.NewBreachRepository(db.DB)
	}

	// actions
	registryOpts := []actions.RegistryOption{
		actions.WithFactory(actions.NewBlockLocalFactory(c.Cache, c.Memory)),
		actions.WithFactory(actions.NewRecordLocalFactory(c.Cache, c.Memory)),
		actions.WithFactory(actions.NewReportCentralFactory(nil)),
		actions.WithFactory(actions.NewReportKafkaFactory()),
		actions.WithFactory(actions.NewLogFactory(di.Logger)),
	}
	if c.BreachRepository != nil {
		registryOpts = append(registryOpts, actions.WithFactory(actions.NewAuditDBFactory(c.BreachRepository)))
	}
	c.ActionRegistry = actions.NewRegistry(registryOpts...)
	if err := c.ActionRegistry.Configure(di.Cfg.Actions); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to configure actions: %w", err)
	}

	l, err := bans.NewBuilder(c.ActionRegistry).Build(di.Cfg.Bans)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to build bans: %w", err)
	}
	c.Ladder = l

	// engine
	engineOpts := []engine.Option{
		engine.WithLogger(di.Logger),
		engine.WithClock(clock),
		engine.WithStoreTimeout(di.Cfg.Engine.StoreTimeout),
	}
	if di.Cfg.Metrics.Enabled {
		engineOpts = append(engineOpts, engine.WithRecorder(prometheus.NewRecorder(prometheus.MetricsConfig{
			EnableStoreLatency: di.Cfg.Metrics.EnableStoreLatency,
			EnableProcess:      di.Cfg.Metrics.EnableProcess,
		})))
	}
	c.Engine = engine.New(c.Ladder, c.Store, di.Cfg.Engine.ReturnRates, engineOpts...)
	c.Hooks = events.NewHooks(di.Logger, c.Engine)
	c.Blocker = actions.NewBlocker(c.Cache, c.Memory)

	// transports
	c.MiddlewareTransport = middleware.NewTransport(
		middleware.NewPanicRecoverMiddleware(di.Logger),
		middleware.NewTokenMiddleware(),
	)
	c.HandlerTransport = &handlers.HandlerTransport{
		GetVersionHandler:   handlers.NewGetVersionHandler(di.Logger),
		LoginHandler:        handlers.NewLoginHandler(di.Logger, c.Hooks, c.Ladder, c.Blocker, di.Cfg.Login),
		LoginStatusHandler:  handlers.NewLoginStatusHandler(di.Logger, c.Hooks, c.Ladder),
		IncrHandler:         handlers.NewIncrHandler(di.Logger, c.Engine),
		PeekHandler:         handlers.NewPeekHandler(di.Logger, c.Engine),
		MetricStatusHandler: handlers.NewMetricStatusHandler(di.Logger, c.Engine),
	}
	if c.BreachRepository != nil {
		c.HandlerTransport.ListBreachesHandler = handlers.NewListBreachesHandler(di.Logger, c.BreachRepository)
		c.HandlerTransport.GetBreachHandler = handlers.NewGetBreachHandler(di.Logger, c.BreachRepository)
	}
	return c, nil
}

// Close releases action producers and connections.
func (c *Container) Close() {
	if c.ActionRegistry != nil {
		c.ActionRegistry.Close()
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
	if c.Cache != nil {
		_ = c.Cache.RedisClient().Close()
	}
}
