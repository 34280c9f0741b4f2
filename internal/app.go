// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"

	router "recharge-core/internal/api"
	"recharge-core/internal/api/handler"
	"recharge-core/internal/config"
	"recharge-core/internal/domain"
	"recharge-core/internal/events"
	"recharge-core/internal/gateway"
	"recharge-core/internal/lock"
	"recharge-core/internal/repository"
	"recharge-core/internal/repository/postgres"
	"recharge-core/internal/service"
	"recharge-core/internal/util"
	"recharge-core/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB
	Redis  *redis.Client

	// Repositories
	WalletRepository  repository.WalletRepository
	LedgerRepository  repository.LedgerRepository
	SIMRepository     repository.SIMRepository
	CatalogRepository repository.CatalogRepository

	// Infrastructure
	Locker    lock.AccountLocker
	Publisher events.Publisher
	Gateways  map[domain.TransportKind]gateway.Gateway

	// Services
	LedgerService   service.LedgerService
	RechargeService service.RechargeService
	RegistryService service.RegistryService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig(os.Getenv("RECHARGE_CONFIG_FILE"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	// 4. Initialize Repositories
	app.WalletRepository = postgres.NewWalletRepository(app.DB)
	app.LedgerRepository = postgres.NewLedgerRepository(app.DB)
	app.SIMRepository = postgres.NewSIMRepository(app.DB)
	app.CatalogRepository = postgres.NewCatalogRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// 5. Account locker: Redis when configured, in-process otherwise.
	if app.Config.Redis.Addr != "" {
		app.Redis = redis.NewClient(&redis.Options{
			Addr:     app.Config.Redis.Addr,
			Password: app.Config.Redis.Password,
			DB:       app.Config.Redis.DB,
		})
		if err := app.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.Locker = lock.NewRedisLocker(app.Redis, time.Duration(app.Config.Business.LockExpirationSeconds)*time.Second)
		app.Logger.Info("Redis account locker initialized.", "addr", app.Config.Redis.Addr)
	} else {
		app.Locker = lock.NewLocalLocker()
		app.Logger.Info("In-process account locker initialized.")
	}

	// 6. Event publisher: Kafka when brokers are configured.
	if len(app.Config.Kafka.Brokers) > 0 {
		publisher, err := events.NewKafkaPublisher(app.Config.Kafka.Brokers, app.Config.Kafka.Topic)
		if err != nil {
			return fmt.Errorf("failed to connect to kafka: %w", err)
		}
		app.Publisher = publisher
		app.Logger.Info("Kafka event publisher initialized.", "brokers", app.Config.Kafka.Brokers)
	} else {
		app.Publisher = events.NopPublisher{}
		app.Logger.Info("Event publishing disabled.")
	}

	// 7. USSD gateways
	dispatchTimeout := time.Duration(app.Config.Gateway.DispatchTimeoutSeconds) * time.Second
	app.Gateways = map[domain.TransportKind]gateway.Gateway{
		domain.TransportSimulated: gateway.NewSimulatedGateway(time.Duration(app.Config.Gateway.SimulatedLatencyMillis) * time.Millisecond),
		domain.TransportNetwork:   gateway.NewNetworkGateway(dispatchTimeout),
	}
	app.Logger.Info("USSD gateways initialized.")

	// 8. Initialize Services
	// Pass the concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	app.LedgerService = service.NewLedgerService(
		app.DB, // This is the DBTxBeginner
		app.DB, // This is the DBExecutor
		app.WalletRepository,
		app.LedgerRepository,
		app.Config.Business.Currency,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.RechargeService = service.NewRechargeService(
		app.DB,
		app.DB,
		app.WalletRepository,
		app.LedgerRepository,
		app.SIMRepository,
		app.CatalogRepository,
		app.Gateways,
		app.Locker,
		app.Publisher,
		app.Logger,
		app.Config.Business.Currency,
		dispatchTimeout,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.RegistryService = service.NewRegistryService(app.DB, app.SIMRepository, app.CatalogRepository)
	app.Logger.Info("Services initialized.")

	// 9. Initialize HTTP Handlers and Router
	rechargeHandler := handler.NewRechargeHandler(app.RechargeService, app.Logger)
	walletHandler := handler.NewWalletHandler(app.LedgerService, app.Logger)
	registryHandler := handler.NewRegistryHandler(app.RegistryService, app.Logger)
	app.HTTPHandler = router.NewRouter(rechargeHandler, walletHandler, registryHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")

	if app.Publisher != nil {
		if err := app.Publisher.Close(); err != nil {
			app.Logger.Error("Failed to close event publisher", "error", err)
		}
	}
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			app.Logger.Error("Failed to close redis client", "error", err)
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}

	app.Logger.Info("Application shut down gracefully.")
	return nil
}
