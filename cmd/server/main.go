package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"log" // Logging library
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // request logging and panic recovery
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/coin-rewards/internal/auth"
	"github.com/iliyamo/coin-rewards/internal/config" // Internal config loader
	"github.com/iliyamo/coin-rewards/internal/database"
	"github.com/iliyamo/coin-rewards/internal/handler"
	"github.com/iliyamo/coin-rewards/internal/market"
	"github.com/iliyamo/coin-rewards/internal/middleware"
	"github.com/iliyamo/coin-rewards/internal/purchase"
	"github.com/iliyamo/coin-rewards/internal/queue"
	"github.com/iliyamo/coin-rewards/internal/repository"
	"github.com/iliyamo/coin-rewards/internal/router" // Internal router setup
	"github.com/iliyamo/coin-rewards/internal/service"
	"github.com/iliyamo/coin-rewards/internal/session"
)

type stores struct {
	users repository.UserRepository
	txns  repository.TransactionRepository
	db    *sql.DB
}

// openStores picks the persistence engine named by STORE_DRIVER.
func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	var db *sql.DB
	var err error
	switch cfg.StoreDriver {
	case "memory":
		m := repository.NewMemoryStore()
		return stores{users: m, txns: m}, nil
	case "sqlite":
		db, err = database.OpenSQLite(cfg.SQLitePath)
	case "mysql":
		db, err = database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	default:
		return stores{}, errors.New("unknown STORE_DRIVER " + cfg.StoreDriver)
	}
	if err != nil {
		return stores{}, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return stores{}, err
	}
	return stores{users: repository.NewUserRepo(db), txns: repository.NewTransactionRepo(db), db: db}, nil
}

func main() {
	config.LoadEnv()
	cfg := config.Load() // Load environment config

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	if st.db != nil {
		defer st.db.Close()
	}
	if cfg.Seed {
		if err := repository.Seed(ctx, st.users, st.txns); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	rdb, err := config.NewRedisClient()
	if err != nil {
		log.Printf("redis unavailable, using in-process sessions and limits: %v", err)
	} else {
		defer rdb.Close()
	}

	profile, err := auth.ParseProfile(cfg.AuthProfile)
	if err != nil {
		log.Fatal(err)
	}
	var authn auth.Authenticator = auth.NewFixedTable(profile)
	if cfg.AuthMode == "directory" {
		authn = &auth.Directory{Users: st.users}
	}

	var sessionStore session.Store = session.NewMemoryStore()
	if rdb != nil {
		sessionStore = session.NewRedisStore(rdb, cfg.SessionTTL)
	}
	sessions := &session.Service{
		Store:      sessionStore,
		Users:      st.users,
		Auth:       authn,
		KeyPrefix:  cfg.SessionPrefix,
		Delay:      cfg.AuthDelay,
		BcryptCost: cfg.BcryptCost,
	}

	purchases := &purchase.Service{
		Gateway:            purchase.SimulatedGateway{Delay: cfg.PaymentDelay},
		Ledger:             st.txns,
		Payee:              purchase.Payee{VPA: cfg.PayeeVPA, Name: cfg.PayeeName, Currency: cfg.Currency},
		IncludeBonus:       cfg.IncludeBonus,
		TrackSpend:         profile.TracksSpend(),
		RecordTransactions: cfg.RecordTransactions,
	}
	if cfg.QueueEnabled {
		purchases.Publisher = service.NewQueuePublisher(cfg.AMQPURL)
		consumer := &queue.PurchaseConsumer{URL: cfg.AMQPURL, LogPath: cfg.PurchaseLogPath}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("purchase-consumer: stopped: %v", err)
			}
		}()
	}

	e := newServer(cfg, rdb, profile, sessions, purchases, st)

	go func() {
		addr := ":" + cfg.Port // Address string with port
		log.Printf("listening on %s (env=%s, store=%s, auth=%s/%s)", addr, cfg.Env, cfg.StoreDriver, cfg.AuthMode, profile)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func newServer(cfg config.Config, rdb *redis.Client, profile auth.Profile, sessions *session.Service, purchases *purchase.Service, st stores) *echo.Echo {
	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e) // Register application routes
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, sessions, profile.Roles()), cfg.JWTSecret, limit)
	router.RegisterPublic(e, handler.NewPublicHandler(purchases, market.NewGenerator(uint64(time.Now().UnixNano()))), cache)
	router.RegisterUser(e, handler.NewPurchaseHandler(sessions, purchases), cfg.JWTSecret, limit)
	router.RegisterDashboard(e, handler.NewDashboardHandler(sessions, st.users, st.txns), cfg.JWTSecret)
	return e
}
