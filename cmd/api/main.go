package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/httpapi"
	membookingsink "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/memory/bookingsink"
	memcatalog "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/memory/catalog"
	memidempotency "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/memory/idempotency"
	memitemrepo "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/memory/itemrepo"
	mempartyoverride "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/memory/partyoverride"
	memplanrepo "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/memory/planrepo"
	mongocatalog "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/mongo/catalog"
	postgres "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/postgres"
	pgbookingsink "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/postgres/bookingsink"
	pgidempotency "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/postgres/idempotency"
	pgitemrepo "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/postgres/itemrepo"
	pgplanrepo "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/postgres/planrepo"
	redispartyoverride "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/redis/partyoverride"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/booking"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/costs"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/itinerary"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/ordering"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/ranges"
	platformclock "github.com/Overland-East-Bay/itinerary-planner-api/internal/platform/clock"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/platform/config"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/platform/logging"
	bookingsinkport "github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/bookingsink"
	catalogport "github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/catalog"
	idempotencyport "github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/idempotency"
	itemrepoport "github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/itemrepo"
	partyoverrideport "github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/partyoverride"
	planrepoport "github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/planrepo"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadAPIConfigFromEnv()
	if err != nil {
		bootLog := logging.New("info", os.Stderr)
		bootLog.Fatal().Err(err).Msg("invalid config")
	}
	log := logging.New(cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		planRepo  planrepoport.Repository
		itemRepo  itemrepoport.Repository
		sink      bookingsinkport.Sink
		idemStore idempotencyport.Store
		cat       catalogport.Reader
		overrides partyoverrideport.Store
		cleanups  []func()
	)
	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}()

	switch cfg.Storage {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			log.Fatal().Err(err).Msg("invalid postgres config")
		}
		cleanups = append(cleanups, pool.Close)

		planRepo = pgplanrepo.NewRepo(pool)
		itemRepo = pgitemrepo.NewRepo(pool)
		sink = pgbookingsink.NewSink(pool)
		idemStore = pgidempotency.NewStore(pool)
	default:
		planRepo = memplanrepo.NewRepo()
		itemRepo = memitemrepo.NewRepo()
		sink = membookingsink.NewSink()
		idemStore = memidempotency.NewStore()
	}

	switch cfg.Catalog {
	case config.BackendMongo:
		client, err := mongocatalog.Connect(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatal().Err(err).Msg("connect catalog")
		}
		cleanups = append(cleanups, func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(shutdownCtx)
		})
		cat = mongocatalog.NewReader(client.Database(cfg.MongoDatabase))
	default:
		log.Warn().Msg("using an empty in-memory catalog; every selection prices as zero")
		cat = memcatalog.NewCatalog()
	}

	switch cfg.PartyOverrides {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("connect redis")
		}
		cleanups = append(cleanups, func() { _ = client.Close() })
		overrides = redispartyoverride.NewStore(client, cfg.PartyOverrideTTL)
	default:
		overrides = mempartyoverride.NewStore()
	}

	clk := platformclock.NewSystemClock()

	itinSvc := itinerary.NewService(planRepo, itemRepo, overrides, clk).
		WithDefaultCurrency(cfg.DefaultCurrency).
		WithLogger(log)
	rangeSvc := ranges.NewService(planRepo, itemRepo, itinSvc, clk).WithLogger(log)
	boards := ordering.NewRegistry(itinSvc, itemRepo).WithLogger(log)
	costSvc := costs.NewService(itinSvc, cat).WithLogger(log)
	compiler := booking.NewCompiler(itinSvc, cat, sink, idemStore, clk).WithLogger(log)

	api := httpapi.NewServer(itinSvc, rangeSvc, boards, costSvc, compiler).WithLogger(log)
	router := httpapi.NewRouter(api, httpapi.RouterOptions{
		Logger:      log,
		RateLimiter: httpapi.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	})
	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", httpapi.IdempotencyKeyHeader},
		ExposedHeaders: []string{"X-Request-Id", "Retry-After"},
	}).Handler(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("storage", string(cfg.Storage)).
			Str("catalog", string(cfg.Catalog)).
			Str("partyOverrides", string(cfg.PartyOverrides)).
			Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
