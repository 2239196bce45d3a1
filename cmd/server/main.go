// Command server runs the policy decision service: the evaluation endpoint,
// the audit query surface, and the operational probes. Business logic lives
// in the internal packages; main only wires dependencies and lifecycles.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"verdict/internal/audit"
	audithandler "verdict/internal/audit/handler"
	auditmetrics "verdict/internal/audit/metrics"
	"verdict/internal/audit/publisher"
	auditmemory "verdict/internal/audit/store/memory"
	auditpostgres "verdict/internal/audit/store/postgres"
	httpapi "verdict/internal/http"
	"verdict/internal/platform/config"
	"verdict/internal/platform/httpserver"
	"verdict/internal/platform/logger"
	redisplatform "verdict/internal/platform/redis"
	"verdict/internal/policy/engine"
	"verdict/internal/policy/grant"
	granthandler "verdict/internal/policy/grant/handler"
	grantmemory "verdict/internal/policy/grant/store/memory"
	grantpostgres "verdict/internal/policy/grant/store/postgres"
	"verdict/internal/policy/guard"
	policymetrics "verdict/internal/policy/metrics"
	"verdict/internal/policy/registry"
	"verdict/internal/policy/scope"
	"verdict/internal/policy/subject"
	"verdict/internal/relationship"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.PostgresDSN != "" {
		var err error
		db, err = sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("ping postgres", "error", err)
			os.Exit(1)
		}
	} else {
		log.Warn("no postgres DSN configured, using in-memory stores")
	}

	redisClient, err := redisplatform.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Stores: postgres when configured, memory otherwise.
	var grantStore grant.Store
	var relationshipStore relationship.Store
	var auditStore audit.Store
	if db != nil {
		grantStore = grantpostgres.New(db)
		relationshipStore = relationship.NewPostgres(db)
		auditStore = auditpostgres.New(db)
	} else {
		grantStore = grantmemory.New()
		relationshipStore = relationship.NewMemoryStore()
		auditStore = auditmemory.New()
	}
	if redisClient != nil && cfg.RelationshipCacheTTL > 0 {
		relationshipStore = relationship.NewCached(relationshipStore, redisClient.Client, cfg.RelationshipCacheTTL, log)
	}

	auditMetrics := auditmetrics.New()
	sinkOpts := []audit.Option{
		audit.WithLogger(log),
		audit.WithMetrics(auditMetrics),
	}

	// Async publish channel, enabled when brokers are configured.
	var kafkaClient *kgo.Client
	var kafkaPublisher *publisher.Kafka
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err = kgo.NewClient(kgo.SeedBrokers(cfg.Kafka.Brokers...))
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaClient.Close()

		buffer := publisher.NewRingBuffer(cfg.AuditBufferCapacity)
		kafkaPublisher, err = publisher.NewKafka(kafkaClient, buffer, log,
			publisher.WithTopic(cfg.Kafka.Topic),
			publisher.WithMetrics(auditMetrics),
		)
		if err != nil {
			log.Error("build audit publisher", "error", err)
			os.Exit(1)
		}
		sinkOpts = append(sinkOpts, audit.WithPublisher(kafkaPublisher))
	}
	sink := audit.NewSink(auditStore, sinkOpts...)

	scopeResolver := scope.New(relationshipStore)
	grantResolver := grant.NewResolver(grantStore)

	engineOpts := []engine.Option{
		engine.WithGrants(grantResolver),
		engine.WithAuditSink(sink),
		engine.WithPolicyVersion(cfg.PolicyVersion),
		engine.WithLogger(log),
		engine.WithMetrics(policymetrics.New()),
	}
	var decisionCache *engine.RedisCache
	if redisClient != nil && cfg.DecisionCacheTTL > 0 {
		decisionCache = engine.NewRedisCache(redisClient.Client, cfg.DecisionCacheTTL, cfg.PolicyVersion, log)
		engineOpts = append(engineOpts, engine.WithCache(decisionCache))
	}

	eng, err := engine.New(guard.New(), scopeResolver, engineOpts...)
	if err != nil {
		log.Error("build policy engine", "error", err)
		os.Exit(1)
	}

	if cfg.JWTSecret == "" {
		log.Warn("no JWT secret configured, evaluation endpoint will reject all tokens")
	}
	subjects, err := subject.NewBuilder(func(*jwt.Token) (any, error) {
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		log.Error("build subject builder", "error", err)
		os.Exit(1)
	}

	queries, err := audit.NewQueryService(auditStore)
	if err != nil {
		log.Error("build audit queries", "error", err)
		os.Exit(1)
	}

	grantServiceOpts := []grant.ServiceOption{grant.WithServiceLogger(log)}
	if decisionCache != nil {
		grantServiceOpts = append(grantServiceOpts, grant.WithDecisionCache(decisionCache))
	}
	grantService, err := grant.NewService(grantStore, grantServiceOpts...)
	if err != nil {
		log.Error("build grant service", "error", err)
		os.Exit(1)
	}

	handler := httpapi.NewHandler(eng, subjects, registry.New(registry.StaticLoader(nil)),
		httpapi.WithReadiness(func() error {
			if db != nil {
				if err := db.Ping(); err != nil {
					return err
				}
			}
			if redisClient != nil {
				return redisClient.Health(context.Background())
			}
			return nil
		}),
	)
	router := httpapi.NewRouter(handler, audithandler.New(queries), granthandler.New(grantService))
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting policy decision server", "addr", cfg.Addr, "policy_version", cfg.PolicyVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if kafkaPublisher != nil {
		g.Go(func() error {
			if err := kafkaPublisher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
