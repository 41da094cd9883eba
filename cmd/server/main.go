package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/audit"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/auth"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/chat"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/config"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/domain"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/handler"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/hub"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/moderation"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/presence"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/repository"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/screening"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/pkg/database"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/pkg/jwt"
	pkglog "github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Level == "debug",
		ServiceName: "chat-moderation",
	})
	logger := pkglog.L()

	// Connect to database using GORM
	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.AutoMigrate(db, &domain.RoomModel{}, &domain.MessageModel{}, &domain.AlertModel{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	// Repositories
	roomRepo := repository.NewGormRoomRepository(db)
	msgRepo := repository.NewGormMessageRepository(db)
	alertRepo := repository.NewGormAlertRepository(db)

	// Presence store: Redis when configured, otherwise in-process.
	var store presence.Store
	if cfg.Redis.Enabled {
		store, err = presence.NewRedisStore(presence.RedisConfig{
			Address:       cfg.Redis.Address,
			Password:      cfg.Redis.Password,
			DB:            cfg.Redis.DB,
			PubSubChannel: cfg.Redis.PubSubChannel,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis presence store connected")
	} else {
		store = presence.NewMemoryStore()
	}
	defer store.Close()

	tracker := presence.NewTracker(store, presence.Config{
		HeartbeatInterval: cfg.Presence.HeartbeatInterval,
		GraceMultiplier:   cfg.Presence.GraceMultiplier,
	})

	// Audit sink: Kafka when configured, otherwise structured log.
	var sink audit.Sink
	switch cfg.Audit.Sink {
	case "kafka":
		sink, err = audit.NewKafkaSink(cfg.Audit.Brokers, cfg.Audit.Topic, cfg.Audit.Partitions)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create kafka audit sink")
		}
		logger.Info().Str("topic", cfg.Audit.Topic).Msg("kafka audit sink connected")
	default:
		sink = audit.NewLogSink(logger)
	}
	emitter := audit.NewEmitter(sink, cfg.Audit.Buffer)

	// Credential gate
	var manager *jwt.Manager
	if cfg.Auth.PublicKeyPath != "" {
		manager, err = jwt.NewManagerFromPEM(cfg.Auth.PublicKeyPath, cfg.Auth.Issuer)
	} else {
		logger.Warn().Msg("no trust anchor configured, generating dev key pair")
		manager, err = jwt.NewManager(cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create credential manager")
	}
	gate := auth.NewGate(manager)

	// Core services
	wsHub := hub.NewHub(cfg.WebSocket)
	denylist := screening.NewDenylist(cfg.Screening.Denylist)
	modService := moderation.NewService(alertRepo)
	chatService := chat.NewService(roomRepo, msgRepo, denylist, modService, wsHub, emitter)

	// Handlers
	wsHandler := handler.NewWSHandler(wsHub, gate, tracker, chatService, emitter, cfg.WebSocket)
	httpHandler := handler.NewHTTPHandler(chatService, modService, tracker, store, gate, emitter)

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))
	httpHandler.RegisterRoutes(r, wsHandler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	emitter.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return wsHub.Run(gctx)
	})
	g.Go(func() error {
		return tracker.Run(gctx)
	})
	g.Go(func() error {
		logger.Info().Str("addr", addr).Str("driver", cfg.Database.Driver).Msg("chat-moderation starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error().Err(err).Msg("server exited with error")
	}

	emitter.Stop()
	logger.Info().Msg("chat-moderation stopped")
}
