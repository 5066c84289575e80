package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"peerlink/backend/internal/api/handler"
	"peerlink/backend/internal/chat"
	"peerlink/backend/internal/chathub"
	"peerlink/backend/internal/config"
	"peerlink/backend/internal/connections"
	"peerlink/backend/internal/logging"
	"peerlink/backend/internal/metrics"
	"peerlink/backend/internal/models"
	"peerlink/backend/internal/notify"
	"peerlink/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupDependencies(cfg config.Config) (*gorm.DB, *redis.Client) {
	var db *gorm.DB
	var err error
	// The database container may still be coming up; retry briefly.
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
			TranslateError: true,
		})
		if err == nil {
			break
		}
		time.Sleep(time.Duration(500+i*200) * time.Millisecond)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect PostgreSQL")
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect Redis")
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.ConnectionRequest{},
		&models.Message{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	log.Info().Msg("database and Redis connections established, migrations complete")
	return db, rdb
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file loaded")
	}
	cfg := config.Load()
	logging.Init(cfg.Env)

	db, rdb := setupDependencies(cfg)
	store := storage.NewService(db, rdb)

	registry := chathub.NewRegistry()
	dispatcher := chathub.NewDispatcher(registry, log.Logger)
	notifier := notify.NewNotifier(store, registry, dispatcher, log.Logger)
	connSvc := connections.NewService(store, notifier, log.Logger)
	chatSvc := chat.NewService(store, connSvc, notifier, dispatcher, log.Logger)

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), metrics.GinMiddleware())
	h := handler.NewHandler(store, connSvc, chatSvc, registry, log.Logger)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "peerlink backend is running"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.POST("/users", h.CreateUser)
		api.GET("/users", h.ListUsers)
		api.GET("/users/:user_id", h.GetUser)

		api.POST("/connections/send", h.SendConnectionRequest)
		api.POST("/connections/:request_id/accept", h.AcceptConnectionRequest)
		api.POST("/connections/:request_id/reject", h.RejectConnectionRequest)
		api.GET("/connections/requests/sent", h.SentRequests)
		api.GET("/connections/requests/received", h.ReceivedRequests)

		api.GET("/chat/ws/:user_id", h.ServeWebSocket)
		api.POST("/chat/send", h.SendMessage)
		api.GET("/chat/history/:other_user_id", h.ChatHistory)
		api.GET("/chat/connected-users/:user_id", h.ConnectedUsers)

		api.GET("/notifications", h.ListNotifications)
		api.GET("/notifications/count", h.NotificationCount)
		api.PUT("/notifications/mark-read", h.MarkNotificationsRead)
		api.PUT("/notifications/mark-all-read", h.MarkAllNotificationsRead)
		api.DELETE("/notifications/:notification_id", h.DeleteNotification)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting peerlink backend")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	// Open sessions unregister themselves as their channels close.
	registry.Drain(websocket.CloseGoingAway, "server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown did not complete cleanly")
	}
}
