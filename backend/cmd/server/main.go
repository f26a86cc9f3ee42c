package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"moviesalon/backend/internal/app"
	"moviesalon/backend/internal/profiles"
	"moviesalon/backend/internal/session"
	"moviesalon/backend/internal/state"
	"moviesalon/backend/pkg/config"
	"moviesalon/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting discussion server...")

	salon, err := app.New(cfg)
	if err != nil {
		log.Fatal("Failed to initialize discussion stack", zap.Error(err))
	}

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(salon.Streamer, salon.Profiles, cfg.AllowedOrigin, log)

	// Start server. No write timeout: discussions stream for minutes.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

func newRouter(streamer *session.Streamer, store *profiles.Store, allowedOrigin string, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())
	router.Use(cors(allowedOrigin))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Character catalogue for the client's picker
	router.GET("/api/characters", func(c *gin.Context) {
		type character struct {
			Name    string        `json:"name"`
			Profile state.Profile `json:"profile"`
		}
		names := store.Names()
		characters := make([]character, 0, len(names))
		for _, name := range names {
			p, _ := store.Get(name)
			characters = append(characters, character{Name: name, Profile: p})
		}
		c.JSON(http.StatusOK, gin.H{"characters": characters})
	})

	router.GET("/chat/stream", chatStream(streamer, log))

	return router
}

// chatStream streams one discussion as server-sent events
func chatStream(streamer *session.Streamer, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := session.Params{
			Topic:        c.Query("topic"),
			UserNote:     c.Query("user_message"),
			Genres:       session.ParseGenres(c.Query("genres")),
			SeenItems:    c.Query("seen_movies"),
			Participants: session.ParseParticipants(c.Query("characters")),
		}
		if len(params.Participants) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "characters is required"})
			return
		}

		ctx := c.Request.Context()
		started := false
		emit := session.EmitterFunc(func(event string, data interface{}) error {
			if !started {
				c.Header("Cache-Control", "no-cache")
				c.Header("Connection", "keep-alive")
				c.Header("X-Accel-Buffering", "no")
				started = true
			}
			c.SSEvent(event, data)
			c.Writer.Flush()
			return ctx.Err()
		})

		err := streamer.Stream(ctx, params, emit)
		if err == nil {
			return
		}

		var invalid state.ErrInvalidConversation
		if errors.As(err, &invalid) && !started {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
			return
		}
		log.Warn("Discussion stream ended early", zap.Error(err))
	}
}

// cors allows the browser client to open the event stream
func cors(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
