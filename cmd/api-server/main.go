package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"novelhub/internal/assets"
	"novelhub/internal/auth"
	"novelhub/internal/chapters"
	"novelhub/internal/follows"
	"novelhub/internal/notify"
	"novelhub/internal/novels"
	"novelhub/internal/query"
	"novelhub/internal/realtime"
	"novelhub/internal/tags"
	"novelhub/pkg/database"
	"novelhub/pkg/logger"
	"novelhub/pkg/utils"
)

func main() {
	zlog, err := logger.New(os.Getenv("NOVELHUB_ENV"))
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer zlog.Sync()

	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		zlog.Fatal("db migrate failed", "err", err)
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	// Realtime event hub (WebSocket + TCP)
	hub := realtime.NewHub()
	router.GET("/ws", realtime.WSHandler(hub, zlog))
	tcpSrv := realtime.NewServer(":7070", hub, zlog)

	// Follower notification fan-out over UDP
	notifyCfg := utils.LoadNotifyConfig()
	registry := notify.NewRegistry()
	udpSrv := notify.NewUDPServer(notifyCfg.UDPAddr, registry, zlog)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	// Auth
	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(router.Group("/auth"))

	public := router.Group("/")
	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware(tokenSvc, authRepo))

	protected.GET("/users/me", func(c *gin.Context) {
		claims := auth.MustGetClaims(c)
		c.JSON(http.StatusOK, gin.H{
			"id":       claims.UserID,
			"username": claims.Username,
			"email":    claims.Email,
		})
	})

	// Asset store gateway
	assetCfg := utils.LoadAssetConfig()
	store := assets.NewCloudStore(assetCfg)

	// Tag catalog
	tagRepo := tags.NewRepo(db)
	tags.NewHandler(tagRepo).RegisterRoutes(public, protected)

	// Novel aggregate
	novelRepo := novels.NewRepo(db)
	novelSvc := novels.NewService(novelRepo, tagRepo, store, assetCfg.Folder, zlog)
	novels.NewHandler(novelSvc).RegisterRoutes(protected)

	// Follows + notification fan-out
	followRepo := follows.NewRepo(db)
	follows.NewHandler(followRepo, novelRepo).RegisterRoutes(protected)

	dispatcher := notify.NewDispatcher(followRepo, udpSrv, zlog)
	dispatcher.Start()
	defer dispatcher.Stop()

	// Chapters
	chapterRepo := chapters.NewRepo(db)
	chapterSvc := chapters.NewService(chapterRepo, novelSvc, dispatcher, zlog)
	chapters.NewHandler(chapterSvc, hub).RegisterRoutes(public, protected)

	// Read-only projections
	queryRepo := query.NewRepo(db)
	query.NewHandler(queryRepo).RegisterRoutes(public)

	httpSrv := &http.Server{
		Addr:    ":8080",
		Handler: router,
	}

	errCh := make(chan error, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := udpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		zlog.Info("http api server listening", "addr", ":8080")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zlog.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		zlog.Error("server error", "err", err)
	}

	zlog.Info("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("http shutdown error", "err", err)
	}
	if err := tcpSrv.Close(); err != nil {
		zlog.Error("tcp shutdown error", "err", err)
	}
	if err := udpSrv.Close(); err != nil {
		zlog.Error("udp shutdown error", "err", err)
	}

	wg.Wait()
	zlog.Info("servers stopped")
}
