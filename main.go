// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v5"
	echomw "github.com/labstack/echo/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ticket-chain/config"
	"ticket-chain/handlers"
	"ticket-chain/internal/api"
	"ticket-chain/internal/cache"
	"ticket-chain/internal/chain"
	"ticket-chain/internal/session"
	"ticket-chain/monitoring"
	"ticket-chain/security"
	"ticket-chain/services"
	"ticket-chain/utils"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient, err := utils.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize the session store
	sessions, err := session.NewStore(cfg.SessionStorePath)
	if err != nil {
		log.Fatalf("session store: %v", err)
	}
	sessions.OnExpire = func(kind session.Kind) {
		log.Printf("session: %s session expired", kind)
	}

	// Initialize the chain clients
	rpcClient := chain.NewClient(&chain.ClientConfig{
		RPCURL:       cfg.ChainRPCURL,
		PollInterval: cfg.ConfirmPollEvery,
		PollTimeout:  cfg.ConfirmTimeout,
	})
	paymentToken := chain.NewERC20(rpcClient, cfg.PaymentTokenAddr)
	ticketing := chain.NewTicketing(rpcClient, cfg.TicketingAddr)

	// Initialize the backend client and cache
	backend := api.NewClient(&api.ClientConfig{
		BaseURL: cfg.BackendBaseURL,
		Timeout: cfg.BackendTimeout,
	}, sessions)
	queryCache := cache.New(redisClient, cfg.CatalogCacheTTL)

	// Initialize PubNub
	notifier := services.NewPubNubNotifier(&services.NotifierConfig{
		PublishKey:   cfg.PubNubPublishKey,
		SubscribeKey: cfg.PubNubSubscribeKey,
		SecretKey:    cfg.PubNubSecretKey,
		UUID:         cfg.PubNubUUID,
	})

	// Initialize monitoring
	monitor := monitoring.NewMonitor()

	// Initialize services
	purchaseService := services.NewPurchaseService(paymentToken, ticketing, rpcClient, backend, queryCache, notifier, monitor, cfg.TokenDecimals)
	transferService := services.NewTransferService(ticketing, rpcClient, backend, queryCache, notifier, monitor)
	catalogService := services.NewCatalogService(backend, queryCache)

	// Initialize handlers
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService)
	transferHandler := handlers.NewTransferHandler(transferService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	organizerHandler := handlers.NewOrganizerHandler(backend)
	sessionHandler := handlers.NewSessionHandler(sessions)

	rateLimiter := security.NewRateLimiter(redisClient)

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Printf("%s %s -> %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))

	// Purchase and transfer flows
	flowLimit := rateLimiter.FlowRateLimit(10)
	e.POST("/api/purchase", purchaseHandler.Buy, flowLimit)
	e.POST("/api/purchase/retry-report", purchaseHandler.RetryReport)
	e.POST("/api/transfer", transferHandler.Transfer, flowLimit)
	e.POST("/api/transfer/retry-report", transferHandler.RetryReport)

	// Catalog
	e.GET("/api/events", catalogHandler.ListEvents)
	e.GET("/api/events/:id", catalogHandler.GetEvent)
	e.GET("/api/tickets", catalogHandler.MyTickets)
	e.GET("/api/tickets/:id", catalogHandler.GetTicket)
	e.GET("/api/tickets/:id/qr", catalogHandler.TicketQR)

	// Organizer views
	e.GET("/api/organizer/events/:id/revenue", organizerHandler.Revenue)
	e.GET("/api/organizer/events/:id/check-in", organizerHandler.CheckInStats)

	// Session management
	e.POST("/api/session", sessionHandler.SetToken)
	e.DELETE("/api/session", sessionHandler.ClearToken)
	e.GET("/api/session", sessionHandler.Status)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		if err := utils.RedisHealthCheck(redisClient); err != nil {
			return c.JSON(503, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return c.JSON(200, map[string]string{"status": "healthy"})
	})

	// Metrics on a separate port, kept off the public surface
	if cfg.EnableMetrics {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(":"+cfg.MetricsPort, mux); err != nil && err != http.ErrServerClosed {
				log.Printf("metrics server: %v", err)
			}
		}()
	}

	// Start server
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: e,
	}
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
