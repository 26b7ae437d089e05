package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"resto-backend/internal/auth"
	"resto-backend/internal/cache"
	"resto-backend/internal/config"
	"resto-backend/internal/database"
	"resto-backend/internal/db"
	"resto-backend/internal/handlers"
	"resto-backend/internal/health"
	h "resto-backend/internal/http"
	"resto-backend/internal/middleware"
	"resto-backend/internal/monitoring"
	"resto-backend/internal/repositories"
	"resto-backend/internal/services"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Connect to PostgreSQL
	pool := db.Connect(cfg)
	defer pool.Close()

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (running without balance cache and live boards)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Run database migrations
	log.Println("Running database migrations...")
	migrator := database.NewMigrator(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize health checker
	healthChecker := health.NewHealthChecker(pool)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(pool)
	tableRepo := repositories.NewTableRepository(pool)
	productRepo := repositories.NewProductRepository(pool)
	methodRepo := repositories.NewPaymentMethodRepository(pool)
	orderRepo := repositories.NewOrderRepository(pool)
	orderPaymentRepo := repositories.NewOrderPaymentRepository(pool)
	registerRepo := repositories.NewRegisterRepository(pool)
	onlinePaymentRepo := repositories.NewOnlinePaymentRepository(pool)

	// Initialize services
	balanceCache := cache.NewTillBalanceCache()
	notifier := services.NewNotificationService()

	userService := services.NewUserService(userRepo, jwtManager)
	totpService := services.NewTOTPService(userRepo)

	serviceFee := decimal.NewFromFloat(cfg.Till.ServiceFeePercent)
	orderService := services.NewOrderService(orderRepo, productRepo, serviceFee)
	orderService.SetNotifier(notifier)

	discrepancyThreshold := decimal.NewFromFloat(cfg.Till.DiscrepancyThreshold)
	registerService := services.NewRegisterService(registerRepo, balanceCache, discrepancyThreshold)

	paymentService := services.NewPaymentService(pool, orderRepo, methodRepo, orderPaymentRepo, registerRepo, registerService)
	paymentService.SetCache(balanceCache)
	paymentService.SetNotifier(notifier)

	reportService := services.NewReportService(cfg, registerService)

	printerTimeout := time.Duration(cfg.Printer.TimeoutSeconds) * time.Second
	printerService := services.NewPrinterService(cfg.Printer.KitchenURL, cfg.Printer.ReceiptURL, printerTimeout, orderRepo)

	razorpayService := services.NewRazorpayService(
		cfg.Razorpay.KeyID,
		cfg.Razorpay.KeySecret,
		cfg.Razorpay.WebhookSecret,
		orderRepo,
		methodRepo,
		onlinePaymentRepo,
		paymentService,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, totpService, jwtManager)
	userHandler := handlers.NewUserHandler(userService)
	tableHandler := handlers.NewTableHandler(tableRepo)
	productHandler := handlers.NewProductHandler(productRepo)
	methodHandler := handlers.NewPaymentMethodHandler(methodRepo)
	orderHandler := handlers.NewOrderHandler(orderService)
	registerHandler := handlers.NewRegisterHandler(registerService, reportService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	razorpayHandler := handlers.NewRazorpayHandler(razorpayService)
	printerHandler := handlers.NewPrinterHandler(printerService, orderService, tableRepo, paymentService)
	totpHandler := handlers.NewTOTPHandler(totpService, userRepo)
	boardHandler := handlers.NewBoardHandler()
	healthHandler := handlers.NewHealthHandler(healthChecker)
	collector := monitoring.NewCollector(pool)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)

	router := h.NewRouter(
		authHandler,
		userHandler,
		tableHandler,
		productHandler,
		methodHandler,
		orderHandler,
		registerHandler,
		paymentHandler,
		razorpayHandler,
		printerHandler,
		totpHandler,
		boardHandler,
		healthHandler,
		collector,
		authMiddleware,
	)

	handler := middleware.NewCORS(cfg).Handler(router)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
