package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"resto-backend/internal/handlers"
	"resto-backend/internal/middleware"
	"resto-backend/internal/monitoring"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	tableHandler *handlers.TableHandler,
	productHandler *handlers.ProductHandler,
	paymentMethodHandler *handlers.PaymentMethodHandler,
	orderHandler *handlers.OrderHandler,
	registerHandler *handlers.RegisterHandler,
	paymentHandler *handlers.PaymentHandler,
	razorpayHandler *handlers.RazorpayHandler,
	printerHandler *handlers.PrinterHandler,
	totpHandler *handlers.TOTPHandler,
	boardHandler *handlers.BoardHandler,
	healthHandler *handlers.HealthHandler,
	collector *monitoring.Collector,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.PanicRecovery)
	r.Use(middleware.MetricsMiddleware)

	// Public API routes - Authentication
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/auth/verify-2fa", authHandler.Verify2FA).Methods("POST")

	// Public webhook - signature-verified, not JWT-protected
	r.HandleFunc("/webhooks/razorpay", razorpayHandler.HandleWebhook).Methods("POST")

	// Protected API routes - Session
	meAPI := r.PathPrefix("/api/me").Subrouter()
	meAPI.Use(authMiddleware.Authenticate)
	meAPI.HandleFunc("", authHandler.Me).Methods("GET")

	// Protected API routes - Users (admin only)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.List)).ServeHTTP).Methods("GET")
	usersAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.Create)).ServeHTTP).Methods("POST")
	usersAPI.HandleFunc("/{id}", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.Get)).ServeHTTP).Methods("GET")
	usersAPI.HandleFunc("/{id}", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.Update)).ServeHTTP).Methods("PUT")
	usersAPI.HandleFunc("/{id}/toggle-active", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.ToggleActive)).ServeHTTP).Methods("PATCH")

	// Protected API routes - 2FA
	totpAPI := r.PathPrefix("/api/2fa").Subrouter()
	totpAPI.Use(authMiddleware.Authenticate)
	totpAPI.HandleFunc("/setup", totpHandler.Setup).Methods("POST")
	totpAPI.HandleFunc("/enable", totpHandler.Enable).Methods("POST")
	totpAPI.HandleFunc("/disable", totpHandler.Disable).Methods("POST")
	totpAPI.HandleFunc("/status", totpHandler.Status).Methods("GET")

	// Protected API routes - Tables
	tablesAPI := r.PathPrefix("/api/tables").Subrouter()
	tablesAPI.Use(authMiddleware.Authenticate)
	tablesAPI.HandleFunc("", tableHandler.List).Methods("GET")
	tablesAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(tableHandler.Create)).ServeHTTP).Methods("POST")
	tablesAPI.HandleFunc("/{id}", tableHandler.Get).Methods("GET")
	tablesAPI.HandleFunc("/{tableId}/order", orderHandler.ActiveForTable).Methods("GET")

	// Protected API routes - Products
	productsAPI := r.PathPrefix("/api/products").Subrouter()
	productsAPI.Use(authMiddleware.Authenticate)
	productsAPI.HandleFunc("", productHandler.List).Methods("GET")
	productsAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(productHandler.Create)).ServeHTTP).Methods("POST")
	productsAPI.HandleFunc("/{id}", productHandler.Get).Methods("GET")
	productsAPI.HandleFunc("/{id}", authMiddleware.RequireAdmin(http.HandlerFunc(productHandler.Deactivate)).ServeHTTP).Methods("DELETE")

	// Protected API routes - Payment methods
	methodsAPI := r.PathPrefix("/api/payment-methods").Subrouter()
	methodsAPI.Use(authMiddleware.Authenticate)
	methodsAPI.HandleFunc("", paymentMethodHandler.List).Methods("GET")

	// Protected API routes - Orders
	ordersAPI := r.PathPrefix("/api/orders").Subrouter()
	ordersAPI.Use(authMiddleware.Authenticate)
	ordersAPI.HandleFunc("", orderHandler.ListActive).Methods("GET")
	ordersAPI.HandleFunc("", orderHandler.Open).Methods("POST")
	ordersAPI.HandleFunc("/{id}", orderHandler.Get).Methods("GET")
	ordersAPI.HandleFunc("/{id}/items", orderHandler.AddItem).Methods("POST")
	ordersAPI.HandleFunc("/{id}/items/{itemId}", orderHandler.RemoveItem).Methods("DELETE")
	ordersAPI.HandleFunc("/{id}/items/{itemId}", orderHandler.ChangeQuantity).Methods("PATCH")
	ordersAPI.HandleFunc("/{id}/status", orderHandler.UpdateStatus).Methods("PATCH")
	ordersAPI.HandleFunc("/{id}/cancel", orderHandler.Cancel).Methods("POST")
	ordersAPI.HandleFunc("/{id}/recompute", orderHandler.RecomputeTotals).Methods("POST")
	ordersAPI.HandleFunc("/{id}/payments", paymentHandler.ListForOrder).Methods("GET")
	ordersAPI.HandleFunc("/{id}/online-payments", razorpayHandler.AttemptsForOrder).Methods("GET")
	ordersAPI.HandleFunc("/{id}/print/kitchen", printerHandler.KitchenTicket).Methods("POST")
	ordersAPI.HandleFunc("/{id}/print/receipt", printerHandler.Receipt).Methods("POST")

	// Protected API routes - Cash registers
	registersAPI := r.PathPrefix("/api/registers").Subrouter()
	registersAPI.Use(authMiddleware.Authenticate)
	registersAPI.HandleFunc("", registerHandler.History).Methods("GET")
	registersAPI.HandleFunc("", registerHandler.Open).Methods("POST")
	registersAPI.HandleFunc("/current", registerHandler.Current).Methods("GET")
	registersAPI.HandleFunc("/withdraw", registerHandler.Withdraw).Methods("POST")
	registersAPI.HandleFunc("/deposit", registerHandler.Deposit).Methods("POST")
	registersAPI.HandleFunc("/{id}", registerHandler.Get).Methods("GET")
	registersAPI.HandleFunc("/{id}/transactions", registerHandler.Transactions).Methods("GET")
	registersAPI.HandleFunc("/{id}/expected-balance", registerHandler.ExpectedBalance).Methods("GET")
	registersAPI.HandleFunc("/{id}/summary", registerHandler.Summary).Methods("GET")
	registersAPI.HandleFunc("/{id}/close", registerHandler.Close).Methods("POST")
	registersAPI.HandleFunc("/{id}/report", registerHandler.ClosingReport).Methods("GET")
	registersAPI.HandleFunc("/{id}/report/archive", authMiddleware.RequireAdmin(http.HandlerFunc(registerHandler.ArchiveClosingReport)).ServeHTTP).Methods("POST")

	// Protected API routes - Split payments
	paymentsAPI := r.PathPrefix("/api/payments").Subrouter()
	paymentsAPI.Use(authMiddleware.Authenticate)
	paymentsAPI.HandleFunc("/sessions", paymentHandler.StartSession).Methods("POST")
	paymentsAPI.HandleFunc("/sessions/{sessionId}", paymentHandler.GetSession).Methods("GET")
	paymentsAPI.HandleFunc("/sessions/{sessionId}", paymentHandler.Abandon).Methods("DELETE")
	paymentsAPI.HandleFunc("/sessions/{sessionId}/allocations", paymentHandler.AddAllocation).Methods("POST")
	paymentsAPI.HandleFunc("/sessions/{sessionId}/allocations/{methodId}", paymentHandler.RemoveAllocation).Methods("DELETE")
	paymentsAPI.HandleFunc("/sessions/{sessionId}/complete", paymentHandler.Complete).Methods("POST")

	// Protected API routes - Online payments
	onlineAPI := r.PathPrefix("/api/online-payments").Subrouter()
	onlineAPI.Use(authMiddleware.Authenticate)
	onlineAPI.HandleFunc("/status", razorpayHandler.Status).Methods("GET")
	onlineAPI.HandleFunc("/create-order", razorpayHandler.CreateOrder).Methods("POST")
	onlineAPI.HandleFunc("/verify", razorpayHandler.VerifyPayment).Methods("POST")

	// Protected API routes - Admin system stats
	adminAPI := r.PathPrefix("/api/admin").Subrouter()
	adminAPI.Use(authMiddleware.Authenticate)
	adminAPI.HandleFunc("/system-stats", authMiddleware.RequireAdmin(http.HandlerFunc(collector.StatsHandler)).ServeHTTP).Methods("GET")

	// Order board websocket - tablets and kitchen screens
	r.HandleFunc("/ws/orders", boardHandler.OrderBoard)

	// Health endpoints (no auth required - for probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
