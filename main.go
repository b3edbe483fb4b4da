package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/username/fleetservis/backend/src/config"
	"github.com/username/fleetservis/backend/src/database"
	"github.com/username/fleetservis/backend/src/handlers"
	"github.com/username/fleetservis/backend/src/logger"
	"github.com/username/fleetservis/backend/src/security"
	"github.com/username/fleetservis/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			config.Cfg.FrontendBaseURL: true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Requested-With, Cookie, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "X-CSRF-Token, ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("FleetServis backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}
	if len(config.Cfg.CSRFAuthKey) < 32 {
		logger.L.Error("CSRF_AUTH_KEY must be at least 32 bytes long.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret)
	emailService := services.NewEmailService()
	userHandler := handlers.NewUserHandler(authService, emailService)
	handlers.InitializeGoogleOAuthConfig()

	reportService := services.NewReportService(database.DB, config.Cfg.ReportCacheTTL, config.Cfg.ReportCacheCleanup)
	activityService := services.NewActivityService(database.DB)
	transactionService := services.NewTransactionService(database.DB, reportService)
	fleetService := services.NewFleetService(database.DB)

	reportHandler := handlers.NewReportHandler(reportService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, activityService)
	fleetHandler := handlers.NewFleetHandler(fleetService, activityService)
	activityHandler := handlers.NewActivityHandler(activityService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	// Public GET routes (no CSRF needed for these GETs)
	apiRouter.HandleFunc("GET /api/auth/csrf", handlers.GetCSRFToken)
	apiRouter.HandleFunc("GET /api/auth/verify-email", userHandler.VerifyEmailHandler)
	apiRouter.HandleFunc("GET /api/auth/google/login", userHandler.HandleGoogleLogin)
	apiRouter.HandleFunc("GET /api/auth/google/callback", userHandler.HandleGoogleCallback)

	// Auth actions - POST routes go through CSRF validation
	authActionRouter := http.NewServeMux()
	authActionRouter.HandleFunc("POST /login", userHandler.LoginUserHandler)
	authActionRouter.HandleFunc("POST /register", userHandler.RegisterUserHandler)
	authActionRouter.HandleFunc("POST /refresh", userHandler.RefreshTokenHandler)
	authActionRouter.Handle("POST /logout", userHandler.AuthMiddleware(http.HandlerFunc(userHandler.LogoutUserHandler)))
	authActionRouter.HandleFunc("POST /request-password-reset", userHandler.RequestPasswordResetHandler)
	authActionRouter.HandleFunc("POST /reset-password", userHandler.ResetPasswordHandler)

	csrfProtection := handlers.CSRFMiddleware()
	apiRouter.Handle("/api/auth/", http.StripPrefix("/api/auth", csrfProtection(authActionRouter)))

	applyCsrfAndAuth := func(handler http.HandlerFunc) http.Handler {
		return csrfProtection(userHandler.AuthMiddleware(handler))
	}

	// Profit reports
	apiRouter.Handle("GET /api/reports/profit/daily", applyCsrfAndAuth(reportHandler.HandleDailyProfit))
	apiRouter.Handle("GET /api/reports/profit/weekly", applyCsrfAndAuth(reportHandler.HandleWeeklyProfit))
	apiRouter.Handle("GET /api/reports/profit/monthly", applyCsrfAndAuth(reportHandler.HandleMonthlyProfit))
	apiRouter.Handle("GET /api/reports/profit/yearly", applyCsrfAndAuth(reportHandler.HandleYearlyProfit))
	apiRouter.Handle("GET /api/reports/profit/custom", applyCsrfAndAuth(reportHandler.HandleCustomProfit))

	// Revenue reports
	apiRouter.Handle("GET /api/reports/revenue/daily", applyCsrfAndAuth(reportHandler.HandleDailyRevenue))
	apiRouter.Handle("GET /api/reports/revenue/weekly", applyCsrfAndAuth(reportHandler.HandleWeeklyRevenue))
	apiRouter.Handle("GET /api/reports/revenue/monthly", applyCsrfAndAuth(reportHandler.HandleMonthlyRevenue))
	apiRouter.Handle("GET /api/reports/revenue/yearly", applyCsrfAndAuth(reportHandler.HandleYearlyRevenue))
	apiRouter.Handle("GET /api/reports/revenue/custom", applyCsrfAndAuth(reportHandler.HandleCustomRevenue))

	// Transactions
	apiRouter.Handle("POST /api/transactions", applyCsrfAndAuth(transactionHandler.HandleCreate))
	apiRouter.Handle("GET /api/transactions", applyCsrfAndAuth(transactionHandler.HandleList))
	apiRouter.Handle("GET /api/transactions/stats", applyCsrfAndAuth(transactionHandler.HandleStats))
	apiRouter.Handle("GET /api/transactions/{id}", applyCsrfAndAuth(transactionHandler.HandleGet))
	apiRouter.Handle("PUT /api/transactions/{id}", applyCsrfAndAuth(transactionHandler.HandleUpdate))
	apiRouter.Handle("PATCH /api/transactions/{id}/status", applyCsrfAndAuth(transactionHandler.HandleUpdateStatus))
	apiRouter.Handle("DELETE /api/transactions/{id}", applyCsrfAndAuth(transactionHandler.HandleDelete))

	// Vehicles
	apiRouter.Handle("POST /api/vehicles", applyCsrfAndAuth(fleetHandler.HandleCreateVehicle))
	apiRouter.Handle("GET /api/vehicles", applyCsrfAndAuth(fleetHandler.HandleListVehicles))
	apiRouter.Handle("GET /api/vehicles/{id}", applyCsrfAndAuth(fleetHandler.HandleGetVehicle))
	apiRouter.Handle("PUT /api/vehicles/{id}", applyCsrfAndAuth(fleetHandler.HandleUpdateVehicle))
	apiRouter.Handle("DELETE /api/vehicles/{id}", applyCsrfAndAuth(fleetHandler.HandleDeleteVehicle))

	// Personnel
	apiRouter.Handle("POST /api/personnel", applyCsrfAndAuth(fleetHandler.HandleCreatePersonnel))
	apiRouter.Handle("GET /api/personnel", applyCsrfAndAuth(fleetHandler.HandleListPersonnel))
	apiRouter.Handle("GET /api/personnel/{id}", applyCsrfAndAuth(fleetHandler.HandleGetPersonnel))
	apiRouter.Handle("PUT /api/personnel/{id}", applyCsrfAndAuth(fleetHandler.HandleUpdatePersonnel))
	apiRouter.Handle("DELETE /api/personnel/{id}", applyCsrfAndAuth(fleetHandler.HandleDeletePersonnel))

	// Categories
	apiRouter.Handle("POST /api/categories", applyCsrfAndAuth(fleetHandler.HandleCreateCategory))
	apiRouter.Handle("GET /api/categories", applyCsrfAndAuth(fleetHandler.HandleListCategories))
	apiRouter.Handle("PUT /api/categories/{id}", applyCsrfAndAuth(fleetHandler.HandleUpdateCategory))
	apiRouter.Handle("DELETE /api/categories/{id}", applyCsrfAndAuth(fleetHandler.HandleDeleteCategory))

	// Activities and user account
	apiRouter.Handle("GET /api/activities", applyCsrfAndAuth(activityHandler.HandleList))
	apiRouter.Handle("GET /api/user/profile", applyCsrfAndAuth(userHandler.ProfileHandler))
	apiRouter.Handle("POST /api/user/change-password", applyCsrfAndAuth(userHandler.ChangePasswordHandler))

	rootMux.Handle("/api/", apiRouter)
	rootMux.HandleFunc("GET /health", handlers.HealthHandler)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "FleetServis Backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
