// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fynlabs/fyn-backend/internal/auth"
	"github.com/fynlabs/fyn-backend/internal/common/database"
	"github.com/fynlabs/fyn-backend/internal/config"
	"github.com/fynlabs/fyn-backend/internal/dates"
	"github.com/fynlabs/fyn-backend/internal/matching"
	"github.com/fynlabs/fyn-backend/internal/meetups"
	"github.com/fynlabs/fyn-backend/internal/notifications"
	"github.com/fynlabs/fyn-backend/internal/otp"
	"github.com/fynlabs/fyn-backend/internal/profiles"
	"github.com/fynlabs/fyn-backend/internal/storage"
	"github.com/fynlabs/fyn-backend/internal/stories"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("Starting Fyn API")

	// 1. Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (%v), using environment variables", err)
	}

	// 2. Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration validation failed:", err)
	}

	// 3. Connect to PostgreSQL
	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// 4. Connect to Redis. OTP challenges and session rate limits live
	// here, so unlike the database this is not optional.
	redisClient, err := database.NewRedisClientFromURL(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// 5. Run database migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Println("Database migrations completed")

	// 6. OTP system
	otpRepo := otp.NewRedisRepository(redisClient)

	var emailProvider otp.EmailProvider
	switch cfg.EmailProvider {
	case "sendgrid":
		emailProvider = otp.NewSendGridEmailProvider(cfg.SendGridAPIKey, cfg.EmailFrom, "Fyn")
		log.Println("Using SendGrid for OTP emails")
	default:
		emailProvider = otp.NewMockEmailProvider()
		log.Println("Using mock email provider (development mode)")
	}

	var smsProvider otp.SMSProvider
	switch cfg.SMSProvider {
	case "twilio":
		smsProvider = otp.NewTwilioSMSProvider(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
		log.Println("Using Twilio for OTP SMS")
	default:
		smsProvider = otp.NewMockSMSProvider()
		log.Println("Using mock SMS provider (development mode)")
	}

	otpConfig := &otp.Config{
		Length:      cfg.OTPLength,
		Expiry:      cfg.OTPExpiry,
		MaxAttempts: cfg.MaxOTPAttempts,
		RateLimit: otp.RateLimitConfig{
			MaxRequests: cfg.OTPResendMax,
			Window:      cfg.OTPResendWindow,
		},
	}
	otpService := otp.NewService(otpRepo, emailProvider, smsProvider, otpConfig)
	otpHandler := otp.NewHandler(otpService)

	// 7. Auth system
	authRepo := auth.NewPostgresRepository(db)
	authConfig := &auth.Config{
		JWTSecret:          cfg.JWTSecret,
		AccessTokenExpiry:  cfg.AccessTokenExpiry,
		RefreshTokenExpiry: cfg.RefreshTokenExpiry,
		BCryptCost:         cfg.BCryptCost,
		Issuer:             "fyn-api",
	}
	authService := auth.NewService(authRepo, redisClient, otpService, authConfig)
	authHandler := auth.NewHandler(authService)
	authMiddleware := auth.NewMiddleware(authService)

	// 8. Upload storage
	var uploadService storage.UploadService
	if cfg.UseS3 {
		uploadService, err = storage.NewS3UploadService(cfg.S3Bucket, cfg.AWSRegion)
		if err != nil {
			log.Printf("Failed to init S3, falling back to local storage: %v", err)
			uploadService = storage.NewLocalUploadService(cfg.LocalUploadDir, cfg.BaseURL+"/uploads")
		} else {
			log.Println("Using S3 for uploads")
		}
	} else {
		uploadService = storage.NewLocalUploadService(cfg.LocalUploadDir, cfg.BaseURL+"/uploads")
		log.Println("Using local storage for uploads")
	}

	// 9. Profiles
	profilesRepo := profiles.NewPostgresRepository(db)
	profilesService := profiles.NewService(profilesRepo, authService, uploadService)
	profilesHandler := profiles.NewHandler(profilesService)

	// 10. Notifications
	notificationsRepo := notifications.NewPostgresRepository(db)

	var emailSender notifications.EmailSender
	if cfg.EnableEmailNotifications && cfg.EmailProvider == "sendgrid" {
		emailSender = notifications.NewSendGridSender(cfg.SendGridAPIKey, cfg.EmailFrom, "Fyn")
	}
	var smsSender notifications.SMSSender
	if cfg.EnableSMSNotifications && cfg.SMSProvider == "twilio" {
		smsSender = notifications.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	}

	recipients := &userRecipientDirectory{users: authService}
	notificationsService := notifications.NewService(notificationsRepo, recipients, emailSender, smsSender)
	notificationsHandler := notifications.NewHandler(notificationsService)

	// 11. Matching
	matchingRepo := matching.NewPostgresRepository(db)
	scoreEngine := matching.NewScoreEngine()

	matchHub := matching.NewHub()
	go matchHub.Run()

	matchingService := matching.NewService(matchingRepo, scoreEngine, authService, notificationsService, matchHub)
	matchingHandler := matching.NewHandler(matchingService, matchHub)

	// 12. Dates
	datesRepo := dates.NewPostgresRepository(db)
	datesService := dates.NewService(datesRepo, authService, notificationsService, cfg.DefaultMaxProposals)
	datesHandler := dates.NewHandler(datesService)

	// 13. Meetups
	meetupsRepo := meetups.NewPostgresRepository(db)
	meetupsService := meetups.NewService(meetupsRepo, authService, notificationsService)
	meetupsHandler := meetups.NewHandler(meetupsService)

	// 14. Stories
	storiesRepo := stories.NewPostgresRepository(db)
	storiesService := stories.NewService(storiesRepo, authService, cfg.StoryTTL)
	storiesHandler := stories.NewHandler(storiesService)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	storyCleanup := stories.NewCleanupService(storiesService, cfg.StoryCleanupInterval)
	go storyCleanup.Start(jobCtx)

	go startNotificationCleanup(jobCtx, notificationsService)

	// 15. Routes
	router := mux.NewRouter()

	if !cfg.UseS3 {
		router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/",
				http.FileServer(http.Dir(cfg.LocalUploadDir))))
	}

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	auth.RegisterRoutes(router, authHandler, authMiddleware)
	otp.RegisterRoutes(router, otpHandler)
	profiles.RegisterRoutes(router, profilesHandler, authMiddleware)
	matching.RegisterRoutes(router, matchingHandler, authMiddleware)
	dates.RegisterRoutes(router, datesHandler, authMiddleware)
	meetups.RegisterRoutes(router, meetupsHandler, authMiddleware)
	stories.RegisterRoutes(router, storiesHandler, authMiddleware)
	notifications.RegisterRoutes(router, notificationsHandler, authMiddleware)

	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	// 16. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s (%s)", srv.Addr, cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutdown signal received")
	cancelJobs()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited gracefully")
}

// userRecipientDirectory resolves notification recipients from user
// accounts.
type userRecipientDirectory struct {
	users auth.Service
}

func (d *userRecipientDirectory) GetRecipient(ctx context.Context, userID int64) (*notifications.Recipient, error) {
	user, err := d.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &notifications.Recipient{Email: user.Email, Phone: user.Phone}, nil
}

// startNotificationCleanup prunes read notifications older than 30 days
// once a day.
func startNotificationCleanup(ctx context.Context, service notifications.Service) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanupCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			if err := service.CleanupOldNotifications(cleanupCtx, 30*24*time.Hour); err != nil {
				log.Printf("Failed to cleanup old notifications: %v", err)
			}
			cancel()
		}
	}
}

var startTime = time.Now()

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// loggingMiddleware logs all requests with status and duration
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("%s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
