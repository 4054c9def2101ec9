package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sudar-ai/classroom-api/internal/config"
	"github.com/sudar-ai/classroom-api/internal/handler"
	"github.com/sudar-ai/classroom-api/internal/middleware"
	pgRepo "github.com/sudar-ai/classroom-api/internal/repository/postgres"
	redisRepo "github.com/sudar-ai/classroom-api/internal/repository/redis"
	"github.com/sudar-ai/classroom-api/internal/service"
	"github.com/sudar-ai/classroom-api/pkg/auth"
	"github.com/sudar-ai/classroom-api/pkg/database"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Loading configuration from %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	redisClient, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Repositories
	teacherRepo := pgRepo.NewTeacherRepo(db)
	codeRepo := pgRepo.NewVerificationCodeRepo(db)
	revokedTokenRepo, err := redisRepo.NewRevokedTokenRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize RevokedTokenRepo: %v", err)
		os.Exit(1)
	}

	// Services
	jwtService, err := auth.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		revokedTokenRepo,
	)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	verificationService, err := service.NewVerificationService(
		codeRepo,
		cfg.Verification.CodeTTL,
		cfg.Verification.ResendCooldown,
		cfg.Verification.MaxAttempts,
		cfg.Verification.CodePepper,
	)
	if err != nil {
		log.Printf("Failed to initialize VerificationService: %v", err)
		os.Exit(1)
	}

	var emailService service.EmailService
	if cfg.Email.ResendAPIKey != "" {
		emailService, err = service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize ResendEmailService: %v", err)
			os.Exit(1)
		}
	} else {
		log.Println("RESEND_API_KEY not set, verification codes will only be logged")
		emailService = &service.NoopEmailService{}
	}

	authService, err := service.NewAuthService(
		teacherRepo,
		verificationService,
		service.NewPasswordService(),
		jwtService,
		emailService,
	)
	if err != nil {
		log.Printf("Failed to initialize AuthService: %v", err)
		os.Exit(1)
	}

	// HTTP
	authHandler := handler.NewAuthHandler(authService, jwtService, cfg.Server.CookieSecure)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	router := gin.Default()
	if err := router.SetTrustedProxies(nil); err != nil {
		log.Printf("Failed to set trusted proxies: %v", err)
		os.Exit(1)
	}

	corsOrigins := cfg.Server.CORSOrigins
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/send-verification-code", authHandler.SendVerificationCode)
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		authGroup.POST("/reset-password", authHandler.ResetPassword)

		authGroup.GET("/me", authMiddleware.RequireAuth(), authHandler.Me)
		authGroup.POST("/logout", authMiddleware.RequireAuth(), authHandler.Logout)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing redis client: %v", err)
	}
	log.Println("Server stopped")
}
