// Package main runs the learning platform HTTP API with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vidyaprep/backend/config"
	"github.com/vidyaprep/backend/internal/auth"
	"github.com/vidyaprep/backend/internal/coupons"
	"github.com/vidyaprep/backend/internal/courses"
	"github.com/vidyaprep/backend/internal/emaillogs"
	"github.com/vidyaprep/backend/internal/enrollments"
	"github.com/vidyaprep/backend/internal/masterclasses"
	"github.com/vidyaprep/backend/internal/media"
	"github.com/vidyaprep/backend/internal/middleware"
	"github.com/vidyaprep/backend/internal/orders"
	"github.com/vidyaprep/backend/internal/payments"
	"github.com/vidyaprep/backend/internal/worker"
	"github.com/vidyaprep/backend/pkg/database"
	"github.com/vidyaprep/backend/pkg/mailer"
	"github.com/vidyaprep/backend/pkg/queue"
	"github.com/vidyaprep/backend/pkg/redis"
	"github.com/vidyaprep/backend/pkg/response"
	"github.com/vidyaprep/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			MediaBucket:          cfg.AWS.MediaBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Enrollments
	enrollmentRepo := enrollments.NewRepository(pool)

	// Auth
	authRepo := auth.NewRepository(pool)
	otpVerifier := auth.NewTwilioVerifier(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.VerifyServiceSID, logger)
	authHandler := auth.NewHandler(authRepo, otpVerifier, jwtService, enrollmentRepo, rdb.Client, cfg.Twilio.SendCooldownSec, logger)

	// Catalog
	courseRepo := courses.NewRepository(pool)
	courseHandler := courses.NewHandler(courseRepo, enrollmentRepo, logger)
	masterclassRepo := masterclasses.NewRepository(pool)
	masterclassHandler := masterclasses.NewHandler(masterclassRepo, logger)

	// Coupons
	couponRepo := coupons.NewRepository(pool)
	couponHandler := coupons.NewHandler(couponRepo, logger)

	// Orders and payments
	gateway := payments.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	orderRepo := orders.NewRepository(pool)
	orderService := orders.NewService(orderRepo, couponRepo, authRepo, courseRepo, masterclassRepo,
		enrollmentRepo, gateway, jobQueue, logger)
	orderHandler := orders.NewHandler(orderService, orderRepo, logger)

	enrollmentHandler := enrollments.NewHandler(enrollmentRepo, courseRepo, logger)

	// Confirmation emails
	emailLogsRepo := emaillogs.NewRepository(pool)
	mailClient := mailer.New(mailer.Config{
		Host:        cfg.Email.SMTPHost,
		Port:        cfg.Email.SMTPPort,
		Username:    cfg.Email.SMTPUser,
		Password:    cfg.Email.SMTPPass,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
	}, logger)
	confirmationProcessor := worker.NewConfirmationProcessor(jobQueue, mailClient, emailLogsRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	api := router.Group("/api")

	// Auth (public)
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/send-otp", authHandler.SendOTP)
		authGroup.POST("/verify-otp", authHandler.VerifyOTP)
		authGroup.POST("/complete-profile", authHandler.CompleteProfile)
		authGroup.POST("/admin/login", authHandler.AdminLogin)
	}

	// Public catalog
	api.GET("/courses", courseHandler.List)
	api.GET("/courses/id/:id", courseHandler.Find)
	api.GET("/courses/slug/:slug", courseHandler.GetBySlug)
	api.GET("/masterclasses", masterclassHandler.ListUpcoming)
	api.GET("/masterclasses/id/:id", masterclassHandler.Find)
	api.GET("/masterclasses/slug/:slug", masterclassHandler.GetBySlug)
	api.POST("/coupons/verify", couponHandler.Verify)

	// Protected (JWT required)
	protected := api.Group("")
	protected.Use(middleware.JWT(jwtService))
	{
		protected.GET("/users/:id", authHandler.GetUser)
		protected.GET("/courses/id/:id/content", courseHandler.Content)

		protected.POST("/orders", orderHandler.Create)
		protected.GET("/orders", orderHandler.MyOrders)
		protected.POST("/payments/verify", orderHandler.Verify)

		protected.GET("/enrollments", enrollmentHandler.MyEnrollments)
		protected.POST("/enrollments/lesson-complete", enrollmentHandler.CompleteLesson)
	}

	// Admin
	admin := api.Group("/admin")
	admin.Use(middleware.JWT(jwtService), middleware.RequireRole("admin"))
	{
		admin.GET("/courses", courseHandler.AdminList)
		admin.POST("/courses", courseHandler.Create)
		admin.PUT("/courses/:id", courseHandler.Update)
		admin.DELETE("/courses/:id", courseHandler.Delete)

		admin.GET("/masterclasses", masterclassHandler.AdminList)
		admin.POST("/masterclasses", masterclassHandler.Create)
		admin.PUT("/masterclasses/:id", masterclassHandler.Update)
		admin.DELETE("/masterclasses/:id", masterclassHandler.Delete)

		admin.GET("/coupons", couponHandler.List)
		admin.POST("/coupons", couponHandler.Create)
		admin.DELETE("/coupons/:id", couponHandler.Delete)

		if s3Client != nil {
			mediaHandler := media.NewHandler(s3Client, logger)
			admin.POST("/media", mediaHandler.Upload)
			admin.GET("/media/presign", mediaHandler.Presign)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// In-process confirmation worker; cmd/worker runs the same loop standalone.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go confirmationProcessor.Run(workerCtx)

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
