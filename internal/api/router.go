package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/careconnect/healthcare-portal/docs"
	"github.com/careconnect/healthcare-portal/internal/api/handler"
	"github.com/careconnect/healthcare-portal/internal/api/middleware"
	"github.com/careconnect/healthcare-portal/internal/core/domain"
	"github.com/careconnect/healthcare-portal/internal/core/service"
	"github.com/careconnect/healthcare-portal/internal/infrastructure/config"
	mongodb "github.com/careconnect/healthcare-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/careconnect/healthcare-portal/internal/infrastructure/db/redis"
	"github.com/careconnect/healthcare-portal/internal/realtime"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The hub is constructed by the caller because its lifetime outlives any
// single request.
func NewRouter(db *mongo.Database, rdb *redis.Client, hub *realtime.Hub, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("portal"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	notificationRepo := mongodb.NewNotificationRepository(db)
	appointmentRepo := mongodb.NewAppointmentRepository(db)
	prescriptionRepo := mongodb.NewPrescriptionRepository(db)
	dedup := redisdb.NewSendDedup(rdb)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, 24*time.Hour)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, hub, dedup, cfg.Notify.SendTimeout, log)
	appointmentService := service.NewAppointmentService(appointmentRepo, userRepo, hub, log)
	prescriptionService := service.NewPrescriptionService(prescriptionRepo, appointmentRepo, hub, log)
	adminService := service.NewAdminService(userRepo, notificationService, log)

	authHandler := handler.NewAuthHandler(authService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	appointmentHandler := handler.NewAppointmentHandler(appointmentService)
	prescriptionHandler := handler.NewPrescriptionHandler(prescriptionService)
	adminHandler := handler.NewAdminHandler(adminService)
	wsHandler := handler.NewWSHandler(hub)

	authRequired := middleware.Auth(cfg.JWTSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	doctorOnly := middleware.RBAC(domain.RoleDoctor)
	patientOnly := middleware.RBAC(domain.RolePatient)

	// --- Auth routes ---
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login)

	// --- Websocket delivery channel ---
	e.GET("/ws", wsHandler.Serve)

	// --- Appointments ---
	appointments := e.Group("/api/appointments", authRequired)
	appointments.POST("", appointmentHandler.Book, patientOnly)
	appointments.GET("", appointmentHandler.List)
	appointments.PUT("/:id/status", appointmentHandler.UpdateStatus, doctorOnly)
	appointments.DELETE("/:id", appointmentHandler.Cancel, patientOnly)

	// --- Prescriptions ---
	prescriptions := e.Group("/api/prescriptions", authRequired)
	prescriptions.POST("", prescriptionHandler.Create, doctorOnly)
	prescriptions.GET("", prescriptionHandler.List, patientOnly)

	// --- Admin ---
	admin := e.Group("/api/admin", authRequired, adminOnly)
	admin.POST("/notifications/send", notificationHandler.Send)
	admin.GET("/doctors/pending", adminHandler.PendingDoctors)
	admin.PUT("/doctors/:id/status", adminHandler.SetDoctorStatus)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
