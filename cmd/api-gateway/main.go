package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/absensi-qr-api/api/swagger"
	"github.com/noah-isme/absensi-qr-api/internal/handler"
	"github.com/noah-isme/absensi-qr-api/internal/middleware"
	"github.com/noah-isme/absensi-qr-api/internal/models"
	"github.com/noah-isme/absensi-qr-api/internal/notify"
	"github.com/noah-isme/absensi-qr-api/internal/repository"
	"github.com/noah-isme/absensi-qr-api/internal/service"
	"github.com/noah-isme/absensi-qr-api/pkg/cache"
	"github.com/noah-isme/absensi-qr-api/pkg/config"
	"github.com/noah-isme/absensi-qr-api/pkg/database"
	"github.com/noah-isme/absensi-qr-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/absensi-qr-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/absensi-qr-api/pkg/middleware/requestid"
	"github.com/noah-isme/absensi-qr-api/pkg/storage"
)

// @title Absensi QR API
// @version 1.0.0
// @description QR attendance gateway for students and employees
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsService := service.NewMetricsService()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	classRepo := repository.NewClassRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	windowRepo := repository.NewWindowRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	rosterRepo := repository.NewShiftRosterRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	// Notification pipeline. A missing token keeps the service disabled
	// without blocking scans.
	var notifier notify.Notifier
	if cfg.WhatsApp.Enabled && cfg.WhatsApp.Token != "" {
		notifier = notify.NewFonnteClient(cfg.WhatsApp.APIURL, cfg.WhatsApp.Token, cfg.WhatsApp.Timeout)
	}
	notificationService := service.NewNotificationService(notifier, cfg.WhatsApp, logr)
	notificationService.Start(context.Background())
	defer notificationService.Stop()

	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init report storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	// Services.
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && redisClient != nil)
	calendarService := service.NewCalendarService(calendarRepo, logr)
	windowService := service.NewWindowService(windowRepo, rosterRepo, validate, logr)
	rosterService := service.NewRosterService(rosterRepo, employeeRepo, logr)
	scanService := service.NewScanService(studentRepo, employeeRepo, attendanceRepo, calendarService, windowService, notificationService, metricsService, cacheService, logr)
	attendanceService := service.NewAttendanceService(attendanceRepo, studentRepo, employeeRepo, calendarService, cacheService, logr)
	dashboardService := service.NewDashboardService(attendanceRepo, studentRepo, employeeRepo, calendarService, windowService, cacheService, logr)
	exportService := service.NewExportService(attendanceRepo, store, signer, logr)
	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
	})
	studentService := service.NewStudentService(studentRepo, validate, logr)
	employeeService := service.NewEmployeeService(employeeRepo, validate, logr)
	classService := service.NewClassService(classRepo, validate, logr)

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			exportService.CleanupExpired(cfg.Exports.SignedURLTTL)
		}
	}()

	// Handlers.
	scanHandler := handler.NewScanHandler(scanService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	rosterHandler := handler.NewRosterHandler(rosterService)
	windowHandler := handler.NewWindowHandler(windowService)
	calendarHandler := handler.NewCalendarHandler(calendarService)
	studentHandler := handler.NewStudentHandler(studentService)
	employeeHandler := handler.NewEmployeeHandler(employeeService)
	classHandler := handler.NewClassHandler(classService)
	exportHandler := handler.NewExportHandler(exportService)
	authHandler := handler.NewAuthHandler(authService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Kiosk and download endpoints stay public: the scanner devices and
	// emailed report links carry no admin session.
	api.POST("/scan", scanHandler.Scan)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/exports/download", exportHandler.Download)

	admin := api.Group("")
	admin.Use(middleware.JWT(authService))
	{
		admin.GET("/auth/me", authHandler.Me)

		admin.GET("/attendance", attendanceHandler.DayView)
		admin.PUT("/attendance/daily-status", attendanceHandler.SetDailyStatus)

		admin.GET("/dashboard/daily", dashboardHandler.Daily)
		admin.GET("/dashboard/period", dashboardHandler.Period)

		admin.GET("/roster", rosterHandler.Month)
		admin.PUT("/roster", rosterHandler.Save)
		admin.POST("/roster/copy-previous", rosterHandler.CopyPrevious)

		admin.GET("/windows/security/shifts", windowHandler.ListShifts)
		admin.GET("/windows/:category", windowHandler.Get)

		admin.GET("/calendar/check", calendarHandler.Check)
		admin.GET("/calendar/weekly-holidays", calendarHandler.WeeklyHolidays)
		admin.GET("/calendar/holidays", calendarHandler.ListHolidays)

		admin.GET("/students", studentHandler.List)
		admin.GET("/students/:id", studentHandler.Get)
		admin.GET("/employees", employeeHandler.List)
		admin.GET("/employees/:id", employeeHandler.Get)
		admin.GET("/classes", classHandler.List)

		admin.POST("/exports", exportHandler.Generate)

		admin.GET("/metrics/snapshot", metricsHandler.Snapshot)

		// Mutating configuration and master data require elevated roles.
		elevated := admin.Group("")
		elevated.Use(middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin))
		{
			elevated.PUT("/windows/security/shifts", windowHandler.UpdateShift)
			elevated.DELETE("/windows/security/shifts/:shift", windowHandler.DeleteShift)
			elevated.PUT("/windows/:category", windowHandler.Update)
			elevated.DELETE("/windows/:category", windowHandler.Reset)

			elevated.PUT("/calendar/weekly-holidays", calendarHandler.SetWeeklyHolidays)
			elevated.POST("/calendar/holidays", calendarHandler.AddHoliday)
			elevated.DELETE("/calendar/holidays/:id", calendarHandler.RemoveHoliday)

			elevated.POST("/students", studentHandler.Create)
			elevated.PUT("/students/:id", studentHandler.Update)
			elevated.DELETE("/students/:id", studentHandler.Delete)

			elevated.POST("/employees", employeeHandler.Create)
			elevated.PUT("/employees/:id", employeeHandler.Update)
			elevated.DELETE("/employees/:id", employeeHandler.Delete)

			elevated.POST("/classes", classHandler.Create)
			elevated.PUT("/classes/:id", classHandler.Update)
			elevated.DELETE("/classes/:id", classHandler.Delete)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
