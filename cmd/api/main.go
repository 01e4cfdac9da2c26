package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-attendance-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/email"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-attendance-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/hris-attendance-go/internal/service/auth"
	serviceCompany "github.com/cmlabs-hris/hris-attendance-go/internal/service/company"
	dashboardService "github.com/cmlabs-hris/hris-attendance-go/internal/service/dashboard"
	employeeService "github.com/cmlabs-hris/hris-attendance-go/internal/service/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/file"
	holidayService "github.com/cmlabs-hris/hris-attendance-go/internal/service/holiday"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/leave"
	notificationService "github.com/cmlabs-hris/hris-attendance-go/internal/service/notification"
	reportService "github.com/cmlabs-hris/hris-attendance-go/internal/service/report"
	settingsService "github.com/cmlabs-hris/hris-attendance-go/internal/service/settings"
	teamService "github.com/cmlabs-hris/hris-attendance-go/internal/service/team"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	tx := postgresql.NewTransactor(db)
	userRepo := postgresql.NewUserRepository(db)
	companyRepo := postgresql.NewCompanyRepository(db)
	JWTRepository := postgresql.NewJWTRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	teamRepo := postgresql.NewTeamRepository(db)
	leaveTypeRepo := postgresql.NewLeaveTypeRepository(db)
	leaveBalanceRepo := postgresql.NewLeaveBalanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	settingsRepo := postgresql.NewSettingsRepository(db)
	reportRepo := postgresql.NewReportRepository(db)
	dashboardRepo := postgresql.NewDashboardRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	secureCookies := !cfg.IsDevelopment()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration, secureCookies)

	var GoogleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		GoogleService = oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	}

	var fileStorage storage.FileStorage
	var uploadsDir string
	switch cfg.Storage.Type {
	case "local":
		localStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			log.Fatal("Failed to initialize local storage: ", err)
		}
		fileStorage = localStorage
		uploadsDir = localStorage.BasePath()
	default:
		log.Fatal("Unsupported storage type: ", cfg.Storage.Type)
	}

	fileService := file.NewFileService(fileStorage)
	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service: ", err)
	}

	hub := sse.NewHub()
	notificationSvc := notificationService.NewNotificationService(notificationRepo, hub, notificationService.Config{})

	authSvc := serviceAuth.NewAuthService(
		tx,
		userRepo,
		companyRepo,
		employeeRepo,
		leaveTypeRepo,
		leaveBalanceRepo,
		settingsRepo,
		JWTService,
		JWTRepository,
		emailService,
		cfg,
	)
	companySvc := serviceCompany.NewCompanyService(tx, companyRepo, leaveTypeRepo, settingsRepo, fileService)
	employeeSvc := employeeService.NewEmployeeService(
		tx,
		employeeRepo,
		userRepo,
		teamRepo,
		companyRepo,
		leaveBalanceRepo,
		notificationSvc,
		emailService,
		cfg.App.FrontendURL,
	)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, employeeRepo, settingsRepo, notificationSvc)
	leaveSvc := leave.NewLeaveService(
		tx,
		leaveTypeRepo,
		leaveRequestRepo,
		leaveBalanceRepo,
		employeeRepo,
		fileService,
		notificationSvc,
		emailService,
	)
	teamSvc := teamService.NewTeamService(tx, teamRepo, employeeRepo)
	holidaySvc := holidayService.NewHolidayService(holidayRepo)
	settingsSvc := settingsService.NewSettingsService(settingsRepo)
	reportSvc := reportService.NewReportService(reportRepo, employeeRepo)
	dashboardSvc := dashboardService.NewDashboardService(dashboardRepo, attendanceRepo, leaveBalanceRepo, settingsRepo)

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AppName:        cfg.App.Name,
		Version:        version,
		Env:            cfg.App.Env,
		LogLevel:       cfg.SlogLevel(),
		AllowedOrigins: cfg.App.AllowedOrigins,
		UploadsDir:     uploadsDir,
	}, JWTService, appHTTP.Handlers{
		Auth:         appHTTP.NewAuthHandler(JWTService, authSvc, GoogleService, cfg.App.FrontendURL, secureCookies),
		Company:      appHTTP.NewCompanyHandler(companySvc),
		Employee:     appHTTP.NewEmployeeHandler(employeeSvc),
		Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc),
		Leave:        appHTTP.NewLeaveHandler(leaveSvc),
		Team:         appHTTP.NewTeamHandler(teamSvc),
		Holiday:      appHTTP.NewHolidayHandler(holidaySvc),
		Settings:     appHTTP.NewSettingsHandler(settingsSvc),
		Report:       appHTTP.NewReportHandler(reportSvc),
		Dashboard:    appHTTP.NewDashboardHandler(dashboardSvc),
		Notification: appHTTP.NewNotificationHandler(notificationSvc, JWTService),
	})

	scheduler := cron.NewScheduler()
	if cfg.Cron.Enabled {
		cron.NewAttendanceJobs(companyRepo, settingsRepo, holidayRepo, attendanceRepo, cfg.Cron.MarkAbsentInterval).RegisterJobs(scheduler)
		cron.NewTokenJobs(JWTRepository, cfg.Cron.TokenCleanupInterval).RegisterJobs(scheduler)
		scheduler.Start()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "version", version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			slog.Error("Server error", "error", err)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	}

	// SSE streams stay open until the hub closes them
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	if cfg.Cron.Enabled {
		scheduler.Stop()
	}
	notificationSvc.Stop()
	slog.Info("Server stopped")
}
