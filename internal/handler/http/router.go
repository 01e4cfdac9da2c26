package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterConfig carries the settings the router needs from config.Config.
type RouterConfig struct {
	AppName        string
	Version        string
	Env            string
	LogLevel       slog.Level
	AllowedOrigins []string
	// UploadsDir is served under /uploads when files are stored locally.
	UploadsDir string
}

// Handlers groups every HTTP handler mounted by NewRouter.
type Handlers struct {
	Auth         AuthHandler
	Company      CompanyHandler
	Employee     EmployeeHandler
	Attendance   AttendanceHandler
	Leave        LeaveHandler
	Team         TeamHandler
	Holiday      HolidayHandler
	Settings     SettingsHandler
	Report       ReportHandler
	Dashboard    DashboardHandler
	Notification NotificationHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.AppName),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", middleware.TenantHeader},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if cfg.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/demo", h.Auth.DemoLogin)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
			r.Post("/forgot-password", h.Auth.ForgotPassword)
			r.Post("/reset-password", h.Auth.ResetPassword)
			r.Get("/oauth/google", h.Auth.LoginWithGoogle)
			r.Get("/oauth/callback/google", h.Auth.OAuthCallbackGoogle)
		})

		// SSE clients cannot send headers; the stream authenticates with a
		// short-lived token in the query string.
		r.Get("/notifications/stream", h.Notification.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))
			r.Use(middleware.Tenant)

			r.Get("/auth/me", h.Auth.Me)

			r.Route("/me", func(r chi.Router) {
				r.Use(middleware.RequireEmployee)
				r.Get("/", h.Employee.GetMyProfile)
				r.Put("/", h.Employee.UpdateMyProfile)
			})

			r.Route("/companies", func(r chi.Router) {
				// super_admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.SuperAdminOnly)
					r.Get("/", h.Company.List)
					r.Post("/", h.Company.Create)
				})

				r.Route("/my", func(r chi.Router) {
					r.Use(middleware.RequireCompany)
					r.Get("/", h.Company.GetMy)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionCompanyManage))
						r.Put("/", h.Company.UpdateMy)
						r.Post("/logo", h.Company.UploadLogo)
					})
				})
			})

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.Employee.List)
				r.Get("/{id}", h.Employee.Get)
				r.Get("/{id}/direct-reports", h.Employee.DirectReports)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionEmployeeManage))
					r.Post("/", h.Employee.Create)
					r.Put("/{id}", h.Employee.Update)
					r.Delete("/{id}", h.Employee.Deactivate)
				})
			})

			// Route name kept for clients of the former create-employee function
			r.With(middleware.RequirePermission(user.PermissionEmployeeManage)).
				Post("/functions/create-employee", h.Employee.Create)

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", h.Attendance.List)
				r.Get("/{id}", h.Attendance.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireEmployee)
					r.Post("/check-in", h.Attendance.CheckIn)
					r.Post("/check-out", h.Attendance.CheckOut)
					r.Get("/today", h.Attendance.Today)
					r.Get("/my", h.Attendance.GetMyAttendance)
				})

				r.With(middleware.RequirePermission(user.PermissionAttendanceOverride)).
					Post("/override", h.Attendance.Override)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Route("/types", func(r chi.Router) {
					r.Get("/", h.Leave.ListTypes)
					r.Get("/{id}", h.Leave.GetType)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionLeaveManageTypes))
						r.Post("/", h.Leave.CreateType)
						r.Put("/{id}", h.Leave.UpdateType)
						r.Delete("/{id}", h.Leave.DeleteType)
					})
				})

				r.Route("/requests", func(r chi.Router) {
					r.Get("/", h.Leave.ListRequests)
					r.With(middleware.RequireEmployee).Get("/my", h.Leave.GetMyRequests)
					r.With(middleware.RequireEmployee).Post("/", h.Leave.CreateRequest)
					r.Get("/{id}", h.Leave.GetRequest)
					r.Post("/{id}/cancel", h.Leave.CancelRequest)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionLeaveApprove))
						r.Post("/{id}/approve", h.Leave.ApproveRequest)
						r.Post("/{id}/reject", h.Leave.RejectRequest)
					})
				})

				r.Route("/balances", func(r chi.Router) {
					r.Get("/", h.Leave.ListBalances)
					r.With(middleware.RequireEmployee).Get("/my", h.Leave.GetMyBalances)
					r.With(middleware.RequirePermission(user.PermissionLeaveManageBalances)).
						Put("/", h.Leave.UpsertBalance)
				})
			})

			r.Route("/teams", func(r chi.Router) {
				r.Get("/", h.Team.List)
				r.Get("/{id}", h.Team.Get)
				r.Get("/{id}/members", h.Team.ListMembers)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionTeamManage))
					r.Post("/", h.Team.Create)
					r.Put("/{id}", h.Team.Update)
					r.Delete("/{id}", h.Team.Delete)
					r.Post("/{id}/members", h.Team.AddMembers)
					r.Delete("/{id}/members", h.Team.RemoveMembers)
				})
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Get("/", h.Holiday.List)
				r.Get("/{id}", h.Holiday.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionHolidayManage))
					r.Post("/", h.Holiday.Create)
					r.Put("/{id}", h.Holiday.Update)
					r.Delete("/{id}", h.Holiday.Delete)
				})
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", h.Settings.List)
				r.Get("/{key}", h.Settings.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionSettingsManage))
					r.Put("/{key}", h.Settings.Upsert)
					r.Delete("/{key}", h.Settings.Delete)
				})
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionReportsView))
				r.Get("/attendance", h.Report.AttendanceReport)
				r.Get("/attendance/export", h.Report.ExportAttendanceReport)
				r.Get("/leave", h.Report.LeaveReport)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionDashboardView)).Get("/", h.Dashboard.Overview)
				r.With(middleware.RequireEmployee).Get("/my", h.Dashboard.My)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Post("/read", h.Notification.MarkAsRead)
				r.Post("/read-all", h.Notification.MarkAllAsRead)
				r.Delete("/{id}", h.Notification.Delete)
				r.Get("/sse-token", h.Notification.GetSSEToken)
			})
		})
	})
	return r
}
