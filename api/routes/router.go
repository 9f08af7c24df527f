package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flokoutapp/flokout-backend/api/controllers"
	"github.com/flokoutapp/flokout-backend/api/middleware"
	"github.com/flokoutapp/flokout-backend/internal/attendance"
	"github.com/flokoutapp/flokout-backend/internal/auth"
	"github.com/flokoutapp/flokout-backend/internal/expenses"
	"github.com/flokoutapp/flokout-backend/internal/flokouts"
	"github.com/flokoutapp/flokout-backend/internal/floks"
	"github.com/flokoutapp/flokout-backend/internal/notifications"
	"github.com/flokoutapp/flokout-backend/internal/rsvps"
	"github.com/flokoutapp/flokout-backend/internal/spots"
	"github.com/flokoutapp/flokout-backend/internal/users"
	"github.com/flokoutapp/flokout-backend/pkg/auth/session"
	"github.com/flokoutapp/flokout-backend/pkg/config"
	"github.com/flokoutapp/flokout-backend/pkg/db"
	"github.com/flokoutapp/flokout-backend/pkg/logger"
	"github.com/flokoutapp/flokout-backend/pkg/metrics"
	redisclient "github.com/flokoutapp/flokout-backend/pkg/redis"
)

// Deps carries everything the router mounts. Grouped in a struct because the
// service list kept growing past what a parameter list can hold readably.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redisclient.Client
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics
	Sessions    session.AccessSessionChecker

	Auth          auth.Service
	Users         users.Service
	Floks         floks.Service
	Flokouts      flokouts.Service
	Spots         spots.Service
	RSVPs         rsvps.Service
	Attendance    attendance.Service
	Expenses      expenses.Service
	Notifications notifications.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Auth, cfg.JWT, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", controllers.CurrentUser(deps.Users, logg))
				r.Put("/me", controllers.UpdateProfile(deps.Users, logg))
			})

			r.Route("/floks", func(r chi.Router) {
				r.Post("/", controllers.CreateFlok(deps.Floks, logg))
				r.Get("/", controllers.ListMyFloks(deps.Floks, logg))
				r.Post("/join", controllers.JoinFlokByCode(deps.Floks, logg))

				r.Route("/{flokId}", func(r chi.Router) {
					r.Get("/", controllers.GetFlok(deps.Floks, logg))
					r.Put("/", controllers.UpdateFlok(deps.Floks, logg))
					r.Delete("/", controllers.DeactivateFlok(deps.Floks, logg))
					r.Post("/reactivate", controllers.ReactivateFlok(deps.Floks, logg))

					r.Get("/members", controllers.FlokMembers(deps.Floks, logg))
					r.Post("/leave", controllers.LeaveFlok(deps.Floks, logg))
					r.Delete("/members/{userId}", controllers.RemoveFlokMember(deps.Floks, logg))
					r.Patch("/members/{userId}/role", controllers.UpdateFlokMemberRole(deps.Floks, logg))

					r.Post("/invites", controllers.CreateFlokInvite(deps.Floks, logg))

					r.Get("/flokouts", controllers.ListFlokFlokouts(deps.Flokouts, logg))

					r.Get("/spots", controllers.ListFlokSpots(deps.Spots, logg))
					r.Post("/spots/{spotId}", controllers.LinkSpot(deps.Spots, logg))
					r.Delete("/spots/{spotId}", controllers.UnlinkSpot(deps.Spots, logg))
				})
			})

			r.Delete("/invites/{inviteId}", controllers.DeactivateFlokInvite(deps.Floks, logg))

			r.Route("/flokouts", func(r chi.Router) {
				r.Post("/", controllers.CreateFlokout(deps.Flokouts, logg))
				r.Get("/mine", controllers.ListMyFlokouts(deps.Flokouts, logg))

				r.Route("/{flokoutId}", func(r chi.Router) {
					r.Get("/", controllers.GetFlokout(deps.Flokouts, logg))
					r.Put("/", controllers.UpdateFlokout(deps.Flokouts, logg))
					r.Delete("/", controllers.DeleteFlokout(deps.Flokouts, logg))
					r.Post("/confirm", controllers.ConfirmFlokout(deps.Flokouts, logg))
					r.Post("/complete", controllers.CompleteFlokout(deps.Flokouts, logg))
					r.Post("/cancel", controllers.CancelFlokout(deps.Flokouts, logg))

					r.Put("/rsvp", controllers.RespondRSVP(deps.RSVPs, logg))
					r.Get("/rsvp", controllers.MyRSVP(deps.RSVPs, logg))
					r.Get("/rsvps", controllers.ListFlokoutRSVPs(deps.RSVPs, logg))

					r.Post("/attendance", controllers.MarkAttendance(deps.Attendance, logg))
					r.Post("/attendance/bulk", controllers.MarkAttendanceBulk(deps.Attendance, logg))
					r.Get("/attendance", controllers.ListFlokoutAttendance(deps.Attendance, logg))

					r.Get("/expenses", controllers.ListFlokoutExpenses(deps.Expenses, logg))
				})
			})

			r.Get("/rsvps/mine", controllers.ListMyRSVPs(deps.RSVPs, logg))
			r.Get("/attendance/history", controllers.MyAttendanceHistory(deps.Attendance, logg))

			r.Route("/spots", func(r chi.Router) {
				r.Post("/", controllers.CreateSpot(deps.Spots, logg))
				r.Get("/search", controllers.SearchSpots(deps.Spots, logg))
				r.Get("/{spotId}", controllers.GetSpot(deps.Spots, logg))
				r.Put("/{spotId}", controllers.UpdateSpot(deps.Spots, logg))
				r.Delete("/{spotId}", controllers.DeleteSpot(deps.Spots, logg))
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Post("/", controllers.CreateExpense(deps.Expenses, logg))
				r.Get("/{expenseId}", controllers.GetExpense(deps.Expenses, logg))
				r.Put("/{expenseId}", controllers.UpdateExpense(deps.Expenses, logg))
				r.Delete("/{expenseId}", controllers.DeleteExpense(deps.Expenses, logg))
			})

			r.Route("/settle-up", func(r chi.Router) {
				r.Get("/", controllers.SettleUp(deps.Expenses, logg))
				r.Post("/mark-sent", controllers.MarkSettlementSent(deps.Expenses, logg))
				r.Post("/mark-received", controllers.MarkSettlementReceived(deps.Expenses, logg))
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
				r.Get("/unread-count", controllers.UnreadNotificationCount(deps.Notifications, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
			})
		})
	})

	return r
}
