package app

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nextbet/platform/internal/auth"
	"github.com/nextbet/platform/internal/guard"
	"github.com/nextbet/platform/internal/handler"
	adminhandler "github.com/nextbet/platform/internal/handler/admin"
	"github.com/nextbet/platform/internal/ledger"
	"github.com/nextbet/platform/internal/repository"
	"github.com/nextbet/platform/internal/service"
	"github.com/nextbet/platform/internal/settlement"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool           *pgxpool.Pool
	Redis          *redis.Client
	JWTMgr         *auth.JWTManager
	Logger         *slog.Logger
	AllowedOrigins string
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	pool := deps.Pool
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	// Repositories
	profileRepo := repository.NewProfileRepository()
	authUserRepo := repository.NewAuthUserRepository()
	tournamentRepo := repository.NewTournamentRepository()
	matchRepo := repository.NewMatchRepository()
	couponRepo := repository.NewCouponRepository()
	txRepo := repository.NewTransactionRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Engines
	ledgerEngine := ledger.NewEngine(profileRepo, txRepo, outboxRepo)
	settlementEngine := settlement.NewEngine(pool, ledgerEngine, couponRepo, matchRepo, outboxRepo, logger)

	// Services
	authSvc := service.NewAuthService(pool, authUserRepo, profileRepo, outboxRepo, ledgerEngine, jwtMgr)
	bettingSvc := service.NewBettingService(pool, ledgerEngine, couponRepo, matchRepo, profileRepo, txRepo, outboxRepo, logger)
	profileSvc := service.NewProfileService(pool, profileRepo, txRepo)
	leaderboardSvc := service.NewLeaderboardService(pool, profileRepo, deps.Redis, logger)
	adminSvc := service.NewAdminService(pool, ledgerEngine, settlementEngine,
		tournamentRepo, matchRepo, couponRepo, profileRepo, outboxRepo, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	bettingHandler := handler.NewBettingHandler(bettingSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardSvc)

	// Admin handlers
	tournamentAdmin := adminhandler.NewTournamentHandler(adminSvc)
	matchAdmin := adminhandler.NewMatchHandler(adminSvc)
	couponAdmin := adminhandler.NewCouponHandler(adminSvc)
	userAdmin := adminhandler.NewUserHandler(adminSvc)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(deps.AllowedOrigins))
	r.Use(handler.JSONContentType)

	// Health and metrics (no auth)
	r.Get("/health", handler.HealthHandler(pool))
	r.Method("GET", "/metrics", promhttp.Handler())

	// Auth routes (no auth, rate limited per IP)
	authLimiter := guard.NewRateLimiter(10, time.Minute)
	r.Route("/auth", func(r chi.Router) {
		r.Use(handler.RateLimit(authLimiter))
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// Public board
	r.Get("/matches", bettingHandler.ListMatches)
	r.Get("/leaderboard", leaderboardHandler.Top)

	// Player-authenticated routes
	placeLimiter := guard.NewRateLimiter(30, time.Minute)
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticatePlayer(jwtMgr))

		r.Get("/me", profileHandler.Me)
		r.Patch("/me/username", profileHandler.UpdateUsername)
		r.Patch("/me/password", authHandler.ChangePassword)
		r.Get("/me/transactions", profileHandler.Transactions)

		r.Route("/coupons", func(r chi.Router) {
			r.With(handler.RateLimit(placeLimiter)).Post("/", bettingHandler.PlaceCoupon)
			r.Get("/", bettingHandler.ListCoupons)
			r.Get("/{id}", bettingHandler.GetCoupon)
			r.Post("/{id}/cashout", bettingHandler.Cashout)
		})
	})

	// Admin-authenticated routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(jwtMgr))
		r.Use(auth.RequireRole(auth.WriteRoles()...))

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentAdmin.List)
			r.Post("/", tournamentAdmin.Create)
			r.Delete("/{id}", tournamentAdmin.Delete)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Post("/", matchAdmin.Create)
			r.Put("/{id}", matchAdmin.Update)
			r.Post("/{id}/status", matchAdmin.SetStatus)
			r.Delete("/{id}", matchAdmin.Delete)
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", couponAdmin.List)
			r.Post("/{id}/override", couponAdmin.Override)
			r.Delete("/{id}", couponAdmin.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userAdmin.List)
			r.Post("/{id}/ban", userAdmin.Ban)
			r.Post("/{id}/unban", userAdmin.Unban)
		})
	})

	return r
}
