package server

import (
	"backend-ping/internal/activity"
	"backend-ping/internal/analytics"
	"backend-ping/internal/auth"
	"backend-ping/internal/cache"
	"backend-ping/internal/config"
	"backend-ping/internal/event"
	"backend-ping/internal/moderation"
	"backend-ping/internal/notification"
	"backend-ping/internal/place"
	"backend-ping/internal/profile"
	"backend-ping/internal/review"
	"backend-ping/internal/social"
	"backend-ping/internal/tag"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App       *fiber.App
	Cfg       config.Config
	DB        *pgxpool.Pool
	Redis     *redis.Client
	Analytics *analytics.Service
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:   app,
		Cfg:   cfg,
		DB:    db,
		Redis: redisClient,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	var store cache.Store
	if s.Redis != nil {
		store = cache.NewRedisStore(s.Redis)
	}

	authSvc := auth.NewService(s.Cfg.JWTSecret, s.DB)
	notificationSvc := notification.NewService(s.DB, store, notification.LimitsFromConfig(s.Cfg))
	moderationSvc := moderation.NewService(s.DB, store, s.Cfg.BanThreshold, s.Cfg.ReportThreshold)
	analyticsSvc := analytics.NewService(s.DB)
	s.Analytics = analyticsSvc

	// Banned users and IPs are rejected before any handler runs. The gate
	// sits before auth, so it resolves the caller from the bearer token
	// itself.
	s.App.Use(moderation.BanGate(moderationSvc, auth.TokenUserID(s.Cfg.JWTSecret)))

	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := analytics.ActivityLog(analyticsSvc, auth.JWTMiddleware(s.Cfg.JWTSecret))
	adminMiddleware := auth.AdminMiddleware(authSvc)

	auth.RegisterRoutes(s.App.Group("/auth"), authSvc)
	social.RegisterRoutes(s.App, social.NewService(s.DB, authSvc, notificationSvc), jwtMiddleware)
	place.RegisterRoutes(s.App, place.NewService(s.DB, authSvc, s.Cfg.NearbyResultCap), jwtMiddleware, adminMiddleware)
	activity.RegisterRoutes(s.App, activity.NewService(s.DB, nil), jwtMiddleware)
	event.RegisterRoutes(s.App, event.NewService(s.DB, notificationSvc), jwtMiddleware)
	profile.RegisterRoutes(s.App, profile.NewService(s.DB), jwtMiddleware)
	review.RegisterRoutes(s.App, review.NewService(s.DB, notificationSvc), jwtMiddleware)
	tag.RegisterRoutes(s.App, tag.NewService(s.DB), jwtMiddleware, adminMiddleware)
	notification.RegisterRoutes(s.App, notificationSvc, jwtMiddleware)
	moderation.RegisterRoutes(s.App, moderationSvc, jwtMiddleware, adminMiddleware)
	analytics.RegisterRoutes(s.App, analyticsSvc, jwtMiddleware, adminMiddleware)
}
