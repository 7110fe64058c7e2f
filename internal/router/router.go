package router

import (
	"time"

	"spotmate/config"
	"spotmate/internal/handler"
	"spotmate/internal/middleware"
	"spotmate/internal/repository"
	"spotmate/internal/service"
	"spotmate/internal/ws"
	"spotmate/pkg/places"
	"spotmate/pkg/timezone"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, log *zap.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	profileRepo := repository.NewProfileRepository(db)
	presenceRepo := repository.NewPresenceRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	weightsRepo := repository.NewWeightsRepository(db)
	placeCacheRepo := repository.NewPlaceCacheRepository(db)

	// External resolvers; the place cache sits in front of Google.
	placeResolver := &places.CachedResolver{
		Inner: places.NewGoogleResolver(cfg.Google.MapsAPIKey),
		Cache: placeCacheRepo,
	}
	tzResolver := timezone.NewCachedResolver(
		timezone.NewGoogleResolver(cfg.Google.MapsAPIKey),
		cfg.Recording.TimezoneMoveDegrees,
	)

	// Services
	scorer := service.NewCompatibilityService(profileRepo, visitRepo, matchRepo, weightsRepo, log)
	nearbySvc := service.NewNearbyService(cfg.Matching, profileRepo, scorer, log)
	nearbyHub := ws.NewNearbyHub(nearbySvc, cfg.Matching.RefreshInterval, log)
	publisher := service.NewPresencePublisher(
		cfg.Location, cfg.Matching.GeohashPrecision, presenceRepo, profileRepo, nearbyHub, log)
	recorder := service.NewActivityRecorder(cfg.Recording, visitRepo, placeResolver, tzResolver, log)
	connectionSvc := service.NewConnectionService(profileRepo, matchRepo, placeResolver, nearbyHub.Hub, log)

	// Handlers
	locationHandler := handler.NewLocationHandler(publisher, recorder, log)
	nearbyHandler := handler.NewNearbyHandler(nearbySvc)
	compatHandler := handler.NewCompatibilityHandler(scorer)
	connectionHandler := handler.NewConnectionHandler(connectionSvc, matchRepo, profileRepo)
	profileHandler := handler.NewProfileHandler(profileRepo)
	activityHandler := handler.NewActivityHandler(recorder)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		location := api.Group("/location")
		location.Use(authMw)
		{
			location.POST("/ping", locationHandler.Ping)
			location.POST("/tracking", locationHandler.SetTracking)
		}
		api.GET("/presence/me", authMw, locationHandler.Status)

		api.GET("/nearby", authMw, nearbyHandler.List)
		api.GET("/activity/stats", authMw, activityHandler.Stats)
		api.POST("/compatibility", authMw, compatHandler.Score)

		connections := api.Group("/connections")
		connections.Use(authMw)
		{
			connections.POST("", connectionHandler.Send)
			connections.GET("/incoming", connectionHandler.Incoming)
			connections.POST("/:id/accept", connectionHandler.Accept)
			connections.POST("/:id/reject", connectionHandler.Reject)
		}

		matches := api.Group("/matches")
		matches.Use(authMw)
		{
			matches.GET("", connectionHandler.ListMatches)
			matches.POST("/:id/feedback", connectionHandler.Feedback)
		}

		profile := api.Group("/profile")
		profile.Use(authMw)
		{
			profile.GET("", profileHandler.Get)
			profile.PUT("", profileHandler.Save)
		}
	}

	r.GET("/ws/nearby", ws.UpgradeNearbyWS(&cfg.JWT, nearbyHub))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
