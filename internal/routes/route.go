package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/musa-app/musa-api/internal/container"
	"github.com/musa-app/musa-api/internal/handlers"
	"github.com/musa-app/musa-api/internal/middleware"
	"github.com/musa-app/musa-api/internal/models"
)

// SetupRouter assembles the HTTP surface from the wired container.
func SetupRouter(c *container.Container) *gin.Engine {
	if c.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(c.Logger))
	router.Use(middleware.ErrorHandler(c.Logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{c.Config.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	auth := middleware.Auth(c.Config.JWTSecret, c.Repo)
	optionalAuth := middleware.OptionalAuth(c.Config.JWTSecret, c.Repo)
	adminOnly := middleware.AdminOnly()

	api := router.Group("/api")

	api.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, models.SuccessResponse(gin.H{"status": "ok"}, ""))
	})

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", handlers.Register(c.UserService))
		authGroup.POST("/login", handlers.Login(c.UserService))
		authGroup.GET("/logout", handlers.Logout())
		authGroup.GET("/verify", auth, handlers.VerifyToken())
		authGroup.GET("/verify-email/:token", handlers.VerifyEmail(c.UserService))
		authGroup.POST("/resend-verification", handlers.ResendVerification(c.UserService))
		authGroup.POST("/forgot-password", handlers.ForgotPassword(c.UserService))
		authGroup.POST("/reset-password/:token", handlers.ResetPassword(c.UserService))
		authGroup.GET("/profile", auth, handlers.GetProfile(c.UserService))
		authGroup.PUT("/profile", auth, handlers.UpdateProfile(c.UserService))
		authGroup.GET("/google", handlers.GoogleLogin())
		authGroup.GET("/google/callback", handlers.GoogleCallback(c.UserService, c.Config.FrontendURL))
	}

	spotGroup := api.Group("/spots")
	{
		spotGroup.GET("", optionalAuth, handlers.SearchSpots(c.SpotService))
		spotGroup.GET("/nearby", optionalAuth, handlers.NearbySpots(c.SpotService))
		spotGroup.GET("/discover", optionalAuth, handlers.DiscoverSpots(c.SpotService))
		spotGroup.GET("/pending", auth, adminOnly, handlers.ListPendingSpots(c.SpotService))
		spotGroup.GET("/:id", optionalAuth, handlers.GetSpot(c.SpotService))

		spotGroup.POST("", auth, handlers.CreateSpot(c.SpotService))
		spotGroup.PUT("/:id", auth, handlers.UpdateSpot(c.SpotService))
		spotGroup.DELETE("/:id", auth, handlers.DeleteSpot(c.SpotService))
		spotGroup.PUT("/:id/approve", auth, adminOnly, handlers.ApproveSpot(c.SpotService))
	}

	ugcGroup := api.Group("/ugc")
	{
		ugcGroup.GET("/spot/:spotId", handlers.ListSpotUGC(c.UGCService))
		ugcGroup.GET("/user", auth, handlers.ListMyUGC(c.UGCService))
		ugcGroup.GET("/pending", auth, adminOnly, handlers.ListPendingUGC(c.UGCService))
		ugcGroup.POST("", auth, handlers.CreateUGC(c.UGCService))
		ugcGroup.PUT("/:id", auth, handlers.UpdateUGC(c.UGCService))
		ugcGroup.DELETE("/:id", auth, handlers.DeleteUGC(c.UGCService))
		ugcGroup.PUT("/:id/like", auth, handlers.LikeUGC(c.UGCService))
		ugcGroup.PUT("/:id/approve", auth, adminOnly, handlers.ModerateUGC(c.UGCService))
	}

	api.POST("/suggestions", handlers.SearchSuggestions(c.SpotService))

	return router
}
