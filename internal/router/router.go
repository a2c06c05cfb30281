package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/bezem-backend/internal/config"
	"github.com/stemsi/bezem-backend/internal/handler"
	"github.com/stemsi/bezem-backend/internal/middleware"
	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stemsi/bezem-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Conversion *handler.ConversionHandler
	Import     *handler.ImportHandler
	WS         *handler.WSHandler
	System     *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// loginLimiter may be nil to leave the login route unthrottled.
func SetupRouter(
	auth middleware.TokenValidator,
	handlers *Handlers,
	cfg *config.Config,
	loginLimiter *middleware.RateLimiter,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))

	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Quality:   middleware.DefaultBrotliConfig.Quality,
		MinLength: middleware.DefaultBrotliConfig.MinLength,
		Skipper: func(c *gin.Context) bool {
			return strings.HasSuffix(c.FullPath(), "/events")
		},
	}))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	publicAPI.Use(middleware.CacheControl(3600))
	{
		publicAPI.GET("/sheets", handlers.Conversion.Sheets)
	}

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	authGroup := router.Group("/api/v1/auth")
	{
		login := []gin.HandlerFunc{handlers.Auth.AdminLogin}
		if loginLimiter != nil {
			login = append([]gin.HandlerFunc{loginLimiter.Middleware()}, login...)
		}
		authGroup.POST("/admin/login", login...)
		authGroup.GET("/admin/me", middleware.RequireAdminJWT(auth), handlers.Auth.GetAdminProfile)
	}

	// ─── 2. Read Side (Public) ─────────────────────────────────────────
	api := router.Group("/api/v1")
	{
		api.GET("/conversions", handlers.Conversion.ListConversions)
		api.GET("/conversions/search", handlers.Conversion.Search)
		api.GET("/courses", handlers.Conversion.ListCourses)
		api.GET("/exams", handlers.Conversion.ListExams)
	}

	// ─── 3. WebSocket Group (Admin WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAdminWSAuth(auth))
	{
		ws.GET("/imports/:id/progress",
			middleware.RequirePermission(model.PermissionConversionsImport),
			handlers.WS.ImportProgressStream,
		)
	}

	// ─── 4. Admin Group (JWT + RBAC) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(auth), middleware.NoStore())
	{
		// Imports
		adminAPI.POST("/imports",
			middleware.RequirePermission(model.PermissionConversionsImport),
			handlers.Import.Upload,
		)
		adminAPI.POST("/imports/preview",
			middleware.RequirePermission(model.PermissionConversionsImport),
			handlers.Import.Preview,
		)
		adminAPI.GET("/imports/:id",
			middleware.RequirePermission(model.PermissionConversionsImport),
			handlers.Import.GetJob,
		)
		adminAPI.GET("/imports/:id/events",
			middleware.RequirePermission(model.PermissionConversionsImport),
			handlers.Import.ProgressSSE,
		)

		// Export
		adminAPI.GET("/conversions/export",
			middleware.RequirePermission(model.PermissionConversionsExport),
			handlers.Conversion.Export,
		)

		// Store
		adminAPI.GET("/store",
			middleware.RequireAnyPermission(model.PermissionConversionsImport, model.PermissionStoreClear),
			handlers.Conversion.Stats,
		)
		adminAPI.DELETE("/store",
			middleware.RequirePermission(model.PermissionStoreClear),
			handlers.Conversion.ClearStore,
		)

		// System
		adminAPI.GET("/system", handlers.System.Status)
	}

	return router
}
