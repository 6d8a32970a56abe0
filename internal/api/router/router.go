package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chibuike2003/palgunn/config"
	"github.com/chibuike2003/palgunn/internal/api/handler"
	"github.com/chibuike2003/palgunn/internal/api/middleware"
	"github.com/chibuike2003/palgunn/internal/model"
	"github.com/chibuike2003/palgunn/pkg/jwt"
)

// Deps optional infrastructure the routes depend on. Blacklist and Limiter
// are nil when Redis is unavailable.
type Deps struct {
	JWT       *jwt.Manager
	Blacklist middleware.Blacklist
	Limiter   middleware.Limiter
	Logger    *zap.Logger
}

// Setup builds the gin engine.
func Setup(cfg *config.Config, h *handler.Handler, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.SecurityHeaders("/api/v1/auth", "/api/v1/results", "/api/v1/student"))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(bodyLimit(cfg)))

	// ── health ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	staff := middleware.RoleAuth(model.RoleAdmin, model.RoleLecturer)
	admin := middleware.RoleAuth(model.RoleAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// public auth routes
		auth := v1.Group("/auth")
		{
			loginLimit := cfg.Auth.LoginRateLimit
			auth.POST("/login", middleware.RateLimit(deps.Limiter, loginLimit.Limit, loginLimit.Window), h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(deps.JWT, deps.Blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// courses
			courses := authorized.Group("/courses", staff)
			{
				courses.GET("", h.Course.ListCourses)
				courses.GET("/:id", h.Course.GetCourse)
			}

			// results
			results := authorized.Group("/results", staff)
			{
				results.POST("/batch", h.Result.UpsertBatch)
				results.POST("/import", h.Result.ImportResults)
				results.GET("/export", h.Export.ExportResults)
				results.GET("", h.Result.ListResults)
				results.GET("/:id", h.Result.GetResult)
				results.PUT("/:id", admin, h.Result.UpdateResult)
				results.DELETE("/:id", admin, h.Result.DeleteResult)
			}

			// publication schedules
			publications := authorized.Group("/publications", admin)
			{
				publications.GET("", h.Publication.ListSchedules)
				publications.GET("/sessions", h.Publication.ListSessions)
				publications.GET("/calendar.ics", h.Publication.Calendar)
				publications.GET("/:id", h.Publication.GetSchedule)
				publications.POST("", h.Publication.CreateSchedule)
				publications.PUT("/:id", h.Publication.UpdateSchedule)
			}

			// student view
			authorized.GET("/student/results", middleware.RoleAuth(model.RoleStudent), h.Student.MyResults)

			// activity log
			authorized.GET("/activity-logs", admin, h.Activity.ListActivity)
		}
	}

	return r
}

// bodyLimit the largest body any route accepts: the general limit, raised
// to fit a workbook upload plus its form fields.
func bodyLimit(cfg *config.Config) int64 {
	limit := cfg.Server.MaxBodyBytes
	if upload := cfg.Results.ImportMaxBytes + 1<<20; upload > limit {
		limit = upload
	}
	return limit
}
