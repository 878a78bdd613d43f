package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pathlab/labledger/internal/config"
	"github.com/pathlab/labledger/pkg/auth"
	"github.com/pathlab/labledger/pkg/metrics"
)

type Handlers struct {
	Auth  *AuthHandler
	Cases *CaseHandler
	Tests *TestHandler
	Users *UserHandler
}

// NewRouter assembles the full HTTP surface: global middleware, the public
// auth endpoints (with their stricter rate limit), and the authenticated API.
func NewRouter(cfg *config.Config, jwtManager *auth.JWTManager, m *metrics.Collector, h Handlers) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CORS(cfg.CORS))
	r.Use(RequestMetrics(m))
	r.Use(RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(RateLimit(float64(cfg.RateLimit.AuthRequestsPerMinute)/60.0, cfg.RateLimit.AuthRequestsPerMinute))
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/change-password", AuthRequired(jwtManager), h.Auth.ChangePassword)
	}

	protected := api.Group("")
	protected.Use(AuthRequired(jwtManager))
	{
		cases := protected.Group("/cases")
		{
			cases.GET("", h.Cases.List)
			cases.POST("", h.Cases.Create)
			cases.GET("/:id", h.Cases.Get)
			cases.PATCH("/:id", h.Cases.Update)
			cases.POST("/:id/commission/pay", h.Cases.PayCommission)
			cases.POST("/:id/commission/mark-paid", h.Cases.MarkCommissionPaid)
			cases.POST("/:id/write-off", h.Cases.WriteOff)
			cases.DELETE("/:id", AdminOnly(), h.Cases.Delete)
		}

		tests := protected.Group("/tests")
		{
			tests.GET("", h.Tests.List)
			tests.POST("", AdminOnly(), h.Tests.Create)
			tests.PATCH("/:id", AdminOnly(), h.Tests.Update)
			tests.POST("/:id/toggle-status", AdminOnly(), h.Tests.ToggleStatus)
			tests.DELETE("/:id", AdminOnly(), h.Tests.Delete)
		}

		users := protected.Group("/users")
		{
			users.GET("", AdminOnly(), h.Users.List)
			users.GET("/collectors", h.Users.ListCollectors)
			users.POST("", AdminOnly(), h.Users.Create)
			users.PATCH("/:id", AdminOnly(), h.Users.Update)
			users.POST("/:id/toggle-status", AdminOnly(), h.Users.ToggleStatus)
			users.DELETE("/:id", AdminOnly(), h.Users.Delete)
		}
	}

	return r
}
