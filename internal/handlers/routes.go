package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/jonpan30062/newsaferoute/internal/middleware"
)

// Routes groups the handlers and route-level middleware mounted by the server.
type Routes struct {
	Health         *HealthHandler
	Alerts         *AlertHandler
	Concerns       *ConcernHandler
	Buildings      *BuildingHandler
	Admin          *AdminHandler
	Auth           *middleware.Authenticator
	ConcernLimiter *middleware.RateLimiter
}

// Register mounts every route on router. Global middleware (request id,
// logging, recovery, CORS) is expected to be installed already. It fails
// only when the request validators cannot be set up.
func (r Routes) Register(router *gin.Engine) error {
	if err := RegisterValidations(); err != nil {
		return err
	}

	router.GET("/health", r.Health.Health)
	router.GET("/health/ready", r.Health.Ready)

	v1 := router.Group("/api/v1")
	v1.Use(r.Auth.Authenticate())
	{
		v1.GET("/info", r.Health.Info)

		v1.GET("/alerts", r.Alerts.List)
		v1.GET("/alerts/:id", r.Alerts.Get)

		v1.GET("/buildings/search", r.Buildings.Search)

		submit := []gin.HandlerFunc{r.Concerns.Submit}
		if r.ConcernLimiter != nil {
			submit = append([]gin.HandlerFunc{r.ConcernLimiter.Middleware()}, submit...)
		}
		v1.POST("/concerns", submit...)

		admin := v1.Group("/admin")
		admin.Use(middleware.RequireReviewer())
		{
			admin.GET("/concerns", r.Admin.ListConcerns)
			admin.POST("/concerns/approve", r.Admin.ApproveBatch)
			admin.GET("/concerns/:id", r.Admin.GetConcern)
			admin.PATCH("/concerns/:id/status", r.Admin.UpdateStatus)
			admin.PATCH("/concerns/:id/notes", r.Admin.UpdateNotes)
			admin.POST("/concerns/:id/approve", r.Admin.Approve)
			admin.POST("/concerns/:id/quick/:action", r.Admin.QuickAction)

			admin.POST("/alerts", r.Admin.CreateAlert)
			admin.PUT("/alerts/:id", r.Admin.UpdateAlert)
			admin.POST("/alerts/activate", r.Admin.ActivateAlerts)
			admin.POST("/alerts/deactivate", r.Admin.DeactivateAlerts)
			admin.POST("/alerts/expire", r.Admin.ExpireAlerts)
		}
	}
	return nil
}
