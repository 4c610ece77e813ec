package server

import (
	"net/http"

	"github.com/chemgate/chemgate/engine/auth"
	authrouter "github.com/chemgate/chemgate/engine/auth/router"
	"github.com/chemgate/chemgate/engine/predict"
	predictrouter "github.com/chemgate/chemgate/engine/predict/router"
	resultsrouter "github.com/chemgate/chemgate/engine/results/router"
	taskrouter "github.com/chemgate/chemgate/engine/task/router"
	"github.com/gin-gonic/gin"
)

// registerRoutes mounts the full API surface. Prediction and status
// endpoints are open; stored results require a bearer token and are only
// mounted when auth is configured.
func registerRoutes(r *gin.Engine, deps *routerDeps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v2")
	predictrouter.Register(api, deps.gateway, deps.endpoints)
	taskrouter.Register(api, deps.broker, predict.Queues(deps.endpoints))

	if deps.authService != nil {
		authrouter.Register(api, deps.authService)
		resultsGroup := api.Group("/results")
		resultsGroup.Use(auth.Middleware(deps.authService))
		resultsrouter.Register(resultsGroup, deps.results)
	}
}
