package resultsrouter

import (
	"errors"
	"net/http"

	"github.com/chemgate/chemgate/engine/auth"
	"github.com/chemgate/chemgate/engine/core"
	"github.com/chemgate/chemgate/engine/infra/server/router"
	"github.com/chemgate/chemgate/engine/results"
	"github.com/chemgate/chemgate/engine/task"
	"github.com/gin-gonic/gin"
)

// Register wires the stored-results endpoints. The caller must mount these
// behind the auth middleware; every handler requires an identity.
func Register(api *gin.RouterGroup, service *results.Service) {
	api.GET("/", listResults(service))
	api.GET("/:id/check", checkResult(service))
	api.GET("/:id/", getResult(service))
	api.DELETE("/:id/", deleteResult(service))
}

func listResults(service *results.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := auth.GetIdentity(c)
		if !ok {
			router.RespondWithError(c, http.StatusUnauthorized,
				router.NewRequestError(http.StatusUnauthorized, "authentication required", nil))
			return
		}
		items, err := service.List(c.Request.Context(), identity)
		if err != nil {
			router.RespondWithError(c, http.StatusServiceUnavailable,
				router.NewRequestError(http.StatusServiceUnavailable, "task backend unavailable", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": items})
	}
}

// checkResult reports only progress, never the payload. Unknown and foreign
// handles read as incomplete.
func checkResult(service *results.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := auth.GetIdentity(c)
		if !ok {
			router.RespondWithError(c, http.StatusUnauthorized,
				router.NewRequestError(http.StatusUnauthorized, "authentication required", nil))
			return
		}
		id := core.ID(c.Param("id"))
		res, err := service.Get(c.Request.Context(), id, identity)
		if errors.Is(err, task.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"id": id, "state": task.StateUnknown})
			return
		}
		if err != nil {
			router.RespondWithError(c, http.StatusServiceUnavailable,
				router.NewRequestError(http.StatusServiceUnavailable, "task backend unavailable", err))
			return
		}
		body := gin.H{"id": res.ID, "state": res.State}
		if res.Error != "" {
			body["error"] = res.Error
		}
		c.JSON(http.StatusOK, body)
	}
}

func getResult(service *results.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := auth.GetIdentity(c)
		if !ok {
			router.RespondWithError(c, http.StatusUnauthorized,
				router.NewRequestError(http.StatusUnauthorized, "authentication required", nil))
			return
		}
		id := core.ID(c.Param("id"))
		res, err := service.Get(c.Request.Context(), id, identity)
		if errors.Is(err, task.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Result not found!"})
			return
		}
		if err != nil {
			router.RespondWithError(c, http.StatusServiceUnavailable,
				router.NewRequestError(http.StatusServiceUnavailable, "task backend unavailable", err))
			return
		}
		body := gin.H{"id": res.ID, "result": res.Result}
		if res.Error != "" {
			body["error"] = res.Error
		}
		c.JSON(http.StatusOK, body)
	}
}

func deleteResult(service *results.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := auth.GetIdentity(c)
		if !ok {
			router.RespondWithError(c, http.StatusUnauthorized,
				router.NewRequestError(http.StatusUnauthorized, "authentication required", nil))
			return
		}
		id := core.ID(c.Param("id"))
		err := service.Delete(c.Request.Context(), id, identity)
		switch {
		case errors.Is(err, task.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Result not found!"})
		case errors.Is(err, task.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Not allowed to delete this result!"})
		case err != nil:
			router.RespondWithError(c, http.StatusServiceUnavailable,
				router.NewRequestError(http.StatusServiceUnavailable, "task backend unavailable", err))
		default:
			c.JSON(http.StatusOK, gin.H{"success": true})
		}
	}
}
