package predictrouter

import (
	"net/http"

	"github.com/chemgate/chemgate/engine/auth"
	"github.com/chemgate/chemgate/engine/infra/server/router"
	"github.com/chemgate/chemgate/engine/predict"
	"github.com/gin-gonic/gin"
)

// Register wires every declared prediction endpoint onto the API group.
func Register(api *gin.RouterGroup, gateway *predict.Gateway, endpoints []*predict.Endpoint) {
	for _, ep := range endpoints {
		api.POST(ep.Path, handle(gateway, ep))
	}
}

// handle adapts one endpoint's gateway resolution to its HTTP envelope.
func handle(gateway *predict.Gateway, ep *predict.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, files, err := router.FormInput(c)
		if err != nil {
			router.RespondWithError(c, http.StatusBadRequest,
				router.NewRequestError(http.StatusBadRequest, "malformed request body", err))
			return
		}
		owner := ""
		if identity, ok := auth.GetIdentity(c); ok {
			owner = identity.Username
		}
		res := gateway.Process(c.Request.Context(), ep, form, files, owner)
		switch res.Kind {
		case predict.Rejected:
			router.RespondValidationErrors(c, res.Errors)
		case predict.Accepted:
			c.JSON(http.StatusOK, gin.H{
				"request": res.Request,
				"task_id": res.TaskID.String(),
			})
		case predict.Succeeded:
			c.JSON(http.StatusOK, gin.H{
				"request":               res.Request,
				ep.OutputKeyOrDefault(): res.Output,
			})
		case predict.Failed:
			// Task-level failure keeps 200 framing with an explicit
			// failure indicator; it is never presented as success.
			c.JSON(http.StatusOK, gin.H{
				"request": res.Request,
				"task_id": res.TaskID.String(),
				"error":   res.Reason,
			})
		case predict.TimedOut:
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error":   res.Reason,
				"task_id": res.TaskID.String(),
			})
		case predict.Unavailable:
			router.RespondWithError(c, http.StatusServiceUnavailable,
				router.NewRequestError(http.StatusServiceUnavailable, res.Reason, nil))
		}
	}
}
