package taskrouter

import (
	"net/http"

	"github.com/chemgate/chemgate/engine/core"
	"github.com/chemgate/chemgate/engine/infra/server/router"
	"github.com/chemgate/chemgate/engine/task"
	"github.com/gin-gonic/gin"
)

// Register wires the task status and queue overview endpoints.
func Register(api *gin.RouterGroup, broker *task.Broker, queues []string) {
	api.GET("/tasks/:task_id/", getTaskStatus(broker))
	api.GET("/queues/", getQueueStats(broker, queues))
}

// getTaskStatus reports whether a task finished. A handle the broker does
// not know is reported as incomplete, never as an error: it may
// legitimately still be pending or have expired.
func getTaskStatus(broker *task.Broker) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := core.ID(c.Param("task_id"))
		rec, err := broker.GetRecord(c.Request.Context(), id)
		if err != nil {
			router.RespondWithError(c, http.StatusServiceUnavailable,
				router.NewRequestError(http.StatusServiceUnavailable, "task backend unavailable", err))
			return
		}
		if rec == nil || !rec.State.Terminal() {
			c.JSON(http.StatusOK, gin.H{"complete": false})
			return
		}
		body := gin.H{"complete": true, "state": rec.State}
		if rec.Error != "" {
			body["error"] = rec.Error
		}
		c.JSON(http.StatusOK, body)
	}
}

// getQueueStats reports the backlog of every worker queue.
func getQueueStats(broker *task.Broker, queues []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := broker.QueueStats(c.Request.Context(), queues)
		if err != nil {
			router.RespondWithError(c, http.StatusServiceUnavailable,
				router.NewRequestError(http.StatusServiceUnavailable, "task backend unavailable", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"queues": stats})
	}
}
