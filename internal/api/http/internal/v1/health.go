package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
} // @name HealthResponse

func (h *Handler) initHealthRoutes(api *gin.RouterGroup) {
	api.GET("/health", h.health)
}

// @Summary Health check
// @Tags system
// @ModuleID health
// @Produce json
// @Success 200 {object} healthResponse
// @Router /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status: "ok",
		Uptime: time.Since(startedAt).Truncate(time.Second).String(),
	})
}
