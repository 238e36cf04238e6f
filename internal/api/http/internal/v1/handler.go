package v1

import (
	"github.com/recordhub/backend/internal/config"
	"github.com/recordhub/backend/internal/service"
	"github.com/recordhub/backend/pkg/auth"

	"github.com/gin-gonic/gin"
)

// @title Recordhub API
// @version 1.0
// @description CRUD records backend with email/password authentication

// @BasePath /api

// @securityDefinitions.apikey UserAuth
// @in header
// @name Authorization

type Handler struct {
	services     *service.Services
	tokenManager auth.TokenManager
	config       *config.Config
}

func NewHandler(
	services *service.Services,
	tokenManager auth.TokenManager,
	config *config.Config,
) *Handler {
	return &Handler{
		services:     services,
		tokenManager: tokenManager,
		config:       config,
	}
}

func (h *Handler) Init(api *gin.RouterGroup) {
	h.initAuthRoutes(api)
	h.initRecordsRoutes(api)
	h.initHealthRoutes(api)
}
