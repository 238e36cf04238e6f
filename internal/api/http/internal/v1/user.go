package v1

import (
	"errors"
	"net/http"

	"github.com/recordhub/backend/internal/domain"
	"github.com/recordhub/backend/internal/service"
	"github.com/recordhub/backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

func (h *Handler) initAuthRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)
	auth.POST("/refresh", h.refresh)
	auth.POST("/logout", h.logout)
	auth.GET("/me", h.userIdentityMiddleware, h.me)
}

type credentialsInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type authResponse struct {
	AccessToken string       `json:"access_token"`
	User        *domain.User `json:"user"`
} // @name AuthResponse

type logoutResponse struct {
	OK bool `json:"ok"`
} // @name LogoutResponse

func (h *Handler) sessionMeta(c *gin.Context) service.SessionMeta {
	return service.SessionMeta{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}
}

// @Summary Register user
// @Tags auth
// @Description Creates a user account and opens a refresh session
// @ModuleID register
// @Accept json
// @Produce json
// @Param input body credentialsInput true "credentials"
// @Success 201 {object} authResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 409 {object} ErrorStruct
// @Router /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	var input credentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, http.StatusBadRequest, err)
		return
	}

	result, err := h.services.Users.SignUp(c.Request.Context(), service.UserCredentialsInput{
		Email:    input.Email,
		Password: input.Password,
	}, h.sessionMeta(c))
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExist) {
			errorResponse(c, http.StatusConflict, UserAlreadyExistsCode)
			return
		}
		logger.Error("sign up failed", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, UnknownErrorCode)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, result.RefreshExpiresAt)
	c.JSON(http.StatusCreated, authResponse{AccessToken: result.AccessToken, User: result.User})
}

// @Summary Login user
// @Tags auth
// @Description Verifies credentials and opens a refresh session
// @ModuleID login
// @Accept json
// @Produce json
// @Param input body credentialsInput true "credentials"
// @Success 200 {object} authResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 401 {object} ErrorStruct
// @Router /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var input credentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, http.StatusBadRequest, err)
		return
	}

	result, err := h.services.Users.SignIn(c.Request.Context(), service.UserCredentialsInput{
		Email:    input.Email,
		Password: input.Password,
	}, h.sessionMeta(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			errorResponse(c, http.StatusUnauthorized, InvalidCredentialsCode)
			return
		}
		logger.Error("sign in failed", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, UnknownErrorCode)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, result.RefreshExpiresAt)
	c.JSON(http.StatusOK, authResponse{AccessToken: result.AccessToken, User: result.User})
}

// @Summary Refresh access token
// @Tags auth
// @Description Rotates the refresh session carried by the cookie
// @ModuleID refresh
// @Accept json
// @Produce json
// @Success 200 {object} authResponse
// @Failure 401 {object} ErrorStruct
// @Router /auth/refresh [post]
func (h *Handler) refresh(c *gin.Context) {
	rawToken, ok := h.refreshCookie(c)
	if !ok {
		errorResponse(c, http.StatusUnauthorized, RefreshCookieMissingCode)
		return
	}

	result, err := h.services.Users.Refresh(c.Request.Context(), rawToken, h.sessionMeta(c))
	if err != nil {
		// Every rotation failure means "log in again": the cookie is
		// cleared no matter which kind it was.
		h.clearRefreshCookie(c)

		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			errorResponse(c, http.StatusUnauthorized, SessionNotFoundCode)
		case errors.Is(err, service.ErrSessionExpired):
			errorResponse(c, http.StatusUnauthorized, SessionExpiredCode)
		case errors.Is(err, service.ErrSessionLifetimeExceeded):
			errorResponse(c, http.StatusUnauthorized, SessionLifetimeCode)
		case errors.Is(err, service.ErrSessionRotationFailed):
			logger.Error("refresh rotation failed", zap.Error(err))
			errorResponse(c, http.StatusUnauthorized, SessionRotationFailedCode)
		default:
			logger.Error("refresh failed", zap.Error(err))
			errorResponse(c, http.StatusInternalServerError, UnknownErrorCode)
		}
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, result.RefreshExpiresAt)
	c.JSON(http.StatusOK, authResponse{AccessToken: result.AccessToken, User: result.User})
}

// @Summary Logout user
// @Tags auth
// @Description Revokes the refresh session and clears the cookie
// @ModuleID logout
// @Accept json
// @Produce json
// @Success 200 {object} logoutResponse
// @Router /auth/logout [post]
func (h *Handler) logout(c *gin.Context) {
	if rawToken, ok := h.refreshCookie(c); ok {
		if err := h.services.Users.Logout(c.Request.Context(), rawToken); err != nil {
			logger.Error("logout failed", zap.Error(err))
		}
	}

	// Idempotent: the cookie is cleared even when no session matched.
	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, logoutResponse{OK: true})
}

// @Summary Current user
// @Tags auth
// @Description Returns the authenticated user
// @ModuleID me
// @Accept json
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401
// @Failure 404 {object} ErrorStruct
// @Security UserAuth
// @Router /auth/me [get]
func (h *Handler) me(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	user, err := h.services.Users.GetOneByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			errorResponse(c, http.StatusNotFound, UserNotFoundCode)
			return
		}
		logger.Error("get current user failed", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, UnknownErrorCode)
		return
	}

	c.JSON(http.StatusOK, user)
}
