package v1

import (
	"errors"
	"net/http"

	"github.com/recordhub/backend/internal/service"
	"github.com/recordhub/backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) initRecordsRoutes(api *gin.RouterGroup) {
	records := api.Group("/records", h.userIdentityMiddleware)
	records.GET("", h.listRecords)
	records.POST("", h.createRecord)
	records.PATCH("/:id", h.updateRecord)
	records.DELETE("/:id", h.deleteRecord)
}

type createRecordInput struct {
	Title   string  `json:"title" binding:"required,min=1,max=200"`
	Content *string `json:"content" binding:"omitempty,max=10000"`
}

type updateRecordInput struct {
	Title   *string `json:"title" binding:"omitempty,min=1,max=200"`
	Content *string `json:"content" binding:"omitempty,max=10000"`
}

// @Summary List records
// @Tags records
// @Description Lists the authenticated user's records, newest first
// @ModuleID listRecords
// @Accept json
// @Produce json
// @Success 200 {array} domain.Record
// @Failure 401
// @Security UserAuth
// @Router /records [get]
func (h *Handler) listRecords(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	records, err := h.services.Records.GetAllByUser(c.Request.Context(), userID)
	if err != nil {
		logger.Error("list records failed", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, UnknownErrorCode)
		return
	}

	c.JSON(http.StatusOK, records)
}

// @Summary Create record
// @Tags records
// @Description Creates a record owned by the authenticated user
// @ModuleID createRecord
// @Accept json
// @Produce json
// @Param input body createRecordInput true "record"
// @Success 201 {object} domain.Record
// @Failure 400 {object} ValidationErrorStruct
// @Failure 401
// @Security UserAuth
// @Router /records [post]
func (h *Handler) createRecord(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	var input createRecordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, http.StatusBadRequest, err)
		return
	}

	record, err := h.services.Records.Create(c.Request.Context(), userID, service.CreateRecordInput{
		Title:   input.Title,
		Content: input.Content,
	})
	if err != nil {
		logger.Error("create record failed", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, UnknownErrorCode)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// @Summary Update record
// @Tags records
// @Description Partially updates a record owned by the authenticated user
// @ModuleID updateRecord
// @Accept json
// @Produce json
// @Param id path string true "record id"
// @Param input body updateRecordInput true "fields to update"
// @Success 200 {object} domain.Record
// @Failure 400 {object} ValidationErrorStruct
// @Failure 401
// @Failure 404 {object} ErrorStruct
// @Security UserAuth
// @Router /records/{id} [patch]
func (h *Handler) updateRecord(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorResponse(c, http.StatusNotFound, RecordNotFoundCode)
		return
	}

	var input updateRecordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, http.StatusBadRequest, err)
		return
	}

	record, err := h.services.Records.Update(c.Request.Context(), userID, recordID, service.UpdateRecordInput{
		Title:   input.Title,
		Content: input.Content,
	})
	if err != nil {
		if errors.Is(err, service.ErrRecordNotFound) {
			errorResponse(c, http.StatusNotFound, RecordNotFoundCode)
			return
		}
		logger.Error("update record failed", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, UnknownErrorCode)
		return
	}

	c.JSON(http.StatusOK, record)
}

// @Summary Delete record
// @Tags records
// @Description Deletes a record owned by the authenticated user
// @ModuleID deleteRecord
// @Accept json
// @Produce json
// @Param id path string true "record id"
// @Success 204
// @Failure 401
// @Failure 404 {object} ErrorStruct
// @Security UserAuth
// @Router /records/{id} [delete]
func (h *Handler) deleteRecord(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorResponse(c, http.StatusNotFound, RecordNotFoundCode)
		return
	}

	if err := h.services.Records.Delete(c.Request.Context(), userID, recordID); err != nil {
		if errors.Is(err, service.ErrRecordNotFound) {
			errorResponse(c, http.StatusNotFound, RecordNotFoundCode)
			return
		}
		logger.Error("delete record failed", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, UnknownErrorCode)
		return
	}

	c.Status(http.StatusNoContent)
}
