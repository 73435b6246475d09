package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"giftcard-backend/internal/domains/giftcard/model"
	"giftcard-backend/internal/shared/response"
	"giftcard-backend/pkg/logger"
)

// handleServiceError maps domain errors onto the response envelope.
func handleServiceError(c *gin.Context, err error) {
	var appErr *model.AppError
	if errors.As(err, &appErr) {
		response.ErrorWithDetails(c, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}

	switch {
	case errors.Is(err, model.ErrGiftCardNotFound):
		response.NotFound(c, "gift card not found")
	case errors.Is(err, model.ErrOrderStateNotFound):
		response.NotFound(c, "order not found")
	case errors.Is(err, model.ErrDuplicateCode):
		response.Conflict(c, "gift card code already exists")
	default:
		logger.Error("Unhandled service error", err)
		response.InternalServerError(c, "internal server error")
	}
}
