package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"giftcard-backend/internal/domains/giftcard/model"
	"giftcard-backend/internal/domains/giftcard/service"
	"giftcard-backend/internal/domains/giftcard/session"
	"giftcard-backend/internal/shared/response"
	"giftcard-backend/pkg/logger"
)

// CheckoutHandler exposes the shopper-facing apply/remove/reprice
// surface. The pending redemption lives in the session store, keyed
// by the opaque X-Session-Token header; services only see values.
type CheckoutHandler struct {
	redemptions service.RedemptionService
	sessions    *session.Store
}

func NewCheckoutHandler(redemptions service.RedemptionService, sessions *session.Store) *CheckoutHandler {
	return &CheckoutHandler{redemptions: redemptions, sessions: sessions}
}

func sessionToken(c *gin.Context) (string, bool) {
	token := c.GetHeader("X-Session-Token")
	if token == "" {
		response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeSessionMissing, "X-Session-Token header is required")
		return "", false
	}
	return token, true
}

// Apply validates a gift card code against the cart and stores the
// resulting pending redemption in the shopper's session.
func (h *CheckoutHandler) Apply(c *gin.Context) {
	token, ok := sessionToken(c)
	if !ok {
		return
	}

	var req model.ApplyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	result, pending, err := h.redemptions.Apply(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// An invalid apply also clears whatever was applied before, so a
	// rejected second code never leaves the first one silently active.
	if result.Status != model.RedemptionValid {
		if err := h.sessions.Delete(c.Request.Context(), token); err != nil {
			logger.Error("Failed to clear pending redemption", err)
		}
		response.ErrorResponse(c, http.StatusUnprocessableEntity, model.ErrCodeNotRedeemable, result.Message)
		return
	}

	if err := h.sessions.Save(c.Request.Context(), token, pending); err != nil {
		logger.Error("Failed to store pending redemption", err)
		response.InternalServerError(c, "failed to store redemption")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"code":          pending.Code,
		"usable_amount": pending.Amount,
	})
}

// Reprice re-caps the session's pending redemption after the cart
// total changed, dropping it when the card is no longer valid.
func (h *CheckoutHandler) Reprice(c *gin.Context) {
	token, ok := sessionToken(c)
	if !ok {
		return
	}

	var req model.RepriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	pending, found, err := h.sessions.Get(c.Request.Context(), token)
	if err != nil {
		logger.Error("Failed to read pending redemption", err)
		response.InternalServerError(c, "failed to read redemption")
		return
	}
	if !found {
		response.NotFound(c, "no pending redemption for session")
		return
	}

	repriced, err := h.redemptions.Reprice(c.Request.Context(), *pending, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if repriced == nil {
		if err := h.sessions.Delete(c.Request.Context(), token); err != nil {
			logger.Error("Failed to drop stale redemption", err)
		}
		response.Success(c, http.StatusOK, gin.H{"removed": true})
		return
	}

	if err := h.sessions.Save(c.Request.Context(), token, repriced); err != nil {
		logger.Error("Failed to store repriced redemption", err)
		response.InternalServerError(c, "failed to store redemption")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"code":          repriced.Code,
		"usable_amount": repriced.Amount,
	})
}

// Remove clears the session's pending redemption.
func (h *CheckoutHandler) Remove(c *gin.Context) {
	token, ok := sessionToken(c)
	if !ok {
		return
	}

	if err := h.sessions.Delete(c.Request.Context(), token); err != nil {
		logger.Error("Failed to remove pending redemption", err)
		response.InternalServerError(c, "failed to remove redemption")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"removed": true})
}
