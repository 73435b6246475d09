package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"giftcard-backend/internal/domains/giftcard/model"
	"giftcard-backend/internal/domains/giftcard/service"
	"giftcard-backend/internal/domains/giftcard/session"
	"giftcard-backend/internal/shared/response"
	"giftcard-backend/pkg/logger"
)

// OrderHandler exposes the order-scoped workflows: issuing purchased
// cards, binding an applied redemption to an order, and settling it
// when payment completes.
type OrderHandler struct {
	issuance    service.IssuanceService
	redemptions service.RedemptionService
	cards       service.GiftCardService
	sessions    *session.Store
}

func NewOrderHandler(
	issuance service.IssuanceService,
	redemptions service.RedemptionService,
	cards service.GiftCardService,
	sessions *session.Store,
) *OrderHandler {
	return &OrderHandler{
		issuance:    issuance,
		redemptions: redemptions,
		cards:       cards,
		sessions:    sessions,
	}
}

func orderID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		response.BadRequest(c, "order_id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// IssueCards generates the gift cards purchased in an order. Safe to
// replay; a second call returns the original batch.
func (h *OrderHandler) IssueCards(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req model.IssueCardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	result, err := h.issuance.IssueCards(c.Request.Context(), id, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadyProcessed {
		status = http.StatusOK
	}
	response.Success(c, status, result)
}

// AttachRedemption copies the session's pending redemption onto the
// order. The explicit body wins over the session when both are given.
func (h *OrderHandler) AttachRedemption(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req model.AttachRedemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if req.Code == "" {
		token := c.GetHeader("X-Session-Token")
		if token == "" {
			response.BadRequest(c, "code or X-Session-Token is required")
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
		req.Code = pending.Code
		req.Amount = pending.Amount
	}

	if err := h.redemptions.AttachToOrder(c.Request.Context(), id, req); err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"order_id": id,
		"code":     req.Code,
		"amount":   req.Amount,
	})
}

// Finalize settles the order's pending redemption against the card
// balance. Safe to replay; a second call is a no-op.
func (h *OrderHandler) Finalize(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	result, err := h.redemptions.Finalize(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ListCards returns the gift cards issued by an order, oldest first.
func (h *OrderHandler) ListCards(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	cards, err := h.cards.ListByOrder(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, cards)
}
