package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"giftcard-backend/internal/domains/giftcard/model"
	"giftcard-backend/internal/domains/giftcard/service"
	"giftcard-backend/internal/shared/response"
)

// AdminHandler serves the back-office card listing and detail views.
type AdminHandler struct {
	cards service.GiftCardService
}

func NewAdminHandler(cards service.GiftCardService) *AdminHandler {
	return &AdminHandler{cards: cards}
}

// ListCards returns a filtered, paginated card listing, newest first.
func (h *AdminHandler) ListCards(c *gin.Context) {
	filter := model.SearchFilter{
		Status: model.Status(c.Query("status")),
		Search: c.Query("search"),
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	cards, total, err := h.cards.ListCards(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, cards, &response.Meta{
		Page:  page,
		Limit: pageSize,
		Total: total,
	})
}

// GetCard returns one card by code.
func (h *AdminHandler) GetCard(c *gin.Context) {
	card, err := h.cards.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, card)
}

// AdjustBalance overwrites a card's remaining balance.
func (h *AdminHandler) AdjustBalance(c *gin.Context) {
	var req model.AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	card, err := h.cards.AdjustBalance(c.Request.Context(), c.Param("code"), req.RemainingAmount)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, card)
}
