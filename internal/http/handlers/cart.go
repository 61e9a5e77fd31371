package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/marketplace-backend/internal/domain/aggregates"
	"github.com/yungbote/marketplace-backend/internal/http/response"
	"github.com/yungbote/marketplace-backend/internal/platform/apierr"
	"github.com/yungbote/marketplace-backend/internal/services"
)

type CartHandler struct {
	carts services.CartService
}

func NewCartHandler(carts services.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type addEntryRequest struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity" binding:"required"`
}

type updateEntryRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// GET /api/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.carts.GetMyCart(c.Request.Context())
	if err != nil {
		respondServiceErr(c, err, "get_cart_failed")
		return
	}
	response.RespondOK(c, gin.H{"cart": view})
}

// POST /api/cart/entries
func (h *CartHandler) AddEntry(c *gin.Context) {
	var req addEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		response.RespondError(c, http.StatusBadRequest, string(domainagg.CodeInvalidQuantity), err)
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil || productID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_product_id", err)
		return
	}
	res, err := h.carts.AddEntry(c.Request.Context(), productID, *req.Quantity)
	if err != nil {
		respondServiceErr(c, err, "add_entry_failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": toEntryView(res.Entry), "cart": toTotalsView(res.Cart)})
}

// PATCH /api/cart/entries/:id
func (h *CartHandler) UpdateEntry(c *gin.Context) {
	entryID, err := entryIDParam(c)
	if err != nil {
		respondServiceErr(c, err, "")
		return
	}
	var req updateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		response.RespondError(c, http.StatusBadRequest, string(domainagg.CodeInvalidQuantity), err)
		return
	}
	res, err := h.carts.UpdateEntry(c.Request.Context(), entryID, *req.Quantity)
	if err != nil {
		respondServiceErr(c, err, "update_entry_failed")
		return
	}
	response.RespondOK(c, gin.H{"entry": toEntryView(res.Entry), "cart": toTotalsView(res.Cart)})
}

// DELETE /api/cart/entries/:id
func (h *CartHandler) DeleteEntry(c *gin.Context) {
	entryID, err := entryIDParam(c)
	if err != nil {
		respondServiceErr(c, err, "")
		return
	}
	res, err := h.carts.DeleteEntry(c.Request.Context(), entryID)
	if err != nil {
		respondServiceErr(c, err, "delete_entry_failed")
		return
	}
	response.RespondOK(c, gin.H{"cart": toTotalsView(res.Cart)})
}

// POST /api/cart/entries/:id/checkout
func (h *CartHandler) CheckoutEntry(c *gin.Context) {
	entryID, err := entryIDParam(c)
	if err != nil {
		respondServiceErr(c, err, "")
		return
	}
	res, err := h.carts.CheckoutEntry(c.Request.Context(), entryID)
	if err != nil {
		respondServiceErr(c, err, "checkout_entry_failed")
		return
	}
	response.RespondOK(c, toCheckoutEntryView(res))
}

// POST /api/cart/checkout
// A partial checkout still commits the eligible entries and answers 200 with partial=true.
func (h *CartHandler) CheckoutCart(c *gin.Context) {
	res, err := h.carts.CheckoutCart(c.Request.Context())
	if err != nil && !domainagg.IsCode(err, domainagg.CodePartialCheckout) {
		respondServiceErr(c, err, "checkout_cart_failed")
		return
	}
	response.RespondOK(c, toCheckoutCartView(res))
}

func entryIDParam(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apierr.BadRequest("invalid_entry_id", err)
	}
	return id, nil
}

func respondServiceErr(c *gin.Context, err error, fallbackCode string) {
	if errors.Is(err, services.ErrUnauthorized) {
		err = apierr.Unauthorized(err)
	}
	_ = c.Error(err)
	response.RespondErr(c, err, fallbackCode)
}
