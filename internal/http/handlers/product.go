package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/marketplace-backend/internal/http/response"
	"github.com/yungbote/marketplace-backend/internal/platform/dbctx"
	"github.com/yungbote/marketplace-backend/internal/services"
)

type ProductHandler struct {
	catalog services.CatalogService
}

func NewProductHandler(catalog services.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

type productView struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Price          string     `json:"price"`
	InventoryCount int        `json:"inventory_count"`
	Category       string     `json:"category"`
	Description    string     `json:"description,omitempty"`
	SellerID       *uuid.UUID `json:"seller_id,omitempty"`
}

// GET /api/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil || productID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_product_id", err)
		return
	}
	p, err := h.catalog.GetProduct(dbctx.Background(c.Request.Context()), productID)
	if err != nil {
		respondServiceErr(c, err, "get_product_failed")
		return
	}
	response.RespondOK(c, gin.H{"product": productView{
		ID:             p.ID,
		Title:          p.Title,
		Price:          p.Price.StringFixed(2),
		InventoryCount: p.InventoryCount,
		Category:       p.Category,
		Description:    p.Description,
		SellerID:       p.SellerID,
	}})
}

// POST /api/products/:id/checkout
func (h *ProductHandler) CheckoutProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil || productID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_product_id", err)
		return
	}
	res, err := h.catalog.CheckoutProduct(c.Request.Context(), productID)
	if err != nil {
		respondServiceErr(c, err, "checkout_product_failed")
		return
	}
	response.RespondOK(c, inventoryView{
		ProductID:      res.ProductID,
		Decremented:    res.Decremented,
		InventoryCount: res.InventoryCount,
	})
}
