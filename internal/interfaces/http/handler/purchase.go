package handler

import (
	"context"

	"github.com/distro/backoffice/internal/application/freeissue"
	"github.com/distro/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// PurchaseReader serves received bills and the stock they booked
type PurchaseReader interface {
	GetPurchase(ctx context.Context, businessID, purchaseID string) (*freeissue.PurchaseResponse, error)
	GetProductStock(ctx context.Context, productID string) (*freeissue.ProductStockResponse, error)
}

// PurchaseHandler handles purchase and stock lookups
type PurchaseHandler struct {
	BaseHandler
	service PurchaseReader
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(service PurchaseReader) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

// Get handles GET /api/:business/purchases/:id
//
//	@Summary		Get a purchase
//	@Tags			purchases
//	@Produce		json
//	@Param			business	path		string	true	"Business slug"
//	@Param			id			path		string	true	"Purchase ID"
//	@Success		200			{object}	dto.Response{data=freeissue.PurchaseResponse}
//	@Failure		404			{object}	dto.ErrorResponse
//	@Router			/api/{business}/purchases/{id} [get]
func (h *PurchaseHandler) Get(c *gin.Context) {
	purchase, err := h.service.GetPurchase(c.Request.Context(), middleware.GetBusinessID(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, purchase)
}

// ProductStock handles GET /api/:business/products/:product_id/stock
//
//	@Summary		Get product stock in the Main Warehouse
//	@Tags			products
//	@Produce		json
//	@Param			business	path		string	true	"Business slug"
//	@Param			product_id	path		string	true	"Product ID"
//	@Success		200			{object}	dto.Response{data=freeissue.ProductStockResponse}
//	@Failure		404			{object}	dto.ErrorResponse
//	@Router			/api/{business}/products/{product_id}/stock [get]
func (h *PurchaseHandler) ProductStock(c *gin.Context) {
	stock, err := h.service.GetProductStock(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}
