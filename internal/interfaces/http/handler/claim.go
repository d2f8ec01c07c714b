package handler

import (
	"context"

	"github.com/distro/backoffice/internal/application/freeissue"
	"github.com/distro/backoffice/internal/domain/shared"
	"github.com/distro/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ClaimReader serves supplier claims and outstanding entitlements
type ClaimReader interface {
	GetClaim(ctx context.Context, businessID, claimID string) (*freeissue.ClaimResponse, error)
	ListClaims(ctx context.Context, businessID string, filter freeissue.ClaimListFilter) (*shared.Paginated[freeissue.ClaimResponse], error)
	ListOutstandingEntitlements(ctx context.Context, productID string) ([]freeissue.EntitlementResponse, error)
}

// ClaimHandler handles supplier claim endpoints
type ClaimHandler struct {
	BaseHandler
	service ClaimReader
}

// NewClaimHandler creates a new ClaimHandler
func NewClaimHandler(service ClaimReader) *ClaimHandler {
	return &ClaimHandler{service: service}
}

// List handles GET /api/:business/supplier-claims
//
//	@Summary		List supplier claims
//	@Tags			supplier-claims
//	@Produce		json
//	@Param			business	path		string	true	"Business slug"
//	@Param			supplier_id	query		string	false	"Filter by supplier"
//	@Param			page		query		int		false	"Page number"
//	@Param			page_size	query		int		false	"Page size"
//	@Param			sort_by		query		string	false	"Sort field"
//	@Param			sort_order	query		string	false	"asc or desc"
//	@Success		200			{object}	dto.Response{data=[]freeissue.ClaimResponse}
//	@Failure		400			{object}	dto.ErrorResponse
//	@Router			/api/{business}/supplier-claims [get]
func (h *ClaimHandler) List(c *gin.Context) {
	var filter freeissue.ClaimListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	page, err := h.service.ListClaims(c.Request.Context(), middleware.GetBusinessID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get handles GET /api/:business/supplier-claims/:id
//
//	@Summary		Get a supplier claim
//	@Tags			supplier-claims
//	@Produce		json
//	@Param			business	path		string	true	"Business slug"
//	@Param			id			path		string	true	"Claim ID"
//	@Success		200			{object}	dto.Response{data=freeissue.ClaimResponse}
//	@Failure		404			{object}	dto.ErrorResponse
//	@Router			/api/{business}/supplier-claims/{id} [get]
func (h *ClaimHandler) Get(c *gin.Context) {
	claim, err := h.service.GetClaim(c.Request.Context(), middleware.GetBusinessID(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, claim)
}

// OutstandingEntitlements handles GET /api/:business/products/:product_id/free-entitlements
//
//	@Summary		List outstanding free-issue entitlements for a product
//	@Tags			products
//	@Produce		json
//	@Param			business	path		string	true	"Business slug"
//	@Param			product_id	path		string	true	"Product ID"
//	@Success		200			{object}	dto.Response{data=[]freeissue.EntitlementResponse}
//	@Router			/api/{business}/products/{product_id}/free-entitlements [get]
func (h *ClaimHandler) OutstandingEntitlements(c *gin.Context) {
	items, err := h.service.ListOutstandingEntitlements(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
