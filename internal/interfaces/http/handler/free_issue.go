package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/distro/backoffice/internal/application/freeissue"
	"github.com/distro/backoffice/internal/domain/purchasing"
	"github.com/distro/backoffice/internal/domain/shared"
	"github.com/distro/backoffice/internal/interfaces/http/dto"
	"github.com/distro/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// purchaseDateLayouts are tried in order when parsing purchaseDate
var purchaseDateLayouts = []string{time.DateOnly, time.RFC3339}

// FreeIssueReceiver processes supplier free-issue bills
type FreeIssueReceiver interface {
	ReceiveFreeIssue(ctx context.Context, businessID string, in freeissue.ReceiveFreeIssueInput) (*freeissue.FreeIssueResult, error)
}

// LockContentionRecorder counts bills turned away because another bill held the lock
type LockContentionRecorder interface {
	RecordLockContention()
}

// FreeIssueHandler handles the free-issue bill endpoint
type FreeIssueHandler struct {
	BaseHandler
	service    FreeIssueReceiver
	contention LockContentionRecorder
}

// NewFreeIssueHandler creates a new FreeIssueHandler
func NewFreeIssueHandler(service FreeIssueReceiver) *FreeIssueHandler {
	return &FreeIssueHandler{service: service}
}

// SetLockContentionRecorder sets where lock contention is reported
func (h *FreeIssueHandler) SetLockContentionRecorder(r LockContentionRecorder) {
	h.contention = r
}

// FreeIssueBillRequest is the body of a free-issue bill.
// quantity accepts a JSON number or a numeric string.
type FreeIssueBillRequest struct {
	InvoiceNo        string            `json:"invoiceNo" binding:"required,max=100"`
	PurchaseDate     string            `json:"purchaseDate" binding:"required"`
	SupplierID       string            `json:"supplierId" binding:"required,max=100"`
	BillItems        []BillItemRequest `json:"billItems" binding:"required,dive"`
	ExplicitClaimIDs []string          `json:"explicitClaimIds" binding:"omitempty,dive,required"`
}

// BillItemRequest is one line of a free-issue bill
type BillItemRequest struct {
	ProductID string          `json:"productId" binding:"required,max=100"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required,gt=0"`
}

// ReceiveFreeIssue handles POST /api/:business/purchases/free
//
//	@Summary		Receive a free-issue supplier bill
//	@Description	Books free stock into the Main Warehouse and settles outstanding supplier entitlements
//	@Tags			purchases
//	@Accept			json
//	@Produce		json
//	@Param			business	path		string					true	"Business slug"
//	@Param			request		body		FreeIssueBillRequest	true	"Free-issue bill"
//	@Success		200			{object}	dto.Response{data=dto.FreeIssueResponse}
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		409			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/api/{business}/purchases/free [post]
func (h *FreeIssueHandler) ReceiveFreeIssue(c *gin.Context) {
	var req FreeIssueBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	purchaseDate, ok := parsePurchaseDate(req.PurchaseDate)
	if !ok {
		h.ValidationError(c, []dto.ValidationDetail{{
			Field:   "purchaseDate",
			Message: "Must be a date in YYYY-MM-DD or RFC3339 format",
		}})
		return
	}
	if details := quantityScaleErrors(req.BillItems); len(details) > 0 {
		h.ValidationError(c, details)
		return
	}

	result, err := h.service.ReceiveFreeIssue(c.Request.Context(), middleware.GetBusinessID(c), req.toInput(purchaseDate))
	if err != nil {
		if errors.Is(err, shared.ErrLockNotObtained) && h.contention != nil {
			h.contention.RecordLockContention()
		}
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FreeIssueResponse{
		Success:           true,
		PurchaseID:        result.PurchaseID,
		PurchaseReference: result.PurchaseReference,
		ClaimID:           result.ClaimID,
		ClaimNumber:       result.ClaimNumber,
		MatchedClaimIDs:   nonNil(result.MatchedClaimIDs),
		ClaimedItemIDs:    nonNil(result.ClaimedItemIDs),
	})
}

func (r FreeIssueBillRequest) toInput(purchaseDate time.Time) freeissue.ReceiveFreeIssueInput {
	lines := make([]freeissue.BillLine, len(r.BillItems))
	for i, item := range r.BillItems {
		lines[i] = freeissue.BillLine{
			ProductID: strings.TrimSpace(item.ProductID),
			Quantity:  item.Quantity,
		}
	}
	return freeissue.ReceiveFreeIssueInput{
		InvoiceNo:        strings.TrimSpace(r.InvoiceNo),
		PurchaseDate:     purchaseDate,
		SupplierID:       strings.TrimSpace(r.SupplierID),
		Lines:            lines,
		ExplicitClaimIDs: r.ExplicitClaimIDs,
	}
}

func parsePurchaseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range purchaseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// quantityScaleErrors reports lines whose quantity would be rounded when stored
func quantityScaleErrors(items []BillItemRequest) []dto.ValidationDetail {
	var details []dto.ValidationDetail
	for i, item := range items {
		if !purchasing.FitsQuantityScale(item.Quantity) {
			details = append(details, dto.ValidationDetail{
				Field:   fmt.Sprintf("billItems[%d].quantity", i),
				Message: "Must have at most 4 decimal places",
			})
		}
	}
	return details
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
