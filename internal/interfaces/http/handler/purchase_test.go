package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/distro/backoffice/internal/application/freeissue"
	"github.com/distro/backoffice/internal/domain/shared"
	"github.com/distro/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPurchaseReader is a mock implementation of PurchaseReader
type MockPurchaseReader struct {
	mock.Mock
}

func (m *MockPurchaseReader) GetPurchase(ctx context.Context, businessID, purchaseID string) (*freeissue.PurchaseResponse, error) {
	args := m.Called(ctx, businessID, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*freeissue.PurchaseResponse), args.Error(1)
}

func (m *MockPurchaseReader) GetProductStock(ctx context.Context, productID string) (*freeissue.ProductStockResponse, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*freeissue.ProductStockResponse), args.Error(1)
}

func setupPurchaseRouter(h *PurchaseHandler) *gin.Engine {
	r := gin.New()
	g := r.Group("/api/:business", withBusiness("wireman"))
	g.GET("/purchases/:id", h.Get)
	g.GET("/products/:product_id/stock", h.ProductStock)
	return r
}

func TestPurchaseHandler_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := new(MockPurchaseReader)
		svc.On("GetPurchase", mock.Anything, "wireman", "pur-1").Return(&freeissue.PurchaseResponse{
			ID:        "pur-1",
			InvoiceNo: "INV-9",
			FreeIssue: true,
			Items:     []freeissue.PurchaseItemResponse{{ID: "line-1", ProductID: "P1", Quantity: decimal.NewFromInt(4)}},
		}, nil)

		w := getJSON(setupPurchaseRouter(NewPurchaseHandler(svc)), "/api/wireman/purchases/pur-1")

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp struct {
			Data freeissue.PurchaseResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Data.FreeIssue)
		require.Len(t, resp.Data.Items, 1)
		assert.Equal(t, "P1", resp.Data.Items[0].ProductID)
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockPurchaseReader)
		svc.On("GetPurchase", mock.Anything, "wireman", "nope").Return(nil, shared.ErrNotFound)

		w := getJSON(setupPurchaseRouter(NewPurchaseHandler(svc)), "/api/wireman/purchases/nope")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPurchaseHandler_ProductStock(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := new(MockPurchaseReader)
		svc.On("GetProductStock", mock.Anything, "P1").Return(&freeissue.ProductStockResponse{
			ProductID:        "P1",
			StockQuantity:    decimal.NewFromInt(60),
			LocationID:       "loc-main",
			LocationQuantity: decimal.NewFromInt(10),
		}, nil)

		w := getJSON(setupPurchaseRouter(NewPurchaseHandler(svc)), "/api/wireman/products/P1/stock")

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp struct {
			Data freeissue.ProductStockResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Data.LocationQuantity.Equal(decimal.NewFromInt(10)))
	})

	t.Run("unknown product", func(t *testing.T) {
		svc := new(MockPurchaseReader)
		svc.On("GetProductStock", mock.Anything, "P9").Return(nil, shared.NewDomainError("NOT_FOUND", "Product P9 not found"))

		w := getJSON(setupPurchaseRouter(NewPurchaseHandler(svc)), "/api/wireman/products/P9/stock")

		require.Equal(t, http.StatusNotFound, w.Code)
		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Product P9 not found", resp.Error)
	})
}
