package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/distro/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLine struct {
	ProductID string          `json:"productId" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required,gt=0"`
}

type testBill struct {
	InvoiceNo string     `json:"invoiceNo" binding:"required,max=20"`
	Lines     []testLine `json:"billItems" binding:"required,dive"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()

	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req testBill
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBindError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func postJSON(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleBindError(t *testing.T) {
	router := newValidationRouter()

	t.Run("valid body passes", func(t *testing.T) {
		w := postJSON(router, `{"invoiceNo":"FREE-1","billItems":[{"productId":"P1","quantity":"10"}]}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("empty bill passes", func(t *testing.T) {
		w := postJSON(router, `{"invoiceNo":"FREE-1","billItems":[]}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing fields are reported with JSON names", func(t *testing.T) {
		w := postJSON(router, `{}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeError(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Code)
		fields := make([]string, 0, len(resp.Details))
		for _, d := range resp.Details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"invoiceNo", "billItems"}, fields)
	})

	t.Run("non-positive quantity is rejected with its path", func(t *testing.T) {
		w := postJSON(router, `{"invoiceNo":"FREE-1","billItems":[{"productId":"P1","quantity":5},{"productId":"P2","quantity":-1}]}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeError(t, w)
		require.Len(t, resp.Details, 1)
		assert.Equal(t, "billItems[1].quantity", resp.Details[0].Field)
		assert.Equal(t, "Must be greater than 0", resp.Details[0].Message)
	})

	t.Run("zero quantity counts as missing", func(t *testing.T) {
		w := postJSON(router, `{"invoiceNo":"FREE-1","billItems":[{"productId":"P1","quantity":0}]}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeError(t, w)
		require.Len(t, resp.Details, 1)
		assert.Equal(t, "This field is required", resp.Details[0].Message)
	})

	t.Run("non-numeric quantity is rejected", func(t *testing.T) {
		w := postJSON(router, `{"invoiceNo":"FREE-1","billItems":[{"productId":"P1","quantity":"ten"}]}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeError(t, w).Code)
	})

	t.Run("wrong JSON type names the field", func(t *testing.T) {
		w := postJSON(router, `{"invoiceNo":123,"billItems":[]}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeError(t, w)
		require.Len(t, resp.Details, 1)
		assert.Equal(t, "invoiceNo", resp.Details[0].Field)
		assert.Equal(t, "Must be a string", resp.Details[0].Message)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		w := postJSON(router, `{"invoiceNo":`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeError(t, w)
		assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Code)
		assert.Equal(t, "Request body is not valid JSON", resp.Error)
	})

	t.Run("string length limit", func(t *testing.T) {
		w := postJSON(router, `{"invoiceNo":"`+strings.Repeat("x", 21)+`","billItems":[]}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeError(t, w)
		require.Len(t, resp.Details, 1)
		assert.Equal(t, "Must be at most 20 characters", resp.Details[0].Message)
	})
}

func TestHandleBindError_BodyTooLarge(t *testing.T) {
	SetupValidator()

	router := gin.New()
	router.Use(BodyLimit(16))
	router.POST("/test", func(c *gin.Context) {
		var req testBill
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBindError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("POST", "/test", strings.NewReader(`{"invoiceNo":"FREE-1","billItems":[]}`))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
