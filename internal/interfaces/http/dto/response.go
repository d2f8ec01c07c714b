package dto

// Response represents a standard success response
type Response struct {
	Success bool  `json:"success"`
	Data    any   `json:"data,omitempty"`
	Meta    *Meta `json:"meta,omitempty"`
}

// ErrorResponse is the body of every failed request. Error carries the message
// clients display; Code and RequestID help correlate it with server logs.
type ErrorResponse struct {
	Error     string             `json:"error"`
	Code      string             `json:"code,omitempty"`
	RequestID string             `json:"requestId,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes one invalid request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta represents pagination metadata
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// DefaultPageSize is used when a caller passes a non-positive page size
const DefaultPageSize = 20

// NewSuccessResponseWithMeta creates a success response with pagination meta
func NewSuccessResponseWithMeta(data any, total int64, page, pageSize int) Response {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message, requestID string) ErrorResponse {
	return ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestID,
	}
}

// NewValidationErrorResponse creates an error response listing invalid fields
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) ErrorResponse {
	return ErrorResponse{
		Error:     message,
		Code:      ErrCodeValidation,
		RequestID: requestID,
		Details:   details,
	}
}

// FreeIssueResponse is the body of a processed free-issue bill.
// ClaimID and ClaimNumber are omitted when no order item was claimed.
type FreeIssueResponse struct {
	Success           bool     `json:"success"`
	PurchaseID        string   `json:"purchaseId"`
	PurchaseReference string   `json:"purchaseReference"`
	ClaimID           string   `json:"claimId,omitempty"`
	ClaimNumber       string   `json:"claimNumber,omitempty"`
	MatchedClaimIDs   []string `json:"matchedClaimIds"`
	ClaimedItemIDs    []string `json:"claimedItemIds"`
}

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}
