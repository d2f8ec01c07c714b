package freeissue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/distro/backoffice/internal/domain/claim"
	"github.com/distro/backoffice/internal/domain/inventory"
	"github.com/distro/backoffice/internal/domain/purchasing"
	"github.com/distro/backoffice/internal/domain/shared"
	"github.com/distro/backoffice/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DefaultLockKey serializes bills that may create supplier claims
	DefaultLockKey = "free-issue:claim-numbering"
	// DefaultLockTTL bounds how long a crashed holder can block other bills
	DefaultLockTTL = 30 * time.Second
)

// FreeIssueService receives supplier free-issue bills: it records the zero-cost purchase,
// books the stock into the Main Warehouse and closes the oldest outstanding free-goods
// entitlements under a new supplier claim.
type FreeIssueService struct {
	scope          TransactionScope
	reads          TransactionalRepositories
	locker         shared.Locker
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	lockKey        string
	lockTTL        time.Duration
	now            func() time.Time
}

// NewFreeIssueService creates a new FreeIssueService.
// scope runs bills; reads serves the read-only queries outside any transaction.
// locker may be nil, in which case bills are not serialized.
func NewFreeIssueService(
	scope TransactionScope,
	reads TransactionalRepositories,
	locker shared.Locker,
	logger *zap.Logger,
) *FreeIssueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FreeIssueService{
		scope:   scope,
		reads:   reads,
		locker:  locker,
		logger:  logger,
		lockKey: DefaultLockKey,
		lockTTL: DefaultLockTTL,
		now:     time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *FreeIssueService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLockOptions overrides the bill lock key and TTL
func (s *FreeIssueService) SetLockOptions(key string, ttl time.Duration) {
	if key != "" {
		s.lockKey = key
	}
	if ttl > 0 {
		s.lockTTL = ttl
	}
}

// ReceiveFreeIssue processes one free-issue bill for a business.
//
// The first failing step aborts the bill. Whether earlier steps survive depends on the
// transaction scope the service was built with.
func (s *FreeIssueService) ReceiveFreeIssue(ctx context.Context, businessID string, in ReceiveFreeIssueInput) (*FreeIssueResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "free_issue", "receive")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBusinessID, businessID,
		telemetry.SpanAttrInvoiceNo, in.InvoiceNo,
		telemetry.SpanAttrSupplierID, in.SupplierID,
		telemetry.SpanAttrLineCount, len(in.Lines),
	)

	result, err := s.receive(ctx, businessID, in)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPurchaseID, result.PurchaseID,
		telemetry.SpanAttrClaimNumber, result.ClaimNumber,
		telemetry.SpanAttrClaimItems, len(result.ClaimedItemIDs),
	)
	return result, nil
}

func (s *FreeIssueService) receive(ctx context.Context, businessID string, in ReceiveFreeIssueInput) (*FreeIssueResult, error) {
	if err := validateInput(businessID, in); err != nil {
		return nil, err
	}

	log := s.logger.With(
		zap.String("business_id", businessID),
		zap.String("invoice_no", in.InvoiceNo),
		zap.String("supplier_id", in.SupplierID),
	)

	if s.locker != nil {
		lock, err := s.locker.Obtain(ctx, s.lockKey, s.lockTTL)
		if err != nil {
			log.Warn("Failed to obtain free issue lock", zap.Error(err))
			return nil, err
		}
		defer func() {
			if relErr := lock.Release(context.WithoutCancel(ctx)); relErr != nil {
				log.Warn("Failed to release free issue lock", zap.Error(relErr))
			}
		}()
	}

	var (
		result   *FreeIssueResult
		purchase *purchasing.Purchase
		approved *claim.SupplierClaim
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		location, err := s.resolveMainWarehouse(ctx, repos.Locations())
		if err != nil {
			return err
		}

		purchase, err = s.recordPurchase(ctx, repos.Purchases(), businessID, in)
		if err != nil {
			return err
		}

		matched := make([]string, 0)
		for _, line := range in.Lines {
			ids, err := s.processLine(ctx, repos, purchase, location.ID, line)
			if err != nil {
				return err
			}
			matched = append(matched, ids...)
		}

		union := claim.UnionClaimIDs(in.ExplicitClaimIDs, matched)
		approved, err = s.closeClaimBatch(ctx, repos, businessID, in, union)
		if err != nil {
			return err
		}

		result = &FreeIssueResult{
			PurchaseID:        purchase.ID,
			PurchaseReference: purchase.PurchaseID,
			LocationID:        location.ID,
			MatchedClaimIDs:   claim.UnionClaimIDs(nil, matched),
			ClaimedItemIDs:    union,
		}
		if approved != nil {
			result.ClaimID = approved.ID
			result.ClaimNumber = approved.ClaimNumber
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to process free issue bill", zap.Error(err))
		return nil, err
	}

	log.Info("Free issue bill processed",
		zap.String("purchase_id", result.PurchaseID),
		zap.Int("lines", len(in.Lines)),
		zap.String("claim_number", result.ClaimNumber),
		zap.Int("claimed_items", len(result.ClaimedItemIDs)),
	)

	s.publishEvents(ctx, purchase, approved, in, len(result.ClaimedItemIDs))
	return result, nil
}

// resolveMainWarehouse returns the shared Main Warehouse, creating it on first use.
// Any failure is reported as ErrWarehouseUnavailable.
func (s *FreeIssueService) resolveMainWarehouse(ctx context.Context, repo inventory.LocationRepository) (*inventory.Location, error) {
	loc, err := repo.FindMainWarehouse(ctx)
	if err == nil {
		return loc, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		s.logger.Error("Failed to look up Main Warehouse", zap.Error(err))
		return nil, shared.ErrWarehouseUnavailable
	}

	if err := repo.Create(ctx, inventory.NewMainWarehouse()); err != nil {
		s.logger.Error("Failed to create Main Warehouse", zap.Error(err))
		return nil, shared.ErrWarehouseUnavailable
	}

	// Re-read so a row created concurrently by another request wins over ours.
	loc, err = repo.FindMainWarehouse(ctx)
	if err != nil {
		s.logger.Error("Main Warehouse missing after create", zap.Error(err))
		return nil, shared.ErrWarehouseUnavailable
	}
	s.logger.Info("Main Warehouse created", zap.String("location_id", loc.ID))
	return loc, nil
}

func (s *FreeIssueService) recordPurchase(ctx context.Context, repo purchasing.PurchaseRepository, businessID string, in ReceiveFreeIssueInput) (*purchasing.Purchase, error) {
	p, err := purchasing.NewFreeIssuePurchase(businessID, in.InvoiceNo, in.SupplierID, in.PurchaseDate)
	if err != nil {
		return nil, err
	}
	if err := repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// processLine books one bill line and returns the entitlements it settles.
func (s *FreeIssueService) processLine(ctx context.Context, repos TransactionalRepositories, p *purchasing.Purchase, locationID string, line BillLine) ([]string, error) {
	item, err := purchasing.NewFreeIssueItem(p.ID, line.ProductID, line.Quantity)
	if err != nil {
		return nil, err
	}
	if err := repos.Purchases().CreateItem(ctx, item); err != nil {
		return nil, err
	}
	if err := repos.Products().IncrementStock(ctx, line.ProductID, line.Quantity); err != nil {
		return nil, err
	}
	if err := repos.ProductStocks().Increment(ctx, line.ProductID, locationID, line.Quantity, s.now()); err != nil {
		return nil, err
	}

	outstanding, err := repos.OrderItems().FindUnclaimedByProduct(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}
	matched, remaining := claim.MatchFIFO(outstanding, line.Quantity)

	s.logger.Debug("Free issue line matched",
		zap.String("product_id", line.ProductID),
		zap.String("quantity", line.Quantity.String()),
		zap.Int("matched", len(matched)),
		zap.String("remaining", remaining.String()),
	)
	return matched, nil
}

// closeClaimBatch creates a claim for ids and approves them. Returns nil when ids is empty.
func (s *FreeIssueService) closeClaimBatch(ctx context.Context, repos TransactionalRepositories, businessID string, in ReceiveFreeIssueInput, ids []string) (*claim.SupplierClaim, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	count, err := repos.SupplierClaims().Count(ctx)
	if err != nil {
		return nil, err
	}

	c, err := claim.NewAutoClaim(claim.NextClaimNumber(count), in.SupplierID, businessID, in.InvoiceNo)
	if err != nil {
		return nil, err
	}
	if err := repos.SupplierClaims().Create(ctx, c); err != nil {
		return nil, err
	}

	updated, err := repos.OrderItems().MarkApproved(ctx, ids, c.ID)
	if err != nil {
		return nil, err
	}
	if updated != int64(len(ids)) {
		s.logger.Warn("Some claimed order items were not found",
			zap.String("claim_number", c.ClaimNumber),
			zap.Int("requested", len(ids)),
			zap.Int64("updated", updated),
		)
	}
	return c, nil
}

func (s *FreeIssueService) publishEvents(ctx context.Context, p *purchasing.Purchase, c *claim.SupplierClaim, in ReceiveFreeIssueInput, claimedItems int) {
	if s.eventPublisher == nil || p == nil {
		return
	}
	events := []shared.DomainEvent{
		purchasing.NewFreeIssueReceivedEvent(p, len(in.Lines), in.TotalUnits()),
	}
	if c != nil {
		events = append(events, claim.NewSupplierClaimApprovedEvent(c, claimedItems))
	}
	// Publish errors are logged by the event bus, not propagated
	_ = s.eventPublisher.Publish(ctx, events...)
}

// MainWarehouse returns the shared Main Warehouse, creating it on first use
func (s *FreeIssueService) MainWarehouse(ctx context.Context) (*LocationResponse, error) {
	loc, err := s.resolveMainWarehouse(ctx, s.reads.Locations())
	if err != nil {
		return nil, err
	}
	resp := ToLocationResponse(loc)
	return &resp, nil
}

// GetClaim returns a business's supplier claim with the order items grouped under it
func (s *FreeIssueService) GetClaim(ctx context.Context, businessID, claimID string) (*ClaimResponse, error) {
	c, err := s.reads.SupplierClaims().FindByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if c.BusinessID != businessID {
		return nil, shared.ErrNotFound
	}

	items, err := s.reads.OrderItems().FindByClaimBatch(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("load claim items: %w", err)
	}

	resp := ToClaimResponse(c)
	resp.Items = ToEntitlementResponses(items)
	return &resp, nil
}

// ListClaims returns a page of a business's supplier claims, newest first
func (s *FreeIssueService) ListClaims(ctx context.Context, businessID string, filter ClaimListFilter) (*shared.Paginated[ClaimResponse], error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	// Unknown sort fields fall back to creation order in the repository
	if filter.SortBy != "" {
		f.OrderBy = filter.SortBy
	}
	if filter.SortOrder != "" {
		f.OrderDir = filter.SortOrder
	}
	f.Filters["business_id"] = businessID
	if supplierID := strings.TrimSpace(filter.SupplierID); supplierID != "" {
		f.Filters["supplier_id"] = supplierID
	}

	claims, total, err := s.reads.SupplierClaims().List(ctx, f)
	if err != nil {
		return nil, err
	}

	items := make([]ClaimResponse, len(claims))
	for i := range claims {
		items[i] = ToClaimResponse(&claims[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// GetPurchase returns a business's purchase bill with its lines
func (s *FreeIssueService) GetPurchase(ctx context.Context, businessID, purchaseID string) (*PurchaseResponse, error) {
	p, err := s.reads.Purchases().FindByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if p.BusinessID != businessID {
		return nil, shared.ErrNotFound
	}

	items, err := s.reads.Purchases().FindItems(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("load purchase items: %w", err)
	}

	resp := ToPurchaseResponse(p, items)
	return &resp, nil
}

// GetProductStock returns a product's catalog stock next to its stock at the Main Warehouse.
// A product never received into the Main Warehouse reports a zero location quantity.
func (s *FreeIssueService) GetProductStock(ctx context.Context, productID string) (*ProductStockResponse, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product ID is required")
	}
	product, err := s.reads.Products().FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Product "+productID+" not found")
		}
		return nil, err
	}

	loc, err := s.resolveMainWarehouse(ctx, s.reads.Locations())
	if err != nil {
		return nil, err
	}

	resp := &ProductStockResponse{
		ProductID:        product.ID,
		Name:             product.Name,
		StockQuantity:    product.StockQuantity,
		LocationID:       loc.ID,
		LocationQuantity: decimal.Zero,
	}
	stock, err := s.reads.ProductStocks().FindByProductAndLocation(ctx, product.ID, loc.ID)
	switch {
	case err == nil:
		resp.LocationQuantity = stock.Quantity
		resp.LocationUpdatedAt = &stock.LastUpdated
	case !errors.Is(err, shared.ErrNotFound):
		return nil, fmt.Errorf("load location stock: %w", err)
	}
	return resp, nil
}

// ListOutstandingEntitlements returns a product's unclaimed entitlements in the order
// free stock would settle them
func (s *FreeIssueService) ListOutstandingEntitlements(ctx context.Context, productID string) ([]EntitlementResponse, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product ID is required")
	}
	items, err := s.reads.OrderItems().FindUnclaimedByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return ToEntitlementResponses(items), nil
}

func validateInput(businessID string, in ReceiveFreeIssueInput) error {
	if businessID == "" {
		return shared.NewDomainError("INVALID_INPUT", "Business is required")
	}
	if strings.TrimSpace(in.InvoiceNo) == "" {
		return shared.NewDomainError("INVALID_INPUT", "invoiceNo is required")
	}
	if strings.TrimSpace(in.SupplierID) == "" {
		return shared.NewDomainError("INVALID_INPUT", "supplierId is required")
	}
	if in.PurchaseDate.IsZero() {
		return shared.NewDomainError("INVALID_INPUT", "purchaseDate is required")
	}
	for i, line := range in.Lines {
		if strings.TrimSpace(line.ProductID) == "" {
			return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("billItems[%d].productId is required", i))
		}
		if !line.Quantity.IsPositive() {
			return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("billItems[%d].quantity must be positive", i))
		}
		if !purchasing.FitsQuantityScale(line.Quantity) {
			return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("billItems[%d].quantity has more than 4 decimal places", i))
		}
	}
	return nil
}
