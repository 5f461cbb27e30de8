package procurement

import (
	"context"
	"errors"
	"time"

	"github.com/commercehub/backoffice/internal/domain/fulfillment"
	"github.com/commercehub/backoffice/internal/domain/identity"
	"github.com/commercehub/backoffice/internal/domain/inventory"
	"github.com/commercehub/backoffice/internal/domain/procurement"
	"github.com/commercehub/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// In-memory collaborator fakes for service tests.

type fakeOrderRepo struct {
	orders map[uuid.UUID]*procurement.PurchaseOrder
	// storedStatus and storedVersion simulate the columns the guarded
	// writes check against; both default to the in-memory order at save
	storedStatus  map[uuid.UUID]procurement.Status
	storedVersion map[uuid.UUID]int
	saveErr       error
	finalizeCalls int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:        make(map[uuid.UUID]*procurement.PurchaseOrder),
		storedStatus:  make(map[uuid.UUID]procurement.Status),
		storedVersion: make(map[uuid.UUID]int),
	}
}

func (r *fakeOrderRepo) put(order *procurement.PurchaseOrder) {
	r.orders[order.ID] = order
	r.storedStatus[order.ID] = order.Status
	r.storedVersion[order.ID] = order.Version
}

func (r *fakeOrderRepo) Save(ctx context.Context, order *procurement.PurchaseOrder) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.put(order)
	return nil
}

func (r *fakeOrderRepo) SaveWithLock(ctx context.Context, order *procurement.PurchaseOrder, expectedVersion int) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	if r.storedVersion[order.ID] != expectedVersion {
		return shared.ErrConcurrencyConflict
	}
	r.put(order)
	return nil
}

func (r *fakeOrderRepo) FinalizeFromSubmitted(ctx context.Context, order *procurement.PurchaseOrder) error {
	r.finalizeCalls++
	if r.storedStatus[order.ID] != procurement.StatusSubmitted {
		return shared.ErrConcurrencyConflict
	}
	r.put(order)
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, brandID, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	order, ok := r.orders[id]
	if !ok || order.BrandID != brandID {
		return nil, shared.ErrNotFound
	}
	return order, nil
}

func (r *fakeOrderRepo) FindByPONumber(ctx context.Context, brandID uuid.UUID, poNumber string) (*procurement.PurchaseOrder, error) {
	for _, order := range r.orders {
		if order.BrandID == brandID && order.PONumber == poNumber {
			return order, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) List(ctx context.Context, brandID uuid.UUID, filter shared.Filter) (*shared.Paginated[procurement.PurchaseOrder], error) {
	items := make([]procurement.PurchaseOrder, 0)
	for _, order := range r.orders {
		if order.BrandID == brandID {
			items = append(items, *order)
		}
	}
	page := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &page, nil
}

func (r *fakeOrderRepo) CountByStatus(ctx context.Context, brandID uuid.UUID) (map[procurement.Status]int64, error) {
	counts := make(map[procurement.Status]int64)
	for _, order := range r.orders {
		if order.BrandID == brandID {
			counts[order.Status]++
		}
	}
	return counts, nil
}

func (r *fakeOrderRepo) ExistsByPONumber(ctx context.Context, brandID uuid.UUID, poNumber string) (bool, error) {
	_, err := r.FindByPONumber(ctx, brandID, poNumber)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeOrderRepo) Delete(ctx context.Context, brandID, id uuid.UUID) error {
	delete(r.orders, id)
	return nil
}

type fakeHistoryRepo struct {
	entries []procurement.ApprovalHistoryEntry
	saveErr error
}

func (r *fakeHistoryRepo) Save(ctx context.Context, entry *procurement.ApprovalHistoryEntry) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) Update(ctx context.Context, entry *procurement.ApprovalHistoryEntry) error {
	return nil
}

func (r *fakeHistoryRepo) FindByOrderID(ctx context.Context, brandID, orderID uuid.UUID) ([]procurement.ApprovalHistoryEntry, error) {
	out := make([]procurement.ApprovalHistoryEntry, 0)
	for _, e := range r.entries {
		if e.BrandID == brandID && e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeHistoryRepo) byAction(action procurement.HistoryAction) []procurement.ApprovalHistoryEntry {
	out := make([]procurement.ApprovalHistoryEntry, 0)
	for _, e := range r.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

type fakeBackorderRepo struct {
	saved   []procurement.Backorder
	saveErr error
}

func (r *fakeBackorderRepo) Save(ctx context.Context, backorder *procurement.Backorder) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	for idx := range r.saved {
		if r.saved[idx].ID == backorder.ID {
			r.saved[idx] = *backorder
			return nil
		}
	}
	r.saved = append(r.saved, *backorder)
	return nil
}

func (r *fakeBackorderRepo) FindByID(ctx context.Context, brandID, id uuid.UUID) (*procurement.Backorder, error) {
	for idx := range r.saved {
		if r.saved[idx].ID == id {
			return &r.saved[idx], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeBackorderRepo) FindByOrderID(ctx context.Context, brandID, orderID uuid.UUID) ([]procurement.Backorder, error) {
	out := make([]procurement.Backorder, 0)
	for _, b := range r.saved {
		if b.OrderID == orderID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBackorderRepo) ListOpen(ctx context.Context, brandID uuid.UUID, filter shared.Filter) (*shared.Paginated[procurement.Backorder], error) {
	open := make([]procurement.Backorder, 0)
	for _, b := range r.saved {
		if b.BrandID == brandID && b.IsOpen() {
			open = append(open, b)
		}
	}
	page := shared.NewPaginated(open, int64(len(open)), filter.Page, filter.PageSize)
	return &page, nil
}

type fakeFulfillmentRepo struct {
	saved   []fulfillment.Order
	saveErr error
}

func (r *fakeFulfillmentRepo) Save(ctx context.Context, order *fulfillment.Order) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, *order)
	return nil
}

func (r *fakeFulfillmentRepo) FindByID(ctx context.Context, brandID, id uuid.UUID) (*fulfillment.Order, error) {
	for idx := range r.saved {
		if r.saved[idx].ID == id {
			return &r.saved[idx], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeFulfillmentRepo) FindByPurchaseOrderID(ctx context.Context, brandID, purchaseOrderID uuid.UUID) ([]fulfillment.Order, error) {
	out := make([]fulfillment.Order, 0)
	for _, o := range r.saved {
		if o.PurchaseOrderID == purchaseOrderID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeFulfillmentRepo) List(ctx context.Context, brandID uuid.UUID, filter shared.Filter) (*shared.Paginated[fulfillment.Order], error) {
	page := shared.NewPaginated(r.saved, int64(len(r.saved)), filter.Page, filter.PageSize)
	return &page, nil
}

type fakeDirectory struct {
	actors map[uuid.UUID]*identity.Actor
}

func newFakeDirectory(actors ...*identity.Actor) *fakeDirectory {
	d := &fakeDirectory{actors: make(map[uuid.UUID]*identity.Actor)}
	for _, a := range actors {
		d.actors[a.ID] = a
	}
	return d
}

func (d *fakeDirectory) Resolve(ctx context.Context, actorID uuid.UUID) (*identity.Actor, error) {
	actor, ok := d.actors[actorID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return actor, nil
}

type fakeAllocator struct {
	stock        map[string]decimal.Decimal // by SKU
	items        map[uuid.UUID]*inventory.StockItem
	allocateErr  error
	failProducts map[uuid.UUID]error
	allocated    []uuid.UUID
}

func newFakeAllocator() *fakeAllocator {
	return &fakeAllocator{
		stock:        make(map[string]decimal.Decimal),
		items:        make(map[uuid.UUID]*inventory.StockItem),
		failProducts: make(map[uuid.UUID]error),
	}
}

func (a *fakeAllocator) Allocate(ctx context.Context, brandID, productID uuid.UUID, quantity decimal.Decimal) (*inventory.StockItem, error) {
	if a.allocateErr != nil {
		return nil, a.allocateErr
	}
	if err, ok := a.failProducts[productID]; ok {
		return nil, err
	}
	a.allocated = append(a.allocated, productID)
	if item, ok := a.items[productID]; ok {
		item.ReservedQuantity = item.ReservedQuantity.Add(quantity)
		return item, nil
	}
	return &inventory.StockItem{
		ProductID: productID,
		Quantity:  decimal.NewFromInt(1000),
	}, nil
}

func (a *fakeAllocator) SnapshotBySKUs(ctx context.Context, brandID uuid.UUID, skus []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	for _, sku := range skus {
		if qty, ok := a.stock[sku]; ok {
			out[sku] = qty
		}
	}
	return out, nil
}

type fakeCatalog struct {
	assignments map[uuid.UUID]*uuid.UUID // productID -> distributorID
}

func (c *fakeCatalog) DistributorFor(ctx context.Context, brandID, productID uuid.UUID) (*uuid.UUID, error) {
	if c.assignments == nil {
		return nil, nil
	}
	return c.assignments[productID], nil
}

type fakeNotifier struct {
	approvalNotices  int
	lastNotice       ApprovalNotice
	rejectionNotices int
	lowStockNotices  int
	backorderNotices int
	notifyErr        error
	backorderErr     error
}

func (n *fakeNotifier) NotifyApprovalComplete(ctx context.Context, notice ApprovalNotice) error {
	if n.notifyErr != nil {
		return n.notifyErr
	}
	n.approvalNotices++
	n.lastNotice = notice
	return nil
}

func (n *fakeNotifier) NotifyRejection(ctx context.Context, requesterID uuid.UUID, poNumber, reason string) error {
	n.rejectionNotices++
	return nil
}

func (n *fakeNotifier) NotifyLowStock(ctx context.Context, brandID uuid.UUID, alerts []inventory.LowStockAlert) error {
	n.lowStockNotices++
	return nil
}

func (n *fakeNotifier) NotifyBackorderCreated(ctx context.Context, brandID, backorderID uuid.UUID, poNumber, sku string, quantity decimal.Decimal) error {
	if n.backorderErr != nil {
		return n.backorderErr
	}
	n.backorderNotices++
	return nil
}

type fakeCalendar struct {
	scheduled   []time.Time
	scheduleErr error
}

func (c *fakeCalendar) ScheduleDeliveryReminder(ctx context.Context, brandID uuid.UUID, poNumber string, expectedDelivery time.Time) error {
	if c.scheduleErr != nil {
		return c.scheduleErr
	}
	c.scheduled = append(c.scheduled, expectedDelivery)
	return nil
}
