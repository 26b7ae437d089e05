package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"resto-backend/internal/metrics"
	"resto-backend/internal/models"
	"resto-backend/internal/repositories"
	"resto-backend/internal/tillcore"
	"resto-backend/internal/timeutil"
)

// OrderNotifier publishes order events for the kitchen order board.
// A nil notifier disables publishing.
type OrderNotifier interface {
	PublishOrderEvent(ctx context.Context, event *models.OrderEvent)
}

type OrderService struct {
	Orders     *repositories.OrderRepository
	Products   *repositories.ProductRepository
	feePercent decimal.Decimal
	notifier   OrderNotifier
}

func NewOrderService(orders *repositories.OrderRepository, products *repositories.ProductRepository, serviceFeePercent decimal.Decimal) *OrderService {
	if serviceFeePercent.IsZero() {
		serviceFeePercent = tillcore.DefaultServiceFeePercent
	}
	return &OrderService{
		Orders:     orders,
		Products:   products,
		feePercent: serviceFeePercent,
	}
}

// SetNotifier wires the order-event publisher
func (s *OrderService) SetNotifier(n OrderNotifier) {
	s.notifier = n
}

// Open returns the table's active order, creating one if none exists.
// Opening a tab twice for the same table is a no-op.
func (s *OrderService) Open(ctx context.Context, restaurantID int, req *models.CreateOrderRequest) (*models.Order, error) {
	existing, err := s.Orders.GetActiveByTable(ctx, restaurantID, req.TableID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	order := &models.Order{
		RestaurantID:  restaurantID,
		TableID:       req.TableID,
		CustomerName:  req.CustomerName,
		Status:        models.OrderStatusActive,
		PaymentStatus: models.PaymentStatusUnpaid,
		CreatedAt:     timeutil.Now(),
	}
	if err := s.Orders.Create(ctx, order); err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	s.publish(ctx, order, "created")
	return order, nil
}

// Get loads an order with its lines
func (s *OrderService) Get(ctx context.Context, orderID int) (*models.Order, error) {
	return s.Orders.Get(ctx, orderID)
}

// ListActive lists a restaurant's open tabs
func (s *OrderService) ListActive(ctx context.Context, restaurantID int) ([]models.Order, error) {
	return s.Orders.ListActive(ctx, restaurantID)
}

// ActiveForTable fetches a table's open tab, or nil
func (s *OrderService) ActiveForTable(ctx context.Context, restaurantID, tableID int) (*models.Order, error) {
	return s.Orders.GetActiveByTable(ctx, restaurantID, tableID)
}

// AddItem appends a product selection to an order. The unit price snapshots
// the product's base price plus the chosen extras; an identical selection
// (product, observation, extras set) merges into the existing line instead of
// creating a duplicate. Totals are recomputed before returning.
func (s *OrderService) AddItem(ctx context.Context, orderID int, req *models.AddItemRequest) (*models.OrderItem, error) {
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	order, err := s.mutableOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	product, err := s.Products.Get(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("product %d not found", req.ProductID)
	}

	extras, err := selectExtras(product, req.ExtraIDs)
	if err != nil {
		return nil, err
	}

	var item *models.OrderItem
	if idx := tillcore.FindMergeLine(order.Items, &product.ID, req.Observation, extras); idx >= 0 {
		merged := &order.Items[idx]
		merged.Quantity += req.Quantity
		if err := s.Orders.UpdateItemQuantity(ctx, merged.ID, merged.Quantity); err != nil {
			return nil, err
		}
		item = merged
	} else {
		item = &models.OrderItem{
			OrderID:     order.ID,
			ProductID:   &product.ID,
			Name:        product.Name,
			UnitPrice:   tillcore.UnitPrice(product.BasePrice, extras).Round(2),
			Quantity:    req.Quantity,
			Observation: req.Observation,
			Extras:      extras,
			CreatedAt:   timeutil.Now(),
		}
		if err := s.Orders.CreateItem(ctx, item); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, *item)
	}

	if err := s.writeTotals(ctx, order); err != nil {
		return nil, err
	}
	s.publish(ctx, order, "items_changed")
	return item, nil
}

// RemoveItem deletes a line. An order left with zero lines stays in place;
// cancelling is the caller's call.
func (s *OrderService) RemoveItem(ctx context.Context, orderID, itemID int) error {
	order, err := s.mutableOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if err := s.Orders.DeleteItem(ctx, order.ID, itemID); err != nil {
		return err
	}
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			order.Items = append(order.Items[:i], order.Items[i+1:]...)
			break
		}
	}
	if err := s.writeTotals(ctx, order); err != nil {
		return err
	}
	s.publish(ctx, order, "items_changed")
	return nil
}

// ChangeQuantity sets a line's quantity; zero or less removes the line
func (s *OrderService) ChangeQuantity(ctx context.Context, orderID, itemID, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, orderID, itemID)
	}

	order, err := s.mutableOrder(ctx, orderID)
	if err != nil {
		return err
	}
	found := false
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			order.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("item %d not found on order %d", itemID, orderID)
	}
	if err := s.Orders.UpdateItemQuantity(ctx, itemID, quantity); err != nil {
		return err
	}
	if err := s.writeTotals(ctx, order); err != nil {
		return err
	}
	s.publish(ctx, order, "items_changed")
	return nil
}

// RecomputeTotals re-derives subtotal, service fee and total from the
// current lines and persists them. Item mutations already do this; the
// standalone call exists as a repair path.
func (s *OrderService) RecomputeTotals(ctx context.Context, orderID int) (*models.Order, error) {
	order, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %d not found", orderID)
	}
	if err := s.writeTotals(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus moves an order through the state machine
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int, to models.OrderStatus) (*models.Order, error) {
	order, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %d not found", orderID)
	}
	if err := CanTransitionOrder(order.Status, to); err != nil {
		return nil, err
	}
	if err := s.Orders.UpdateStatus(ctx, orderID, to); err != nil {
		return nil, err
	}
	order.Status = to

	kind := "status_changed"
	if to == models.OrderStatusCancelled {
		kind = "cancelled"
	}
	s.publish(ctx, order, kind)
	return order, nil
}

// Cancel terminally cancels an unpaid order
func (s *OrderService) Cancel(ctx context.Context, orderID int) (*models.Order, error) {
	order, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %d not found", orderID)
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil, fmt.Errorf("order %d is already paid", orderID)
	}
	return s.UpdateStatus(ctx, orderID, models.OrderStatusCancelled)
}

func (s *OrderService) mutableOrder(ctx context.Context, orderID int) (*models.Order, error) {
	order, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %d not found", orderID)
	}
	if !orderMutable(order) {
		return nil, fmt.Errorf("order %d can no longer be modified (status=%s, payment=%s)",
			orderID, order.Status, order.PaymentStatus)
	}
	return order, nil
}

func (s *OrderService) writeTotals(ctx context.Context, order *models.Order) error {
	subtotal, fee, total := tillcore.Totals(order.Items, s.feePercent)
	order.Subtotal = subtotal
	order.ServiceFee = fee
	order.TotalAmount = total
	return s.Orders.UpdateTotals(ctx, order.ID, subtotal, fee, total)
}

func (s *OrderService) publish(ctx context.Context, order *models.Order, kind string) {
	if s.notifier == nil {
		return
	}
	s.notifier.PublishOrderEvent(ctx, &models.OrderEvent{
		OrderID:      order.ID,
		TableID:      order.TableID,
		RestaurantID: order.RestaurantID,
		Kind:         kind,
		Status:       order.Status,
		At:           timeutil.Now(),
	})
}

// selectExtras snapshots the chosen extras off the product catalog. Unknown
// extra ids fail fast; the order line must never reference live rows.
func selectExtras(product *models.Product, extraIDs []int) ([]models.ItemExtra, error) {
	if len(extraIDs) == 0 {
		return nil, nil
	}
	byID := make(map[int]models.ProductExtra, len(product.Extras))
	for _, x := range product.Extras {
		byID[x.ID] = x
	}
	extras := make([]models.ItemExtra, 0, len(extraIDs))
	seen := make(map[int]bool, len(extraIDs))
	for _, id := range extraIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		x, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("extra %d does not belong to product %d", id, product.ID)
		}
		extras = append(extras, models.ItemExtra{ID: x.ID, Name: x.Name, Price: x.Price})
	}
	return extras, nil
}
