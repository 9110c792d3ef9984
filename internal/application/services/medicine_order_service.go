package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/pricing"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
	"github.com/zatekoja/healthmarket/internal/infrastructure/observability"
	"github.com/zatekoja/healthmarket/pkg/config"
	apperrors "github.com/zatekoja/healthmarket/pkg/errors"
	"github.com/zatekoja/healthmarket/pkg/money"
	"github.com/zatekoja/healthmarket/pkg/utils"
)

// MaxQuantityPerLine caps the units of one medicine in a cart, counted
// after duplicate lines are merged
const MaxQuantityPerLine = 100

// maxOrderSubtotal is ₹100 crore. Carts above it are refused so totals and
// GST stay far from int64 overflow.
const maxOrderSubtotal = money.Paise(100_000_000_000)

// CartItem is one line of the checkout cart
type CartItem struct {
	MedicineID int64 `json:"medicine_id"`
	Quantity   int   `json:"quantity"`
}

// PlaceOrderInput is the checkout request. Either AddressID or Address
// must be set; fees left nil take the configured defaults.
type PlaceOrderInput struct {
	UserID      int64
	Items       []CartItem
	AddressID   int64
	Address     *entities.Address
	DeliveryFee *money.Paise
	PromiseFee  *money.Paise
}

// MedicineOrderService handles pharmacy checkout and order tracking
type MedicineOrderService struct {
	lifecycle
	orders    repositories.MedicineOrderRepository
	medicines repositories.MedicineRepository
	addresses repositories.AddressRepository
	pricing   config.PricingConfig
}

// NewMedicineOrderService creates a new medicine order service
func NewMedicineOrderService(
	orders repositories.MedicineOrderRepository,
	medicines repositories.MedicineRepository,
	addresses repositories.AddressRepository,
	pricingCfg config.PricingConfig,
) *MedicineOrderService {
	return &MedicineOrderService{
		lifecycle: newLifecycle(),
		orders:    orders,
		medicines: medicines,
		addresses: addresses,
		pricing:   pricingCfg,
	}
}

// QuoteCart prices a cart without placing an order
func (s *MedicineOrderService) QuoteCart(ctx context.Context, items []CartItem) (pricing.CartTotals, error) {
	lines, err := s.resolveCart(ctx, items)
	if err != nil {
		return pricing.CartTotals{}, err
	}
	return s.price(lines, nil, nil), nil
}

// PlaceOrder resolves every cart line, prices the cart and stores a
// Processing order. A missing medicine aborts before anything is written.
func (s *MedicineOrderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*entities.MedicineOrder, error) {
	if input.DeliveryFee != nil && *input.DeliveryFee < 0 {
		return nil, apperrors.NewValidationError("delivery fee must not be negative")
	}
	if input.PromiseFee != nil && *input.PromiseFee < 0 {
		return nil, apperrors.NewValidationError("promise fee must not be negative")
	}

	items, err := s.resolveCart(ctx, input.Items)
	if err != nil {
		return nil, err
	}
	address, err := resolveAddress(ctx, s.addresses, input.UserID, input.AddressID, input.Address)
	if err != nil {
		return nil, err
	}

	totals := s.price(items, input.DeliveryFee, input.PromiseFee)
	now := s.now()
	order := &entities.MedicineOrder{
		UserID:          input.UserID,
		Items:           items,
		DeliveryAddress: address,
		Subtotal:        totals.Subtotal,
		Savings:         totals.Savings,
		GST:             totals.GST,
		DeliveryFee:     totals.DeliveryFee,
		PromiseFee:      totals.PromiseFee,
		TotalAmount:     totals.Total,
		Status:          entities.OrderStatusProcessing,
		OrderDate:       now,
	}
	order.Track(entities.TrackingOrderPlaced, now, "")

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Int64("order_id", order.ID).
		Int64("user_id", order.UserID).
		Int("items", order.ItemCount()).
		Str("total", order.TotalAmount.String()).
		Msg("medicine order placed")
	observability.RecordBooking(ctx, s.metrics, string(entities.OrderKindMedicineOrder), int64(order.TotalAmount))
	s.publish(ctx, entities.NewOrderEvent(entities.OrderKindMedicineOrder, order.ID, order.UserID,
		entities.OrderEventCreated, string(order.Status), entities.TrackingOrderPlaced, now))

	return order, nil
}

// GetOrder returns an order visible to the requester
func (s *MedicineOrderService) GetOrder(ctx context.Context, req Requester, id int64) (*entities.MedicineOrder, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.CanAccess(order.UserID) {
		return nil, notFoundFor("order")
	}
	return order, nil
}

// ListOrders lists orders newest first; patients only see their own
func (s *MedicineOrderService) ListOrders(ctx context.Context, req Requester, filter repositories.OrderFilter) ([]*entities.MedicineOrder, error) {
	if !req.Role.IsStaff() {
		filter.UserID = req.UserID
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown order status %q", filter.Status))
	}
	return s.orders.List(ctx, filter)
}

// UpdateOrderStatus sets the status and appends one tracking entry
func (s *MedicineOrderService) UpdateOrderStatus(ctx context.Context, id int64, status entities.OrderStatus, notes string) (*entities.MedicineOrder, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown order status %q", status))
	}

	now := s.now()
	order, err := s.orders.Modify(ctx, id, func(order *entities.MedicineOrder) error {
		if s.pricing.StrictTransitions && !order.Status.CanTransitionTo(status) {
			return apperrors.NewConflictError(fmt.Sprintf("order cannot move from %s to %s", order.Status, status))
		}
		order.Status = status
		order.Track(string(status), now, strings.TrimSpace(notes))
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.RecordStatusChange(ctx, s.metrics, string(entities.OrderKindMedicineOrder), string(status))
	s.publish(ctx, entities.NewOrderEvent(entities.OrderKindMedicineOrder, order.ID, order.UserID,
		entities.OrderEventStatusChanged, string(status), notes, now))
	return order, nil
}

// AssignDelivery sets the courier and appends a tracking entry
func (s *MedicineOrderService) AssignDelivery(ctx context.Context, id int64, person entities.DeliveryPerson) (*entities.MedicineOrder, error) {
	person, err := validateDeliveryPerson(person)
	if err != nil {
		return nil, err
	}

	now := s.now()
	notes := "Out for delivery with " + person.Name
	order, err := s.orders.Modify(ctx, id, func(order *entities.MedicineOrder) error {
		if order.Status == entities.OrderStatusCancelled {
			return apperrors.NewConflictError("order is cancelled")
		}
		order.DeliveryBoy = &person
		order.Track(string(order.Status), now, notes)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, entities.NewOrderEvent(entities.OrderKindMedicineOrder, order.ID, order.UserID,
		entities.OrderEventDeliveryAssigned, string(order.Status), notes, now))
	return order, nil
}

// CancelOrder lets the owner cancel an order that has not shipped yet
func (s *MedicineOrderService) CancelOrder(ctx context.Context, req Requester, id int64, reason string) (*entities.MedicineOrder, error) {
	now := s.now()
	reason = strings.TrimSpace(reason)
	order, err := s.orders.Modify(ctx, id, func(order *entities.MedicineOrder) error {
		if !req.CanAccess(order.UserID) {
			return notFoundFor("order")
		}
		if order.Status != entities.OrderStatusProcessing {
			return apperrors.NewConflictError(fmt.Sprintf("order is already %s", order.Status))
		}
		order.Status = entities.OrderStatusCancelled
		order.CancellationReason = reason
		order.Track(string(order.Status), now, reason)
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.RecordStatusChange(ctx, s.metrics, string(entities.OrderKindMedicineOrder), string(order.Status))
	s.publish(ctx, entities.NewOrderEvent(entities.OrderKindMedicineOrder, order.ID, order.UserID,
		entities.OrderEventCancelled, string(order.Status), reason, now))
	return order, nil
}

// resolveCart merges duplicate lines and snapshots name and prices
func (s *MedicineOrderService) resolveCart(ctx context.Context, cart []CartItem) ([]entities.OrderItem, error) {
	if len(cart) == 0 {
		return nil, apperrors.NewValidationError("cart is empty")
	}

	quantities := make(map[int64]int, len(cart))
	var order []int64
	for _, item := range cart {
		if item.Quantity < 1 {
			return nil, apperrors.NewValidationError("quantity must be at least 1")
		}
		if item.Quantity > MaxQuantityPerLine {
			return nil, apperrors.NewValidationError(fmt.Sprintf("quantity must be at most %d", MaxQuantityPerLine))
		}
		if _, seen := quantities[item.MedicineID]; !seen {
			order = append(order, item.MedicineID)
		}
		quantities[item.MedicineID] += item.Quantity
		if quantities[item.MedicineID] > MaxQuantityPerLine {
			return nil, apperrors.NewValidationError(fmt.Sprintf("quantity must be at most %d", MaxQuantityPerLine))
		}
	}

	items := make([]entities.OrderItem, 0, len(order))
	var subtotal, mrpTotal money.Paise
	for _, id := range order {
		medicine, err := s.medicines.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		line, ok := medicine.Price.CheckedTimes(quantities[id])
		mrpLine, mrpOK := medicine.MRP.CheckedTimes(quantities[id])
		if !ok || !mrpOK {
			return nil, apperrors.NewValidationError("cart total is too large")
		}
		subtotal += line
		mrpTotal += mrpLine
		if subtotal > maxOrderSubtotal || mrpTotal > maxOrderSubtotal {
			return nil, apperrors.NewValidationError("cart total is too large")
		}
		items = append(items, entities.OrderItem{
			MedicineID:   medicine.ID,
			MedicineName: medicine.Name,
			Quantity:     quantities[id],
			Price:        medicine.Price,
			MRP:          medicine.MRP,
		})
	}
	return items, nil
}

func (s *MedicineOrderService) price(items []entities.OrderItem, deliveryFee, promiseFee *money.Paise) pricing.CartTotals {
	lines := make([]pricing.Line, len(items))
	var subtotal money.Paise
	for i, item := range items {
		lines[i] = pricing.Line{Price: item.Price, MRP: item.MRP, Quantity: item.Quantity}
		subtotal += item.Price.Times(item.Quantity)
	}

	delivery := pricing.DeliveryFeeFor(subtotal, pricing.DeliveryRules{
		Fee:           s.pricing.DeliveryFee,
		FreeThreshold: s.pricing.FreeDeliveryThreshold,
	})
	if deliveryFee != nil {
		delivery = *deliveryFee
	}
	promise := s.pricing.PromiseFee
	if promiseFee != nil {
		promise = *promiseFee
	}
	return pricing.Cart(lines, delivery, promise, s.pricing.GSTRate)
}

// resolveAddress returns a copy of the saved address or validates an inline one
func resolveAddress(ctx context.Context, addresses repositories.AddressRepository, userID, addressID int64, inline *entities.Address) (entities.Address, error) {
	if addressID != 0 {
		saved, err := addresses.GetByID(ctx, addressID)
		if err != nil {
			return entities.Address{}, err
		}
		if saved.UserID != userID {
			return entities.Address{}, notFoundFor("address")
		}
		return *saved, nil
	}
	if inline == nil {
		return entities.Address{}, apperrors.NewValidationError("delivery address is required")
	}
	address := *inline
	address.UserID = userID
	if err := validateAddress(&address); err != nil {
		return entities.Address{}, err
	}
	return address, nil
}

func validateAddress(address *entities.Address) error {
	if field := address.MissingField(); field != "" {
		return apperrors.NewValidationError(field + " is required")
	}
	if !utils.IsValidPhone(address.Phone) {
		return apperrors.NewValidationError("phone must be a valid 10 digit mobile number")
	}
	if !utils.IsValidPincode(address.Pincode) {
		return apperrors.NewValidationError("pincode must be 6 digits")
	}
	if address.Type == "" {
		address.Type = entities.AddressTypeHome
	}
	if !address.ValidType() {
		return apperrors.NewValidationError("address type must be Home or Work")
	}
	address.Phone = utils.NormalizePhone(address.Phone)
	return nil
}

func validateDeliveryPerson(person entities.DeliveryPerson) (entities.DeliveryPerson, error) {
	person.Name = strings.TrimSpace(person.Name)
	if person.Name == "" {
		return person, apperrors.NewValidationError("delivery person name is required")
	}
	if !utils.IsValidPhone(person.Phone) {
		return person, apperrors.NewValidationError("delivery person phone must be a valid 10 digit mobile number")
	}
	person.Phone = utils.NormalizePhone(person.Phone)
	return person, nil
}
