package services_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/healthmarket/internal/application/services"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
	apperrors "github.com/zatekoja/healthmarket/pkg/errors"
	"github.com/zatekoja/healthmarket/pkg/money"
)

func newOrderService(f *fixture, strict bool) *services.MedicineOrderService {
	cfg := testPricing()
	cfg.StrictTransitions = strict
	svc := services.NewMedicineOrderService(f.orders, f.medicines, f.addresses, cfg)
	svc.SetClock(func() time.Time { return fixedNow })
	svc.SetEventBus(f.bus)
	return svc
}

func TestMedicineOrderService_PlaceOrder_CheckoutTotals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	paracetamol := f.addMedicine(t, "Paracetamol 500mg", "25.50", "30.00")
	cetirizine := f.addMedicine(t, "Cetirizine 10mg", "22.00", "25.00")
	svc := newOrderService(f, false)
	channel := f.subscribe(t, providers.GetOrderChannel(entities.OrderKindMedicineOrder, 1))

	order, err := svc.PlaceOrder(ctx, services.PlaceOrderInput{
		UserID: 1,
		Items: []services.CartItem{
			{MedicineID: paracetamol.ID, Quantity: 2},
			{MedicineID: cetirizine.ID, Quantity: 1},
		},
		Address:     homeAddress(),
		DeliveryFee: ptr(money.Paise(0)),
		PromiseFee:  ptr(paise("9")),
	})
	require.NoError(t, err)

	assert.Equal(t, paise("73.00"), order.Subtotal)
	assert.Equal(t, paise("12.00"), order.Savings)
	assert.Equal(t, paise("13.14"), order.GST)
	assert.Equal(t, money.Paise(0), order.DeliveryFee)
	assert.Equal(t, paise("9"), order.PromiseFee)
	assert.Equal(t, paise("95.14"), order.TotalAmount)
	assert.Equal(t, entities.OrderStatusProcessing, order.Status)
	assert.Equal(t, fixedNow, order.OrderDate)
	require.Len(t, order.TrackingHistory, 1)
	assert.Equal(t, entities.TrackingOrderPlaced, order.TrackingHistory[0].Status)
	assert.Equal(t, "Paracetamol 500mg", order.Items[0].MedicineName)
	assert.Equal(t, int64(1), order.DeliveryAddress.UserID)

	event := receiveEvent(t, channel)
	assert.Equal(t, entities.OrderEventCreated, event.EventType)
}

func TestMedicineOrderService_PlaceOrder_DefaultFees(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cheap := f.addMedicine(t, "ORS Sachet", "20", "22")
	costly := f.addMedicine(t, "Glucometer", "600", "750")
	svc := newOrderService(f, false)

	small, err := svc.PlaceOrder(ctx, services.PlaceOrderInput{
		UserID:  1,
		Items:   []services.CartItem{{MedicineID: cheap.ID, Quantity: 1}},
		Address: homeAddress(),
	})
	require.NoError(t, err)
	assert.Equal(t, paise("40"), small.DeliveryFee)
	assert.Equal(t, paise("9"), small.PromiseFee)

	large, err := svc.PlaceOrder(ctx, services.PlaceOrderInput{
		UserID:  1,
		Items:   []services.CartItem{{MedicineID: costly.ID, Quantity: 1}},
		Address: homeAddress(),
	})
	require.NoError(t, err)
	assert.Equal(t, money.Paise(0), large.DeliveryFee)
}

func TestMedicineOrderService_PlaceOrder_MergesDuplicateLines(t *testing.T) {
	f := newFixture(t)
	m := f.addMedicine(t, "Paracetamol 500mg", "25.50", "30.00")
	svc := newOrderService(f, false)

	order, err := svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
		UserID:  1,
		Items:   []services.CartItem{{MedicineID: m.ID, Quantity: 1}, {MedicineID: m.ID, Quantity: 2}},
		Address: homeAddress(),
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Equal(t, 3, order.ItemCount())
}

func TestMedicineOrderService_PlaceOrder_Rejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.addMedicine(t, "Paracetamol 500mg", "25.50", "30.00")
	svc := newOrderService(f, false)

	_, err := svc.PlaceOrder(ctx, services.PlaceOrderInput{UserID: 1, Address: homeAddress()})
	assert.True(t, apperrors.IsValidation(err), "empty cart")

	_, err = svc.PlaceOrder(ctx, services.PlaceOrderInput{
		UserID: 1, Items: []services.CartItem{{MedicineID: m.ID, Quantity: 0}}, Address: homeAddress(),
	})
	assert.True(t, apperrors.IsValidation(err), "zero quantity")

	badAddress := homeAddress()
	badAddress.Pincode = "5600"
	_, err = svc.PlaceOrder(ctx, services.PlaceOrderInput{
		UserID: 1, Items: []services.CartItem{{MedicineID: m.ID, Quantity: 1}}, Address: badAddress,
	})
	assert.True(t, apperrors.IsValidation(err), "bad pincode")

	_, err = svc.PlaceOrder(ctx, services.PlaceOrderInput{
		UserID: 1, Items: []services.CartItem{{MedicineID: m.ID, Quantity: 1}, {MedicineID: 404, Quantity: 1}}, Address: homeAddress(),
	})
	assert.True(t, apperrors.IsNotFound(err), "unknown medicine")

	orders, err := f.orders.List(ctx, repositories.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestMedicineOrderService_PlaceOrder_SavedAddressIsCopied(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.addMedicine(t, "Paracetamol 500mg", "25.50", "30.00")
	svc := newOrderService(f, false)

	saved := homeAddress()
	saved.UserID = 1
	require.NoError(t, f.addresses.Create(ctx, saved))

	order, err := svc.PlaceOrder(ctx, services.PlaceOrderInput{
		UserID: 1, Items: []services.CartItem{{MedicineID: m.ID, Quantity: 1}}, AddressID: saved.ID,
	})
	require.NoError(t, err)

	saved.City = "Mysuru"
	require.NoError(t, f.addresses.Update(ctx, saved))

	stored, err := f.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bengaluru", stored.DeliveryAddress.City)

	_, err = svc.PlaceOrder(ctx, services.PlaceOrderInput{
		UserID: 2, Items: []services.CartItem{{MedicineID: m.ID, Quantity: 1}}, AddressID: saved.ID,
	})
	assert.True(t, apperrors.IsNotFound(err), "another user's address")
}

func placeSimpleOrder(t *testing.T, f *fixture, svc *services.MedicineOrderService) *entities.MedicineOrder {
	t.Helper()
	m := f.addMedicine(t, "Paracetamol 500mg", "25.50", "30.00")
	order, err := svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
		UserID: 1, Items: []services.CartItem{{MedicineID: m.ID, Quantity: 1}}, Address: homeAddress(),
	})
	require.NoError(t, err)
	return order
}

func TestMedicineOrderService_UpdateOrderStatus_AppendsOneEntry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newOrderService(f, false)
	order := placeSimpleOrder(t, f, svc)

	later := fixedNow.Add(2 * time.Hour)
	svc.SetClock(func() time.Time { return later })

	updated, err := svc.UpdateOrderStatus(ctx, order.ID, entities.OrderStatusShipped, "Dispatched from hub")
	require.NoError(t, err)
	assert.Equal(t, entities.OrderStatusShipped, updated.Status)
	require.Len(t, updated.TrackingHistory, 2)
	last := updated.TrackingHistory[1]
	assert.Equal(t, "Shipped", last.Status)
	assert.Equal(t, "Dispatched from hub", last.Notes)
	assert.Equal(t, later, last.Timestamp)
	assert.False(t, last.Timestamp.Before(updated.OrderDate))

	_, err = svc.UpdateOrderStatus(ctx, order.ID, "Lost", "")
	assert.True(t, apperrors.IsValidation(err))

	stored, err := f.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.TrackingHistory, 2)

	_, err = svc.UpdateOrderStatus(ctx, 999, entities.OrderStatusShipped, "")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMedicineOrderService_UpdateOrderStatus_Strict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newOrderService(f, true)
	order := placeSimpleOrder(t, f, svc)

	_, err := svc.UpdateOrderStatus(ctx, order.ID, entities.OrderStatusDelivered, "")
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(ctx, order.ID, entities.OrderStatusShipped, "")
	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))

	lenient := newOrderService(f, false)
	moved, err := lenient.UpdateOrderStatus(ctx, order.ID, entities.OrderStatusShipped, "")
	require.NoError(t, err)
	assert.Equal(t, entities.OrderStatusShipped, moved.Status)
}

func TestMedicineOrderService_AssignDelivery(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newOrderService(f, false)
	order := placeSimpleOrder(t, f, svc)

	_, err := svc.AssignDelivery(ctx, order.ID, entities.DeliveryPerson{Name: "Ravi", Phone: "123"})
	assert.True(t, apperrors.IsValidation(err))

	updated, err := svc.AssignDelivery(ctx, order.ID, entities.DeliveryPerson{Name: "Ravi Kumar", Phone: "9123456780"})
	require.NoError(t, err)
	require.NotNil(t, updated.DeliveryBoy)
	assert.Equal(t, "Ravi Kumar", updated.DeliveryBoy.Name)
	require.Len(t, updated.TrackingHistory, 2)
	assert.Equal(t, "Out for delivery with Ravi Kumar", updated.TrackingHistory[1].Notes)

	reassigned, err := svc.AssignDelivery(ctx, order.ID, entities.DeliveryPerson{Name: "Suresh", Phone: "9123456781"})
	require.NoError(t, err)
	assert.Equal(t, "Suresh", reassigned.DeliveryBoy.Name)
	assert.Len(t, reassigned.TrackingHistory, 3)
}

func TestMedicineOrderService_CancelOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newOrderService(f, false)
	order := placeSimpleOrder(t, f, svc)

	_, err := svc.CancelOrder(ctx, patient(2), order.ID, "changed my mind")
	assert.True(t, apperrors.IsNotFound(err))

	cancelled, err := svc.CancelOrder(ctx, patient(1), order.ID, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, entities.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, "changed my mind", cancelled.CancellationReason)

	shipped := placeSimpleOrder(t, f, svc)
	_, err = svc.UpdateOrderStatus(ctx, shipped.ID, entities.OrderStatusShipped, "")
	require.NoError(t, err)
	_, err = svc.CancelOrder(ctx, patient(1), shipped.ID, "too slow")
	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))
}

func TestMedicineOrderService_QuoteCart(t *testing.T) {
	f := newFixture(t)
	m := f.addMedicine(t, "Paracetamol 500mg", "25.50", "30.00")
	svc := newOrderService(f, false)

	totals, err := svc.QuoteCart(context.Background(), []services.CartItem{{MedicineID: m.ID, Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, paise("51"), totals.Subtotal)
	assert.Equal(t, paise("40"), totals.DeliveryFee)
}

func TestMedicineOrderService_QuoteCart_QuantityBounds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.addMedicine(t, "Paracetamol 500mg", "25.50", "30.00")
	svc := newOrderService(f, false)

	totals, err := svc.QuoteCart(ctx, []services.CartItem{{MedicineID: m.ID, Quantity: services.MaxQuantityPerLine}})
	require.NoError(t, err)
	assert.Equal(t, paise("2550"), totals.Subtotal)

	tests := []struct {
		name string
		cart []services.CartItem
	}{
		{"huge quantity", []services.CartItem{{MedicineID: m.ID, Quantity: math.MaxInt}}},
		{"one over the cap", []services.CartItem{{MedicineID: m.ID, Quantity: services.MaxQuantityPerLine + 1}}},
		{"merged lines over the cap", []services.CartItem{{MedicineID: m.ID, Quantity: 60}, {MedicineID: m.ID, Quantity: 41}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.QuoteCart(ctx, tt.cart)
			assert.True(t, apperrors.IsValidation(err), "got %v", err)
		})
	}
}

func TestMedicineOrderService_PlaceOrder_RejectsOverflowingPrice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newOrderService(f, false)
	pricey := &entities.Medicine{Name: "Gold Leaf", Price: money.Paise(1 << 60), MRP: money.Paise(1 << 60), Category: "General"}
	require.NoError(t, f.medicines.Create(ctx, pricey))

	_, err := svc.PlaceOrder(ctx, services.PlaceOrderInput{
		UserID: 1, Items: []services.CartItem{{MedicineID: pricey.ID, Quantity: 16}}, Address: homeAddress(),
	})
	assert.True(t, apperrors.IsValidation(err), "got %v", err)

	orders, err := f.orders.List(ctx, repositories.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestMedicineOrderService_ConcurrentUpdatesKeepEveryEntry(t *testing.T) {
	ctx := context.Background()
	f := newSlowFixture(t)
	svc := newOrderService(f, false)
	order := placeSimpleOrder(t, f, svc)

	const updates = 10
	var wg sync.WaitGroup
	errs := make(chan error, updates)
	for i := 0; i < updates; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = svc.UpdateOrderStatus(ctx, order.ID, entities.OrderStatusShipped, "")
			} else {
				_, err = svc.AssignDelivery(ctx, order.ID, entities.DeliveryPerson{Name: "Ravi Kumar", Phone: "9123456780"})
			}
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := f.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.TrackingHistory, updates+1)
}
