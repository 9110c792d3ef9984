package handlers

import (
	"net/http"
	"strconv"

	"github.com/zatekoja/healthmarket/internal/application/services"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
	"github.com/zatekoja/healthmarket/pkg/money"
)

// OrderHandler handles pharmacy cart and order requests
type OrderHandler struct {
	service *services.MedicineOrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(service *services.MedicineOrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

type quoteRequest struct {
	Items []services.CartItem `json:"items"`
}

type placeOrderRequest struct {
	Items       []services.CartItem `json:"items"`
	AddressID   int64               `json:"address_id"`
	Address     *entities.Address   `json:"address"`
	DeliveryFee *money.Paise        `json:"delivery_fee"`
	PromiseFee  *money.Paise        `json:"promise_fee"`
}

// QuoteCart handles POST /api/cart/quote
func (h *OrderHandler) QuoteCart(w http.ResponseWriter, r *http.Request) {
	var body quoteRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	totals, err := h.service.QuoteCart(r.Context(), body.Items)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, totals)
}

// PlaceOrder handles POST /api/orders
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	var body placeOrderRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), services.PlaceOrderInput{
		UserID:      req.UserID,
		Items:       body.Items,
		AddressID:   body.AddressID,
		Address:     body.Address,
		DeliveryFee: body.DeliveryFee,
		PromiseFee:  body.PromiseFee,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, order)
}

// ListOrders handles GET /api/orders?status=
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	userID, _ := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	orders, err := h.service.ListOrders(r.Context(), req, repositories.OrderFilter{
		UserID: userID,
		Status: entities.OrderStatus(r.URL.Query().Get("status")),
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if orders == nil {
		orders = []*entities.MedicineOrder{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder handles GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	order, err := h.service.GetOrder(r.Context(), req, id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, order)
}

// CancelOrder handles POST /api/orders/{id}/cancel
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body cancelRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	order, err := h.service.CancelOrder(r.Context(), req, id, body.Reason)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PATCH /api/admin/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body statusRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	order, err := h.service.UpdateOrderStatus(r.Context(), id, entities.OrderStatus(body.Status), body.Notes)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, order)
}

// AssignDelivery handles PUT /api/admin/orders/{id}/delivery
func (h *OrderHandler) AssignDelivery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var person entities.DeliveryPerson
	if !decodeJSON(w, r, &person) {
		return
	}
	order, err := h.service.AssignDelivery(r.Context(), id, person)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, order)
}
