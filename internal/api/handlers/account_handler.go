package handlers

import (
	"net/http"
	"time"

	"github.com/zatekoja/healthmarket/internal/application/services"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
)

// AccountHandler handles sign-up, login, profile, addresses, wishlist and
// user activity requests
type AccountHandler struct {
	users     *services.UserService
	addresses *services.AddressService
	wishlist  *services.WishlistService
	activity  *services.ActivityService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(
	users *services.UserService,
	addresses *services.AddressService,
	wishlist *services.WishlistService,
	activity *services.ActivityService,
) *AccountHandler {
	return &AccountHandler{
		users:     users,
		addresses: addresses,
		wishlist:  wishlist,
		activity:  activity,
	}
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

type profileRequest struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Email        *string `json:"email"`
	ProfileImage *string `json:"profile_image"`
}

type sessionRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type roleRequest struct {
	Role string `json:"role"`
}

// Register handles POST /api/auth/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	user, err := h.users.Register(r.Context(), services.RegisterInput{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Phone:     body.Phone,
		Email:     body.Email,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/auth/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	session, err := h.users.Login(r.Context(), body.Phone, body.Location)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, session)
}

// Logout handles POST /api/auth/logout
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	var body loginRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := h.users.Logout(r.Context(), req.UserID, body.Location); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/me
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	user, err := h.users.GetUser(r.Context(), req.UserID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PATCH /api/me
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	var body profileRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	user, err := h.users.UpdateProfile(r.Context(), req.UserID, services.ProfileUpdate{
		FirstName:    body.FirstName,
		LastName:     body.LastName,
		Email:        body.Email,
		ProfileImage: body.ProfileImage,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

// ListAddresses handles GET /api/me/addresses
func (h *AccountHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	addresses, err := h.addresses.List(r.Context(), req.UserID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if addresses == nil {
		addresses = []*entities.Address{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"addresses": addresses,
		"count":     len(addresses),
	})
}

// CreateAddress handles POST /api/me/addresses
func (h *AccountHandler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	var address entities.Address
	if !decodeJSON(w, r, &address) {
		return
	}
	if err := h.addresses.Create(r.Context(), req.UserID, &address); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, address)
}

// UpdateAddress handles PUT /api/me/addresses/{id}
func (h *AccountHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var address entities.Address
	if !decodeJSON(w, r, &address) {
		return
	}
	address.ID = id
	if err := h.addresses.Update(r.Context(), req.UserID, &address); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, address)
}

// DeleteAddress handles DELETE /api/me/addresses/{id}
func (h *AccountHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.addresses.Delete(r.Context(), req.UserID, id); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListWishlist handles GET /api/me/wishlist
func (h *AccountHandler) ListWishlist(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	medicines, err := h.wishlist.List(r.Context(), req.UserID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if medicines == nil {
		medicines = []*entities.Medicine{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"medicines": medicines,
		"count":     len(medicines),
	})
}

// AddToWishlist handles PUT /api/me/wishlist/{medicineID}
func (h *AccountHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	medicineID, ok := pathID(w, r, "medicineID")
	if !ok {
		return
	}
	ids, err := h.wishlist.Add(r.Context(), req.UserID, medicineID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"medicine_ids": ids})
}

// RemoveFromWishlist handles DELETE /api/me/wishlist/{medicineID}
func (h *AccountHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	medicineID, ok := pathID(w, r, "medicineID")
	if !ok {
		return
	}
	ids, err := h.wishlist.Remove(r.Context(), req.UserID, medicineID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"medicine_ids": ids})
}

// RecordSession handles POST /api/me/sessions. Sessions of five seconds or
// less are acknowledged but not stored.
func (h *AccountHandler) RecordSession(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	var body sessionRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	session, err := h.activity.RecordSession(r.Context(), req.UserID, body.StartTime, body.EndTime)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if session == nil {
		respondWithJSON(w, http.StatusAccepted, map[string]bool{"recorded": false})
		return
	}
	respondWithJSON(w, http.StatusCreated, session)
}

// ListUsers handles GET /api/admin/users?role=
func (h *AccountHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context(), repositories.UserFilter{
		Role: entities.Role(r.URL.Query().Get("role")),
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if users == nil {
		users = []*entities.User{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"count": len(users),
	})
}

// SetRole handles PUT /api/admin/users/{id}/role
func (h *AccountHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body roleRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	user, err := h.users.SetRole(r.Context(), req, id, entities.Role(body.Role))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

// ListAuthLogs handles GET /api/admin/auth-logs
func (h *AccountHandler) ListAuthLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.activity.ListAuthLogs(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if logs == nil {
		logs = []*entities.AuthLog{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"count": len(logs),
	})
}

// ListSessions handles GET /api/admin/sessions?user_id=
func (h *AccountHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.activity.ListSessions(r.Context(), int64(queryInt(r, "user_id", 0)))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []*entities.UserSession{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}
