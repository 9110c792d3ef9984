package routes

import (
	"net/http"

	"github.com/zatekoja/healthmarket/internal/api/handlers"
	"github.com/zatekoja/healthmarket/internal/api/middleware"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	catalogHandler     *handlers.CatalogHandler
	appointmentHandler *handlers.AppointmentHandler
	orderHandler       *handlers.OrderHandler
	labHandler         *handlers.LabHandler
	accountHandler     *handlers.AccountHandler
	assistHandler      *handlers.AssistHandler
	reportHandler      *handlers.ReportHandler
	sseHandler         *handlers.SSEHandler

	auth            middleware.Authenticator
	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// Handlers groups the HTTP handlers mounted by the router
type Handlers struct {
	Catalog     *handlers.CatalogHandler
	Appointment *handlers.AppointmentHandler
	Order       *handlers.OrderHandler
	Lab         *handlers.LabHandler
	Account     *handlers.AccountHandler
	Assist      *handlers.AssistHandler
	Report      *handlers.ReportHandler
	SSE         *handlers.SSEHandler
}

// NewRouter creates a new router. cacheMiddleware may be nil.
func NewRouter(
	h Handlers,
	auth middleware.Authenticator,
	cacheMiddleware *middleware.CacheMiddleware,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                http.NewServeMux(),
		catalogHandler:     h.Catalog,
		appointmentHandler: h.Appointment,
		orderHandler:       h.Order,
		labHandler:         h.Lab,
		accountHandler:     h.Account,
		assistHandler:      h.Assist,
		reportHandler:      h.Report,
		sseHandler:         h.SSE,
		auth:               auth,
		cacheMiddleware:    cacheMiddleware,
		allowedOrigins:     allowedOrigins,
		metrics:            metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	authed := middleware.RequireAuth(r.auth)
	staff := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireRole(entities.RoleAdmin, entities.RoleOwner)(h))
	}
	user := func(h http.HandlerFunc) http.Handler {
		return authed(h)
	}

	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Public catalog
	r.mux.HandleFunc("GET /api/doctors", r.catalogHandler.ListDoctors)
	r.mux.HandleFunc("GET /api/doctors/{id}", r.catalogHandler.GetDoctor)
	r.mux.HandleFunc("GET /api/specialties", r.catalogHandler.ListSpecialties)
	r.mux.HandleFunc("GET /api/medicines", r.catalogHandler.ListMedicines)
	r.mux.HandleFunc("GET /api/medicines/{id}", r.catalogHandler.GetMedicine)
	r.mux.HandleFunc("GET /api/lab-tests", r.catalogHandler.ListLabTests)
	r.mux.HandleFunc("GET /api/lab-tests/{id}", r.catalogHandler.GetLabTest)

	// Assistance
	r.mux.HandleFunc("POST /api/recommendations/specialty", r.assistHandler.RecommendSpecialty)
	r.mux.HandleFunc("POST /api/payments/upi-qr", r.assistHandler.GenerateUPIQR)
	r.mux.HandleFunc("POST /api/payments/validate-upi", r.assistHandler.ValidateUPIID)
	r.mux.HandleFunc("POST /api/cart/quote", r.orderHandler.QuoteCart)

	// Accounts
	r.mux.HandleFunc("POST /api/auth/register", r.accountHandler.Register)
	r.mux.HandleFunc("POST /api/auth/login", r.accountHandler.Login)
	r.mux.Handle("POST /api/auth/logout", user(r.accountHandler.Logout))
	r.mux.Handle("GET /api/me", user(r.accountHandler.Me))
	r.mux.Handle("PATCH /api/me", user(r.accountHandler.UpdateProfile))
	r.mux.Handle("GET /api/me/addresses", user(r.accountHandler.ListAddresses))
	r.mux.Handle("POST /api/me/addresses", user(r.accountHandler.CreateAddress))
	r.mux.Handle("PUT /api/me/addresses/{id}", user(r.accountHandler.UpdateAddress))
	r.mux.Handle("DELETE /api/me/addresses/{id}", user(r.accountHandler.DeleteAddress))
	r.mux.Handle("GET /api/me/wishlist", user(r.accountHandler.ListWishlist))
	r.mux.Handle("PUT /api/me/wishlist/{medicineID}", user(r.accountHandler.AddToWishlist))
	r.mux.Handle("DELETE /api/me/wishlist/{medicineID}", user(r.accountHandler.RemoveFromWishlist))
	r.mux.Handle("POST /api/me/sessions", user(r.accountHandler.RecordSession))

	// Bookings and orders
	r.mux.Handle("POST /api/appointments", user(r.appointmentHandler.BookAppointment))
	r.mux.Handle("GET /api/appointments", user(r.appointmentHandler.ListAppointments))
	r.mux.Handle("GET /api/appointments/{id}", user(r.appointmentHandler.GetAppointment))
	r.mux.Handle("POST /api/appointments/{id}/cancel", user(r.appointmentHandler.CancelAppointment))

	r.mux.Handle("POST /api/orders", user(r.orderHandler.PlaceOrder))
	r.mux.Handle("GET /api/orders", user(r.orderHandler.ListOrders))
	r.mux.Handle("GET /api/orders/{id}", user(r.orderHandler.GetOrder))
	r.mux.Handle("POST /api/orders/{id}/cancel", user(r.orderHandler.CancelOrder))

	r.mux.Handle("POST /api/lab-bookings", user(r.labHandler.BookLabTest))
	r.mux.Handle("GET /api/lab-bookings", user(r.labHandler.ListBookings))
	r.mux.Handle("GET /api/lab-bookings/{id}", user(r.labHandler.GetBooking))
	r.mux.Handle("POST /api/lab-bookings/{id}/cancel", user(r.labHandler.CancelBooking))

	// Tracking streams
	r.mux.Handle("GET /api/stream/orders/{kind}/{id}", user(r.sseHandler.StreamOrderUpdates))
	r.mux.Handle("GET /api/admin/stream/orders", staff(r.sseHandler.StreamAllUpdates))

	// Admin
	r.mux.Handle("POST /api/admin/doctors", staff(r.catalogHandler.CreateDoctor))
	r.mux.Handle("PUT /api/admin/doctors/{id}", staff(r.catalogHandler.UpdateDoctor))
	r.mux.Handle("DELETE /api/admin/doctors/{id}", staff(r.catalogHandler.DeleteDoctor))
	r.mux.Handle("POST /api/admin/doctors/reindex", staff(r.catalogHandler.ReindexDoctors))
	r.mux.Handle("POST /api/admin/medicines", staff(r.catalogHandler.CreateMedicine))
	r.mux.Handle("PUT /api/admin/medicines/{id}", staff(r.catalogHandler.UpdateMedicine))
	r.mux.Handle("DELETE /api/admin/medicines/{id}", staff(r.catalogHandler.DeleteMedicine))
	r.mux.Handle("POST /api/admin/lab-tests", staff(r.catalogHandler.CreateLabTest))
	r.mux.Handle("PUT /api/admin/lab-tests/{id}", staff(r.catalogHandler.UpdateLabTest))
	r.mux.Handle("DELETE /api/admin/lab-tests/{id}", staff(r.catalogHandler.DeleteLabTest))

	r.mux.Handle("PATCH /api/admin/appointments/{id}/status", staff(r.appointmentHandler.UpdateStatus))
	r.mux.Handle("PATCH /api/admin/orders/{id}/status", staff(r.orderHandler.UpdateStatus))
	r.mux.Handle("PUT /api/admin/orders/{id}/delivery", staff(r.orderHandler.AssignDelivery))
	r.mux.Handle("PATCH /api/admin/lab-bookings/{id}/status", staff(r.labHandler.UpdateStatus))
	r.mux.Handle("PUT /api/admin/lab-bookings/{id}/delivery", staff(r.labHandler.AssignCollector))

	r.mux.Handle("GET /api/admin/users", staff(r.accountHandler.ListUsers))
	r.mux.Handle("PUT /api/admin/users/{id}/role", authed(middleware.RequireRole(entities.RoleOwner)(http.HandlerFunc(r.accountHandler.SetRole))))
	r.mux.Handle("GET /api/admin/auth-logs", staff(r.accountHandler.ListAuthLogs))
	r.mux.Handle("GET /api/admin/sessions", staff(r.accountHandler.ListSessions))
	r.mux.Handle("GET /api/admin/reports/bookings.xlsx", staff(r.reportHandler.ExportBookings))

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
