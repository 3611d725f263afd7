package router

import (
	"net/http"
	"strings"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Auth        *handler.AuthHandler
	Products    *handler.ProductHandler
	Cart        *handler.CartHandler
	Orders      *handler.OrderHandler
	Appointment *handler.AppointmentHandler
	Dashboard   *handler.DashboardHandler
}

// Options configures the router's guards and middleware.
type Options struct {
	Guards         *middleware.Auth
	AuthLimiter    *middleware.RateLimiter
	AllowedOrigins []string
}

const byNumberPrefix = "/api/orders/by-number/"

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := httprouter.New()
	user := opts.Guards.RequireUser
	admin := opts.Guards.RequireAdmin
	limit := opts.AuthLimiter.Limit

	r.GET("/health", handler.Health)

	r.POST("/api/auth/register", limit(h.Auth.Register))
	r.POST("/api/auth/login", limit(h.Auth.Login))
	r.POST("/api/auth/refresh", limit(h.Auth.Refresh))
	r.GET("/api/auth/profile", user(h.Auth.Profile))

	r.GET("/api/products", h.Products.List)
	r.GET("/api/products/:id", h.Products.Get)

	r.GET("/api/cart", user(h.Cart.Get))
	r.GET("/api/cart/count", user(h.Cart.Count))
	r.POST("/api/cart/add", user(h.Cart.Add))
	r.POST("/api/cart/validate", user(h.Cart.Validate))
	r.PUT("/api/cart/update/:id", user(h.Cart.Update))
	r.DELETE("/api/cart/remove/:id", user(h.Cart.Remove))
	r.DELETE("/api/cart/clear", user(h.Cart.Clear))

	r.GET("/api/orders", user(h.Orders.List))
	r.POST("/api/orders", user(h.Orders.Create))
	r.GET("/api/orders/:id", user(h.Orders.Get))
	r.GET("/api/orders/:id/track", user(h.Orders.Track))
	r.GET("/api/orders/:id/invoice", user(h.Orders.Invoice))
	r.POST("/api/orders/:id/cancel", user(h.Orders.Cancel))

	r.POST("/api/appointments", opts.Guards.Optional(h.Appointment.Create))
	r.GET("/api/appointments", user(h.Appointment.List))
	r.GET("/api/appointments/:id", user(h.Appointment.Get))
	r.PUT("/api/appointments/:id", user(h.Appointment.Update))
	r.DELETE("/api/appointments/:id", user(h.Appointment.Cancel))

	r.GET("/api/admin/dashboard", admin(h.Dashboard.Get))
	r.GET("/api/admin/orders", admin(h.Orders.AdminList))
	r.GET("/api/admin/orders/:id", admin(h.Orders.AdminGet))
	r.PUT("/api/admin/orders/:id/status", admin(h.Orders.UpdateStatus))
	r.GET("/api/admin/products", admin(h.Products.AdminList))
	r.POST("/api/admin/products", admin(h.Products.Create))
	r.GET("/api/admin/products/low-stock", admin(h.Products.LowStock))
	r.PUT("/api/admin/products/:id", admin(h.Products.Update))
	r.GET("/api/admin/users", admin(h.Auth.Users))
	r.GET("/api/admin/appointments", admin(h.Appointment.AdminList))
	r.PUT("/api/admin/appointments/:id/status", admin(h.Appointment.SetStatus))

	// httprouter cannot hold a static segment beside the :id wildcard, so the
	// order-number lookup is served by the mux in front of it.
	byNumber := user(h.Orders.GetByNumber)
	mux := http.NewServeMux()
	mux.HandleFunc(byNumberPrefix, func(w http.ResponseWriter, req *http.Request) {
		number := strings.TrimPrefix(req.URL.Path, byNumberPrefix)
		if req.Method != http.MethodGet || number == "" || strings.Contains(number, "/") {
			http.NotFound(w, req)
			return
		}
		byNumber(w, req, httprouter.Params{{Key: "number", Value: number}})
	})
	mux.Handle("/", r)

	// Apply middleware in order: Recovery -> Logging -> CORS
	var handler http.Handler = mux
	handler = middleware.CORS(opts.AllowedOrigins)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
