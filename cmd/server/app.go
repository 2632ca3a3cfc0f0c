package main

import (
	"net/http"

	"github.com/diewo77/go-orcamentos/auth"
	"github.com/diewo77/go-orcamentos/gate"
	"github.com/diewo77/go-orcamentos/httpx"
	"github.com/diewo77/go-orcamentos/internal/config"
	"github.com/diewo77/go-orcamentos/internal/handlers"
	"github.com/diewo77/go-orcamentos/internal/metrics"
	"github.com/diewo77/go-orcamentos/internal/middleware"
	"github.com/diewo77/go-orcamentos/internal/policy"
	"github.com/diewo77/go-orcamentos/internal/services"
	"github.com/diewo77/go-orcamentos/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App wires services, handlers and routes.
type App struct {
	mux     *http.ServeMux
	db      *gorm.DB
	log     *zap.Logger
	metrics *metrics.Metrics
	gate    *policy.AuthGate
	handler http.Handler

	auth      *handlers.AuthHandler
	customers *handlers.CustomerHandler
	suppliers *handlers.SupplierHandler
	shipping  *handlers.ShippingHandler
	settings  *handlers.SettingsHandler
	quotes    *handlers.QuoteHandler
	orders    *handlers.OrderHandler
}

// NewApp builds the application handler for cfg on top of an open database.
func NewApp(cfg *config.Config, db *gorm.DB, files storage.FileStore, log *zap.Logger, m *metrics.Metrics) *App {
	settings := services.NewSettingsService(db, cfg.App.ArchitectCommissionDefault)
	suppliers := services.NewSupplierService(db)

	quotes := services.NewQuoteService(db, settings, files, log, m)
	quotes.DiscountThreshold = cfg.App.DiscountAuthThreshold
	converter := services.NewConverter(db, files, log, m)
	converter.DiscountThreshold = cfg.App.DiscountAuthThreshold
	images := services.NewImageService(db, files, log, m)
	images.TTL = cfg.Storage.ImageTTL

	a := &App{
		mux:       http.NewServeMux(),
		db:        db,
		log:       log,
		metrics:   m,
		gate:      policy.NewAuthGate(db, cfg.Auth.PermissionTTL),
		auth:      handlers.NewAuthHandler(services.NewStaffService(db, cfg.Auth.DiscountTokenTTL)),
		customers: handlers.NewCustomerHandler(services.NewCustomerService(db)),
		suppliers: handlers.NewSupplierHandler(suppliers),
		shipping:  handlers.NewShippingHandler(services.NewShippingService(db)),
		settings:  handlers.NewSettingsHandler(settings),
		quotes:    handlers.NewQuoteHandler(quotes, converter, images, suppliers),
		orders:    handlers.NewOrderHandler(services.NewOrderService(db)),
	}
	a.setupRoutes()
	a.handler = middleware.Chain(a.metrics.Middleware(a.mux),
		middleware.RequestID(log),
		middleware.Logging(log),
		middleware.Recover(log),
		auth.Middleware,
		middleware.Prefs,
	)
	return a
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	a.mux.HandleFunc("GET /health", a.health)
	a.mux.HandleFunc("GET /healthz", a.healthz)
	a.mux.Handle("GET /metrics", a.metrics.Handler())

	ah := a.auth
	a.mux.HandleFunc("POST /login", ah.Login)
	a.mux.HandleFunc("POST /logout", ah.Logout)
	a.mux.Handle("GET /api/me", auth.RequireAuth(http.HandlerFunc(ah.Me)))
	a.route("POST /api/users", policy.ResourceUser, gate.ActionCreate, ah.CreateUser)
	// Re-authenticates the approving manager itself, so any logged-in seller may call it.
	a.mux.Handle("POST /api/authorize-discount", auth.RequireAuth(http.HandlerFunc(ah.AuthorizeDiscount)))

	ch := a.customers
	a.route("GET /api/customers", policy.ResourceCustomer, gate.ActionList, ch.List)
	a.route("GET /api/customers/search", policy.ResourceCustomer, gate.ActionView, ch.SearchByDocument)
	a.route("GET /api/customers/search-by-name", policy.ResourceCustomer, gate.ActionList, ch.SearchByName)
	a.route("POST /api/customers", policy.ResourceCustomer, gate.ActionCreate, ch.Create)
	a.route("GET /api/customers/{id}", policy.ResourceCustomer, gate.ActionView, ch.Get)
	a.route("PUT /api/customers/{id}", policy.ResourceCustomer, gate.ActionUpdate, ch.Update)
	a.route("DELETE /api/customers/{id}", policy.ResourceCustomer, gate.ActionDelete, ch.Delete)

	sh := a.suppliers
	a.route("GET /api/suppliers", policy.ResourceSupplier, gate.ActionList, sh.List)
	a.route("POST /api/suppliers", policy.ResourceSupplier, gate.ActionCreate, sh.Create)
	a.route("GET /api/suppliers/{id}", policy.ResourceSupplier, gate.ActionView, sh.Get)
	a.route("PUT /api/suppliers/{id}", policy.ResourceSupplier, gate.ActionUpdate, sh.Update)
	a.route("DELETE /api/suppliers/{id}", policy.ResourceSupplier, gate.ActionDelete, sh.Delete)

	ship := a.shipping
	a.route("GET /api/shipping-companies", policy.ResourceShipping, gate.ActionList, ship.List)
	a.route("POST /api/shipping-companies", policy.ResourceShipping, gate.ActionCreate, ship.Create)
	a.route("PUT /api/shipping-companies/{id}/active", policy.ResourceShipping, gate.ActionUpdate, ship.SetActive)
	a.route("GET /api/shipping-companies/{id}/payment-methods", policy.ResourceShipping, gate.ActionView, ship.PaymentMethods)

	st := a.settings
	a.route("GET /api/payment-method-fees", policy.ResourceSettings, gate.ActionView, st.PaymentMethodFees)
	a.route("PUT /api/payment-tariffs", policy.ResourceSettings, gate.ActionUpdate, st.UpsertTariff)
	a.route("DELETE /api/payment-tariffs/{id}", policy.ResourceSettings, gate.ActionUpdate, st.DeleteTariff)
	a.route("GET /api/settings/architect-commission", policy.ResourceSettings, gate.ActionView, st.ArchitectCommission)
	a.route("PUT /api/settings/architect-commission", policy.ResourceSettings, gate.ActionUpdate, st.SetArchitectCommission)

	qh := a.quotes
	a.route("GET /api/quotes", policy.ResourceQuote, gate.ActionList, qh.List)
	a.route("POST /api/quotes", policy.ResourceQuote, gate.ActionCreate, qh.Create)
	a.route("POST /api/pricing", policy.ResourceQuote, gate.ActionView, qh.Simulate)
	a.route("GET /api/quotes/{id}", policy.ResourceQuote, gate.ActionView, qh.Get)
	a.route("PUT /api/quotes/{id}", policy.ResourceQuote, gate.ActionUpdate, qh.Update)
	a.route("POST /api/quotes/{id}/status", policy.ResourceQuote, gate.ActionUpdate, qh.ChangeStatus)
	a.route("POST /api/quotes/{id}/convert", policy.ResourceQuote, gate.ActionConvert, qh.Convert)
	a.route("GET /api/quotes/{id}/pricing", policy.ResourceQuote, gate.ActionView, qh.Pricing)
	a.route("GET /api/quotes/{id}/pdf", policy.ResourceQuote, gate.ActionView, qh.PDF)
	a.route("GET /api/quotes/{id}/suppliers/{supplierID}/pdf", policy.ResourceQuote, gate.ActionView, qh.SupplierPDF)
	a.route("DELETE /api/quotes/{id}/items/{itemID}", policy.ResourceQuote, gate.ActionUpdate, qh.DeleteItem)
	a.route("POST /quotes/{id}/items/{itemID}/images", policy.ResourceQuote, gate.ActionUpdate, qh.UploadImage)

	oh := a.orders
	a.route("GET /api/orders", policy.ResourceOrder, gate.ActionList, oh.List)
	a.route("GET /api/orders/{id}", policy.ResourceOrder, gate.ActionView, oh.Get)
	a.route("POST /api/orders/{id}/status", policy.ResourceOrder, gate.ActionUpdate, oh.ChangeStatus)
	a.route("PUT /api/orders/{id}/notes", policy.ResourceOrder, gate.ActionUpdate, oh.UpdateNotes)
	a.route("GET /api/orders/{id}/pdf", policy.ResourceOrder, gate.ActionView, oh.PDF)
}

// route registers h behind authentication and the resource:action permission.
func (a *App) route(pattern, resource string, action gate.Action, h http.HandlerFunc) {
	a.mux.Handle(pattern, auth.RequireAuth(a.gate.RequirePermission(resource, action, h)))
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// healthz also checks that the database answers.
func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		a.log.Warn("database ping failed", zap.Error(err))
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
