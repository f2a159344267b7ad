package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"smartbiz/internal/analytics"
	"smartbiz/internal/auth"
	"smartbiz/internal/config"
	"smartbiz/internal/crm"
	"smartbiz/internal/customer"
	"smartbiz/internal/finance"
	"smartbiz/internal/hr"
	"smartbiz/internal/httpjson"
	"smartbiz/internal/order"
	"smartbiz/internal/product"
	"smartbiz/internal/project"
	"smartbiz/internal/settings"
	"smartbiz/internal/supplier"
)

type Controllers struct {
	Auth      *auth.Module
	Product   *product.Controller
	Customer  *customer.Controller
	Order     *order.Controller
	Analytics *analytics.Controller
	CRM       *crm.Controller
	HR        *hr.Controller
	Finance   *finance.Controller
	Supplier  *supplier.Controller
	Project   *project.Controller
	Settings  *settings.Controller
}

func NewRouter(c Controllers, rateLimit config.RateLimitConfig, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))
	r.Use(NewRateLimiter(rateLimit.PerSecond, rateLimit.Burst).Handler)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		httpjson.OK(w, logger, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", c.Auth.Controller.Routes())

		r.Group(func(r chi.Router) {
			r.Use(c.Auth.Middleware.RequireAuth)

			r.Mount("/products", c.Product.Routes())
			r.Mount("/customers", c.Customer.Routes())
			r.Mount("/orders", c.Order.Routes())
			r.Mount("/dashboard", c.Analytics.DashboardRoutes())
			r.Mount("/analytics", c.Analytics.Routes())
			r.Mount("/leads", c.CRM.LeadRoutes(c.Auth.Middleware.RequireAdmin))
			r.Mount("/deals", c.CRM.DealRoutes())
			r.Mount("/crm", c.CRM.StatsRoutes())
			r.Mount("/employees", c.HR.EmployeeRoutes())
			r.Mount("/attendance", c.HR.AttendanceRoutes())
			r.Mount("/hr", c.HR.StatsRoutes())
			r.Mount("/expenses", c.Finance.Routes())
			r.Mount("/suppliers", c.Supplier.SupplierRoutes())
			r.Mount("/purchase-orders", c.Supplier.PurchaseOrderRoutes())
			r.Mount("/projects", c.Project.Routes())
			r.Mount("/settings", c.Settings.Routes())
		})
	})

	return r
}
