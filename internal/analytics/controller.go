package analytics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"smartbiz/internal/httpjson"
)

type Controller struct {
	repo   *MySQLRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewController(repo *MySQLRepository, logger *zap.Logger) *Controller {
	return &Controller{repo: repo, logger: logger, now: time.Now}
}

// DashboardRoutes serves /dashboard.
func (c *Controller) DashboardRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/stats", c.handleDashboardStats)
	return r
}

// Routes serves /analytics.
func (c *Controller) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/overview", c.handleOverview)
	r.Get("/revenue-trends", c.handleRevenueTrends)
	r.Get("/customer-insights", c.handleCustomerInsights)
	r.Get("/product-performance", c.handleProductPerformance)
	r.Get("/sales-performance", c.handleSalesPerformance)
	r.Get("/finance-stats", c.handleFinanceStats)
	r.Get("/inventory-value", c.handleInventoryValue)
	return r
}

func (c *Controller) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	current, previous, err := ResolveDashboardWindow(r.URL.Query().Get("days"), c.now())
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	curRevenue, err := c.repo.Revenue(ctx, current)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	prevRevenue, err := c.repo.Revenue(ctx, previous)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	curCustomers, err := c.repo.ActiveCustomers(ctx, current)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	prevCustomers, err := c.repo.ActiveCustomers(ctx, previous)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	curSold, err := c.repo.ProductsSold(ctx, current)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	prevSold, err := c.repo.ProductsSold(ctx, previous)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	curPending, err := c.repo.PendingOrders(ctx, current)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	prevPending, err := c.repo.PendingOrders(ctx, previous)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	recent, err := c.repo.RecentOrders(ctx, 5)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	top, err := c.repo.TopProducts(ctx, 4)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.OK(w, c.logger, http.StatusOK, map[string]any{
		"total_revenue": map[string]any{
			"value":  curRevenue,
			"change": PctChange(curRevenue, prevRevenue),
		},
		"active_customers": map[string]any{
			"value":  curCustomers,
			"change": PctChangeInt(curCustomers, prevCustomers),
		},
		"products_sold": map[string]any{
			"value":  curSold,
			"change": PctChangeInt(curSold, prevSold),
		},
		"pending_orders": map[string]any{
			"value":  curPending,
			"change": PctChangeInt(curPending, prevPending),
		},
		"recent_orders": recent,
		"top_products":  top,
	})
}

func (c *Controller) handleOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := c.now().UTC()

	revenue, err := c.repo.TotalRevenue(ctx)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	newCustomers, err := c.repo.NewCustomers(ctx, Window{Start: now.AddDate(0, 0, -30), End: now})
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	conversion, err := c.repo.LeadConversionRate(ctx)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	avgOrder, err := c.repo.AvgOrderValue(ctx)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	satisfaction, err := c.repo.RepeatCustomerRate(ctx)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	expenses, err := c.repo.TotalExpenses(ctx)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	deliveryDays, err := c.repo.AvgDeliveryDays(ctx)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.OK(w, c.logger, http.StatusOK, map[string]any{
		"total_revenue":         revenue,
		"new_customers":         newCustomers,
		"conversion_rate":       conversion,
		"avg_order_value":       avgOrder,
		"customer_satisfaction": satisfaction,
		"profit_margin":         profitMargin(revenue, expenses),
		"avg_delivery_days":     deliveryDays,
	})
}

func (c *Controller) handleRevenueTrends(w http.ResponseWriter, r *http.Request) {
	period, err := ResolvePeriod(r.URL.Query().Get("period"), c.now())
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	points, err := c.repo.RevenueTrend(r.Context(), period)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.OK(w, c.logger, http.StatusOK, map[string]any{
		"period": period.Name,
		"trends": points,
	})
}

func (c *Controller) handleCustomerInsights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := c.now().UTC()

	growth, err := c.repo.CustomerGrowth(ctx, Window{Start: now.AddDate(-1, 0, 0), End: now})
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	top, err := c.repo.TopCustomers(ctx, 10)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	retention, err := c.repo.RepeatCustomerRate(ctx)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.OK(w, c.logger, http.StatusOK, map[string]any{
		"customer_growth": growth,
		"top_customers":   top,
		"retention_rate":  retention,
	})
}

func (c *Controller) handleProductPerformance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	top, err := c.repo.TopProducts(ctx, 10)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	categories, err := c.repo.CategoryPerformance(ctx)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	stockStatus, err := c.repo.StockStatusCounts(ctx)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.OK(w, c.logger, http.StatusOK, map[string]any{
		"top_products":         top,
		"category_performance": categories,
		"stock_status":         stockStatus,
	})
}

func (c *Controller) handleSalesPerformance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := c.now().UTC()

	byStatus, err := c.repo.OrdersByStatus(ctx)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	byPayment, err := c.repo.OrdersByPaymentMethod(ctx)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	currentMonth, err := c.repo.Revenue(ctx, Window{Start: monthStart, End: now})
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	lastMonth, err := c.repo.Revenue(ctx, Window{Start: lastMonthStart, End: monthStart})
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.OK(w, c.logger, http.StatusOK, map[string]any{
		"orders_by_status":         byStatus,
		"orders_by_payment_method": byPayment,
		"current_month_sales":      currentMonth,
		"last_month_sales":         lastMonth,
		"month_over_month_change":  PctChange(currentMonth, lastMonth),
	})
}

func (c *Controller) handleFinanceStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	revenue, err := c.repo.TotalRevenue(ctx)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	expenses, err := c.repo.TotalExpenses(ctx)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.OK(w, c.logger, http.StatusOK, map[string]any{
		"total_revenue":  revenue,
		"total_expenses": expenses,
		"net_profit":     revenue.Sub(expenses),
		"profit_margin":  profitMargin(revenue, expenses),
	})
}

func (c *Controller) handleInventoryValue(w http.ResponseWriter, r *http.Request) {
	value, err := c.repo.InventoryValue(r.Context())
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OK(w, c.logger, http.StatusOK, map[string]any{"inventory_value": value})
}

// profitMargin is (revenue - expenses) / revenue * 100, zero when revenue is.
func profitMargin(revenue, expenses decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return revenue.Sub(expenses).
		Div(revenue).
		Mul(decimal.NewFromInt(100)).
		Round(1)
}
