package analytics

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"smartbiz/internal/domain"
)

// MySQLRepository answers every aggregate query behind the dashboard and
// analytics endpoints. All reads are point-in-time scans; nothing is cached.
// Cancelled orders are excluded from every revenue figure.
type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

const notCancelled = "o.status != '" + domain.OrderStatusCancelled + "'"

func (r *MySQLRepository) Revenue(ctx context.Context, w Window) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(o.total), 0)
		FROM orders o
		WHERE ` + notCancelled + ` AND o.created_at >= ? AND o.created_at < ?`

	var revenue decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, w.Start, w.End).Scan(&revenue); err != nil {
		return decimal.Zero, fmt.Errorf("querying revenue: %w", err)
	}
	return revenue, nil
}

func (r *MySQLRepository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(o.total), 0) FROM orders o WHERE ` + notCancelled

	var revenue decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query).Scan(&revenue); err != nil {
		return decimal.Zero, fmt.Errorf("querying total revenue: %w", err)
	}
	return revenue, nil
}

// ActiveCustomers counts distinct customers that placed an order in the window.
func (r *MySQLRepository) ActiveCustomers(ctx context.Context, w Window) (int, error) {
	query := `
		SELECT COUNT(DISTINCT o.customer_id)
		FROM orders o
		WHERE o.created_at >= ? AND o.created_at < ?`

	var n int
	if err := r.db.QueryRowContext(ctx, query, w.Start, w.End).Scan(&n); err != nil {
		return 0, fmt.Errorf("querying active customers: %w", err)
	}
	return n, nil
}

func (r *MySQLRepository) ProductsSold(ctx context.Context, w Window) (int, error) {
	query := `
		SELECT COALESCE(SUM(oi.quantity), 0)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE ` + notCancelled + ` AND o.created_at >= ? AND o.created_at < ?`

	var n int
	if err := r.db.QueryRowContext(ctx, query, w.Start, w.End).Scan(&n); err != nil {
		return 0, fmt.Errorf("querying products sold: %w", err)
	}
	return n, nil
}

func (r *MySQLRepository) PendingOrders(ctx context.Context, w Window) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM orders o
		WHERE o.status = ? AND o.created_at >= ? AND o.created_at < ?`

	var n int
	if err := r.db.QueryRowContext(ctx, query, domain.OrderStatusPending, w.Start, w.End).Scan(&n); err != nil {
		return 0, fmt.Errorf("querying pending orders: %w", err)
	}
	return n, nil
}

type RecentOrder struct {
	ID           string          `json:"id"`
	OrderNumber  string          `json:"order_number"`
	CustomerName string          `json:"customer_name"`
	Total        decimal.Decimal `json:"total"`
	Status       string          `json:"status"`
}

func (r *MySQLRepository) RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error) {
	query := `
		SELECT o.id, o.order_number, c.name, o.total, o.status
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		ORDER BY o.created_at DESC, o.id
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent orders: %w", err)
	}
	defer rows.Close()

	var orders []RecentOrder
	for rows.Next() {
		var o RecentOrder
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.Total, &o.Status); err != nil {
			return nil, fmt.Errorf("scanning recent order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type ProductRank struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitsSold int             `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// TopProducts ranks by units sold across non-cancelled orders. Ties resolve
// by product id ascending so the ordering is deterministic.
func (r *MySQLRepository) TopProducts(ctx context.Context, limit int) ([]ProductRank, error) {
	query := `
		SELECT p.id, p.name,
		       COALESCE(SUM(oi.quantity), 0) AS units,
		       COALESCE(SUM(oi.subtotal), 0) AS revenue
		FROM products p
		JOIN order_items oi ON oi.product_id = p.id
		JOIN orders o ON o.id = oi.order_id
		WHERE ` + notCancelled + `
		GROUP BY p.id, p.name
		ORDER BY units DESC, p.id ASC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top products: %w", err)
	}
	defer rows.Close()

	var ranks []ProductRank
	for rows.Next() {
		var p ProductRank
		if err := rows.Scan(&p.ID, &p.Name, &p.UnitsSold, &p.Revenue); err != nil {
			return nil, fmt.Errorf("scanning product rank: %w", err)
		}
		ranks = append(ranks, p)
	}
	return ranks, rows.Err()
}

type TrendPoint struct {
	Label      string          `json:"label"`
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int             `json:"order_count"`
}

// RevenueTrend buckets non-cancelled orders by the period's DATE_FORMAT
// expression, chronologically.
func (r *MySQLRepository) RevenueTrend(ctx context.Context, p Period) ([]TrendPoint, error) {
	bucket := "DATE_FORMAT(o.created_at, '" + p.BucketLayout + "')"
	query := `
		SELECT ` + bucket + ` AS bucket,
		       COALESCE(SUM(o.total), 0),
		       COUNT(*)
		FROM orders o
		WHERE ` + notCancelled + ` AND o.created_at >= ? AND o.created_at < ?
		GROUP BY bucket
		ORDER BY bucket ASC`

	rows, err := r.db.QueryContext(ctx, query, p.Window.Start, p.Window.End)
	if err != nil {
		return nil, fmt.Errorf("querying revenue trend: %w", err)
	}
	defer rows.Close()

	var points []TrendPoint
	for rows.Next() {
		var pt TrendPoint
		if err := rows.Scan(&pt.Label, &pt.Revenue, &pt.OrderCount); err != nil {
			return nil, fmt.Errorf("scanning trend point: %w", err)
		}
		points = append(points, pt)
	}
	return points, rows.Err()
}

func (r *MySQLRepository) NewCustomers(ctx context.Context, w Window) (int, error) {
	query := `SELECT COUNT(*) FROM customers WHERE created_at >= ? AND created_at < ?`

	var n int
	if err := r.db.QueryRowContext(ctx, query, w.Start, w.End).Scan(&n); err != nil {
		return 0, fmt.Errorf("querying new customers: %w", err)
	}
	return n, nil
}

// LeadConversionRate is Qualified or Converted leads over all leads, as a
// percentage. Zero leads yields zero.
func (r *MySQLRepository) LeadConversionRate(ctx context.Context) (decimal.Decimal, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(status IN (?, ?)), 0)
		FROM leads`

	var total, converted int64
	err := r.db.QueryRowContext(ctx, query, domain.LeadStatusQualified, domain.LeadStatusConverted).
		Scan(&total, &converted)
	if err != nil {
		return decimal.Zero, fmt.Errorf("querying lead conversion: %w", err)
	}
	if total == 0 {
		return decimal.Zero, nil
	}
	return decimal.NewFromInt(converted).
		Div(decimal.NewFromInt(total)).
		Mul(decimal.NewFromInt(100)).
		Round(1), nil
}

func (r *MySQLRepository) AvgOrderValue(ctx context.Context) (decimal.Decimal, error) {
	query := `SELECT COALESCE(AVG(o.total), 0) FROM orders o WHERE ` + notCancelled

	var avg decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query).Scan(&avg); err != nil {
		return decimal.Zero, fmt.Errorf("querying avg order value: %w", err)
	}
	return avg.Round(2), nil
}

// RepeatCustomerRate is the share of ordering customers with at least two
// non-cancelled orders. It doubles as the satisfaction and retention proxy.
func (r *MySQLRepository) RepeatCustomerRate(ctx context.Context) (decimal.Decimal, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(order_count >= 2), 0)
		FROM (
			SELECT o.customer_id, COUNT(*) AS order_count
			FROM orders o
			WHERE ` + notCancelled + `
			GROUP BY o.customer_id
		) per_customer`

	var withOrders, repeat int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&withOrders, &repeat); err != nil {
		return decimal.Zero, fmt.Errorf("querying repeat customer rate: %w", err)
	}
	if withOrders == 0 {
		return decimal.Zero, nil
	}
	return decimal.NewFromInt(repeat).
		Div(decimal.NewFromInt(withOrders)).
		Mul(decimal.NewFromInt(100)).
		Round(1), nil
}

func (r *MySQLRepository) TotalExpenses(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(amount), 0) FROM expenses").Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("querying total expenses: %w", err)
	}
	return total, nil
}

func (r *MySQLRepository) ExpensesBetween(ctx context.Context, w Window) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE expense_date >= ? AND expense_date < ?`

	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, w.Start, w.End).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("querying expenses: %w", err)
	}
	return total, nil
}

// AvgDeliveryDays averages updated_at - created_at over completed orders.
func (r *MySQLRepository) AvgDeliveryDays(ctx context.Context) (float64, error) {
	query := `
		SELECT COALESCE(AVG(DATEDIFF(o.updated_at, o.created_at)), 0)
		FROM orders o
		WHERE o.status = ?`

	var days float64
	if err := r.db.QueryRowContext(ctx, query, domain.OrderStatusCompleted).Scan(&days); err != nil {
		return 0, fmt.Errorf("querying avg delivery time: %w", err)
	}
	return days, nil
}

type GrowthPoint struct {
	Month        string `json:"month"`
	NewCustomers int    `json:"new_customers"`
}

// CustomerGrowth buckets customer signups per month over the past year.
func (r *MySQLRepository) CustomerGrowth(ctx context.Context, w Window) ([]GrowthPoint, error) {
	query := `
		SELECT DATE_FORMAT(created_at, '%Y-%m') AS bucket, COUNT(*)
		FROM customers
		WHERE created_at >= ? AND created_at < ?
		GROUP BY bucket
		ORDER BY bucket ASC`

	rows, err := r.db.QueryContext(ctx, query, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("querying customer growth: %w", err)
	}
	defer rows.Close()

	var points []GrowthPoint
	for rows.Next() {
		var p GrowthPoint
		if err := rows.Scan(&p.Month, &p.NewCustomers); err != nil {
			return nil, fmt.Errorf("scanning growth point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

type CustomerRank struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	OrderCount int             `json:"order_count"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

func (r *MySQLRepository) TopCustomers(ctx context.Context, limit int) ([]CustomerRank, error) {
	query := `
		SELECT c.id, c.name, COUNT(o.id), COALESCE(SUM(o.total), 0) AS spent
		FROM customers c
		JOIN orders o ON o.customer_id = c.id AND ` + notCancelled + `
		GROUP BY c.id, c.name
		ORDER BY spent DESC, c.id ASC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top customers: %w", err)
	}
	defer rows.Close()

	var ranks []CustomerRank
	for rows.Next() {
		var c CustomerRank
		if err := rows.Scan(&c.ID, &c.Name, &c.OrderCount, &c.TotalSpent); err != nil {
			return nil, fmt.Errorf("scanning customer rank: %w", err)
		}
		ranks = append(ranks, c)
	}
	return ranks, rows.Err()
}

type CategoryPerformance struct {
	Category  string          `json:"category"`
	UnitsSold int             `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

func (r *MySQLRepository) CategoryPerformance(ctx context.Context) ([]CategoryPerformance, error) {
	query := `
		SELECT p.category,
		       COALESCE(SUM(oi.quantity), 0) AS units,
		       COALESCE(SUM(oi.subtotal), 0)
		FROM products p
		JOIN order_items oi ON oi.product_id = p.id
		JOIN orders o ON o.id = oi.order_id
		WHERE ` + notCancelled + `
		GROUP BY p.category
		ORDER BY units DESC, p.category ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying category performance: %w", err)
	}
	defer rows.Close()

	var cats []CategoryPerformance
	for rows.Next() {
		var c CategoryPerformance
		if err := rows.Scan(&c.Category, &c.UnitsSold, &c.Revenue); err != nil {
			return nil, fmt.Errorf("scanning category performance: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *MySQLRepository) StockStatusCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM products GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("querying stock status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning stock status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *MySQLRepository) OrdersByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM orders GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("querying orders by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning order status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *MySQLRepository) OrdersByPaymentMethod(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT COALESCE(payment_method, 'unspecified'), COUNT(*)
		FROM orders
		GROUP BY payment_method`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying orders by payment method: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var method string
		var n int
		if err := rows.Scan(&method, &n); err != nil {
			return nil, fmt.Errorf("scanning payment method count: %w", err)
		}
		counts[method] = n
	}
	return counts, rows.Err()
}

func (r *MySQLRepository) InventoryValue(ctx context.Context) (decimal.Decimal, error) {
	var value decimal.Decimal
	if err := r.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(price * stock), 0) FROM products").Scan(&value); err != nil {
		return decimal.Zero, fmt.Errorf("querying inventory value: %w", err)
	}
	return value, nil
}
