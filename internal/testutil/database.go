package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the integration test database.
// It expects a MySQL instance at localhost:3306 with a database named
// 'smartbiz_test' (override with SMARTBIZ_TEST_DSN). Tests are skipped
// when the database is not reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("SMARTBIZ_TEST_DSN")
	if dsn == "" {
		dsn = "root:@tcp(localhost:3306)/smartbiz_test?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB wipes every table and closes the connection. Child tables
// go first so the deletes do not trip foreign keys.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{
		"order_items", "orders",
		"tasks", "projects",
		"purchase_orders", "suppliers",
		"deals", "leads",
		"attendance", "expenses",
		"password_reset_otps", "user_settings", "users",
		"customers", "products",
	}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the full schema used by the integration tests.
func SetupTestTables(t *testing.T, db *sql.DB) {
	statements := []struct {
		name  string
		query string
	}{
		{"products", `
	CREATE TABLE IF NOT EXISTS products (
		id CHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		sku VARCHAR(100) NOT NULL UNIQUE,
		category VARCHAR(100) NOT NULL,
		price DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		stock INT NOT NULL DEFAULT 0,
		status VARCHAR(32) NOT NULL DEFAULT 'In Stock',
		image VARCHAR(512),
		description TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_products_category (category),
		INDEX idx_products_status (status)
	)`},
		{"customers", `
	CREATE TABLE IF NOT EXISTS customers (
		id CHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		company VARCHAR(255),
		phone VARCHAR(50),
		status VARCHAR(32) NOT NULL DEFAULT 'Active',
		join_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		address VARCHAR(512),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`},
		{"orders", `
	CREATE TABLE IF NOT EXISTS orders (
		id CHAR(36) NOT NULL PRIMARY KEY,
		order_number VARCHAR(100) NOT NULL UNIQUE,
		customer_id CHAR(36) NOT NULL,
		status VARCHAR(32) NOT NULL DEFAULT 'Pending',
		total DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		order_date DATETIME NOT NULL,
		payment_method VARCHAR(64),
		shipping_address VARCHAR(512),
		notes TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		FOREIGN KEY (customer_id) REFERENCES customers(id),
		INDEX idx_orders_status (status),
		INDEX idx_orders_date (order_date)
	)`},
		{"order_items", `
	CREATE TABLE IF NOT EXISTS order_items (
		id CHAR(36) NOT NULL PRIMARY KEY,
		order_id CHAR(36) NOT NULL,
		product_id CHAR(36) NOT NULL,
		quantity INT NOT NULL,
		unit_price DECIMAL(10,2) NOT NULL,
		subtotal DECIMAL(10,2) NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
		FOREIGN KEY (product_id) REFERENCES products(id),
		INDEX idx_order_items_order (order_id),
		INDEX idx_order_items_product (product_id)
	)`},
		{"users", `
	CREATE TABLE IF NOT EXISTS users (
		id CHAR(36) NOT NULL PRIMARY KEY,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		company VARCHAR(255),
		phone VARCHAR(50),
		role VARCHAR(32) NOT NULL DEFAULT 'user',
		avatar VARCHAR(512),
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		email_verified TINYINT(1) NOT NULL DEFAULT 0,
		department VARCHAR(100),
		position VARCHAR(100),
		join_date DATETIME,
		last_login DATETIME,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`},
		{"user_settings", `
	CREATE TABLE IF NOT EXISTS user_settings (
		id CHAR(36) NOT NULL PRIMARY KEY,
		user_id CHAR(36) NOT NULL UNIQUE,
		first_name VARCHAR(100),
		last_name VARCHAR(100),
		email VARCHAR(255),
		company VARCHAR(255),
		phone VARCHAR(50),
		email_notifications TINYINT(1) NOT NULL DEFAULT 1,
		push_notifications TINYINT(1) NOT NULL DEFAULT 1,
		order_updates TINYINT(1) NOT NULL DEFAULT 1,
		marketing_emails TINYINT(1) NOT NULL DEFAULT 0,
		weekly_reports TINYINT(1) NOT NULL DEFAULT 1,
		two_factor_auth TINYINT(1) NOT NULL DEFAULT 0,
		session_timeout VARCHAR(16) NOT NULL DEFAULT '24h',
		password_expiry VARCHAR(16) NOT NULL DEFAULT '90d',
		language VARCHAR(16) NOT NULL DEFAULT 'en',
		timezone VARCHAR(64) NOT NULL DEFAULT 'UTC',
		theme VARCHAR(32) NOT NULL DEFAULT 'light',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`},
		{"password_reset_otps", `
	CREATE TABLE IF NOT EXISTS password_reset_otps (
		id CHAR(36) NOT NULL PRIMARY KEY,
		user_id CHAR(36) NOT NULL,
		email VARCHAR(255) NOT NULL,
		code VARCHAR(12) NOT NULL,
		expires_at DATETIME NOT NULL,
		is_used TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_otps_email (email)
	)`},
		{"attendance", `
	CREATE TABLE IF NOT EXISTS attendance (
		id CHAR(36) NOT NULL PRIMARY KEY,
		user_id CHAR(36) NOT NULL,
		date DATE NOT NULL,
		check_in DATETIME,
		check_out DATETIME,
		status VARCHAR(32) NOT NULL DEFAULT 'Present',
		UNIQUE KEY uq_attendance_user_date (user_id, date),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`},
		{"leads", `
	CREATE TABLE IF NOT EXISTS leads (
		id CHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		company VARCHAR(255),
		status VARCHAR(32) NOT NULL DEFAULT 'New',
		source VARCHAR(100),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`},
		{"deals", `
	CREATE TABLE IF NOT EXISTS deals (
		id CHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		customer_id CHAR(36) NOT NULL,
		stage VARCHAR(32) NOT NULL DEFAULT 'Qualified',
		value DECIMAL(12,2) NOT NULL DEFAULT 0.00,
		probability INT,
		close_date DATETIME,
		FOREIGN KEY (customer_id) REFERENCES customers(id)
	)`},
		{"expenses", `
	CREATE TABLE IF NOT EXISTS expenses (
		id CHAR(36) NOT NULL PRIMARY KEY,
		description VARCHAR(512) NOT NULL,
		category VARCHAR(100) NOT NULL,
		amount DECIMAL(12,2) NOT NULL,
		date DATETIME NOT NULL,
		vendor VARCHAR(255),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_expenses_category (category),
		INDEX idx_expenses_date (date)
	)`},
		{"suppliers", `
	CREATE TABLE IF NOT EXISTS suppliers (
		id CHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		contact_info VARCHAR(512),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`},
		{"purchase_orders", `
	CREATE TABLE IF NOT EXISTS purchase_orders (
		id CHAR(36) NOT NULL PRIMARY KEY,
		po_number VARCHAR(100) NOT NULL UNIQUE,
		supplier_id CHAR(36) NOT NULL,
		status VARCHAR(32) NOT NULL DEFAULT 'Pending',
		total_amount DECIMAL(12,2) NOT NULL DEFAULT 0.00,
		order_date DATETIME NOT NULL,
		FOREIGN KEY (supplier_id) REFERENCES suppliers(id)
	)`},
		{"projects", `
	CREATE TABLE IF NOT EXISTS projects (
		id CHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		status VARCHAR(32) NOT NULL DEFAULT 'Planning',
		budget DECIMAL(12,2),
		start_date DATETIME,
		end_date DATETIME,
		progress INT NOT NULL DEFAULT 0,
		manager_id CHAR(36),
		deleted_at DATETIME,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`},
		{"tasks", `
	CREATE TABLE IF NOT EXISTS tasks (
		id CHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		project_id CHAR(36) NOT NULL,
		assignee_id CHAR(36),
		status VARCHAR(32) NOT NULL DEFAULT 'To Do',
		due_date DATETIME,
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
		INDEX idx_tasks_status (status)
	)`},
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt.query); err != nil {
			t.Logf("failed to create table %s: %v", stmt.name, err)
		}
	}
}
