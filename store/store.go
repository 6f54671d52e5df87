package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	queryListProducts    = `SELECT id, name, price, description FROM products ORDER BY id`
	queryProductsByIDs   = `SELECT id, name, price, description FROM products WHERE id IN (%s) ORDER BY id`
	queryListCart        = `SELECT c.id, p.id, p.name, p.price, c.qty FROM cart c JOIN products p ON c.product_id = p.id WHERE c.user_id = $1 ORDER BY c.id`
	queryFindCartLine    = `SELECT id, qty, added_at FROM cart WHERE product_id = $1 AND user_id = $2`
	queryInsertCartLine  = `INSERT INTO cart (product_id, qty, added_at, user_id) VALUES ($1, $2, $3, $4) RETURNING id`
	queryUpdateCartQty   = `UPDATE cart SET qty = $1 WHERE id = $2`
	queryDeleteCartLine  = `DELETE FROM cart WHERE id = $1`
	queryClearCart       = `DELETE FROM cart`
	queryClearUserCart   = `DELETE FROM cart WHERE user_id = $1`
	queryFindUserByEmail = `SELECT id, name, email FROM users WHERE email = $1`
	queryInsertUser      = `INSERT INTO users (name, email) VALUES ($1, $2) RETURNING id`
	queryGetUser         = `SELECT id, name, email FROM users WHERE id = $1`
)

// ProductRow, CartRow, CartItemRow, UserRow are simple structs representing DB rows
type ProductRow struct {
	ID          int64
	Name        string
	Description sql.NullString
	Price       float64
}

type CartRow struct {
	ID        int64
	ProductID int64
	Qty       int
	AddedAt   time.Time
	UserID    int64
}

// CartItemRow is a cart line inner-joined with its product.
type CartItemRow struct {
	CartID    int64
	ProductID int64
	Name      string
	Price     float64
	Qty       int
}

type UserRow struct {
	ID    int64
	Name  sql.NullString
	Email string
}

// SQLStore is a Store backed by Postgres or SQLite. Both dialects run the same SQL.
type SQLStore struct {
	DB *sql.DB

	// per-user mutexes so concurrent adds from this process merge instead of
	// inserting duplicate (user, product) lines. Keys are user_id -> *sync.Mutex
	locks sync.Map
}

// Open connects to the database for the given driver and verifies the connection.
func Open(driver, dsn string) (*SQLStore, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		// one connection: ":memory:" databases are per-connection and SQLite serializes writers anyway
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &SQLStore{DB: db}, nil
}

func (s *SQLStore) Close() error { return s.DB.Close() }

func (s *SQLStore) Ping(ctx context.Context) error { return s.DB.PingContext(ctx) }

// helper: acquire per-user lock (process-local). Returns unlock func.
func (s *SQLStore) lockForUser(userID int64) func() {
	if v, ok := s.locks.Load(userID); ok {
		m := v.(*sync.Mutex)
		m.Lock()
		return func() { m.Unlock() }
	}

	m := &sync.Mutex{}
	actual, _ := s.locks.LoadOrStore(userID, m)
	mtx := actual.(*sync.Mutex)
	mtx.Lock()
	return func() { mtx.Unlock() }
}

func (s *SQLStore) ListProducts(ctx context.Context) ([]ProductRow, error) {
	rows, err := s.DB.QueryContext(ctx, queryListProducts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return scanProducts(rows)
}

// ProductsByIDs returns the products whose id is in ids. Unknown ids are skipped.
func (s *SQLStore) ProductsByIDs(ctx context.Context, ids []int64) ([]ProductRow, error) {
	if len(ids) == 0 {
		return []ProductRow{}, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}
	query := fmt.Sprintf(queryProductsByIDs, strings.Join(placeholders, ", "))

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]ProductRow, error) {
	defer rows.Close()
	out := []ProductRow{}
	for rows.Next() {
		var p ProductRow
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

// ListCart returns the user's lines that still resolve to a product.
func (s *SQLStore) ListCart(ctx context.Context, userID int64) ([]CartItemRow, error) {
	rows, err := s.DB.QueryContext(ctx, queryListCart, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()
	out := []CartItemRow{}
	for rows.Next() {
		var c CartItemRow
		if err := rows.Scan(&c.CartID, &c.ProductID, &c.Name, &c.Price, &c.Qty); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

// AddToCart adds qty of a product to the user's cart. An existing (user, product)
// line has its quantity increased instead of a second line being inserted.
// The returned bool reports whether an existing line was merged.
func (s *SQLStore) AddToCart(ctx context.Context, userID, productID int64, qty int, addedAt time.Time) (CartRow, bool, error) {
	if qty <= 0 {
		return CartRow{}, false, errors.New("quantity must be > 0")
	}

	unlock := s.lockForUser(userID)
	defer unlock()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return CartRow{}, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	// no-op once committed
	defer func() { _ = tx.Rollback() }()

	line := CartRow{ProductID: productID, UserID: userID}
	var existingAt int64
	err = tx.QueryRowContext(ctx, queryFindCartLine, productID, userID).Scan(&line.ID, &line.Qty, &existingAt)
	merged := err == nil
	switch {
	case merged:
		line.Qty += qty
		line.AddedAt = time.UnixMilli(existingAt)
		if _, err := tx.ExecContext(ctx, queryUpdateCartQty, line.Qty, line.ID); err != nil {
			return CartRow{}, false, fmt.Errorf("failed to merge cart line: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		line.Qty = qty
		line.AddedAt = time.UnixMilli(addedAt.UnixMilli())
		if err := tx.QueryRowContext(ctx, queryInsertCartLine, productID, qty, addedAt.UnixMilli(), userID).Scan(&line.ID); err != nil {
			return CartRow{}, false, fmt.Errorf("failed to insert cart line: %w", err)
		}
	default:
		return CartRow{}, false, fmt.Errorf("failed to query cart line: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return CartRow{}, false, fmt.Errorf("failed to commit cart line: %w", err)
	}
	return line, merged, nil
}

// UpdateCartQty sets the quantity of a line exactly, zero included.
// It returns the number of rows changed; an unknown id changes none.
func (s *SQLStore) UpdateCartQty(ctx context.Context, cartID int64, qty int) (int64, error) {
	res, err := s.DB.ExecContext(ctx, queryUpdateCartQty, qty, cartID)
	if err != nil {
		return 0, fmt.Errorf("failed to update cart line: %w", err)
	}
	return rowsAffected(res)
}

func (s *SQLStore) RemoveFromCart(ctx context.Context, cartID int64) (int64, error) {
	res, err := s.DB.ExecContext(ctx, queryDeleteCartLine, cartID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cart line: %w", err)
	}
	return rowsAffected(res)
}

// ClearCart deletes every line of every user.
func (s *SQLStore) ClearCart(ctx context.Context) (int64, error) {
	res, err := s.DB.ExecContext(ctx, queryClearCart)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return rowsAffected(res)
}

func (s *SQLStore) ClearCartForUser(ctx context.Context, userID int64) (int64, error) {
	res, err := s.DB.ExecContext(ctx, queryClearUserCart, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart for user %d: %w", userID, err)
	}
	return rowsAffected(res)
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}
