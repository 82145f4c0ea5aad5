package db

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"car-inventory/internal/models"
)

// OrderRepository is the order ledger: it owns orders and their lines
// and keeps order totals, line prices and car stock consistent. Every
// mutation runs inside a single transaction.
type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(database *PostgresDB) *OrderRepository {
	return &OrderRepository{db: database.Conn}
}

// CreateOrder opens an order for a customer and applies every requested
// line, or none of them. The customer row is created lazily on first
// order. Line prices are quantity times the caller-supplied unit price.
func (r *OrderRepository) CreateOrder(custID string, lines []models.OrderLineRequest) (*models.Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO customers (cust_id) VALUES ($1) ON CONFLICT (cust_id) DO NOTHING`, custID)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert customer: %w", err)
	}

	order := models.NewOrder()
	err = tx.QueryRow(
		`INSERT INTO orders (order_id, order_total) VALUES ($1, $2) RETURNING date_created`,
		order.OrderID, order.OrderTotal,
	).Scan(&order.DateCreated)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for _, req := range lines {
		line, err := models.NewOrderLine(req.CarID, req.Quantity, req.Price, order.OrderID, custID)
		if err != nil {
			return nil, err
		}

		// Take the stock first: a missing car surfaces as ErrNotFound
		// here instead of a foreign key violation on the line insert.
		if err := decrementStock(tx, line.CarID, line.Quantity); err != nil {
			return nil, err
		}

		_, err = tx.Exec(
			`INSERT INTO car_orders (car_order_id, car_id, order_id, cust_id, quantity, price)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			line.CarOrderID, line.CarID, line.OrderID, line.CustID, line.Quantity, line.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order line: %w", err)
		}

		order.IncrementTotal(line.Price)
		order.Lines = append(order.Lines, *line)
	}

	_, err = tx.Exec(`UPDATE orders SET order_total = $1 WHERE order_id = $2`, order.OrderTotal, order.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to update order total: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return order, nil
}

// UpdateLine changes the quantity of the line identified by (order id,
// car id). The line price is recomputed at the car's current unit price
// and the stock and order total move by the difference. Setting the
// same quantity changes nothing.
func (r *OrderRepository) UpdateLine(orderID, carID string, newQuantity int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var line models.OrderLine
	err = tx.QueryRow(
		`SELECT car_order_id, quantity, price FROM car_orders WHERE order_id = $1 AND car_id = $2`,
		orderID, carID,
	).Scan(&line.CarOrderID, &line.Quantity, &line.Price)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.ErrNotFound
		}
		return fmt.Errorf("failed to get order line: %w", err)
	}

	var unitPrice decimal.Decimal
	err = tx.QueryRow(`SELECT price FROM cars WHERE car_id = $1`, carID).Scan(&unitPrice)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.ErrNotFound
		}
		return fmt.Errorf("failed to get car price: %w", err)
	}

	adj, err := models.PlanLineUpdate(unitPrice, line.Quantity, newQuantity, line.Price)
	if err != nil {
		return err
	}
	if adj.StockDelta == 0 {
		return nil
	}

	if adj.StockDelta > 0 {
		if err := decrementStock(tx, carID, adj.StockDelta); err != nil {
			return err
		}
	} else {
		if err := incrementStock(tx, carID, -adj.StockDelta); err != nil {
			return err
		}
	}

	_, err = tx.Exec(
		`UPDATE car_orders SET quantity = $1, price = $2 WHERE car_order_id = $3`,
		newQuantity, adj.NewPrice, line.CarOrderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order line: %w", err)
	}

	result, err := tx.Exec(`UPDATE orders SET order_total = order_total + $1 WHERE order_id = $2`, adj.TotalDelta, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order total: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return models.ErrNotFound
	}

	return tx.Commit()
}

// DeleteLine removes the line identified by (order id, car id), taking
// its price off the order total and returning its quantity to stock.
func (r *OrderRepository) DeleteLine(orderID, carID string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var line models.OrderLine
	err = tx.QueryRow(
		`SELECT car_order_id, quantity, price FROM car_orders WHERE order_id = $1 AND car_id = $2`,
		orderID, carID,
	).Scan(&line.CarOrderID, &line.Quantity, &line.Price)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.ErrNotFound
		}
		return fmt.Errorf("failed to get order line: %w", err)
	}

	_, err = tx.Exec(`UPDATE orders SET order_total = order_total - $1 WHERE order_id = $2`, line.Price, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order total: %w", err)
	}

	if err := incrementStock(tx, carID, line.Quantity); err != nil {
		return err
	}

	_, err = tx.Exec(`DELETE FROM car_orders WHERE car_order_id = $1`, line.CarOrderID)
	if err != nil {
		return fmt.Errorf("failed to delete order line: %w", err)
	}

	return tx.Commit()
}

// OrdersForCustomer returns every order line belonging to a customer,
// flattened with the referenced car's catalog attributes. The slice is
// in no particular order.
func (r *OrderRepository) OrdersForCustomer(custID string) ([]models.CustomerOrderLine, error) {
	query := `
		SELECT c.car_id, c.make, c.model, c.year, c.color, c.image, c.description, c.price,
		       co.quantity, co.order_id, co.car_order_id
		FROM car_orders co
		JOIN cars c ON c.car_id = co.car_id
		WHERE co.cust_id = $1
	`

	rows, err := r.db.Query(query, custID)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer orders: %w", err)
	}
	defer rows.Close()

	var lines []models.CustomerOrderLine
	for rows.Next() {
		var l models.CustomerOrderLine
		err := rows.Scan(&l.CarID, &l.Make, &l.Model, &l.Year, &l.Color, &l.Image, &l.Description,
			&l.Price, &l.Quantity, &l.OrderID, &l.LineID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer order: %w", err)
		}
		lines = append(lines, l)
	}

	return lines, nil
}

// Stats returns the storefront dashboard numbers.
func (r *OrderRepository) Stats() (*models.ShopStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM cars),
			(SELECT COUNT(*) FROM customers),
			(SELECT COALESCE(SUM(order_total), 0) FROM orders)
	`

	var stats models.ShopStats
	if err := r.db.QueryRow(query).Scan(&stats.Cars, &stats.Customers, &stats.Sales); err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}

	return &stats, nil
}
